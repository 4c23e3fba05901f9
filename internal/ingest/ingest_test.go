package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Item.csv")
	writeFile(t, path, "int,string,local_string;[Id]\nId,Name,Title\n1,Sword,A sword\n2,Shield,A shield\n")

	s, err := ReadSheet(path)
	require.NoError(t, err)

	assert.Equal(t, "Item", s.File)
	assert.Equal(t, "Item", s.Name)
	assert.Equal(t, []string{"Id", "Name", "Title"}, s.Columns)
	assert.Equal(t, "int", s.Types["Id"])
	assert.Equal(t, "local_string;[Id]", s.Types["Title"])
	require.Len(t, s.Rows, 2)
	assert.Equal(t, []string{"1", "Sword", "A sword"}, s.Rows[0])
}

func TestReadSheetPadsRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Item.csv")
	writeFile(t, path, "int,string\nId,Name\n1\n")

	s, err := ReadSheet(path)
	require.NoError(t, err)
	require.Len(t, s.Rows, 1)
	assert.Equal(t, []string{"1", ""}, s.Rows[0])
}

func TestReadSheetShortTypeRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Item.csv")
	writeFile(t, path, "int\nId,Name\n1,Sword\n")

	s, err := ReadSheet(path)
	require.NoError(t, err)
	assert.Equal(t, "int", s.Types["Id"])
	assert.Equal(t, "", s.Types["Name"])
}

func TestReadSheetEmpty(t *testing.T) {
	dir := t.TempDir()

	headerOnly := filepath.Join(dir, "HeaderOnly.csv")
	writeFile(t, headerOnly, "int,string\nId,Name\n")
	_, err := ReadSheet(headerOnly)
	assert.ErrorIs(t, err, ErrEmptySheet)

	typeRowOnly := filepath.Join(dir, "TypeRow.csv")
	writeFile(t, typeRowOnly, "int,string\n")
	_, err = ReadSheet(typeRowOnly)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestReadSheetCP949Fallback(t *testing.T) {
	// "가" in EUC-KR/CP949 bytes.
	content := append([]byte("string\nName\n"), 0xB0, 0xA1, '\n')
	path := filepath.Join(t.TempDir(), "Item.csv")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	s, err := ReadSheet(path)
	require.NoError(t, err)
	require.Len(t, s.Rows, 1)
	assert.Equal(t, "가", s.Rows[0][0])
}

func TestCollectSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "Monster.csv"), "int\nId\n")
	writeFile(t, filepath.Join(root, "a", "Item.csv"), "int\nId\n")
	writeFile(t, filepath.Join(root, "a", "~$Item.csv"), "lock")
	writeFile(t, filepath.Join(root, "notes.txt"), "hi")

	targets, err := Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/Item.csv", "b/Monster.csv"}, targets)
}

func TestCollectFromList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "Item.csv"), "int\nId\n")
	writeFile(t, filepath.Join(root, "b", "Monster.csv"), "int\nId\n")

	list := "b/Monster.csv\nmissing.csv\nb/Monster.csv\n\nnotes.txt\n"
	targets, err := CollectFromList(root, list)
	require.NoError(t, err)
	assert.Equal(t, []string{"b/Monster.csv"}, targets)
}

func TestCollectFromListNothingUsable(t *testing.T) {
	root := t.TempDir()
	targets, err := CollectFromList(root, "gone.csv\n")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestEligible(t *testing.T) {
	assert.True(t, Eligible("data/Item.csv"))
	assert.True(t, Eligible("data/Item.CSV"))
	assert.False(t, Eligible("data/~$Item.csv"))
	assert.False(t, Eligible("data/Item.xlsx"))
}
