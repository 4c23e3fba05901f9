package localize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableforge/internal/diagnostic"
	"tableforge/internal/table"
)

func dialogSheet() *table.Sheet {
	return &table.Sheet{
		File:    "Dialog",
		Name:    "Main",
		Columns: []string{"Id", "Text"},
		Types: map[string]string{
			"Id":   "int",
			"Text": "local_string;[Id]",
		},
		Rows: [][]string{
			{"10", "안녕하세요"},
			{"20", "Hello there"},
			{"30", ""},
		},
	}
}

func TestCollectWithReferenceColumns(t *testing.T) {
	diags := &diagnostic.Diagnostics{}
	c := NewCollector(true, diags)

	s := dialogSheet()
	changed := c.CollectSheet(s)

	assert.True(t, changed)
	assert.False(t, diags.HasErrors())
	require.Equal(t, 2, c.Len())

	entries := c.Entries()
	assert.Equal(t, "Dialog.Main.10", entries[0].Key)
	assert.Equal(t, "안녕하세요", entries[0].Ko)
	assert.Equal(t, "", entries[0].En)
	assert.Equal(t, "Dialog.Main.20", entries[1].Key)

	// Cells rewritten to keys; the empty cell stays empty.
	assert.Equal(t, []string{"Dialog.Main.10", "Dialog.Main.20", ""}, s.Column("Text"))
}

func TestCollectWithoutReferencesUsesRowNumber(t *testing.T) {
	c := NewCollector(true, &diagnostic.Diagnostics{})

	s := &table.Sheet{
		File:    "Tips",
		Name:    "Tips",
		Columns: []string{"Text"},
		Types:   map[string]string{"Text": "local_string"},
		Rows:    [][]string{{"first tip"}, {"second tip"}},
	}

	c.CollectSheet(s)

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Tips.Tips.1", entries[0].Key)
	assert.Equal(t, "Tips.Tips.2", entries[1].Key)
}

func TestCollectSkipsCellsAlreadyKeyed(t *testing.T) {
	c := NewCollector(true, &diagnostic.Diagnostics{})

	s := dialogSheet()
	s.Rows[0][1] = "Dialog.Main.10"

	changed := c.CollectSheet(s)
	assert.True(t, changed)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "Dialog.Main.10", s.Rows[0][1])
}

func TestCollectFirstOccurrenceWins(t *testing.T) {
	c := NewCollector(true, &diagnostic.Diagnostics{})

	s := dialogSheet()
	s.Rows[1][0] = "10" // duplicate reference value -> duplicate key

	c.CollectSheet(s)

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "안녕하세요", entries[0].Ko)
	// Both cells still point at the shared key.
	assert.Equal(t, "Dialog.Main.10", s.Rows[0][1])
	assert.Equal(t, "Dialog.Main.10", s.Rows[1][1])
}

func TestCollectUnknownReferenceWarnsAndSkips(t *testing.T) {
	diags := &diagnostic.Diagnostics{}
	c := NewCollector(true, diags)

	s := dialogSheet()
	s.Types["Text"] = "local_string;[Missing]"

	changed := c.CollectSheet(s)

	assert.False(t, changed)
	assert.Equal(t, 0, c.Len())
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, "unknown_reference", diags.Warnings[0].Code)
	assert.False(t, diags.HasErrors())
	// Source text untouched.
	assert.Equal(t, "안녕하세요", s.Rows[0][1])
}

func TestCollectWithoutRewriteLeavesCells(t *testing.T) {
	c := NewCollector(false, &diagnostic.Diagnostics{})

	s := dialogSheet()
	changed := c.CollectSheet(s)

	assert.False(t, changed)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "안녕하세요", s.Rows[0][1])
}

func TestWriteJSONSortedKeys(t *testing.T) {
	c := NewCollector(true, &diagnostic.Diagnostics{})
	s := dialogSheet()
	c.CollectSheet(s)

	path := filepath.Join(t.TempDir(), "LocalData.json")
	require.NoError(t, c.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "안녕하세요", decoded["Dialog.Main.10"]["ko"])
	assert.Equal(t, "", decoded["Dialog.Main.10"]["en"])

	// Keys appear in sorted order in the file text.
	text := string(data)
	assert.Less(t, strings.Index(text, "Dialog.Main.10"), strings.Index(text, "Dialog.Main.20"))
}

func TestWriteJSONEmpty(t *testing.T) {
	c := NewCollector(true, &diagnostic.Diagnostics{})
	path := filepath.Join(t.TempDir(), "LocalData.json")
	require.NoError(t, c.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestMergeFileKeepsForeignKeysAndTranslations(t *testing.T) {
	existing := `{
  "Dialog.Main.10": {"ko": "안녕하세요", "en": "Hello", "ja": "こんにちは"},
  "Quest.Quest.1": {"ko": "퀘스트", "en": "Quest", "ja": ""}
}`
	path := filepath.Join(t.TempDir(), "LocalData.json")
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	c := NewCollector(true, &diagnostic.Diagnostics{})
	c.CollectSheet(dialogSheet())
	require.NoError(t, c.MergeFile(path))

	entries := c.Entries()
	require.Len(t, entries, 3)

	// A key from a sheet this run never touched survives untouched.
	assert.Equal(t, "Quest.Quest.1", entries[2].Key)
	assert.Equal(t, "퀘스트", entries[2].Ko)

	// A re-collected key keeps its fresh source text and its delivered
	// translations.
	assert.Equal(t, "Dialog.Main.10", entries[0].Key)
	assert.Equal(t, "안녕하세요", entries[0].Ko)
	assert.Equal(t, "Hello", entries[0].En)
	assert.Equal(t, "こんにちは", entries[0].Ja)
}

func TestMergeFileMissingIsNoOp(t *testing.T) {
	c := NewCollector(true, &diagnostic.Diagnostics{})
	c.CollectSheet(dialogSheet())

	require.NoError(t, c.MergeFile(filepath.Join(t.TempDir(), "LocalData.json")))
	assert.Equal(t, 2, c.Len())
}

func TestWriteCSV(t *testing.T) {
	c := NewCollector(true, &diagnostic.Diagnostics{})
	c.CollectSheet(dialogSheet())

	path := filepath.Join(t.TempDir(), "LocalData.csv")
	require.NoError(t, c.WriteCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "key,ko,en,ja", lines[0])
	assert.Equal(t, "Dialog.Main.10,안녕하세요,,", lines[1])
}
