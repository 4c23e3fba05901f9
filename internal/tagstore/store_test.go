package tagstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "TagData.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestParseCanonical(t *testing.T) {
	data := []byte(`{
  "tags": [
    {"string": "Sword", "int": 1000000, "sheetName": "Item", "columnName": "Id"},
    {"string": "Shield", "int": 1000001, "sheetName": "unknown", "columnName": "unknown"}
  ]
}`)

	s, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	id, ok := s.Lookup("Sword")
	require.True(t, ok)
	assert.Equal(t, int64(1000000), id)

	recs := s.Records()
	assert.Equal(t, "Item", recs[0].Sheet)
	assert.Equal(t, "Id", recs[0].Column)
	assert.Equal(t, "unknown", recs[1].Sheet)
}

func TestParseLegacyFlatMapping(t *testing.T) {
	s, err := Parse([]byte(`{"tags": {"Sword": 7}}`))
	require.NoError(t, err)

	id, ok := s.Lookup("Sword")
	require.True(t, ok)
	assert.Equal(t, int64(7), id)

	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "unknown", recs[0].Sheet)
	assert.Equal(t, "unknown", recs[0].Column)
}

func TestParseOldestFlatMapping(t *testing.T) {
	s, err := Parse([]byte(`{"Sword": 7, "Shield": 9}`))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	id, ok := s.Lookup("Shield")
	require.True(t, ok)
	assert.Equal(t, int64(9), id)
}

func TestParseCorruptYieldsEmptyStore(t *testing.T) {
	for _, data := range []string{
		`not json at all`,
		`[1, 2, 3]`,
		`{"tags": "nope"}`,
		`{"tags": {"Sword": "seven"}}`,
		`{"tags": [{"string": "", "int": 1}]}`,
		`{"tags": [{"string": "Sword", "int": 0}]}`,
		`{"tags": [{"string": "Sword", "int": -5}]}`,
		`{"tags": {"Sword": 0}}`,
	} {
		s, err := Parse([]byte(data))
		require.Error(t, err, data)

		var ce *CorruptError
		require.ErrorAs(t, err, &ce, data)
		assert.Equal(t, 0, s.Len(), data)
	}
}

func TestInsertDuplicateTag(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert("Sword", 1000000, "Item", "Id"))

	err := s.Insert("Sword", 1000001, "Item", "Id")
	require.Error(t, err)

	var dup *DuplicateTagError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Sword", dup.Tag)
	assert.Equal(t, int64(1000000), dup.ID)
}

func TestInsertDuplicateIdentifier(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert("Sword", 1000000, "Item", "Id"))
	require.Error(t, s.Insert("Shield", 1000000, "Item", "Id"))
}

func TestInsertRejectsInvalidRecords(t *testing.T) {
	s := New()

	// Either would poison the persisted store for the next load.
	require.Error(t, s.Insert("", 1000000, "Item", "Id"))
	require.Error(t, s.Insert("Sword", 0, "Item", "Id"))
	require.Error(t, s.Insert("Sword", -1, "Item", "Id"))
	assert.Equal(t, 0, s.Len())
}

func TestNextIDFromThreshold(t *testing.T) {
	s := New()
	assert.Equal(t, int64(1000000), s.NextID(1000000))

	require.NoError(t, s.Insert("Sword", 1000000, "Item", "Id"))
	assert.Equal(t, int64(1000001), s.NextID(1000000))

	// Identifiers above the threshold push allocation further up.
	require.NoError(t, s.Insert("Potion", 2000000, "Item", "Id"))
	assert.Equal(t, int64(2000001), s.NextID(1000000))
}

func TestResolveAllocatesMonotonically(t *testing.T) {
	s := New()

	var ids []int64
	for _, tag := range []string{"Sword", "Shield", "Potion"} {
		id, fresh, err := s.Resolve(tag, "Item", "Id", 1000000)
		require.NoError(t, err)
		assert.True(t, fresh)
		ids = append(ids, id)
	}

	assert.Equal(t, []int64{1000000, 1000001, 1000002}, ids)

	// Re-resolving an existing tag neither allocates nor changes anything.
	id, fresh, err := s.Resolve("Sword", "Other", "Ref", 1000000)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, int64(1000000), id)
	assert.Equal(t, 3, s.Len())
}

func TestRecordOriginRefinesUnknownOnly(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert("Sword", 7, "unknown", "unknown"))

	s.RecordOrigin("Sword", "Item", "Id")
	recs := s.Records()
	assert.Equal(t, "Item", recs[0].Sheet)
	assert.Equal(t, "Id", recs[0].Column)

	// A concrete origin is never overwritten.
	s.RecordOrigin("Sword", "Monster", "Drop")
	recs = s.Records()
	assert.Equal(t, "Item", recs[0].Sheet)
	assert.Equal(t, "Id", recs[0].Column)

	// Unknown tags are a no-op.
	s.RecordOrigin("Ghost", "Item", "Id")
	assert.Equal(t, 1, s.Len())
}

func TestUsed(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert("Sword", 1000000, "Item", "Id"))

	assert.True(t, s.Used(1000000))
	assert.False(t, s.Used(5))
}

func TestSaveSortedAndReloadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TagData.json")

	s := New()
	require.NoError(t, s.Insert("Zeta", 1000002, "B", "Id"))
	require.NoError(t, s.Insert("Alpha", 1000000, "A", "Id"))
	require.NoError(t, s.Insert("Mid", 1000001, "unknown", "unknown"))
	require.NoError(t, s.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var file struct {
		Tags []Record `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(data, &file))
	require.Len(t, file.Tags, 3)
	assert.Equal(t, "Alpha", file.Tags[0].Tag)
	assert.Equal(t, "Mid", file.Tags[1].Tag)
	assert.Equal(t, "Zeta", file.Tags[2].Tag)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Records(), reloaded.Records())
}

func TestSaveEmptyStoreWritesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TagData.json")
	require.NoError(t, New().Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags": []}`, string(data))
}

func TestLoadCorruptFileRecoversEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TagData.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))

	s, err := Load(path)
	require.Error(t, err)

	var ce *CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, path, ce.Path)
	assert.Equal(t, 0, s.Len())

	// The recovered store is fully usable.
	_, fresh, rerr := s.Resolve("Sword", "Item", "Id", 1000000)
	require.NoError(t, rerr)
	assert.True(t, fresh)
}
