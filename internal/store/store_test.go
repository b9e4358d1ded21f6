package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmorand/tmharvest/internal/record"
)

func TestSave_WritesCanonicalFile(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	rec := record.New(17, "https://example.org/text/17")
	material := "Papyrus"
	rec.Material = &material

	path, err := st.Save(rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "id_17.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded), "saved file must be valid JSON")
	assert.Equal(t, "Papyrus", decoded["material"])
}

func TestSave_LeavesNoTemporaries(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	_, err := st.Save(record.New(3, "https://example.org/text/3"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "id_3.json", entries[0].Name())
}

func TestSave_CreatesOutputDirOnDemand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	st := New(dir)

	_, err := st.Save(record.New(1, "https://example.org/text/1"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "id_1.json"))
}

func TestSave_IsByteStableAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	rec := record.New(9, "https://example.org/text/9")
	rec.Payload = json.RawMessage(`{"tm_id":9,"name":"Memphis"}`)

	path, err := st.Save(rec)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = st.Save(rec)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAlreadyComplete(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	assert.False(t, st.AlreadyComplete(5))

	_, err := st.Save(record.New(5, "https://example.org/text/5"))
	require.NoError(t, err)

	assert.True(t, st.AlreadyComplete(5))
	assert.False(t, st.AlreadyComplete(6))
}

func TestAlreadyComplete_IgnoresStaleTemporaries(t *testing.T) {
	// A crash mid-write leaves only the temporary artifact; it must not
	// count as a completed record.
	dir := t.TempDir()
	st := New(dir)

	tmp := filepath.Join(dir, ".id_8.json.part")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"trunc`), 0644))

	assert.False(t, st.AlreadyComplete(8))
}
