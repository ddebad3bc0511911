package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init_schema.up.sql"), []byte("--"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init_schema.down.sql"), []byte("--"), 0o644))

	f, err := Create(dir, "Add Timetable-Slots")
	require.NoError(t, err)

	assert.Equal(t, uint(2), f.Version)
	assert.Equal(t, "add_timetable_slots", f.Name)
	assert.FileExists(t, filepath.Join(dir, "000002_add_timetable_slots.up.sql"))
	assert.FileExists(t, filepath.Join(dir, "000002_add_timetable_slots.down.sql"))
}

func TestCreate_EmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	f, err := Create(dir, "init")
	require.NoError(t, err)
	assert.Equal(t, uint(1), f.Version)
}

func TestCreate_RejectsUnusableName(t *testing.T) {
	_, err := Create(t.TempDir(), "!!!")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_add_index.up.sql", "000002_add_index.down.sql",
		"000001_init_schema.up.sql", "000001_init_schema.down.sql",
		"README.md", "000003_only_up.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	files, err := List(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "init_schema", files[0].Name)
	assert.Equal(t, "add_index", files[1].Name)
	assert.Empty(t, files[2].DownPath)

	missing, err := List(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fee_structures_v2", slugify("  Fee structures -- v2 "))
}
