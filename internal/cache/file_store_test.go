package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "prompts"))
		require.NoError(t, err)
		return store
	})
}

func TestFileName(t *testing.T) {
	tests := []struct {
		user, repo string
		expected   string
	}{
		{"clavison", "demo", "prompts.clavison.demo.json"},
		{"clavison", "poo-2024_final", "prompts.clavison.poo-2024_final.json"},
		{"clavison", "../../etc", "prompts.clavison..._.._etc.json"},
		{"maria joão", "repo/x", "prompts.maria_jo_o.repo_x.json"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			name := FileName(tt.user, tt.repo)
			assert.Equal(t, tt.expected, name)
			assert.Equal(t, name, filepath.Base(name))
		})
	}
}

func TestFileStore_Files(t *testing.T) {
	t.Run("writes the expected file", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		require.NoError(t, err)

		require.NoError(t, store.Save("clavison", "demo", sampleRecords()))

		assert.FileExists(t, filepath.Join(dir, "prompts.clavison.demo.json"))
	})

	t.Run("corrupted file loads empty", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName("clavison", "demo")), []byte("{broken"), 0644))

		assert.Empty(t, store.Load("clavison", "demo"))
	})

	t.Run("clean keeps unrelated files", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		require.NoError(t, err)
		other := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(other, []byte("keep"), 0644))
		require.NoError(t, store.Save("clavison", "demo", sampleRecords()))

		require.NoError(t, store.Clean())

		assert.FileExists(t, other)
		assert.NoFileExists(t, filepath.Join(dir, FileName("clavison", "demo")))
	})
}
