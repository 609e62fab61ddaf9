package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestClaimOutputDir(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		runKey      string
		wantErr     bool
		wantRemoved int
	}{
		{name: "sin clave y vacío", runKey: ""},
		{name: "con clave y vacío", runKey: "job-1"},
		{
			name:        "reintento del mismo job",
			files:       map[string]string{RunMarkerFile: "job-1", GroundTruthFile: "{}\n", "output0.png": "x", "output1.jpg": "x", PreviewFile: "x"},
			runKey:      "job-1",
			wantRemoved: 4,
		},
		{
			name:    "otro job",
			files:   map[string]string{RunMarkerFile: "job-2", "output0.png": "x"},
			runKey:  "job-1",
			wantErr: true,
		},
		{
			name:    "archivo ajeno junto a la marca",
			files:   map[string]string{RunMarkerFile: "job-1", "notas.txt": "x"},
			runKey:  "job-1",
			wantErr: true,
		},
		{
			name:    "sin marca",
			files:   map[string]string{"output0.png": "x"},
			runKey:  "job-1",
			wantErr: true,
		},
		{
			name:    "sin clave no reutiliza",
			files:   map[string]string{RunMarkerFile: "job-1"},
			runKey:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			if tt.files != nil {
				writeFiles(t, dir, tt.files)
			}

			removed, err := ClaimOutputDir(dir, tt.runKey)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutputNotEmpty)
				for name := range tt.files {
					assert.FileExists(t, filepath.Join(dir, name))
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, removed)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			if tt.runKey == "" {
				assert.Empty(t, entries)
				return
			}
			require.Len(t, entries, 1)
			owner, err := os.ReadFile(filepath.Join(dir, RunMarkerFile))
			require.NoError(t, err)
			assert.Equal(t, tt.runKey, string(owner))
		})
	}
}

func TestClaimOutputDir_FileIsNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := ClaimOutputDir(path, "job-1")
	assert.ErrorIs(t, err, ErrOutputNotEmpty)
}

func TestNewService_WithRunKeyReusesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{RunMarkerFile: "job-9", "output0.png": "x"})

	store, err := NewService(dir, "png", logger.Nop(), WithRunKey("job-9"))
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
	assert.NoFileExists(t, filepath.Join(dir, "output0.png"))
}
