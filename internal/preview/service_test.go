package preview

import (
	"fmt"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

func writeImages(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		img := imaging.New(60, 40, color.NRGBA{R: uint8(40 * i), G: 120, B: 200, A: 255})
		path := filepath.Join(dir, fmt.Sprintf("output%d.png", i))
		require.NoError(t, imaging.Save(img, path))
		paths = append(paths, path)
	}
	return paths
}

func TestService_Build(t *testing.T) {
	dir := t.TempDir()
	images := writeImages(t, dir, 3)

	result, err := NewService(logger.Nop()).Build(images, filepath.Join(dir, FileName))
	require.NoError(t, err)

	assert.FileExists(t, result.OutputPath)
	assert.Equal(t, 3, result.Pages)
	assert.Positive(t, result.Size)
}

func TestService_BuildErrors(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(logger.Nop())

	tests := []struct {
		name   string
		images []string
	}{
		{name: "sin imágenes", images: nil},
		{name: "imagen inexistente", images: []string{filepath.Join(dir, "missing.png")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Build(tt.images, filepath.Join(dir, FileName))
			assert.Error(t, err)
		})
	}
}
