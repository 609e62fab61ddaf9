package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// RunMarkerFile guarda la clave de la corrida dueña del directorio de salida
const RunMarkerFile = ".passportgen-run"

// PreviewFile nombre del PDF de vista previa dentro del directorio de salida
const PreviewFile = "preview.pdf"

var imageNameRegex = regexp.MustCompile(`^output\d+\.(png|jpg|tiff)$`)

// ClaimOutputDir prepara dir para la corrida runKey. Sin runKey equivale a
// EnsureOutputDir. Con runKey, un directorio marcado con la misma clave (un
// reintento del mismo job) se limpia de los artefactos generados y se
// reutiliza; devuelve cuántos archivos se borraron. Cualquier otro contenido
// es ErrOutputNotEmpty y no se toca.
func ClaimOutputDir(dir, runKey string) (int, error) {
	if runKey == "" {
		return 0, EnsureOutputDir(dir)
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
		return 0, writeRunMarker(dir, runKey)
	case err != nil:
		return 0, fmt.Errorf("stat output directory: %w", err)
	case !info.IsDir():
		return 0, fmt.Errorf("%s: %w", dir, ErrOutputNotEmpty)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) == 0 {
		return 0, writeRunMarker(dir, runKey)
	}

	owner, err := os.ReadFile(filepath.Join(dir, RunMarkerFile))
	if err != nil || string(owner) != runKey {
		return 0, fmt.Errorf("%s: %w", dir, ErrOutputNotEmpty)
	}
	for _, e := range entries {
		if !isGenerated(e) {
			return 0, fmt.Errorf("%s: %s: %w", dir, e.Name(), ErrOutputNotEmpty)
		}
	}

	removed := 0
	for _, e := range entries {
		if e.Name() == RunMarkerFile {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func isGenerated(e os.DirEntry) bool {
	if e.IsDir() {
		return false
	}
	switch name := e.Name(); name {
	case RunMarkerFile, GroundTruthFile, PreviewFile:
		return true
	default:
		return imageNameRegex.MatchString(name)
	}
}

func writeRunMarker(dir, runKey string) error {
	if err := os.WriteFile(filepath.Join(dir, RunMarkerFile), []byte(runKey), 0o644); err != nil {
		return fmt.Errorf("write run marker: %w", err)
	}
	return nil
}
