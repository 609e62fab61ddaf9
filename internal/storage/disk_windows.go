//go:build windows

package storage

import (
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// DiskSpaceChecker sin Statfs en Windows: nunca bloquea una corrida
type DiskSpaceChecker struct {
	logger *logger.Logger
}

// NewDiskSpaceChecker crea un checker (Windows)
func NewDiskSpaceChecker(log *logger.Logger) *DiskSpaceChecker {
	return &DiskSpaceChecker{logger: log}
}

// GetDiskSpace no disponible en Windows
func (dsc *DiskSpaceChecker) GetDiskSpace(path string) (uint64, uint64, error) {
	return 0, 0, nil
}

// CheckSpaceForRun siempre acepta en Windows
func (dsc *DiskSpaceChecker) CheckSpaceForRun(path string, count int, perSample int64, marginPercent int) error {
	dsc.logger.Debugw("Disk space check skipped on windows", "path", path)
	return nil
}
