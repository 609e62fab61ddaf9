//go:build !windows

package storage

import (
	"fmt"
	"syscall"

	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// DiskSpaceChecker verifica espacio disponible en disco
type DiskSpaceChecker struct {
	logger *logger.Logger
}

// NewDiskSpaceChecker crea un nuevo checker de espacio en disco
func NewDiskSpaceChecker(log *logger.Logger) *DiskSpaceChecker {
	return &DiskSpaceChecker{logger: log}
}

// GetDiskSpace obtiene espacio disponible y total en bytes
func (dsc *DiskSpaceChecker) GetDiskSpace(path string) (available uint64, total uint64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, fmt.Errorf("failed to stat filesystem: %w", err)
	}

	available = stat.Bavail * uint64(stat.Bsize)
	total = stat.Blocks * uint64(stat.Bsize)
	return available, total, nil
}

// CheckSpaceForRun verifica que entren count imágenes de hasta perSample
// bytes más un margen de seguridad (por defecto 20%)
func (dsc *DiskSpaceChecker) CheckSpaceForRun(path string, count int, perSample int64, marginPercent int) error {
	available, total, err := dsc.GetDiskSpace(path)
	if err != nil {
		return err
	}

	if marginPercent == 0 {
		marginPercent = 20
	}
	required := int64(count) * perSample
	required += required * int64(marginPercent) / 100

	if required > 0 && uint64(required) > available {
		return fmt.Errorf("insufficient disk space: need %dMB, available %dMB",
			required/(1024*1024),
			available/(1024*1024),
		)
	}

	// Log warning si está por debajo del 20% del total
	if total > 0 && (total-available)*100/total > 80 {
		dsc.logger.Warnw("Disk space running low",
			"path", path,
			"available_mb", available/(1024*1024),
			"total_mb", total/(1024*1024),
		)
	}
	return nil
}
