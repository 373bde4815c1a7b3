//go:build linux

package posture

import (
	"os"
	"path/filepath"
	"strconv"
)

// isRunning scans /proc/*/exe symlinks for an exact match against path,
// spec.md §4.3.
func isRunning(path string) bool {
	procs, err := os.ReadDir("/proc")
	if err != nil {
		return false
	}
	for _, p := range procs {
		if _, err := strconv.Atoi(p.Name()); err != nil {
			continue
		}
		target, err := os.Readlink(filepath.Join("/proc", p.Name(), "exe"))
		if err != nil {
			continue
		}
		if target == path {
			return true
		}
	}
	return false
}

// getSigners: Linux binaries carry no embedded PKCS#7 signature the way
// Windows PEs do, spec.md §4.3.
func getSigners(string) []string { return nil }
