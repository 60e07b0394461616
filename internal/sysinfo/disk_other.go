//go:build !linux && !darwin && !freebsd && !windows

package sysinfo

func DiskFree(path string) (uint64, error) {
	return 0, ErrUnsupported
}
