//go:build !linux && !darwin

package sysinfo

// TotalMemory is not probed on this platform; callers treat ErrUnsupported as unknown.
func TotalMemory() (uint64, error) {
	return 0, ErrUnsupported
}
