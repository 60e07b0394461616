//go:build linux

package sysinfo

import "golang.org/x/sys/unix"

// TotalMemory returns the installed physical memory in bytes.
func TotalMemory() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	return uint64(info.Totalram) * uint64(info.Unit), nil
}
