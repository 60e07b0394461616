// Package sysinfo probes host resources the setup warns about.
package sysinfo

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when a probe has no implementation for the host OS.
var ErrUnsupported = errors.New("probe not supported on this platform")

// FormatBytes renders n as a human readable size (KB, MB or GB).
func FormatBytes(n uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case n > gb:
		return fmt.Sprintf("%.1f GB", float64(n)/gb)
	case n > mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	default:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	}
}
