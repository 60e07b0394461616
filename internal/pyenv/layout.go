// Package pyenv describes a Python virtual environment on disk and the
// process environment that binds child commands to it.
package pyenv

import (
	"os"
	"path/filepath"
)

// Layout is the on-disk shape of a virtual environment rooted at Root
type Layout struct {
	Root     string
	BinDir   string
	Python   string
	Activate string
}

// NewLayout returns the layout `python -m venv root` produces on goos
func NewLayout(root, goos string) Layout {
	if goos == "windows" {
		bin := filepath.Join(root, "Scripts")
		return Layout{
			Root:     root,
			BinDir:   bin,
			Python:   filepath.Join(bin, "python.exe"),
			Activate: filepath.Join(bin, "activate.bat"),
		}
	}

	bin := filepath.Join(root, "bin")
	return Layout{
		Root:     root,
		BinDir:   bin,
		Python:   filepath.Join(bin, "python"),
		Activate: filepath.Join(bin, "activate"),
	}
}

// Exists reports whether the activation entry point is present
func (l Layout) Exists() bool {
	info, err := os.Stat(l.Activate)
	return err == nil && !info.IsDir()
}
