//go:build !windows

package pyenv

func normKey(k string) string { return k }

func sameKey(a, b string) bool { return a == b }
