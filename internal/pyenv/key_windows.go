package pyenv

import "strings"

// Environment variable names are case-insensitive on Windows.
func normKey(k string) string { return strings.ToUpper(k) }

func sameKey(a, b string) bool { return strings.EqualFold(a, b) }
