package pyenv

import (
	"os"
	"sort"
	"strings"
)

const (
	VirtualEnvVar   = "VIRTUAL_ENV"
	PythonPathVar   = "PYTHONPATH"
	WhisperCacheVar = "WHISPER_CACHE_DIR"
	HFHomeVar       = "HF_HOME"
)

// Environment is the interpreter and variable overlay child processes run with.
// Values are immutable; every modifier returns a copy.
type Environment struct {
	Python     string
	VirtualEnv string

	set     map[string]string
	prepend map[string]string
	unset   map[string]bool
}

// Ambient binds commands to an interpreter found on PATH
func Ambient(python string) Environment {
	return Environment{Python: python}
}

// Activated binds commands to the virtual environment described by l,
// the same way the activate script does.
func Activated(l Layout) Environment {
	return Environment{Python: l.Python, VirtualEnv: l.Root}.
		Set(VirtualEnvVar, l.Root).
		Prepend("PATH", l.BinDir).
		Unset("PYTHONHOME")
}

func (e Environment) clone() Environment {
	c := e
	c.set = copyMap(e.set)
	c.prepend = copyMap(e.prepend)
	c.unset = make(map[string]bool, len(e.unset))
	for k, v := range e.unset {
		c.unset[k] = v
	}
	return c
}

// Set overrides key
func (e Environment) Set(key, value string) Environment {
	c := e.clone()
	c.set[key] = value
	delete(c.prepend, key)
	delete(c.unset, key)
	return c
}

// Prepend puts entry in front of the list variable key
func (e Environment) Prepend(key, entry string) Environment {
	c := e.clone()
	if prev, ok := c.prepend[key]; ok {
		entry = entry + string(os.PathListSeparator) + prev
	}
	c.prepend[key] = entry
	delete(c.set, key)
	delete(c.unset, key)
	return c
}

// Unset removes key from the child environment
func (e Environment) Unset(key string) Environment {
	c := e.clone()
	delete(c.set, key)
	delete(c.prepend, key)
	c.unset[key] = true
	return c
}

// Get resolves key against base the way Environ would
func (e Environment) Get(base []string, key string) (string, bool) {
	for _, kv := range e.Environ(base) {
		k, v, _ := strings.Cut(kv, "=")
		if sameKey(k, key) {
			return v, true
		}
	}
	return "", false
}

// Environ applies the overlay to base (typically os.Environ())
func (e Environment) Environ(base []string) []string {
	out := make([]string, 0, len(base)+len(e.set)+len(e.prepend))
	seen := make(map[string]bool)

	for _, kv := range base {
		k, v, _ := strings.Cut(kv, "=")
		switch {
		case e.lookupUnset(k):
			continue
		case e.lookupSet(k) != nil:
			out = append(out, k+"="+*e.lookupSet(k))
		case e.lookupPrepend(k) != nil:
			joined := *e.lookupPrepend(k)
			if v != "" {
				joined += string(os.PathListSeparator) + v
			}
			out = append(out, k+"="+joined)
		default:
			out = append(out, kv)
		}
		seen[normKey(k)] = true
	}

	for _, k := range sortedKeys(e.set) {
		if !seen[normKey(k)] {
			out = append(out, k+"="+e.set[k])
		}
	}
	for _, k := range sortedKeys(e.prepend) {
		if !seen[normKey(k)] {
			out = append(out, k+"="+e.prepend[k])
		}
	}

	return out
}

// Exports lists the variables the overlay sets, resolved against base, as KEY=value in key order
func (e Environment) Exports(base []string) []string {
	keys := append(sortedKeys(e.set), sortedKeys(e.prepend)...)
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := e.Get(base, k); ok {
			out = append(out, k+"="+v)
		}
	}
	return out
}

func (e Environment) lookupSet(k string) *string {
	for key, v := range e.set {
		if sameKey(key, k) {
			return &v
		}
	}
	return nil
}

func (e Environment) lookupPrepend(k string) *string {
	for key, v := range e.prepend {
		if sameKey(key, k) {
			return &v
		}
	}
	return nil
}

func (e Environment) lookupUnset(k string) bool {
	for key := range e.unset {
		if sameKey(key, k) {
			return true
		}
	}
	return false
}

func copyMap(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
