// Package dotenv inspects and updates the project's .env credential file.
package dotenv

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/subosito/gotenv"
)

const (
	TokenKey         = "HUGGINGFACE_TOKEN"
	PlaceholderToken = "your_huggingface_token_here"
)

// TokenStatus describes what the .env file holds for TokenKey
type TokenStatus int

const (
	StatusMissing TokenStatus = iota
	StatusPlaceholder
	StatusPresent
)

func (s TokenStatus) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusPlaceholder:
		return "placeholder"
	default:
		return "missing"
	}
}

// Read parses path. A missing file yields an empty set.
func Read(path string) (gotenv.Env, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return gotenv.Env{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	env, err := gotenv.StrictParse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return env, nil
}

// CheckToken reports whether path carries a usable Hugging Face token.
// The value itself is never validated.
func CheckToken(path string) (TokenStatus, error) {
	env, err := Read(path)
	if err != nil {
		return StatusMissing, err
	}

	v := strings.TrimSpace(env[TokenKey])
	switch {
	case v == "":
		return StatusMissing, nil
	case v == PlaceholderToken:
		return StatusPlaceholder, nil
	default:
		return StatusPresent, nil
	}
}

// WriteToken stores token under TokenKey in path, keeping every other line.
// When path does not exist it is seeded from examplePath if that exists.
func WriteToken(path, examplePath, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if strings.ContainsAny(token, "\r\n") {
		return errors.New("token must be a single line")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && examplePath != "" {
		data, err = os.ReadFile(examplePath)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read env file: %w", err)
	}

	lines := splitLines(string(data))
	entry := TokenKey + "=" + token
	replaced := false
	for i, line := range lines {
		if isKeyLine(line, TokenKey) {
			lines[i] = entry
			replaced = true
		}
	}
	if !replaced {
		lines = append(lines, entry)
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	return nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// isKeyLine matches "KEY=..." and "export KEY=..." assignments
func isKeyLine(line, key string) bool {
	l := strings.TrimSpace(line)
	l = strings.TrimPrefix(l, "export ")
	name, _, ok := strings.Cut(l, "=")
	return ok && strings.TrimSpace(name) == key
}
