// Package validation checks user-supplied names, paths and commands before
// they reach the filesystem or a child process.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

var dangerousChars = []string{";", "&", "|", "$", "`", "<", ">", "\"", "'", "\\"}

// ValidateName validates a project or element name such as "my-bot" or
// "users/auth".
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}

	for _, char := range dangerousChars {
		if strings.Contains(name, char) {
			return fmt.Errorf("name %q contains dangerous character: %s", name, char)
		}
	}
	if strings.ContainsFunc(name, isControl) {
		return fmt.Errorf("name %q contains a control character", name)
	}

	return ValidateRelativePath(name)
}

// ValidateRelativePath rejects absolute paths and paths escaping their base
// directory.
func ValidateRelativePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	slashed := filepath.ToSlash(path)
	if filepath.IsAbs(path) || strings.HasPrefix(slashed, "/") {
		return fmt.Errorf("absolute path not allowed: %s", path)
	}

	clean := filepath.ToSlash(filepath.Clean(path))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path traversal detected: %s", path)
	}

	return nil
}

// ValidateCommand validates that the base name of command, without a
// Windows .cmd or .exe suffix, is in allowedCommands.
func ValidateCommand(command string, allowedCommands map[string]bool) error {
	if command == "" {
		return fmt.Errorf("command cannot be empty")
	}

	base := filepath.Base(command)
	base = strings.TrimSuffix(strings.TrimSuffix(base, ".cmd"), ".exe")

	if !allowedCommands[base] {
		return fmt.Errorf("command '%s' is not allowed", command)
	}

	if strings.ContainsAny(base, strings.Join(dangerousChars, "")) {
		return fmt.Errorf("invalid command '%s'", command)
	}

	return nil
}

// SanitizeInput removes control characters except common whitespace.
func SanitizeInput(input string) string {
	var sanitized strings.Builder
	for _, r := range input {
		if r == '\t' || r == '\n' || r == '\r' || !isControl(r) {
			sanitized.WriteRune(r)
		}
	}
	return sanitized.String()
}

func isControl(r rune) bool {
	return r < 32 || r == 127
}
