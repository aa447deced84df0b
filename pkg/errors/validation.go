package errors

import (
	"strings"
	"unicode"
)

// ReservedPrefix marks registry names owned by the codec itself (builtins
// such as "_Map"). User registrations may not use it.
const ReservedPrefix = "_"

// maxNameLength bounds registry names and snapshot IDs.
const maxNameLength = 256

// ValidateName validates a symbolic registry name.
//
// The rules are:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//   - No reserved prefix unless reserved is true
func ValidateName(name string, reserved bool) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name %q contains control characters", name)
		}
	}

	if !reserved && strings.HasPrefix(name, ReservedPrefix) {
		return New(ErrCodeInvalidName, "name %q cannot start with %q", name, ReservedPrefix)
	}

	return nil
}

// ValidateSnapshotID validates a snapshot identifier for safety.
// IDs end up in store keys and URL paths, so they are restricted to
// characters that cannot be used for path traversal or key injection.
func ValidateSnapshotID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "snapshot id cannot be empty")
	}

	if len(id) > maxNameLength {
		return New(ErrCodeInvalidInput, "snapshot id too long (max %d characters)", maxNameLength)
	}

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return New(ErrCodeInvalidInput, "snapshot id %q contains invalid character %q", id, r)
		}
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "snapshot id cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
