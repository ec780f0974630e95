package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateFilename validates an output filename (export target, render output base).
// It ensures the name is a plain basename that cannot escape the target directory.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators
//   - No "." or ".."
//   - Maximum length of 255 characters
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidPath, "filename too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "filename cannot be %q", name)
	}

	return nil
}

// draftIDRegex matches identifiers produced by the draft store (UUIDs) as well
// as short human-chosen names.
var draftIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateDraftID validates a draft identifier before it is used as a file
// name or storage key.
func ValidateDraftID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "draft id cannot be empty")
	}
	if !draftIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid draft id: %q", id)
	}
	return nil
}

// ValidatePath validates a user-supplied relative file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
