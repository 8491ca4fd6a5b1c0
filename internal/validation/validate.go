package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
)

// MaxKeyLength is the longest object key, in bytes, accepted by S3 and MinIO.
const MaxKeyLength = 1024

// ValidateObjectKey validates that an object key is acceptable to S3-compatible
// stores. Violations wrap ErrInvalidKey.
//
// Keys with a leading "/" or a drive prefix such as "c:/" or "c:\\" are
// valid S3 and MinIO names but are rejected here as local policy. Keys are
// usually derived from client file names, and such a prefix means an absolute
// local path leaked into the object name.
func ValidateObjectKey(key string) error {
	if key == "" {
		return invalidKey(key, "object key cannot be empty")
	}

	if len(key) > MaxKeyLength {
		return invalidKey(key, fmt.Sprintf("object key cannot exceed %d bytes", MaxKeyLength))
	}

	if !utf8.ValidString(key) {
		return invalidKey(key, "object key must be valid UTF-8")
	}

	// Check for path traversal attempts
	if hasPathTraversal(key) {
		return invalidKey(key, "object key cannot contain path traversal sequences")
	}

	if hasControlCharacters(key) {
		return invalidKey(key, "object key cannot contain control characters")
	}

	return nil
}

func invalidKey(key, message string) error {
	return mperrors.NewError("validateObjectKey", mperrors.ErrInvalidKey).
		WithKey(key).
		WithMessage(message)
}

// hasPathTraversal checks for path traversal attempts in object keys
func hasPathTraversal(key string) bool {
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return true
		}
	}

	cleaned := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(cleaned, "../") || strings.HasPrefix(key, "/") {
		return true
	}

	// Windows-style absolute paths
	if len(key) >= 3 && key[1] == ':' && (key[2] == '\\' || key[2] == '/') {
		return true
	}

	return false
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
