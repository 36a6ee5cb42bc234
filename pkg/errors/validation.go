package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a local record file or directory path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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
	return nil
}

// collectionNameRegex matches MongoDB collection names we accept.
var collectionNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidateCollectionName validates a MongoDB collection name.
// Names starting with "system." are reserved by the server.
func ValidateCollectionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "collection name cannot be empty")
	}
	if len(name) > 120 {
		return New(ErrCodeInvalidConfig, "collection name too long (max 120 characters)")
	}
	if strings.HasPrefix(name, "system.") {
		return New(ErrCodeInvalidConfig, "collection name %q is reserved", name)
	}
	if !collectionNameRegex.MatchString(name) {
		return New(ErrCodeInvalidConfig, "invalid collection name: %q", name)
	}
	return nil
}

// nodeRefRegex matches node references accepted by the HTTP API:
// identity tokens, preorder cell indices and the literal "root".
var nodeRefRegex = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// ValidateNodeRef validates a node reference taken from a URL.
func ValidateNodeRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidInput, "node reference cannot be empty")
	}
	if !nodeRefRegex.MatchString(ref) {
		return New(ErrCodeInvalidInput, "invalid node reference: %q", ref)
	}
	return nil
}
