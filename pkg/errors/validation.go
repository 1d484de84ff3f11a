package errors

import (
	"unicode"
)

// maxNameLength bounds identifiers accepted from design descriptions.
const maxNameLength = 4096

// ValidateName checks that an identifier read from a design description can
// be stored in a design database. kind names the entity ("net", "cell", ...)
// for the error message.
//
// Names may contain any printable characters, including brackets, dots and
// backslashes, because synthesized netlists routinely use them. Rejected are:
//   - Empty names
//   - Control characters (including NUL and newlines)
//   - Names longer than 4096 bytes
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "%s name too long (max %d bytes)", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "%s name %q contains control characters", kind, name)
		}
	}

	return nil
}
