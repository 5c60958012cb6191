package errors

import (
	"strings"
	"unicode"
)

const maxFamilyLength = 128

// ValidateFamily validates a font family name before it is used as a cache
// key or as a directory name in local storage.
//
// Rejected:
//   - empty or whitespace-only names
//   - names longer than 128 characters
//   - control characters and null bytes
//   - path separators and traversal sequences
//   - names without a letter or digit, which have no storage directory
func ValidateFamily(family string) error {
	if strings.TrimSpace(family) == "" {
		return New(ErrCodeInvalidFont, "font family cannot be empty")
	}

	if len(family) > maxFamilyLength {
		return New(ErrCodeInvalidFont, "font family too long (max %d characters)", maxFamilyLength)
	}

	for _, r := range family {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFont, "font family contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", ":"} {
		if strings.Contains(family, pattern) {
			return New(ErrCodeInvalidFont, "font family contains invalid characters: %q", pattern)
		}
	}

	if strings.IndexFunc(family, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) < 0 {
		return New(ErrCodeInvalidFont, "font family must contain a letter or digit")
	}

	return nil
}

// ValidateWeight checks a CSS numeric font weight. Zero means "default".
func ValidateWeight(weight int) error {
	if weight == 0 {
		return nil
	}
	if weight < 100 || weight > 900 || weight%100 != 0 {
		return New(ErrCodeInvalidFont, "font weight must be a multiple of 100 between 100 and 900, got %d", weight)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}

	return nil
}
