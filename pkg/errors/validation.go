package errors

import (
	"strings"
	"unicode"
)

// ValidatePackageName validates a rock name before it is joined into a
// server path. Rock names become file names on the server, so anything
// that could escape the repository root is rejected:
//   - No empty names
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateVersion validates a version string taken from user input
// (for example the part after "@" in "name@version").
func ValidateVersion(v string) error {
	if v == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}
	if len(v) > 128 {
		return New(ErrCodeInvalidVersion, "version too long (max 128 characters)")
	}
	if strings.ContainsAny(v, "/\\ \t\n\x00") || strings.Contains(v, "..") {
		return New(ErrCodeInvalidVersion, "version contains invalid characters: %q", v)
	}
	return nil
}

// ValidateURL validates a server root URL.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "server URL cannot be empty (use --server or ROCKS_SERVER)")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "server URL must use http or https scheme")
	}

	return nil
}
