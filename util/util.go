package util

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// ErrWrap returns a function which yields the given value
// or falls back to def whenever the paired error is not nil
func ErrWrap[T any](def T) func(T, error) T {
	return func(value T, err error) T {
		if err != nil {
			return def
		}
		return value
	}
}

// ErrSuppress explicitly discards an error returned
// by a best-effort operation
func ErrSuppress(_ error) {}

// FileBaseStem returns the base name of path without its extension
func FileBaseStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HasExt reports whether path ends in the given extension,
// ignoring case; ext is expected without the leading dot
func HasExt(path, ext string) bool {
	return strings.HasSuffix(strings.ToLower(path), "."+strings.ToLower(ext))
}

// Alphanumeric reduces s to ASCII letters, digits and whitespace,
// case-folded, so that two filenames differing only in punctuation
// or casing compare equal
func Alphanumeric(s string) string {
	return cases.Fold().String(nonAlphanumeric.ReplaceAllString(s, ""))
}
