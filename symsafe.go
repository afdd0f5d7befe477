package magwi

import (
	"encoding/base32"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Origin tokens embed a source path inside linker symbol names, so the path is
// carried as unpadded base32, free of the delimiter, dots and separators by
// construction.
var symSafe = base32.StdEncoding.WithPadding(base32.NoPadding)

var (
	// ErrInvalidBase32 occurs when an origin token is not valid unpadded base32.
	ErrInvalidBase32 = errors.New("invalid base32")
	// ErrInvalidUTF8 occurs when a decoded origin token is not a valid UTF-8 path.
	ErrInvalidUTF8 = errors.New("invalid utf-8")
)

// EncodePath converts a source path into a symbol-safe origin token.
func EncodePath(path string) string {
	return symSafe.EncodeToString([]byte(path))
}

// DecodePath reverses EncodePath.
func DecodePath(token string) (string, error) {
	b, err := symSafe.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidBase32, token)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUTF8, token)
	}
	return string(b), nil
}
