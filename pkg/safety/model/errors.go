package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrMalformedText is returned by analyzers for text that is not valid UTF-8.
var ErrMalformedText = errors.New("malformed text")

// CheckText returns ErrMalformedText when text cannot be analyzed.
func CheckText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: invalid UTF-8", ErrMalformedText)
	}
	return nil
}
