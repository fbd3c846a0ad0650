package imagelink

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// unreserved are the bytes left as-is by EncodeComponent. The set is the one
// of ECMAScript's encodeURIComponent, which is narrower than what net/url
// leaves alone in a path and wider than url.QueryEscape.
func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// EncodeComponent percent-encodes every byte of s outside the unreserved set.
func EncodeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

// DecodeComponent reverses EncodeComponent. Malformed escapes and escapes
// which decode to invalid UTF-8 wrap ErrDecodeFailure.
func DecodeComponent(s string) (string, error) {
	ret, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrDecodeFailure, s, err)
	}
	if !utf8.ValidString(ret) {
		return "", fmt.Errorf("%w: %q: invalid utf-8", ErrDecodeFailure, s)
	}
	return ret, nil
}
