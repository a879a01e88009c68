package normalizer

import (
	"errors"
	"html"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var errBadEscape = errors.New("malformed escape sequence")

// DecodeText decodes \uXXXX, \UXXXXXXXX and \xXX escapes as well as HTML
// character references. A malformed escape leaves the escape pass undone and
// the original text is used instead.
func DecodeText(s string) string {
	out := s
	if strings.Contains(s, `\u`) || strings.Contains(s, `\U`) || strings.Contains(s, `\x`) {
		if decoded, err := unescape(s); err == nil {
			out = decoded
		}
	}
	if strings.Contains(out, "&") {
		out = html.UnescapeString(out)
	}
	return out
}

func unescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}

		var width int
		switch s[i+1] {
		case 'u':
			width = 4
		case 'U':
			width = 8
		case 'x':
			width = 2
		default:
			b.WriteByte(s[i])
			i++
			continue
		}

		r, err := hexRune(s, i+2, width)
		if err != nil {
			return "", err
		}
		i += 2 + width

		if utf16.IsSurrogate(r) {
			if i+6 > len(s) || s[i] != '\\' || s[i+1] != 'u' {
				return "", errBadEscape
			}
			low, err := hexRune(s, i+2, 4)
			if err != nil {
				return "", err
			}
			r = utf16.DecodeRune(r, low)
			if r == utf8.RuneError {
				return "", errBadEscape
			}
			i += 6
		}

		if !utf8.ValidRune(r) {
			return "", errBadEscape
		}
		b.WriteRune(r)
	}

	return b.String(), nil
}

func hexRune(s string, start, width int) (rune, error) {
	if start+width > len(s) {
		return 0, errBadEscape
	}
	v, err := strconv.ParseUint(s[start:start+width], 16, 32)
	if err != nil {
		return 0, errBadEscape
	}
	return rune(v), nil
}
