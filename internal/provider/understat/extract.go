package understat

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// ErrVarNotFound reports that a script contained no recognizable assignment
// to the requested variable. This is a normal outcome (page layout changed,
// or the variable is genuinely absent), distinct from a malformed payload.
var ErrVarNotFound = errors.New("understat: variable not found in script")

// ExtractVar recovers the JSON value assigned to a JavaScript variable
// inside inline script text.
//
// Understat pages assign their payloads as
//
//	var playersData = JSON.parse('\x5B\x7B...');
//
// where the string literal was produced by a server-side escaping pass.
// The escaped string is decoded and parsed as JSON. If the JSON.parse form
// is absent, a bare array literal assignment (var name = [...];) is tried
// instead. Matching is non-greedy so adjacent var statements on the same
// page never bleed into each other.
func ExtractVar(script, name string) (interface{}, error) {
	quoted := regexp.QuoteMeta(name)

	parseForm := regexp.MustCompile(`var\s+` + quoted + `\s*=\s*JSON\.parse\('([^']*)'\)`)
	if m := parseForm.FindStringSubmatch(script); m != nil {
		decoded := decodeJSEscapes(m[1])
		var v interface{}
		if err := json.Unmarshal([]byte(decoded), &v); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", name, err)
		}
		return v, nil
	}

	arrayForm := regexp.MustCompile(`(?s)var\s+` + quoted + `\s*=\s*(\[.*?\]);`)
	if m := arrayForm.FindStringSubmatch(script); m != nil {
		var v interface{}
		if err := json.Unmarshal([]byte(m[1]), &v); err != nil {
			return nil, fmt.Errorf("parse %s array literal: %w", name, err)
		}
		return v, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrVarNotFound, name)
}

// decodeJSEscapes expands the backslash escapes found inside a single-quoted
// JavaScript string literal. \xHH emits the raw byte (Understat escapes
// UTF-8 byte-wise, so the output becomes valid UTF-8 again), \uHHHH emits
// the rune, and the usual single-character escapes map to themselves.
// Unrecognized escapes are kept verbatim so JSON-significant characters
// survive untouched.
func decodeJSEscapes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch s[i] {
		case 'x':
			if i+2 < len(s) {
				if b, ok := hexByte(s[i+1], s[i+2]); ok {
					out = append(out, b)
					i += 2
					continue
				}
			}
			out = append(out, '\\', 'x')
		case 'u':
			if i+4 < len(s) {
				if hi, ok1 := hexByte(s[i+1], s[i+2]); ok1 {
					if lo, ok2 := hexByte(s[i+3], s[i+4]); ok2 {
						r := rune(hi)<<8 | rune(lo)
						var buf [utf8.UTFMax]byte
						n := utf8.EncodeRune(buf[:], r)
						out = append(out, buf[:n]...)
						i += 4
						continue
					}
				}
			}
			out = append(out, '\\', 'u')
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'v':
			out = append(out, '\v')
		case '0':
			out = append(out, 0)
		case '\\', '\'', '"', '/':
			out = append(out, s[i])
		default:
			out = append(out, '\\', s[i])
		}
	}
	return string(out)
}

func hexByte(a, b byte) (byte, bool) {
	hi, ok1 := hexNibble(a)
	lo, ok2 := hexNibble(b)
	if !ok1 || !ok2 {
		return 0, false
	}
	return hi<<4 | lo, true
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
