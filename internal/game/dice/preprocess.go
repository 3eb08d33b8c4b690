package dice

import (
	"strconv"
	"strings"
)

// Preprocess rewrites expr so that every dice operator has an explicit
// count and face count.
//
//   - "d%" becomes "d100".
//   - A d with no digit before it (start of input, an operator, or any other
//     non-digit) gets an implicit count of 1.
//   - A d with no digit or "(" after it gets defaultFaces.
//
// Whitespace is skipped when looking for neighbours and otherwise preserved.
// Malformed input is passed through for Evaluate to reject.
//
// Precondition: defaultFaces >= 1.
// Postcondition: Preprocess(Preprocess(s, n), n) == Preprocess(s, n).
func Preprocess(expr string, defaultFaces int) string {
	if defaultFaces < 1 {
		panic("dice: Preprocess called with defaultFaces < 1")
	}
	src := strings.ReplaceAll(expr, "d%", "d100")
	faces := strconv.Itoa(defaultFaces)

	var out strings.Builder
	out.Grow(len(src) + 8)
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != 'd' {
			out.WriteByte(c)
			continue
		}
		// The left neighbour is read from the output so an earlier rewrite
		// (e.g. the faces inserted after a preceding d) counts as a digit.
		if !isDigit(lastNonSpace(out.String())) {
			out.WriteByte('1')
		}
		out.WriteByte('d')
		if next := nextNonSpace(src, i+1); !isDigit(next) && next != '(' {
			out.WriteString(faces)
		}
	}
	return out.String()
}

func lastNonSpace(s string) byte {
	for i := len(s) - 1; i >= 0; i-- {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func nextNonSpace(s string, from int) byte {
	for i := from; i < len(s); i++ {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
