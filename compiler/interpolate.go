package compiler

import (
	"strconv"
	"strings"
)

// Segment is one span of a tokenized text run: either a literal slice of the
// input or a brace-delimited interpolation holding the raw expression text.
// Segments are contiguous and non-overlapping; their spans cover the input.
type Segment struct {
	Start int // byte offset of the segment in the input
	End   int // byte offset one past the segment
	Expr  bool
	Value string // literal text, or the raw expression between the braces
}

// Tokenize splits text into literal and interpolation segments. A '{' at
// brace depth zero opens an interpolation; the interpolation closes when the
// depth returns to zero. Braces inside single/double/backtick strings and
// inside line or block comments do not affect the depth, so object literals,
// nested calls, and comments containing braces are captured whole.
//
// In attribute mode, '{{' and '}}' at depth zero are escapes for literal
// braces. In text mode there is no escape; '{{' is an interpolation opener
// followed by another opener.
//
// An interpolation left unterminated at end of input is emitted as a single
// interpolation segment spanning to the end of the string rather than an
// error, so partial input still tokenizes.
func Tokenize(text string, attributeMode bool) []Segment {
	var segs []Segment
	var lit strings.Builder
	litStart := 0

	flush := func(end int) {
		if lit.Len() > 0 {
			segs = append(segs, Segment{Start: litStart, End: end, Value: lit.String()})
			lit.Reset()
		}
	}
	writeLit := func(i int, c byte) {
		if lit.Len() == 0 {
			litStart = i
		}
		lit.WriteByte(c)
	}

	i := 0
	for i < len(text) {
		c := text[i]
		if attributeMode && i+1 < len(text) {
			if c == '{' && text[i+1] == '{' {
				writeLit(i, '{')
				i += 2
				continue
			}
			if c == '}' && text[i+1] == '}' {
				writeLit(i, '}')
				i += 2
				continue
			}
		}
		if c == '{' {
			flush(i)
			end, ok := scanInterpolation(text, i+1)
			if ok {
				segs = append(segs, Segment{Start: i, End: end + 1, Expr: true, Value: text[i+1 : end]})
				i = end + 1
			} else {
				segs = append(segs, Segment{Start: i, End: len(text), Expr: true, Value: text[i+1:]})
				i = len(text)
			}
			continue
		}
		writeLit(i, c)
		i++
	}
	flush(len(text))
	return segs
}

// scanInterpolation scans text from just past an opening brace and returns
// the index of the matching closing brace. Quotes, backslash escapes, and
// line/block comments are skipped without affecting the brace depth. The
// second result is false when the input ends before the depth returns to
// zero.
func scanInterpolation(text string, start int) (int, bool) {
	depth := 1
	var quote byte
	inLine, inBlock := false, false

	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case inLine:
			if c == '\n' {
				inLine = false
			}
		case inBlock:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				inBlock = false
				i++
			}
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		default:
			switch c {
			case '\'', '"', '`':
				quote = c
			case '/':
				if i+1 < len(text) {
					switch text[i+1] {
					case '/':
						inLine = true
						i++
					case '*':
						inBlock = true
						i++
					}
				}
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	}
	return len(text), false
}

// HasInterpolation reports whether text contains at least one interpolation
// segment under the given mode.
func HasInterpolation(text string, attributeMode bool) bool {
	for _, s := range Tokenize(text, attributeMode) {
		if s.Expr {
			return true
		}
	}
	return false
}

// CompileFromSegments renders a tokenized run as the source expression the
// generated render function evaluates it with: literal segments become quoted
// string literals, interpolation segments become substitution calls wrapping
// the raw expression text unchanged. Every escaping decision for literal text
// lives here; the code generator and editor tooling share this routine so
// they agree on expression boundaries.
func CompileFromSegments(segments []Segment) string {
	if len(segments) == 0 {
		return `""`
	}
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Expr {
			parts = append(parts, "rc.Str(rc.Eval("+strconv.Quote(s.Value)+"))")
		} else {
			parts = append(parts, strconv.Quote(s.Value))
		}
	}
	return strings.Join(parts, " + ")
}
