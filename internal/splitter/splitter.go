// Package splitter implements the value splitter: it turns
// the raw right-hand side text of an assignment into a Value of pieces,
// honoring quotes, escape sequences, and the embedded-expression marker.
package splitter

import (
	"strings"

	"github.com/inipp/inipp/internal/markers"
	"github.com/inipp/inipp/internal/value"
)

const solidPrefix = "data:image/png;base64,"

// InlineParam is a "k=v" sub-pair found in a value whose key begins with
// '@' (consider_inline_params mode), e.g. the "k=v" in "@MIXIN=Name, k=v".
type InlineParam struct {
	Key   string
	Value string
}

type quoteState byte

const (
	noQuote     quoteState = 0
	doubleQuote quoteState = '"'
	singleQuote quoteState = '\''
)

// Split splits raw into a Value, honoring quotes/escapes/expression markers.
// considerInlineParams enables "k=v" sub-pair extraction for keys beginning
// with '@'; any such sub-pairs are returned separately and excluded from the
// Value's pieces.
func Split(raw string, considerInlineParams bool) (value.Value, []InlineParam) {
	trimmedWhole := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmedWhole, solidPrefix) {
		return value.Single(trimmedWhole), nil
	}

	var pieces []string
	var inline []InlineParam

	for _, rawPiece := range splitTopLevel(raw) {
		trimmed := strings.TrimSpace(rawPiece)

		if considerInlineParams {
			if k, v, ok := tryInlineParam(trimmed); ok {
				inline = append(inline, InlineParam{Key: k, Value: v})
				continue
			}
		}

		if body, trailing, ok := parseDollarQuote(trimmed); ok && strings.TrimSpace(trailing) == "" {
			pieces = append(pieces, markers.WrapCalculate(resolveExprBody(body)))
			continue
		}

		pieces = append(pieces, resolvePiece(trimmed))
	}

	return value.New(pieces...), inline
}

// splitTopLevel splits raw into top-level comma-separated substrings,
// leaving quotes and escape backslashes untouched for per-piece resolution.
// Quote tracking follows the same canOpenQuote heuristic as the tokenizer.
func splitTopLevel(raw string) []string {
	var out []string
	var cur strings.Builder
	quote := noQuote
	n := len(raw)

	for i := 0; i < n; {
		c := raw[i]
		if quote == noQuote {
			switch {
			case c == ',':
				out = append(out, cur.String())
				cur.Reset()
				i++
				continue
			case (c == '"' || c == '\'') && canOpenQuote(cur.String()):
				quote = quoteState(c)
				cur.WriteByte(c)
				i++
				continue
			case c == '\\' && i+1 < n && (raw[i+1] == ',' || raw[i+1] == '"'):
				cur.WriteByte(c)
				cur.WriteByte(raw[i+1])
				i += 2
				continue
			default:
				cur.WriteByte(c)
				i++
				continue
			}
		}

		if quote == doubleQuote {
			if c == '\\' && i+1 < n {
				cur.WriteByte(c)
				cur.WriteByte(raw[i+1])
				i += 2
				continue
			}
			if c == '"' {
				quote = noQuote
			}
			cur.WriteByte(c)
			i++
			continue
		}

		// singleQuote
		if c == '\'' {
			quote = noQuote
		}
		cur.WriteByte(c)
		i++
	}
	out = append(out, cur.String())
	return out
}

// canOpenQuote mirrors the tokenizer's heuristic: a quote opens only when
// the text accumulated so far in the current piece is empty or ends in a
// comma or '$'.
func canOpenQuote(soFar string) bool {
	trimmed := strings.TrimRight(soFar, " \t")
	if trimmed == "" {
		return true
	}
	last := trimmed[len(trimmed)-1]
	return last == ',' || last == '$'
}

// parseDollarQuote recognizes the "$"<body>"<trailing>" shape used to
// detect an embedded-expression piece. ok is false if s does not begin
// with `$"` or the quote is never closed.
func parseDollarQuote(s string) (body, trailing string, ok bool) {
	if len(s) < 2 || s[0] != '$' || s[1] != '"' {
		return "", "", false
	}
	var b strings.Builder
	i := 2
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		if s[i] == '"' {
			return b.String(), s[i+1:], true
		}
		b.WriteByte(s[i])
		i++
	}
	return "", "", false
}

// resolveExprBody returns the expression source unchanged: parseDollarQuote
// has already undone the \" and \\ escapes, and the bridge must see the
// original arithmetic/string source.
func resolveExprBody(body string) string {
	return body
}

// resolvePiece resolves a single, already-isolated piece: quote handling,
// escape sequences, and the single-quote bare-'$' marker.
func resolvePiece(s string) string {
	var out strings.Builder
	quote := noQuote
	n := len(s)

	for i := 0; i < n; {
		c := s[i]
		if quote == noQuote {
			switch {
			case (c == '"' || c == '\'') && canOpenQuote(out.String()):
				quote = quoteState(c)
				i++
				continue
			case c == '\\' && i+1 < n && (s[i+1] == ',' || s[i+1] == '"'):
				out.WriteByte(s[i+1])
				i += 2
				continue
			default:
				out.WriteByte(c)
				i++
				continue
			}
		}

		if quote == doubleQuote {
			if c == '\\' && i+1 < n {
				out.WriteByte(resolveDoubleQuoteEscape(s[i+1]))
				i += 2
				continue
			}
			if c == '"' {
				quote = noQuote
				i++
				continue
			}
			out.WriteByte(c)
			i++
			continue
		}

		// singleQuote: literal content except a bare '$'.
		if c == '$' {
			out.WriteString(markers.DollarLiteral)
			i++
			continue
		}
		if c == '\'' {
			quote = noQuote
			i++
			continue
		}
		out.WriteByte(c)
		i++
	}
	return strings.TrimSpace(out.String())
}

// resolveDoubleQuoteEscape maps a double-quote escape's second character to
// its resolved byte. Unknown escapes pass the character through literally.
func resolveDoubleQuoteEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case '"':
		return '"'
	case '\\':
		return '\\'
	default:
		return c
	}
}

// tryInlineParam recognizes a "k=v" sub-pair: a leading Go-style identifier
// followed by '=' and the remaining text as the value.
func tryInlineParam(s string) (key, val string, ok bool) {
	eq := strings.IndexByte(s, '=')
	if eq <= 0 {
		return "", "", false
	}
	k := strings.TrimSpace(s[:eq])
	if !isIdent(k) {
		return "", "", false
	}
	return k, strings.TrimSpace(s[eq+1:]), true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
