package scanner

import (
	"strings"

	"github.com/jaccomoc/jactl-sub011/lang/token"
)

// scanStringStart begins scanning a string literal at an opening quote
// character ('\'' or '"'). It detects the triple-quote multi-line variants
// and dispatches to scanStringBody, which produces either a single STRING
// token (no interpolation possible: single/triple-single) or begins an
// EXPR_STRING_START/MID/END sequence (double/triple-double, which support
// $ident and ${expr} interpolation per spec.md §4.1).
func (s *Scanner) scanStringStart(pos token.Pos, quote rune) token.Token {
	s.advance() // consume opening quote
	triple := false
	if s.cur == quote && s.Peek(0) == byte(quote) {
		s.advance()
		s.advance()
		triple = true
	}
	interpolates := quote == '"'
	return s.scanStringBody(pos, quote, triple, interpolates)
}

// scanStringBody scans literal text up to the closing quote (or, for
// interpolating strings, up to the closing quote or the next $ident/${).
// A pattern string (quote '/') never closes on an escaped delimiter: `\/`
// yields '/', and any other backslash passes through raw together with the
// character after it (so `\$` does not interpolate and regex escapes such
// as `\w` reach the regex engine unchanged).
func (s *Scanner) scanStringBody(pos token.Pos, quote rune, triple, interpolating bool) token.Token {
	var sb strings.Builder
	start := s.off

	finish := func() token.Token {
		raw := string(s.data[start:s.off])
		return token.Token{Kind: token.STRING, Lexeme: raw, Line: pos.Line, Col: pos.Col, Value: token.Value{Raw: raw, String: sb.String()}}
	}

	for {
		if s.cur == -1 {
			s.errorAt(pos, "string literal not terminated")
			return finish()
		}

		if s.cur == '\n' && !triple {
			s.errorAt(pos, "string literal not terminated")
			return finish()
		}

		if s.cur == quote {
			if triple {
				if s.Peek(0) == byte(quote) && s.Peek(1) == byte(quote) {
					s.advance()
					s.advance()
					s.advance()
					return finish()
				}
				sb.WriteRune(s.cur)
				s.advance()
				continue
			}
			s.advance()
			return finish()
		}

		if s.cur == '\\' && quote == '/' && s.Peek(0) != '/' {
			sb.WriteRune(s.cur) // pattern string: keep the escape for the regex engine
			s.advance()
			sb.WriteRune(s.cur)
			s.advance()
			continue
		}
		if s.cur == '\\' {
			s.escape(&sb)
			continue
		}

		if interpolating && s.cur == '$' && (isLetter(rune(s.Peek(0))) || s.Peek(0) == '{') {
			// begin an embedded expression: emit what we have as the start/mid
			// segment and push an interpolation frame so subsequent Scan calls
			// tokenize the embedded expression normally.
			raw := string(s.data[start:s.off])
			frame := interpFrame{quote: quote, triple: triple, pattern: false}
			s.interp = append(s.interp, frame)
			s.advance() // consume '$'
			if s.cur == '{' {
				s.advance() // consume '{', handled as the interpolation's own grouping
			} else {
				// bare $ident form: scan the identifier immediately and keep the
				// frame so the following Scan resumes the literal segment; no
				// nested expression tokens are produced beyond the one IDENT.
				s.interp[len(s.interp)-1].braceDepth = -1 // marker: bare ident form
			}
			return token.Token{Kind: token.EXPR_STRING_START, Lexeme: raw, Line: pos.Line, Col: pos.Col, Value: token.Value{Raw: raw, String: sb.String()}}
		}

		sb.WriteRune(s.cur)
		s.advance()
	}
}

// scanInterpSegment is called by Scan when the scanner is in the middle of
// an interpolated string, i.e. len(s.interp) > 0. It either returns the next
// token of the embedded expression (delegating to the ordinary scan paths)
// or, once the expression closes, resumes scanning the string's literal
// text and returns the next EXPR_STRING_MID/EXPR_STRING_END segment.
func (s *Scanner) scanInterpSegment() token.Token {
	top := &s.interp[len(s.interp)-1]

	if top.braceDepth == -1 {
		// bare $ident form: the identifier itself has not yet been scanned.
		if isLetter(s.cur) {
			pos := s.pos()
			lit := s.ident()
			top.braceDepth = -2 // marker: ident consumed, next call resumes literal text
			return token.Token{Kind: token.IDENT, Lexeme: lit, Line: pos.Line, Col: pos.Col}
		}
		// consumed already; fall through to resume literal scanning
		top.braceDepth = 0
		return s.resumeStringLiteral()
	}
	if top.braceDepth == -2 {
		top.braceDepth = 0
		return s.resumeStringLiteral()
	}

	// inside the embedded expression proper (after '${'): track nested
	// braces so the matching '}' is recognized even if the expression
	// contains a map literal or a block.
	if s.cur == '}' && top.braceDepth == 0 {
		s.advance()
		return s.resumeStringLiteral()
	}

	switch {
	case s.cur == '{':
		top.braceDepth++
	case s.cur == '}':
		top.braceDepth--
	}
	// delegate to the normal scanner for everything else inside the
	// expression; temporarily pop the interp stack so Scan doesn't recurse.
	saved := s.interp
	s.interp = s.interp[:len(s.interp)-1]
	t := s.Scan()
	s.interp = saved
	return t
}

func (s *Scanner) resumeStringLiteral() token.Token {
	top := s.interp[len(s.interp)-1]
	s.interp = s.interp[:len(s.interp)-1]
	pos := s.pos()

	var sb strings.Builder
	start := s.off
	for {
		if s.cur == -1 {
			s.errorAt(pos, "string literal not terminated")
			raw := string(s.data[start:s.off])
			return token.Token{Kind: token.EXPR_STRING_END, Lexeme: raw, Line: pos.Line, Col: pos.Col, Value: token.Value{Raw: raw, String: sb.String()}}
		}
		if s.cur == '\n' && !top.triple {
			s.errorAt(pos, "string literal not terminated")
			raw := string(s.data[start:s.off])
			return token.Token{Kind: token.EXPR_STRING_END, Lexeme: raw, Line: pos.Line, Col: pos.Col, Value: token.Value{Raw: raw, String: sb.String()}}
		}
		if s.cur == top.quote {
			if top.triple {
				if s.Peek(0) == byte(top.quote) && s.Peek(1) == byte(top.quote) {
					s.advance()
					s.advance()
					s.advance()
					raw := string(s.data[start:s.off])
					return token.Token{Kind: token.EXPR_STRING_END, Lexeme: raw, Line: pos.Line, Col: pos.Col, Value: token.Value{Raw: raw, String: sb.String()}}
				}
				sb.WriteRune(s.cur)
				s.advance()
				continue
			}
			s.advance()
			raw := string(s.data[start:s.off])
			return token.Token{Kind: token.EXPR_STRING_END, Lexeme: raw, Line: pos.Line, Col: pos.Col, Value: token.Value{Raw: raw, String: sb.String()}}
		}
		if s.cur == '\\' && top.quote == '/' && s.Peek(0) != '/' {
			sb.WriteRune(s.cur)
			s.advance()
			sb.WriteRune(s.cur)
			s.advance()
			continue
		}
		if s.cur == '\\' {
			s.escape(&sb)
			continue
		}
		if s.cur == '$' && (isLetter(rune(s.Peek(0))) || s.Peek(0) == '{') {
			raw := string(s.data[start:s.off])
			frame := interpFrame{quote: top.quote, triple: top.triple}
			s.advance()
			if s.cur == '{' {
				s.advance()
			} else {
				frame.braceDepth = -1
			}
			s.interp = append(s.interp, frame)
			return token.Token{Kind: token.EXPR_STRING_MID, Lexeme: raw, Line: pos.Line, Col: pos.Col, Value: token.Value{Raw: raw, String: sb.String()}}
		}
		sb.WriteRune(s.cur)
		s.advance()
	}
}

// escape decodes a single backslash escape sequence into sb. Supported
// escapes: \n \t \r \\ \' \" \$ \/ and the literal quote/delimiter character.
func (s *Scanner) escape(sb *strings.Builder) {
	pos := s.pos()
	s.advance() // consume backslash
	switch s.cur {
	case 'n':
		sb.WriteByte('\n')
		s.advance()
	case 't':
		sb.WriteByte('\t')
		s.advance()
	case 'r':
		sb.WriteByte('\r')
		s.advance()
	case '\\', '\'', '"', '$', '/':
		sb.WriteRune(s.cur)
		s.advance()
	case -1:
		s.errorAt(pos, "string literal not terminated")
	default:
		s.errorfAt(pos, "invalid escape sequence \\%c", s.cur)
		sb.WriteRune(s.cur)
		s.advance()
	}
}
