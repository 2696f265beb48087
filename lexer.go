package scval

// Lexer tokenizes Scval schema source one token at a time. It keeps
// just enough state to slice tokens out of the original buffer
// without copying: the read cursor and the cursor where the token
// currently being recognized started.
//
// Grounded on scvalc.cpp's ScvalLexer and, for field naming, the
// teacher's BaseParser cursor bookkeeping (base_parser.go).
type Lexer struct {
	src    []byte
	cursor int
	start  int
}

// NewLexer creates a Lexer over src. src is not copied or mutated.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src}
}

func (l *Lexer) peek() byte {
	if l.cursor >= len(l.src) {
		return 0
	}
	return l.src[l.cursor]
}

func (l *Lexer) isEOF() bool {
	return l.cursor >= len(l.src)
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9')
}

func isIdChar(c byte) bool {
	return isAlnum(c) || c == '_'
}

func (l *Lexer) skipBlanks() {
	for !l.isEOF() && isBlank(l.peek()) {
		l.cursor++
	}
}

func (l *Lexer) save(kind TokenKind) Token {
	return Token{Kind: kind, Start: l.start, Length: l.cursor - l.start}
}

// Next scans and returns the next token in the stream. Once EOF has
// been reached, every subsequent call returns an EOF token.
func (l *Lexer) Next() Token {
	l.skipBlanks()
	if l.isEOF() {
		l.start = l.cursor
		return l.save(EOF)
	}
	l.start = l.cursor
	c := l.peek()

	switch c {
	case '@':
		l.cursor++
		return l.save(TYPEDEF)
	case '{':
		l.cursor++
		return l.save(OPEN_BRACE)
	case '}':
		l.cursor++
		return l.save(CLOSE_BRACE)
	case '[':
		l.cursor++
		return l.save(OPEN_BRACKET)
	case ']':
		l.cursor++
		return l.save(CLOSE_BRACKET)
	case '(':
		l.cursor++
		return l.save(OPEN_PAREN)
	case ')':
		l.cursor++
		return l.save(CLOSE_PAREN)
	case '!':
		l.cursor++
		return l.save(ONE)
	case '|':
		l.cursor++
		return l.save(OR)
	case '?':
		l.cursor++
		return l.save(ZERO_ONE)
	case '*':
		l.cursor++
		return l.save(ZERO_MORE)
	case '+':
		l.cursor++
		return l.save(ONE_MORE)
	case '#':
		l.cursor++
		return l.save(CALLBACK)
	case ',':
		l.cursor++
		return l.save(COMMA)
	case '\'':
		l.cursor++
		l.start = l.cursor
		for !l.isEOF() && l.peek() != '\'' {
			l.cursor++
		}
		if l.isEOF() {
			return l.save(ERR)
		}
		tok := l.save(CSTR)
		l.cursor++
		return tok
	}

	if isAlpha(c) {
		for !l.isEOF() && isIdChar(l.peek()) {
			l.cursor++
		}
		return l.save(l.keywordOrID())
	}

	l.cursor++
	return l.save(ERR)
}

// keywordOrID classifies the token that was just scanned between
// l.start and l.cursor, matching reserved words by length-then-prefix
// the same way scvalc.cpp's ExtractKeywordOrId does.
func (l *Lexer) keywordOrID() TokenKind {
	word := l.src[l.start:l.cursor]
	switch len(word) {
	case 3:
		if string(word) == "int" {
			return INT
		}
		if string(word) == "str" {
			return STR
		}
	case 4:
		if string(word) == "bool" {
			return BOOL
		}
		if string(word) == "real" {
			return REAL
		}
	}
	return ID
}
