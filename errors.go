package scval

import "fmt"

// LexError reports a lexical fault: an unterminated string literal or
// a byte the lexer does not recognize. Grounded on the teacher's
// ParsingError (errors.go), trimmed to the byte offset a Token
// already carries instead of the teacher's line/column Span — exact
// position reporting is explicitly out of scope (spec Non-goals).
type LexError struct {
	Offset int
	Reason string
}

func (e LexError) Error() string {
	return fmt.Sprintf("scval: lex error at offset %d: %s", e.Offset, e.Reason)
}

// SyntaxError reports an unexpected token during parsing. The parser
// never attempts recovery: the first SyntaxError aborts the parse.
type SyntaxError struct {
	Offset   int
	Expected string
	Got      TokenKind
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("scval: syntax error at offset %d: expected %s, got %s", e.Offset, e.Expected, e.Got)
}

// CompileError reports a malformed schema tree that survived parsing
// but cannot be lowered to bytecode (e.g. a typedef body that is
// neither a type expression nor a callback binding).
type CompileError struct {
	Reason string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("scval: compile error: %s", e.Reason)
}
