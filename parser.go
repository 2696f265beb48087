package scval

// Parser is a recursive-descent, single-token-lookahead parser for
// the Scval schema grammar (§4.2). It builds a Tree as it goes using
// Tree's node-scope discipline, failing immediately on the first
// unexpected token — no error recovery is attempted, matching
// scvalc.cpp's ScvalParser.
type Parser struct {
	lex *Lexer
	src []byte
	tok Token

	tree *Tree
}

// NewParser creates a Parser over src and primes its lookahead token.
func NewParser(src []byte) *Parser {
	p := &Parser{lex: NewLexer(src), src: src, tree: NewTree()}
	p.advance()
	return p
}

// Parse consumes the whole token stream and returns the built Tree,
// or the first LexError/SyntaxError encountered.
func Parse(src []byte) (*Tree, error) {
	return NewParser(src).Parse()
}

func (p *Parser) advance() { p.tok = p.lex.Next() }

func (p *Parser) text() string { return p.tok.Text(p.src) }

func (p *Parser) at(k TokenKind) bool { return p.tok.Kind == k }

func (p *Parser) expect(k TokenKind, what string) (Token, error) {
	if p.tok.Kind == ERR {
		return Token{}, LexError{Offset: p.tok.Start, Reason: "unterminated string literal or invalid character"}
	}
	if p.tok.Kind != k {
		return Token{}, SyntaxError{Offset: p.tok.Start, Expected: what, Got: p.tok.Kind}
	}
	t := p.tok
	p.advance()
	return t, nil
}

// Parse implements `program := (typedef | element_def)*`. Each
// top-level element_def is wrapped in its own CHILDREN node (one per
// statement, not one shared CHILDREN node for all of them) so that
// Compile's Pass 1 can treat every top-level element the same way it
// treats a nested children block — mirroring scvalc.cpp's
// ScvalParser::Parse, whose per-statement loop opens a fresh
// NODESCOPE(AST_CHILDREN) around exactly one ParseElementDef call.
func (p *Parser) Parse() (*Tree, error) {
	for !p.at(EOF) {
		if p.at(ERR) {
			return nil, LexError{Offset: p.tok.Start, Reason: "unterminated string literal or invalid character"}
		}
		var err error
		if p.at(TYPEDEF) {
			err = p.parseTypedef()
		} else {
			p.tree.PushNode(NCHILDREN)
			err = p.parseElementDef()
			p.tree.PopNode()
		}
		if err != nil {
			return nil, err
		}
	}
	return p.tree, nil
}

// parseTypedef implements `typedef := '@' ID typedef_body`.
func (p *Parser) parseTypedef() error {
	if _, err := p.expect(TYPEDEF, "'@'"); err != nil {
		return err
	}
	nameTok, err := p.expect(ID, "type name")
	if err != nil {
		return err
	}
	p.tree.PushNode(NTYPEDEF)
	p.tree.InsertLeaf(NID, nameTok.Text(p.src))
	if err := p.parseTypedefBody(); err != nil {
		p.tree.PopNode()
		return err
	}
	p.tree.PopNode()
	return nil
}

// parseTypedefBody implements `typedef_body := type_expr | '#' ID`.
func (p *Parser) parseTypedefBody() error {
	if p.at(CALLBACK) {
		p.advance()
		nameTok, err := p.expect(ID, "callback name")
		if err != nil {
			return err
		}
		p.tree.PushNode(NCALLBACK)
		p.tree.InsertLeaf(NID, nameTok.Text(p.src))
		p.tree.PopNode()
		return nil
	}
	return p.parseTypeExpr()
}

// parseTypeExpr implements
// `type_expr := '(' enum ')' | '[' list ']' | base_type | ID | CSTR`.
func (p *Parser) parseTypeExpr() error {
	switch p.tok.Kind {
	case OPEN_PAREN:
		p.advance()
		p.tree.PushNode(NOR)
		if err := p.parseEnum(); err != nil {
			p.tree.PopNode()
			return err
		}
		p.tree.PopNode()
		_, err := p.expect(CLOSE_PAREN, "')'")
		return err
	case OPEN_BRACKET:
		p.advance()
		p.tree.PushNode(NAND)
		if err := p.parseList(); err != nil {
			p.tree.PopNode()
			return err
		}
		p.tree.PopNode()
		_, err := p.expect(CLOSE_BRACKET, "']'")
		return err
	case REAL, STR, INT, BOOL:
		return p.parseBaseType()
	case ID, CSTR:
		// CSTR (a quoted literal alternative in type_expr) is stored
		// the same way as a named-type ID leaf: neither carries
		// bytecode-relevant behavior beyond its hash (OR/AND bodies
		// emit no code — see §9 "OR / AND typedef bodies").
		p.tree.InsertLeaf(NID, p.text())
		p.advance()
		return nil
	default:
		return SyntaxError{Offset: p.tok.Start, Expected: "type expression", Got: p.tok.Kind}
	}
}

// parseEnum implements `enum := type_expr ('|' type_expr)*`.
func (p *Parser) parseEnum() error {
	if err := p.parseTypeExpr(); err != nil {
		return err
	}
	for p.at(OR) {
		p.advance()
		if err := p.parseTypeExpr(); err != nil {
			return err
		}
	}
	return nil
}

// parseList implements `list := type_expr*`.
func (p *Parser) parseList() error {
	for !p.at(CLOSE_BRACKET) && !p.at(EOF) {
		if err := p.parseTypeExpr(); err != nil {
			return err
		}
	}
	return nil
}

// parseBaseType implements `base_type := 'real' | 'str' | 'int' | 'bool'`.
// The matched keyword is stored as the node's leaf (mirroring
// scvalc.cpp's LEAF macro, which runs unconditionally across every
// ParseType/ParseTypedefExpr branch) even though the compiler
// dispatches on the node kind and never reads a base type's leaf;
// PrettyString prints it as the node's label.
func (p *Parser) parseBaseType() error {
	var kind NodeKind
	switch p.tok.Kind {
	case REAL:
		kind = NREAL
	case STR:
		kind = NSTR
	case INT:
		kind = NINT
	case BOOL:
		kind = NBOOL
	default:
		return SyntaxError{Offset: p.tok.Start, Expected: "base type", Got: p.tok.Kind}
	}
	p.tree.InsertLeaf(kind, p.text())
	p.advance()
	return nil
}

// parseType implements `type := ID | base_type`.
func (p *Parser) parseType() error {
	if p.at(ID) {
		p.tree.InsertLeaf(NID, p.text())
		p.advance()
		return nil
	}
	return p.parseBaseType()
}

// parseCardinality implements `cardinality := '!' | '?' | '*' | '+'`.
func (p *Parser) parseCardinality() (NodeKind, error) {
	switch p.tok.Kind {
	case ONE:
		p.advance()
		return NONE_, nil
	case ZERO_ONE:
		p.advance()
		return NZERO_ONE, nil
	case ZERO_MORE:
		p.advance()
		return NZERO_MORE, nil
	case ONE_MORE:
		p.advance()
		return NONE_MORE, nil
	default:
		return 0, SyntaxError{Offset: p.tok.Start, Expected: "cardinality ('!', '?', '*', or '+')", Got: p.tok.Kind}
	}
}

// parseElementDef implements `element_def := cardinality element`.
func (p *Parser) parseElementDef() error {
	kind, err := p.parseCardinality()
	if err != nil {
		return err
	}
	return p.parseElement(kind)
}

// parseElement implements
// `element := ID ('(' type ')')? ('[' attr_def* ']')? ('{' element_def* '}')?`.
func (p *Parser) parseElement(kind NodeKind) error {
	nameTok, err := p.expect(ID, "element name")
	if err != nil {
		return err
	}
	p.tree.PushNode(kind)
	defer p.tree.PopNode()
	p.tree.InsertLeaf(NID, nameTok.Text(p.src))

	if p.at(OPEN_PAREN) {
		p.advance()
		if err := p.parseType(); err != nil {
			return err
		}
		if _, err := p.expect(CLOSE_PAREN, "')'"); err != nil {
			return err
		}
	}

	if p.at(OPEN_BRACKET) {
		p.advance()
		p.tree.PushNode(NATTRS)
		for !p.at(CLOSE_BRACKET) && !p.at(EOF) {
			if err := p.parseAttrDef(); err != nil {
				p.tree.PopNode()
				return err
			}
		}
		p.tree.PopNode()
		if _, err := p.expect(CLOSE_BRACKET, "']'"); err != nil {
			return err
		}
	}

	if p.at(OPEN_BRACE) {
		p.advance()
		p.tree.PushNode(NCHILDREN)
		for !p.at(CLOSE_BRACE) && !p.at(EOF) {
			if err := p.parseElementDef(); err != nil {
				p.tree.PopNode()
				return err
			}
		}
		p.tree.PopNode()
		if _, err := p.expect(CLOSE_BRACE, "'}'"); err != nil {
			return err
		}
	}

	return nil
}

// parseAttrDef implements `attr_def := (cardinality)? attribute`,
// defaulting a bare attribute (no leading cardinality glyph) to ONE.
func (p *Parser) parseAttrDef() error {
	kind := NONE_
	switch p.tok.Kind {
	case ONE:
		kind = NONE_
		p.advance()
	case ZERO_ONE:
		kind = NZERO_ONE
		p.advance()
	case ZERO_MORE:
		kind = NZERO_MORE
		p.advance()
	case ONE_MORE:
		kind = NONE_MORE
		p.advance()
	}
	return p.parseAttribute(kind)
}

// parseAttribute implements `attribute := ID '(' type ')'`.
func (p *Parser) parseAttribute(kind NodeKind) error {
	nameTok, err := p.expect(ID, "attribute name")
	if err != nil {
		return err
	}
	p.tree.PushNode(kind)
	defer p.tree.PopNode()
	p.tree.InsertLeaf(NID, nameTok.Text(p.src))

	if _, err := p.expect(OPEN_PAREN, "'('"); err != nil {
		return err
	}
	if err := p.parseType(); err != nil {
		return err
	}
	_, err = p.expect(CLOSE_PAREN, "')'")
	return err
}
