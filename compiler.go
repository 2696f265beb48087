package scval

import "fmt"

// Compiler lowers a Tree to a Bytecode in two passes, grounded on
// original_source/scvalc.cpp's ScvalAST::GenerateCode and its
// GenCodeChildrenElements/GenCodeChildrenAttributes/GenCodeChildElement/
// GenCodeChildAttribute/GenCodeCheckType/GenCodeCountersComparison
// family. Where the symbolic Program+Label design (SPEC_FULL.md §3)
// changes the shape of back-patching, comments below call it out.
type Compiler struct {
	tree *Tree
	prog *Program
	cfg  *Config

	// pendingCHKC maps a named type's leaf handle to every CHKC
	// instruction index still waiting for that type's subroutine
	// entry point — the side map §9's "Back-patching trick" note
	// recommends in place of reusing the data-address field in place.
	pendingCHKC map[int][]int

	// seenNames backs the hash.verify_names compile-time collision
	// check (see Config.hash.verify_names).
	seenNames map[uint32]string

	mainEnd *Label
}

// Compile parses nothing itself — it lowers an already-built Tree
// (see Parse) to bytecode. cfg may be nil, in which case NewConfig's
// defaults apply.
func Compile(tree *Tree, cfg *Config) (*Bytecode, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if tree.IsEmpty() {
		return nil, CompileError{Reason: "schema tree is empty"}
	}
	c := &Compiler{
		tree:        tree,
		prog:        NewProgram(),
		cfg:         cfg,
		pendingCHKC: make(map[int][]int),
		seenNames:   make(map[uint32]string),
		mainEnd:     nil,
	}
	c.mainEnd = c.prog.NewLabel()

	if err := c.genMain(); err != nil {
		return nil, err
	}
	if err := c.genSubroutines(); err != nil {
		return nil, err
	}
	c.prog.Bind(c.mainEnd)

	return c.prog.Encode()
}

// CompileSource parses src and compiles the resulting tree in one step.
func CompileSource(src []byte, cfg *Config) (*Bytecode, error) {
	tree, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return Compile(tree, cfg)
}

func (c *Compiler) internName(name string) (uint16, error) {
	h := HashString(name)
	if c.cfg.GetBool("hash.verify_names") {
		if prev, ok := c.seenNames[h]; ok && prev != name {
			return 0, CompileError{Reason: fmt.Sprintf("hash collision between %q and %q (both hash to 0x%08x)", prev, name, h)}
		}
		c.seenNames[h] = name
	}
	return c.prog.internHash(h), nil
}

// isCardinalityKind reports whether k tags an element_def/attr_def
// node (as opposed to a type reference, ATTRS, or CHILDREN node).
func isCardinalityKind(k NodeKind) bool {
	switch k {
	case NONE_, NONE_MORE, NZERO_MORE, NZERO_ONE:
		return true
	default:
		return false
	}
}

// genMain implements Pass 1 (§4.4): one children-elements block per
// top-level CHILDREN subtree under ROOT, each followed by a JMP to a
// single shared end-of-program label bound once Pass 2 has emitted
// every subroutine. Unlike scvalc.cpp's GenerateCode — which
// overwrites `lastOp` on every iteration and so only ever patches the
// *last* top-level block's trailing JMP, leaving any earlier ones
// jumping to address 0 — every top-level JMP here references the
// same Label, so all of them resolve correctly regardless of how many
// top-level elements the schema declares.
func (c *Compiler) genMain() error {
	root := c.tree.Root()
	for h := c.tree.FirstChild(root); h != NoHandle; h = c.tree.NextSibling(h) {
		if c.tree.Kind(h) != NCHILDREN {
			continue
		}
		if err := c.genChildrenElements(h, 0, 0); err != nil {
			return err
		}
		c.prog.JMP(c.mainEnd)
	}
	return nil
}

// genSubroutines implements Pass 2 (§4.4): for every TYPEDEF node,
// back-patch all pending CHKC calls targeting it, then emit its body.
func (c *Compiler) genSubroutines() error {
	root := c.tree.Root()
	for h := c.tree.FirstChild(root); h != NoHandle; h = c.tree.NextSibling(h) {
		if c.tree.Kind(h) != NTYPEDEF {
			continue
		}
		if err := c.genSubroutine(h); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) genSubroutine(typedefNode int) error {
	nameLeafNode := c.tree.FirstChild(typedefNode)
	leafHandle := c.tree.LeafHandle(nameLeafNode)

	entry := c.prog.PC()
	for _, idx := range c.pendingCHKC[leafHandle] {
		c.prog.PatchDataAddr(idx, uint16(entry))
	}

	bodyNode := c.tree.NextSibling(nameLeafNode)
	if bodyNode != NoHandle {
		switch c.tree.Kind(bodyNode) {
		case NCALLBACK:
			cbNameNode := c.tree.FirstChild(bodyNode)
			cbName := c.tree.Leaf(c.tree.LeafHandle(cbNameNode)).Name
			addr, err := c.internName(cbName)
			if err != nil {
				return err
			}
			c.prog.CALLData(addr)
			c.prog.JEErr()
		case NOR, NAND, NREAL, NSTR, NINT, NBOOL, NID:
			// Reserved: parsed but emit no bytecode (§9 "OR / AND
			// typedef bodies", option a — preserved as-is). A
			// type-literal body likewise emits no check, so its
			// subroutine is a bare RET that accepts any value.
		default:
			return CompileError{Reason: fmt.Sprintf("typedef body has unexpected node kind %s", c.tree.Kind(bodyNode))}
		}
	}
	c.prog.RET()
	return nil
}

// genChildrenElements emits the WHILE_TOP element-block template of
// §4.4 for one CHILDREN node's declared children, using string
// register rbs and counter registers rbc..rbc+k-1.
func (c *Compiler) genChildrenElements(node int, rbc, rbs uint8) error {
	if c.tree.FirstChild(node) == NoHandle && c.cfg.GetBool("compiler.reject_empty_children") {
		return CompileError{Reason: "CHILDREN block declares no children"}
	}
	p := c.prog

	whileTop := p.NewLabel()
	p.Bind(whileTop)
	p.LDEN(rbs)
	p.CMPSNil(rbs)
	afterCounters := p.NewLabel()
	p.JE(afterCounters)

	afterElement := p.NewLabel()
	rc := rbc
	for h := c.tree.FirstChild(node); h != NoHandle; h = c.tree.NextSibling(h) {
		if !isCardinalityKind(c.tree.Kind(h)) {
			continue
		}
		if err := c.genChildElement(h, rc, rbs, afterElement); err != nil {
			return err
		}
		rc++
	}
	p.JMPErr()
	p.Bind(afterElement)
	p.NEXT()
	p.JMP(whileTop)

	p.Bind(afterCounters)
	c.genCountersComparison(node, rbc)
	p.UseStringReg(rbs)
	return nil
}

// genChildElement emits one CMPS/JNE arm of the element-matching
// if-chain, mirroring GenCodeChildElement.
func (c *Compiler) genChildElement(node int, rc, rbs uint8, afterElement *Label) error {
	p := c.prog
	nameNode := c.tree.FirstChild(node)
	name := c.tree.Leaf(c.tree.LeafHandle(nameNode)).Name
	addr, err := c.internName(name)
	if err != nil {
		return err
	}
	p.CMPS(rbs, addr)
	nextCheck := p.NewLabel()
	p.JNE(nextCheck)
	p.INC(rc)
	p.UseCounterReg(rc)

	for h := c.tree.NextSibling(nameNode); h != NoHandle; h = c.tree.NextSibling(h) {
		switch c.tree.Kind(h) {
		case NATTRS:
			if err := c.genChildrenAttributes(h, rc+1, rbs+1); err != nil {
				return err
			}
		case NCHILDREN:
			p.DOWN()
			if err := c.genChildrenElements(h, rc+1, rbs+1); err != nil {
				return err
			}
			p.UP()
		default:
			p.LDEV(rbs + 1)
			if err := c.genCheckType(h, rbs+1); err != nil {
				return err
			}
		}
	}
	p.JMP(afterElement)
	p.Bind(nextCheck)
	return nil
}

// genChildrenAttributes emits the attribute-walk loop, which follows
// the same WHILE_TOP template but starts from GATT and steps with
// NATT instead of NEXT, mirroring GenCodeChildrenAttributes.
func (c *Compiler) genChildrenAttributes(node int, rbc, rbs uint8) error {
	if c.tree.FirstChild(node) == NoHandle && c.cfg.GetBool("compiler.reject_empty_children") {
		return CompileError{Reason: "ATTRS block declares no attributes"}
	}
	p := c.prog
	p.GATT()

	whileTop := p.NewLabel()
	p.Bind(whileTop)
	p.LDAN(rbs)
	p.CMPSNil(rbs)
	afterCounters := p.NewLabel()
	p.JE(afterCounters)

	afterAttr := p.NewLabel()
	rc := rbc
	for h := c.tree.FirstChild(node); h != NoHandle; h = c.tree.NextSibling(h) {
		if !isCardinalityKind(c.tree.Kind(h)) {
			continue
		}
		if err := c.genChildAttribute(h, rc, rbs, afterAttr); err != nil {
			return err
		}
		rc++
	}
	p.JMPErr()
	p.Bind(afterAttr)
	p.NATT()
	p.JMP(whileTop)

	p.Bind(afterCounters)
	c.genCountersComparison(node, rbc)
	p.UseStringReg(rbs)
	return nil
}

// genChildAttribute emits one CMPS/JNE arm of the attribute-matching
// if-chain, mirroring GenCodeChildAttribute.
func (c *Compiler) genChildAttribute(node int, rc, rbs uint8, afterAttr *Label) error {
	p := c.prog
	nameNode := c.tree.FirstChild(node)
	name := c.tree.Leaf(c.tree.LeafHandle(nameNode)).Name
	addr, err := c.internName(name)
	if err != nil {
		return err
	}
	p.CMPS(rbs, addr)
	nextCheck := p.NewLabel()
	p.JNE(nextCheck)
	p.INC(rc)
	p.UseCounterReg(rc)
	p.LDAV(rbs + 1)

	typeNode := c.tree.NextSibling(nameNode)
	if err := c.genCheckType(typeNode, rbs+1); err != nil {
		return err
	}

	p.JMP(afterAttr)
	p.Bind(nextCheck)
	return nil
}

// genCountersComparison emits the AFTER_COUNTERS cardinality checks
// of §4.4's cardinality-to-bytecode table, one per declared child of
// node, walking registers in lock-step with genChildrenElements'/
// genChildrenAttributes' matching loop above (including ZERO_MORE
// children, which still occupy — and must still advance past — a
// counter register even though they need no check; scvalc.cpp's
// GenCodeCountersComparison omits the increment for ZERO_MORE and so
// desyncs register numbering whenever a ZERO_MORE child is followed
// by another cardinality-checked sibling — fixed here).
func (c *Compiler) genCountersComparison(node int, rbc uint8) {
	p := c.prog
	rc := rbc
	for h := c.tree.FirstChild(node); h != NoHandle; h = c.tree.NextSibling(h) {
		kind := c.tree.Kind(h)
		if !isCardinalityKind(kind) {
			continue
		}
		switch kind {
		case NONE_:
			p.CMPI(rc, 1)
			p.JNEErr()
		case NONE_MORE:
			p.CMPI(rc, 0)
			p.JEErr()
		case NZERO_ONE:
			p.CMPI(rc, 1)
			p.JGErr()
		case NZERO_MORE:
			// no check emitted
		}
		p.UseCounterReg(rc)
		rc++
	}
}

// genCheckType emits the type-check lowering of §4.4's "Type-check
// lowering" for a type-reference node, mirroring GenCodeCheckType.
func (c *Compiler) genCheckType(node int, rbs uint8) error {
	p := c.prog
	switch kind := c.tree.Kind(node); kind {
	case NREAL:
		p.CHKN(rbs, KindReal)
	case NSTR:
		p.CHKN(rbs, KindStr)
	case NINT:
		p.CHKN(rbs, KindInteger)
	case NBOOL:
		p.CHKN(rbs, KindBool)
	case NID:
		leafHandle := c.tree.LeafHandle(node)
		idx := p.CHKC(rbs, uint16(leafHandle))
		c.pendingCHKC[leafHandle] = append(c.pendingCHKC[leafHandle], idx)
	default:
		return CompileError{Reason: fmt.Sprintf("unexpected node kind %s where a type reference was expected", kind)}
	}
	p.UseStringReg(rbs)
	return nil
}
