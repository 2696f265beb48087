package scval

import (
	"fmt"
	"strings"

	"github.com/gyakoo/scval/ascii"
)

// NodeKind identifies the shape of a Tree node.
type NodeKind uint8

const (
	ROOT NodeKind = iota
	NID           // identifier/keyword leaf
	NREAL
	NSTR
	NINT
	NBOOL
	NONE_      // cardinality: exactly one ("!")
	NZERO_ONE  // cardinality: zero or one ("?")
	NZERO_MORE // cardinality: zero or more ("*")
	NONE_MORE  // cardinality: one or more ("+")
	NOR
	NAND
	NCHILDREN
	NTYPEDEF
	NATTRS
	NCALLBACK
)

var nodeKindNames = map[NodeKind]string{
	ROOT:       "root",
	NID:        "id",
	NREAL:      "real",
	NSTR:       "str",
	NINT:       "int",
	NBOOL:      "bool",
	NONE_:      "one",
	NZERO_ONE:  "zero_one",
	NZERO_MORE: "zero_more",
	NONE_MORE:  "one_more",
	NOR:        "or",
	NAND:       "and",
	NCHILDREN:  "children",
	NTYPEDEF:   "typedef",
	NATTRS:     "attrs",
	NCALLBACK:  "callback",
}

func (k NodeKind) String() string {
	if n, ok := nodeKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// NoHandle is the sentinel for "no node"/"no leaf" in a Tree. Unlike
// the original C++ (which reserves 0xFFFF, a valid-looking unsigned
// value) Go lets us use a negative handle, so there is no magic
// number to special-case when comparing.
const NoHandle = -1

// Leaf is an identifier or keyword referenced by a Tree node. The
// Hash is what the compiler ever encodes into bytecode; Name is kept
// alongside it for pretty-printing and for the optional
// hash.verify_names compiler config (see Config).
type Leaf struct {
	Hash uint32
	Name string
}

type treeNode struct {
	kind        NodeKind
	leaf        int // NoHandle if this node carries no leaf
	firstChild  int
	lastChild   int // internal-only: O(1) rightmost-child append
	nextSibling int
}

// Tree is the flyweight schema tree built by the Parser: an array of
// nodes addressed by integer handle, each carrying a kind tag, an
// optional leaf reference, and first-child/next-sibling links. It is
// built using an explicit "current parent" stack, mirroring
// scvalc.cpp's ScvalAST/NodeScoper discipline: PushNode makes a new
// node the child of the stack top and makes it the new top;
// PopNode restores the previous top.
type Tree struct {
	nodes     []treeNode
	leaves    []Leaf
	leafIndex map[uint32]int
	stack     []int
}

// NewTree creates an empty Tree with its ROOT node already pushed and
// current.
func NewTree() *Tree {
	t := &Tree{leafIndex: make(map[uint32]int)}
	t.PushNode(ROOT)
	return t
}

// Root returns the handle of the tree's unique ROOT node.
func (t *Tree) Root() int { return 0 }

// IsEmpty reports whether the tree holds nothing beyond its ROOT node.
func (t *Tree) IsEmpty() bool {
	return len(t.nodes) <= 1 && len(t.leaves) == 0
}

// PushNode creates a new node of kind, appends it as the rightmost
// child of the current parent (the stack top, if any), and makes it
// the new current parent.
func (t *Tree) PushNode(kind NodeKind) int {
	h := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{kind: kind, leaf: NoHandle, firstChild: NoHandle, lastChild: NoHandle, nextSibling: NoHandle})
	if len(t.stack) > 0 {
		t.addChild(t.stack[len(t.stack)-1], h)
	}
	t.stack = append(t.stack, h)
	return h
}

// PopNode leaves the current node scope, restoring the previous
// current parent.
func (t *Tree) PopNode() {
	t.stack = t.stack[:len(t.stack)-1]
}

// Current returns the handle of the node scope currently on top of
// the stack.
func (t *Tree) Current() int {
	if len(t.stack) == 0 {
		return NoHandle
	}
	return t.stack[len(t.stack)-1]
}

func (t *Tree) addChild(parent, child int) {
	if parent == NoHandle {
		return
	}
	p := &t.nodes[parent]
	if p.firstChild == NoHandle {
		p.firstChild = child
		p.lastChild = child
		return
	}
	t.nodes[p.lastChild].nextSibling = child
	p.lastChild = child
}

// InsertLeaf pushes a new node of kind carrying a leaf reference for
// name, then immediately pops it, so it ends up as the rightmost
// child of the current parent. Leaves are deduplicated by hash, the
// same way scvalc.cpp's ScvalSet-backed AddLeaf works.
func (t *Tree) InsertLeaf(kind NodeKind, name string) int {
	h := t.PushNode(kind)
	t.nodes[h].leaf = t.addLeaf(name)
	t.PopNode()
	return h
}

func (t *Tree) addLeaf(name string) int {
	hash := HashString(name)
	if idx, ok := t.leafIndex[hash]; ok {
		return idx
	}
	idx := len(t.leaves)
	t.leaves = append(t.leaves, Leaf{Hash: hash, Name: name})
	t.leafIndex[hash] = idx
	return idx
}

// Kind returns the NodeKind of handle h.
func (t *Tree) Kind(h int) NodeKind { return t.nodes[h].kind }

// LeafHandle returns the leaf handle carried by node h, or NoHandle.
func (t *Tree) LeafHandle(h int) int { return t.nodes[h].leaf }

// FirstChild returns the handle of h's first child, or NoHandle.
func (t *Tree) FirstChild(h int) int { return t.nodes[h].firstChild }

// NextSibling returns the handle of h's next sibling, or NoHandle.
func (t *Tree) NextSibling(h int) int { return t.nodes[h].nextSibling }

// Leaf returns the Leaf referenced by leaf handle h.
func (t *Tree) Leaf(h int) Leaf { return t.leaves[h] }

// HasLeaf reports whether node h carries a leaf reference.
func (t *Tree) HasLeaf(h int) bool { return t.nodes[h].leaf != NoHandle }

// PrettyString renders the tree as an indented listing, mirroring the
// original ScvalPrintAST debug dump.
func (t *Tree) PrettyString() string {
	var s strings.Builder
	t.printNode(&s, t.Root(), 0, false)
	return s.String()
}

// PrettyStringColor is PrettyString with ANSI syntax highlighting
// applied via the ascii theme, for terminal tooling.
func (t *Tree) PrettyStringColor() string {
	var s strings.Builder
	t.printNode(&s, t.Root(), 0, true)
	return s.String()
}

func (t *Tree) printNode(s *strings.Builder, h, level int, color bool) {
	indent := strings.Repeat("  ", level)
	if t.HasLeaf(h) {
		name := t.Leaf(t.nodes[h].leaf).Name
		if color {
			name = ascii.Color(ascii.DefaultTheme.Literal, "%s", name)
		}
		fmt.Fprintf(s, "%s%s\n", indent, name)
		return
	}
	label := fmt.Sprintf("[%s]", t.nodes[h].kind)
	if color {
		label = ascii.Color(ascii.DefaultTheme.Label, "%s", label)
	}
	fmt.Fprintf(s, "%s%s\n", indent, label)
	for c := t.FirstChild(h); c != NoHandle; c = t.NextSibling(c) {
		t.printNode(s, c, level+1, color)
	}
}
