// Package xmlcursor is a reference scval.Cursor backed by the standard
// library's encoding/xml, grounded on original_source/main.cpp's
// TinyXMLHooks adapter over TinyXML.
package xmlcursor

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/gyakoo/scval"
)

// element is a minimal in-memory XML tree node: a first-child pointer
// and a next-sibling pointer, the same shape TinyXML's XMLElement
// exposes via FirstChildElement()/NextSiblingElement().
type element struct {
	name     string
	text     string
	attrs    []xml.Attr
	firstChild *element
	next       *element
}

// Cursor walks a decoded XML document one element/attribute at a time,
// implementing scval.Cursor. It mirrors TinyXMLHooks's state: a
// current element pointer, a current attribute index, and a stack of
// saved elements for DOWN/UP.
type Cursor struct {
	elem    *element
	attrIdx int

	elemStack []*element

	callbacks map[uint32]func(value string) bool
}

// New parses r as an XML document and returns a Cursor positioned on
// its root element, wired to invoke callbacks for CHKC-led type checks
// (keyed by the callback name's hash, see internal/builtins).
func New(r io.Reader, callbacks map[uint32]func(string) bool) (*Cursor, error) {
	root, err := parseDocument(r)
	if err != nil {
		return nil, fmt.Errorf("xmlcursor: %w", err)
	}
	return &Cursor{elem: root, attrIdx: -1, callbacks: callbacks}, nil
}

func parseDocument(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return parseElement(dec, start)
		}
	}
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (*element, error) {
	e := &element{name: start.Name.Local, attrs: start.Attr}
	var lastChild *element
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			if lastChild == nil {
				e.firstChild = child
			} else {
				lastChild.next = child
			}
			lastChild = child
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			e.text = strings.TrimSpace(text.String())
			return e, nil
		}
	}
}

func attrByIndex(e *element, idx int) (xml.Attr, bool) {
	if e == nil || idx < 0 || idx >= len(e.attrs) {
		return xml.Attr{}, false
	}
	return e.attrs[idx], true
}

// Do implements scval.Cursor.
func (c *Cursor) Do(op scval.Opcode, arg scval.HookArg) scval.HookResult {
	switch op {
	case scval.OpLDEN:
		if c.elem == nil {
			return scval.HookResult{Null: true}
		}
		return scval.HookResult{Str: c.elem.name}

	case scval.OpLDEV:
		if c.elem == nil {
			return scval.HookResult{Null: true}
		}
		return scval.HookResult{Str: c.elem.text}

	case scval.OpLDAN:
		if a, ok := attrByIndex(c.elem, c.attrIdx); ok {
			return scval.HookResult{Str: a.Name.Local}
		}
		return scval.HookResult{Null: true}

	case scval.OpLDAV:
		if a, ok := attrByIndex(c.elem, c.attrIdx); ok {
			return scval.HookResult{Str: a.Value}
		}
		return scval.HookResult{Null: true}

	case scval.OpDOWN:
		c.elemStack = append(c.elemStack, c.elem)
		if c.elem != nil {
			c.elem = c.elem.firstChild
		}
		return scval.HookResult{}

	case scval.OpUP:
		n := len(c.elemStack)
		c.elem = c.elemStack[n-1]
		c.elemStack = c.elemStack[:n-1]
		return scval.HookResult{}

	case scval.OpGATT:
		c.attrIdx = 0
		return scval.HookResult{}

	case scval.OpNATT:
		c.attrIdx++
		return scval.HookResult{}

	case scval.OpNEXT:
		if c.elem != nil {
			c.elem = c.elem.next
		}
		return scval.HookResult{}

	case scval.OpCALL:
		if fn, ok := c.callbacks[arg.NameHash]; ok && fn(arg.Value) {
			return scval.HookResult{Accept: true}
		}
		return scval.HookResult{Accept: false}

	default:
		return scval.HookResult{}
	}
}
