package scval

// HookArg carries the operands a Cursor needs for opcodes that take
// one: only CALL does, naming the user-type being checked and the
// value to check against it.
type HookArg struct {
	NameHash uint32
	Value    string
}

// HookResult carries back whatever the dispatched opcode produced.
// Str/Null are meaningful for LDEN/LDEV/LDAN/LDAV; Accept is
// meaningful for CALL. Cursor-movement opcodes (DOWN/UP/GATT/NATT/
// NEXT) ignore both and are invoked purely for side effect.
type HookResult struct {
	Str    string
	Null   bool
	Accept bool
}

// Cursor is the host-supplied navigation contract the VM drives
// through a document tree. It is a single dispatch method — matching
// the `do(op, name_hash?, value?) -> string | integer` contract of
// §6 and original_source/scvaltypes.h's ScvalInstHook::Do — rather
// than one Go method per opcode, because the VM itself only ever
// needs to forward "the opcode currently being executed" without
// branching on it.
//
// Required behavior per opcode:
//   - LDEN/LDEV: return the current element's name/text, or Null if
//     there is no current element.
//   - LDAN/LDAV: return the current attribute's name/value, or Null
//     if there is no current attribute.
//   - DOWN: push the current element and descend to its first child
//     (or the null-element state if it has none).
//   - UP: pop back to the saved element.
//   - GATT: move to the element's first attribute.
//   - NATT: move to the next attribute, or the null-attribute state.
//   - NEXT: move to the next sibling element.
//   - CALL: invoke the user-defined type check named by arg.NameHash
//     with arg.Value; Accept reports whether it passed.
type Cursor interface {
	Do(op Opcode, arg HookArg) HookResult
}
