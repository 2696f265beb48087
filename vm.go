package scval

import "fmt"

// Context holds one VM's register banks and scratch state. It is
// created fresh by every Run call (§5: each Run owns its context
// exclusively) and never shared across concurrent validations.
type Context struct {
	Counter []uint16
	StrHash []uint32
	Str     []string

	CmpRes   int32
	CheckReg uint8
	PC       uint32
	LastPC   uint32
}

// NewContext allocates register banks sized maxCounterReg+1 and
// maxStringReg+1, per §3's "Register-zero allocation" note: banks are
// always max+1 slots, never exactly max.
func NewContext(maxCounterReg, maxStringReg int) *Context {
	return &Context{
		Counter: make([]uint16, maxCounterReg+1),
		StrHash: make([]uint32, maxStringReg+1),
		Str:     make([]string, maxStringReg+1),
	}
}

// Run executes code against cursor to completion, returning whether
// the document was accepted. Grounded on original_source/scval.cpp's
// ScvalVM::Run dispatch loop; built-in predicate behavior follows its
// IsInteger/IsReal/IsBool.
func Run(code *Bytecode, cursor Cursor) (bool, error) {
	ctx := NewContext(code.MaxCounterReg, code.MaxStringReg)
	for int(ctx.PC) < len(code.Code) {
		op := code.Code[ctx.PC]
		ctx.PC++
		if err := step(ctx, code, cursor, op); err != nil {
			return false, err
		}
		if ctx.PC == ErrAddr {
			return false, nil
		}
	}
	return true, nil
}

func step(ctx *Context, code *Bytecode, cursor Cursor, op Operation) error {
	switch op.Op {
	case OpLDEN:
		load(ctx, cursor, op.Op0, OpLDEN)
	case OpLDEV:
		load(ctx, cursor, op.Op0, OpLDEV)
	case OpLDAN:
		load(ctx, cursor, op.Op0, OpLDAN)
	case OpLDAV:
		load(ctx, cursor, op.Op0, OpLDAV)

	case OpCMPS:
		want := uint32(0)
		if addr := op.DataAddr(); addr != NilData {
			if int(addr) >= len(code.Constants) {
				return fmt.Errorf("scval: run: CMPS data address %d out of range", addr)
			}
			want = code.Constants[addr]
		}
		ctx.CmpRes = int32(ctx.StrHash[op.Op0]) - int32(want)

	case OpCMPI:
		ctx.CmpRes = int32(ctx.Counter[op.Op0]) - int32(op.Imm())
		ctx.Counter[op.Op0] = 0

	case OpJE:
		if ctx.CmpRes == 0 {
			ctx.PC = op.Addr()
		}
	case OpJNE:
		if ctx.CmpRes != 0 {
			ctx.PC = op.Addr()
		}
	case OpJG:
		if ctx.CmpRes > 0 {
			ctx.PC = op.Addr()
		}
	case OpJMP:
		ctx.PC = op.Addr()

	case OpCLR:
		// reserved, no-op

	case OpINC:
		ctx.Counter[op.Op0]++

	case OpCHKN:
		if !checkKind(ctx.Str[op.Op0], op.DataAddr()) {
			ctx.PC = ErrAddr
		}

	case OpCHKC:
		ctx.CheckReg = op.Op0
		ctx.LastPC = ctx.PC
		ctx.PC = uint32(op.DataAddr())

	case OpDOWN:
		cursor.Do(OpDOWN, HookArg{})
	case OpUP:
		cursor.Do(OpUP, HookArg{})
	case OpGATT:
		cursor.Do(OpGATT, HookArg{})
	case OpNATT:
		cursor.Do(OpNATT, HookArg{})
	case OpNEXT:
		cursor.Do(OpNEXT, HookArg{})

	case OpRET:
		ctx.PC = ctx.LastPC

	case OpCALL:
		nameHash := uint32(0)
		if addr := op.DataAddr(); int(addr) < len(code.Constants) {
			nameHash = code.Constants[addr]
		}
		res := cursor.Do(OpCALL, HookArg{NameHash: nameHash, Value: ctx.Str[ctx.CheckReg]})
		if res.Accept {
			ctx.CmpRes = 1
		} else {
			ctx.CmpRes = 0
		}

	default:
		return fmt.Errorf("scval: run: unknown opcode %d at pc %d", op.Op, ctx.PC-1)
	}
	return nil
}

func load(ctx *Context, cursor Cursor, reg uint8, op Opcode) {
	res := cursor.Do(op, HookArg{})
	if res.Null {
		ctx.Str[reg] = ""
		ctx.StrHash[reg] = 0
		return
	}
	ctx.Str[reg] = res.Str
	ctx.StrHash[reg] = HashString(res.Str)
}

func checkKind(s string, kind uint16) bool {
	switch uint8(kind) {
	case KindReal:
		return isReal(s)
	case KindStr:
		return true
	case KindInteger:
		return isInteger(s)
	case KindBool:
		return isBool(s)
	default:
		return false
	}
}

// isInteger reports whether s is a non-empty run of ASCII digits.
func isInteger(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isReal reports whether s is ASCII digits with at most one '.' and
// nothing else.
func isReal(s string) bool {
	if len(s) == 0 {
		return false
	}
	dots := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			dots++
			if dots > 1 {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var boolHashes = [4]uint32{
	HashString("true"),
	HashString("false"),
	HashString("0"),
	HashString("1"),
}

// isBool reports whether s hashes to one of "true", "false", "0", "1".
func isBool(s string) bool {
	h := HashString(s)
	for _, b := range boolHashes {
		if h == b {
			return true
		}
	}
	return false
}
