package scval

import "fmt"

// Label is a forward- or backward-reference to a code position that
// has not necessarily been emitted yet. Program.Bind fixes its final
// position; Program.Encode fails if any referenced Label was never
// bound.
//
// Because every Scval instruction occupies exactly one code-segment
// slot (unlike the teacher's variable-size PEG bytecode), a Label's
// final value is simply an instruction index — there is no byte-size
// accounting pass. This is the Go-idiomatic stand-in, described in
// SPEC_FULL.md §3, for the original C++ generator's in-place operand
// back-patching.
type Label struct {
	pos   int
	bound bool
}

type symInstr struct {
	op  Opcode
	reg uint8

	hasImm bool
	imm    uint16

	hasDataAddr bool
	dataAddr    uint16

	hasJump     bool
	label       *Label
	literalJump uint32
}

// Program is the symbolic, append-only instruction stream built by
// Compile. Unresolved jump targets are carried as *Label until
// Encode, which performs the single backpatching pass over Program
// and produces a flat Bytecode.
type Program struct {
	instrs   []symInstr
	consts   []uint32
	constIdx map[uint32]int

	MaxCounterReg int
	MaxStringReg  int
}

// NewProgram creates an empty Program ready to receive instructions.
func NewProgram() *Program {
	return &Program{constIdx: make(map[uint32]int)}
}

// NewLabel creates an unbound Label.
func (p *Program) NewLabel() *Label { return &Label{pos: -1} }

// Bind fixes l to the position of the next instruction to be emitted
// (i.e. the current code length).
func (p *Program) Bind(l *Label) {
	l.pos = len(p.instrs)
	l.bound = true
}

// PC returns the code address the next emitted instruction will occupy.
func (p *Program) PC() int { return len(p.instrs) }

func (p *Program) emit(i symInstr) int {
	p.instrs = append(p.instrs, i)
	return len(p.instrs) - 1
}

// Intern adds name's hash to the constant segment, deduplicating by
// hash and preserving first-seen order, and returns its index.
func (p *Program) Intern(name string) uint16 {
	return p.internHash(HashString(name))
}

func (p *Program) internHash(h uint32) uint16 {
	if idx, ok := p.constIdx[h]; ok {
		return uint16(idx)
	}
	idx := len(p.consts)
	p.consts = append(p.consts, h)
	p.constIdx[h] = idx
	return uint16(idx)
}

// --- no-operand / single-register loads and cursor moves ---

func (p *Program) LDEN(reg uint8) { p.emit(symInstr{op: OpLDEN, reg: reg}) }
func (p *Program) LDEV(reg uint8) { p.emit(symInstr{op: OpLDEV, reg: reg}) }
func (p *Program) LDAN(reg uint8) { p.emit(symInstr{op: OpLDAN, reg: reg}) }
func (p *Program) LDAV(reg uint8) { p.emit(symInstr{op: OpLDAV, reg: reg}) }
func (p *Program) CLR()           { p.emit(symInstr{op: OpCLR}) }
func (p *Program) DOWN()          { p.emit(symInstr{op: OpDOWN}) }
func (p *Program) UP()            { p.emit(symInstr{op: OpUP}) }
func (p *Program) GATT()          { p.emit(symInstr{op: OpGATT}) }
func (p *Program) NATT()          { p.emit(symInstr{op: OpNATT}) }
func (p *Program) NEXT()          { p.emit(symInstr{op: OpNEXT}) }
func (p *Program) RET()           { p.emit(symInstr{op: OpRET}) }

func (p *Program) INC(reg uint8) { p.emit(symInstr{op: OpINC, reg: reg}) }

// CMPI emits `cmp_res := counter[reg] - imm` (counter is cleared by
// the VM as a side effect, per §4.3).
func (p *Program) CMPI(reg uint8, imm uint16) {
	p.emit(symInstr{op: OpCMPI, reg: reg, hasImm: true, imm: imm})
}

// CMPS emits a string-hash comparison against a constant-segment slot.
func (p *Program) CMPS(reg uint8, dataAddr uint16) {
	p.emit(symInstr{op: OpCMPS, reg: reg, hasDataAddr: true, dataAddr: dataAddr})
}

// CMPSName interns name and emits CMPS against it.
func (p *Program) CMPSName(reg uint8, name string) {
	p.CMPS(reg, p.Intern(name))
}

// CMPSNil emits a comparison against NilData, the "cursor returned no
// more elements/attributes" sentinel.
func (p *Program) CMPSNil(reg uint8) {
	p.CMPS(reg, NilData)
}

// CHKN emits a built-in type-predicate check.
func (p *Program) CHKN(reg uint8, kind uint8) {
	p.emit(symInstr{op: OpCHKN, reg: reg, hasDataAddr: true, dataAddr: uint16(kind)})
}

// CHKC emits a user-type subroutine call whose target is not yet
// known; it stores dataAddr as a placeholder (the callee's leaf
// handle) and returns the instruction index so the compiler can
// later overwrite it with PatchDataAddr once the subroutine's entry
// point is known.
func (p *Program) CHKC(reg uint8, placeholder uint16) int {
	return p.emit(symInstr{op: OpCHKC, reg: reg, hasDataAddr: true, dataAddr: placeholder})
}

// PatchDataAddr overwrites the data-address operand of the
// instruction at idx — used to back-patch CHKC call targets once a
// typedef's subroutine entry point is known.
func (p *Program) PatchDataAddr(idx int, addr uint16) {
	p.instrs[idx].dataAddr = addr
}

// CALL interns name and emits a host-callback invocation.
func (p *Program) CALL(name string) {
	p.CALLData(p.Intern(name))
}

// CALLData emits a host-callback invocation against an
// already-resolved constant-segment index.
func (p *Program) CALLData(dataAddr uint16) {
	p.emit(symInstr{op: OpCALL, hasDataAddr: true, dataAddr: dataAddr})
}

// --- jumps ---

func (p *Program) jump(op Opcode, l *Label) int {
	return p.emit(symInstr{op: op, hasJump: true, label: l})
}

func (p *Program) jumpErr(op Opcode) int {
	return p.emit(symInstr{op: op, hasJump: true, literalJump: ErrAddr})
}

func (p *Program) JMP(l *Label) int { return p.jump(OpJMP, l) }
func (p *Program) JE(l *Label) int  { return p.jump(OpJE, l) }
func (p *Program) JNE(l *Label) int { return p.jump(OpJNE, l) }
func (p *Program) JG(l *Label) int  { return p.jump(OpJG, l) }

// JMPErr/JEErr/JNEErr/JGErr emit a jump whose target is the
// reserved ERR_ADDR sentinel directly, the common case throughout the
// element/attribute-block templates (§4.4).
func (p *Program) JMPErr() int { return p.jumpErr(OpJMP) }
func (p *Program) JEErr() int  { return p.jumpErr(OpJE) }
func (p *Program) JNEErr() int { return p.jumpErr(OpJNE) }
func (p *Program) JGErr() int  { return p.jumpErr(OpJG) }

// UseCounterReg/UseStringReg record the highest register index the
// compiler has allocated in either bank, so Encode can size the VM's
// register-file header correctly (actual allocation is max+1 slots).
func (p *Program) UseCounterReg(r uint8) {
	if int(r) > p.MaxCounterReg {
		p.MaxCounterReg = int(r)
	}
}

func (p *Program) UseStringReg(r uint8) {
	if int(r) > p.MaxStringReg {
		p.MaxStringReg = int(r)
	}
}

// Encode resolves every Label reference and produces a flat Bytecode.
// It is an error to Encode a Program with an unbound Label still
// referenced by some instruction.
func (p *Program) Encode() (*Bytecode, error) {
	code := make([]Operation, len(p.instrs))
	for i, in := range p.instrs {
		op := Operation{Op: in.op}
		switch {
		case in.hasJump:
			addr := in.literalJump
			if in.label != nil {
				if !in.label.bound {
					return nil, fmt.Errorf("scval: encode: unresolved label referenced by instruction %d (%s)", i, in.op)
				}
				addr = uint32(in.label.pos)
			}
			op.SetAddr(addr)
		case in.hasImm:
			op.Op0 = in.reg
			op.SetImm(in.imm)
		case in.hasDataAddr:
			op.Op0 = in.reg
			op.SetDataAddr(in.dataAddr)
		default:
			op.Op0 = in.reg
		}
		code[i] = op
	}
	consts := make([]uint32, len(p.consts))
	copy(consts, p.consts)
	return &Bytecode{
		MaxCounterReg: p.MaxCounterReg,
		MaxStringReg:  p.MaxStringReg,
		Code:          code,
		Constants:     consts,
	}, nil
}
