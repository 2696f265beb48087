package scval

import "fmt"

// Opcode is the one-byte operation tag of a bytecode Operation. The
// set and operand shapes are fixed by the wire format (see Bytecode)
// and mirror scvaltypes.h's ScvalVMOpcode one-for-one.
type Opcode uint8

const (
	OpLDEN Opcode = iota
	OpLDEV
	OpLDAN
	OpLDAV
	OpCMPS
	OpCMPI
	OpJE
	OpJNE
	OpJG
	OpJMP
	OpCLR
	OpINC
	OpCHKN
	OpCHKC
	OpDOWN
	OpUP
	OpGATT
	OpNATT
	OpNEXT
	OpRET
	OpCALL
)

var opcodeNames = map[Opcode]string{
	OpLDEN: "LDEN", OpLDEV: "LDEV", OpLDAN: "LDAN", OpLDAV: "LDAV",
	OpCMPS: "CMPS", OpCMPI: "CMPI", OpJE: "JE", OpJNE: "JNE", OpJG: "JG",
	OpJMP: "JMP", OpCLR: "CLR", OpINC: "INC", OpCHKN: "CHKN", OpCHKC: "CHKC",
	OpDOWN: "DOWN", OpUP: "UP", OpGATT: "GATT", OpNATT: "NATT", OpNEXT: "NEXT",
	OpRET: "RET", OpCALL: "CALL",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Opcode(%d)", uint8(o))
}

// Type-kind tags for CHKN, matching §4.3: kind 0 = real, 1 = str
// (always passes), 2 = integer, 3 = bool.
const (
	KindReal    uint8 = 0
	KindStr     uint8 = 1
	KindInteger uint8 = 2
	KindBool    uint8 = 3
)

// NilData is the reserved data-address value meaning "no constant",
// used when comparing a string register against a missing/null
// cursor value (the child/attribute-walk loop exit signal).
const NilData uint16 = 0xFFFF

// ErrAddr is the reserved jump-address sentinel meaning "validation
// failed". Assigning it to the program counter both aborts the fetch
// loop and signals rejection.
const ErrAddr uint32 = 0xFFFFFF

// Operation is one fixed-width bytecode instruction: an opcode plus
// three operand bytes with two overlapping operand views, mirroring
// scvaltypes.h's ScvalVMOperation layout exactly so Bytecode's binary
// encoding matches byte-for-byte.
type Operation struct {
	Op  Opcode
	Op0 uint8
	Op1 uint8
	Op2 uint8
}

// Addr reads the three trailing bytes as a 24-bit code address, the
// view used by JMP/JE/JNE/JG. CHKC's back-patched target is read
// through DataAddr instead.
func (o Operation) Addr() uint32 {
	return uint32(o.Op0)<<16 | uint32(o.Op1)<<8 | uint32(o.Op2)
}

// SetAddr writes a 24-bit code address into the trailing bytes.
func (o *Operation) SetAddr(a uint32) {
	o.Op0 = uint8(a >> 16)
	o.Op1 = uint8(a >> 8)
	o.Op2 = uint8(a)
}

// DataAddr reads Op1/Op2 as a 16-bit constant-segment index, leaving
// Op0 free to hold a register index.
func (o Operation) DataAddr() uint16 {
	return uint16(o.Op1)<<8 | uint16(o.Op2)
}

// SetDataAddr writes a 16-bit constant-segment index into Op1/Op2.
func (o *Operation) SetDataAddr(d uint16) {
	o.Op1 = uint8(d >> 8)
	o.Op2 = uint8(d)
}

// Imm reads Op1/Op2 as a 16-bit immediate, the view CMPI uses.
func (o Operation) Imm() uint16 { return o.DataAddr() }

// SetImm writes a 16-bit immediate into Op1/Op2.
func (o *Operation) SetImm(v uint16) { o.SetDataAddr(v) }
