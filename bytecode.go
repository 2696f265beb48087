package scval

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/gyakoo/scval/ascii"
)

// Bytecode is the flat, append-only artifact produced by Compile: a
// code segment, a constant segment of string hashes, and the register
// bank sizes required to execute it. Once produced it is immutable —
// concurrent Runs may share one Bytecode freely (§5).
type Bytecode struct {
	MaxCounterReg int
	MaxStringReg  int
	Code          []Operation
	Constants     []uint32
}

// binaryHeaderSize is the four u32 header fields of the wire format
// (§6): max_counter_reg, max_string_reg, operation_count, constant_count.
const binaryHeaderSize = 4 * 4

// Save serializes b into the exact little-endian layout specified in
// §6: a four-u32 header, then the code segment (4 bytes/operation),
// then the constant segment (u32 hashes). Grounded on scval.cpp's
// ScvalSaveToBinary and, for Go encoding idiom, the teacher's
// writeU16/encodeU16 use of encoding/binary in vm.go/vm_encoder.go.
func (b *Bytecode) Save() []byte {
	size := binaryHeaderSize + len(b.Code)*4 + len(b.Constants)*4
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:], uint32(b.MaxCounterReg))
	binary.LittleEndian.PutUint32(buf[4:], uint32(b.MaxStringReg))
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(b.Code)))
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(b.Constants)))

	off := binaryHeaderSize
	for _, op := range b.Code {
		buf[off] = byte(op.Op)
		buf[off+1] = op.Op0
		buf[off+2] = op.Op1
		buf[off+3] = op.Op2
		off += 4
	}
	for _, c := range b.Constants {
		binary.LittleEndian.PutUint32(buf[off:], c)
		off += 4
	}
	return buf
}

// Load reconstitutes a Bytecode from the layout written by Save. It
// allocates fresh Code/Constants slices, as scval.cpp's
// ScvalLoadFromBinary does.
func Load(data []byte) (*Bytecode, error) {
	if len(data) < binaryHeaderSize {
		return nil, fmt.Errorf("scval: load: truncated header (%d bytes)", len(data))
	}
	maxCounter := binary.LittleEndian.Uint32(data[0:])
	maxString := binary.LittleEndian.Uint32(data[4:])
	opCount := binary.LittleEndian.Uint32(data[8:])
	constCount := binary.LittleEndian.Uint32(data[12:])

	want := binaryHeaderSize + int(opCount)*4 + int(constCount)*4
	if len(data) < want {
		return nil, fmt.Errorf("scval: load: truncated body: want %d bytes, have %d", want, len(data))
	}

	code := make([]Operation, opCount)
	off := binaryHeaderSize
	for i := range code {
		code[i] = Operation{
			Op:  Opcode(data[off]),
			Op0: data[off+1],
			Op1: data[off+2],
			Op2: data[off+3],
		}
		off += 4
	}

	consts := make([]uint32, constCount)
	for i := range consts {
		consts[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}

	return &Bytecode{
		MaxCounterReg: int(maxCounter),
		MaxStringReg:  int(maxString),
		Code:          code,
		Constants:     consts,
	}, nil
}

// Equal reports whether b and other are bit-identical in every header
// field, code operation, and constant — the binary round-trip
// property tested in §8.
func (b *Bytecode) Equal(other *Bytecode) bool {
	if b.MaxCounterReg != other.MaxCounterReg || b.MaxStringReg != other.MaxStringReg {
		return false
	}
	if len(b.Code) != len(other.Code) || len(b.Constants) != len(other.Constants) {
		return false
	}
	for i := range b.Code {
		if b.Code[i] != other.Code[i] {
			return false
		}
	}
	for i := range b.Constants {
		if b.Constants[i] != other.Constants[i] {
			return false
		}
	}
	return true
}

// Disassemble renders the bytecode as a human-readable listing, one
// instruction per line, resolving jump targets to absolute addresses
// and data addresses against the constant segment. Supplemented from
// original_source/scval.cpp's debug dump and grounded on the teacher's
// vm_program.go prettyString switch-per-opcode structure.
func (b *Bytecode) Disassemble() string { return b.disasm(false) }

// DisassembleColor is Disassemble with ANSI syntax highlighting via
// the ascii theme, reusing the teacher's ascii package as-is.
func (b *Bytecode) DisassembleColor() string { return b.disasm(true) }

func (b *Bytecode) disasm(color bool) string {
	var s strings.Builder
	fmt.Fprintf(&s, "; max_counter_reg=%d max_string_reg=%d operations=%d constants=%d\n",
		b.MaxCounterReg, b.MaxStringReg, len(b.Code), len(b.Constants))
	for pc, op := range b.Code {
		mnemonic := op.Op.String()
		if color {
			mnemonic = ascii.Color(ascii.DefaultTheme.Operator, "%-4s", mnemonic)
		} else {
			mnemonic = fmt.Sprintf("%-4s", mnemonic)
		}
		operand := b.operandString(op, color)
		fmt.Fprintf(&s, "%4d: %s %s\n", pc, mnemonic, operand)
	}
	return s.String()
}

func (b *Bytecode) operandString(op Operation, color bool) string {
	paint := func(c, format string, args ...any) string {
		if !color {
			return fmt.Sprintf(format, args...)
		}
		return ascii.Color(c, format, args...)
	}
	switch op.Op {
	case OpLDEN, OpLDEV, OpLDAN, OpLDAV, OpINC:
		return paint(ascii.DefaultTheme.Operand, "r%d", op.Op0)
	case OpCMPS:
		return fmt.Sprintf("%s, %s", paint(ascii.DefaultTheme.Operand, "r%d", op.Op0), b.dataAddrString(op.DataAddr(), color))
	case OpCMPI:
		return fmt.Sprintf("%s, %s", paint(ascii.DefaultTheme.Operand, "r%d", op.Op0), paint(ascii.DefaultTheme.Literal, "%d", op.Imm()))
	case OpJE, OpJNE, OpJG, OpJMP:
		return b.jumpAddrString(op.Addr(), color)
	case OpCHKN:
		return fmt.Sprintf("%s, kind=%d", paint(ascii.DefaultTheme.Operand, "r%d", op.Op0), op.DataAddr())
	case OpCHKC:
		return fmt.Sprintf("%s, %s", paint(ascii.DefaultTheme.Operand, "r%d", op.Op0), b.jumpAddrString(uint32(op.DataAddr()), color))
	case OpCALL:
		return b.dataAddrString(op.DataAddr(), color)
	default:
		return ""
	}
}

func (b *Bytecode) dataAddrString(addr uint16, color bool) string {
	if addr == NilData {
		if color {
			return ascii.Color(ascii.DefaultTheme.Muted, "NIL")
		}
		return "NIL"
	}
	hash := uint32(0)
	if int(addr) < len(b.Constants) {
		hash = b.Constants[addr]
	}
	s := fmt.Sprintf("#%d(0x%08x)", addr, hash)
	if color {
		return ascii.Color(ascii.DefaultTheme.Literal, "%s", s)
	}
	return s
}

func (b *Bytecode) jumpAddrString(addr uint32, color bool) string {
	if addr == ErrAddr {
		if color {
			return ascii.Color(ascii.DefaultTheme.Error, "ERR")
		}
		return "ERR"
	}
	s := fmt.Sprintf("%d", addr)
	if color {
		return ascii.Color(ascii.DefaultTheme.Span, "%s", s)
	}
	return s
}

// String implements fmt.Stringer via Disassemble, so a Bytecode can
// be logged or printed directly.
func (b *Bytecode) String() string { return b.Disassemble() }
