package scval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCursor is a scriptable Cursor used to unit-test the VM's fetch
// loop in isolation from any real document format.
type stubCursor struct {
	calls []Opcode
	do    func(op Opcode, arg HookArg) HookResult
}

func (s *stubCursor) Do(op Opcode, arg HookArg) HookResult {
	s.calls = append(s.calls, op)
	if s.do != nil {
		return s.do(op, arg)
	}
	return HookResult{}
}

func TestRunHaltsOnErrAddr(t *testing.T) {
	p := NewProgram()
	p.JMPErr()
	bc, err := p.Encode()
	require.NoError(t, err)

	ok, err := Run(bc, &stubCursor{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunAcceptsEmptyProgram(t *testing.T) {
	p := NewProgram()
	bc, err := p.Encode()
	require.NoError(t, err)

	ok, err := Run(bc, &stubCursor{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunCHKNRejectsWrongKind(t *testing.T) {
	p := NewProgram()
	p.LDEV(0)
	p.CHKN(0, KindInteger)
	bc, err := p.Encode()
	require.NoError(t, err)

	cur := &stubCursor{do: func(op Opcode, arg HookArg) HookResult {
		if op == OpLDEV {
			return HookResult{Str: "not-a-number"}
		}
		return HookResult{}
	}}
	ok, err := Run(bc, cur)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunCHKNAcceptsMatchingKind(t *testing.T) {
	p := NewProgram()
	p.LDEV(0)
	p.CHKN(0, KindInteger)
	bc, err := p.Encode()
	require.NoError(t, err)

	cur := &stubCursor{do: func(op Opcode, arg HookArg) HookResult {
		if op == OpLDEV {
			return HookResult{Str: "42"}
		}
		return HookResult{}
	}}
	ok, err := Run(bc, cur)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunCHKCCallsSubroutineAndReturns(t *testing.T) {
	p := NewProgram()
	p.LDEV(0)
	end := p.NewLabel()
	entry := p.NewLabel()
	p.CHKC(0, 0) // placeholder patched below
	p.JMP(end)
	p.Bind(entry)
	p.RET()
	p.Bind(end)

	// Patch the CHKC emitted above to call the subroutine at entry.
	p.PatchDataAddr(1, uint16(entry.pos))

	bc, err := p.Encode()
	require.NoError(t, err)

	cur := &stubCursor{do: func(op Opcode, arg HookArg) HookResult {
		if op == OpLDEV {
			return HookResult{Str: "x"}
		}
		return HookResult{}
	}}
	ok, err := Run(bc, cur)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunUnknownOpcodeErrors(t *testing.T) {
	bc := &Bytecode{Code: []Operation{{Op: Opcode(250)}}}
	_, err := Run(bc, &stubCursor{})
	require.Error(t, err)
}

func TestIsIntegerRealBool(t *testing.T) {
	assert.True(t, isInteger("42"))
	assert.False(t, isInteger(""))
	assert.False(t, isInteger("4.2"))

	assert.True(t, isReal("4.2"))
	assert.True(t, isReal("42"))
	assert.False(t, isReal("4.2.0"))
	assert.False(t, isReal(""))

	assert.True(t, isBool("true"))
	assert.True(t, isBool("false"))
	assert.True(t, isBool("0"))
	assert.True(t, isBool("1"))
	assert.False(t, isBool("maybe"))
}
