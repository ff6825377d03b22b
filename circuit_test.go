package qcir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddQubitRegister(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(2, "q"))
	assert.Equal(t, 2, c.NumQubits)
	assert.Equal(t, Register{Start: 0, Size: 2}, c.QubitRegisters["q"])

	// last register grows in place
	require.NoError(t, c.AddQubitRegister(1, "q"))
	assert.Equal(t, 3, c.NumQubits)
	assert.Equal(t, Register{Start: 0, Size: 3}, c.QubitRegisters["q"])

	require.NoError(t, c.AddQubitRegister(2, "anc"))
	assert.Equal(t, 5, c.NumQubits)
	assert.Equal(t, Register{Start: 3, Size: 2}, c.QubitRegisters["anc"])

	// q no longer ends at the current width
	err := c.AddQubitRegister(1, "q")
	assert.ErrorIs(t, err, ErrParse)

	for i := 0; i < c.NumQubits; i++ {
		assert.Equal(t, i, c.InputPermutation[i])
		assert.Equal(t, i, c.OutputPermutation[i])
	}
}

func TestAddQubitRegisterMaximum(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(MaxQubits, "q"))
	err := c.AddQubitRegister(1, "overflow")
	assert.ErrorIs(t, err, ErrParse)
}

func TestAddClassicalRegister(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddClassicalRegister(2, "c"))
	assert.Equal(t, 2, c.NumClassicalBits)

	// classical registers never grow in place
	err := c.AddClassicalRegister(1, "c")
	assert.ErrorIs(t, err, ErrParse)

	require.NoError(t, c.AddClassicalRegister(1, "flag"))
	assert.Equal(t, Register{Start: 2, Size: 1}, c.ClassicalRegisters["flag"])
	assert.Equal(t, 3, c.NumClassicalBits)
}

func TestRegisterGrowthPropagatesWidth(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(2, "q"))
	c.Append(NewStandard(c.NumQubits, nil, 0, H))
	c.Append(NewStandard(c.NumQubits, []Control{{Qubit: 0}}, 1, X))

	require.NoError(t, c.AddQubitRegister(3, "q"))
	for _, op := range c.Operations {
		assert.Equal(t, 5, op.NumQubits())
	}
}

func TestQubitRegisterAndOffset(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(2, "a"))
	require.NoError(t, c.AddQubitRegister(3, "b"))

	name, off, err := c.QubitRegisterAndOffset(3)
	require.NoError(t, err)
	assert.Equal(t, "b", name)
	assert.Equal(t, 1, off)

	_, _, err = c.QubitRegisterAndOffset(7)
	assert.ErrorIs(t, err, ErrParse)
}

func TestStripTrailingIdleQubits(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(5, "q"))
	// qubit 1 is interior idle, qubits 3 and 4 are trailing idle
	c.Append(NewStandard(c.NumQubits, nil, 0, H))
	c.Append(NewStandard(c.NumQubits, nil, 2, X))

	require.NoError(t, c.StripTrailingIdleQubits())

	assert.Equal(t, 3, c.NumQubits)
	assert.Equal(t, Register{Start: 0, Size: 3}, c.QubitRegisters["q"])
	assert.True(t, c.IsIdleQubit(1), "interior idle qubit must survive")
	for _, op := range c.Operations {
		assert.Equal(t, 3, op.NumQubits())
	}
	_, ok := c.InputPermutation[3]
	assert.False(t, ok)
	_, ok = c.OutputPermutation[4]
	assert.False(t, ok)
}

func TestStripTrailingIdleQubitsDeletesEmptyRegister(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(1, "q"))
	require.NoError(t, c.AddQubitRegister(2, "anc"))
	c.Append(NewStandard(c.NumQubits, nil, 0, H))

	require.NoError(t, c.StripTrailingIdleQubits())

	assert.Equal(t, 1, c.NumQubits)
	_, ok := c.QubitRegisters["anc"]
	assert.False(t, ok)
}

func TestNumIndividualOps(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(3, "q"))
	c.Append(NewStandard(c.NumQubits, nil, 0, H))
	c.Append(NewReset(c.NumQubits, []int{0, 1, 2}))
	c.Append(NewClassicControlled(NewStandard(c.NumQubits, nil, 1, X), 0, 1))
	assert.Equal(t, 5, c.NumIndividualOps())
}

func TestPrint(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(2, "q"))
	c.Append(NewStandard(c.NumQubits, nil, 0, H))
	c.Append(NewMeasure(c.NumQubits, 0, 0))

	var sb strings.Builder
	c.Print(&sb)
	out := sb.String()
	assert.Contains(t, out, "i:\t0\t1\n")
	assert.Contains(t, out, "1:\th [0]\n")
	assert.Contains(t, out, "2:\tmeasure q0 -> c0\n")
	assert.Contains(t, out, "o:\t0\t1\n")

	sb.Reset()
	c.PrintStatistics(&sb)
	assert.Contains(t, sb.String(), "n: 2")
	assert.Contains(t, sb.String(), "m: 2")
}

func TestMaxControlsTracking(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(4, "q"))
	c.Append(NewStandard(c.NumQubits, nil, 0, H))
	assert.Equal(t, 0, c.MaxControls)
	c.Append(NewStandard(c.NumQubits, []Control{{Qubit: 0}, {Qubit: 1}, {Qubit: 2}}, 3, X))
	assert.Equal(t, 3, c.MaxControls)
}
