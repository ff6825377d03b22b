package qcir

import (
	"math"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importRealString(t *testing.T, src string) (*Circuit, error) {
	t.Helper()
	c := NewCircuit()
	err := c.ImportReal(strings.NewReader(src))
	return c, err
}

func TestImportRealHeader(t *testing.T) {
	c, err := importRealString(t, heredoc.Doc(`
		# a comment line
		.version 2.0
		.numvars 3
		.variables a b c
		.inputs a b c
		.outputs a b c
		.begin
		.end
	`))
	require.NoError(t, err)

	assert.Equal(t, 3, c.NumQubits)
	assert.Equal(t, 3, c.NumClassicalBits)
	assert.Equal(t, Register{Start: 1, Size: 1}, c.QubitRegisters["b"])
	assert.Equal(t, Register{Start: 2, Size: 1}, c.ClassicalRegisters["c_c"])
	for i := 0; i < 3; i++ {
		assert.Equal(t, i, c.InputPermutation[i])
		assert.Equal(t, i, c.OutputPermutation[i])
	}
}

func TestImportRealHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "bare token before begin",
			src:  "garbage\n.begin\n.end\n",
		},
		{
			name: "unknown dot command",
			src:  ".numvars 1\n.variables a\n.frobnicate\n.begin\n.end\n",
		},
		{
			name: "missing enddefine",
			src:  ".numvars 1\n.variables a\n.define\n",
		},
		{
			name: "truncated header",
			src:  ".numvars 2\n.variables a b\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importRealString(t, tt.src)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestImportRealSingleHadamard(t *testing.T) {
	c, err := importRealString(t, heredoc.Doc(`
		.numvars 1
		.variables q0
		.begin
		h1 q0
		.end
	`))
	require.NoError(t, err)

	require.Len(t, c.Operations, 1)
	op := c.Operations[0]
	assert.Equal(t, H, op.Kind)
	assert.Empty(t, op.Controls)
	assert.Equal(t, []int{0}, op.Targets)
}

func TestImportRealRotationSnapping(t *testing.T) {
	tests := []struct {
		name       string
		gate       string
		wantKind   OpKind
		wantLambda float64
	}{
		{name: "snap to t", gate: "q1:4", wantKind: T},
		{name: "snap to tdg", gate: "q1:-4", wantKind: Tdg},
		{name: "snap to s", gate: "q1:2", wantKind: S},
		{name: "snap to sdg", gate: "q1:-2", wantKind: Sdg},
		{name: "snap to z", gate: "q1:1", wantKind: Z},
		{name: "integer without special form", gate: "q1:8", wantKind: RZ, wantLambda: math.Pi / 8},
		{name: "non-integer stays generic", gate: "q1:4.2", wantKind: RZ, wantLambda: math.Pi / 4.2},
		{name: "near-integer outside tolerance", gate: "q1:4.000001", wantKind: RZ, wantLambda: math.Pi / 4.000001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := importRealString(t, ".numvars 1\n.variables q0\n.begin\n"+tt.gate+" q0\n.end\n")
			require.NoError(t, err)
			require.Len(t, c.Operations, 1)
			op := c.Operations[0]
			assert.Equal(t, tt.wantKind, op.Kind)
			if tt.wantLambda != 0 {
				assert.InDelta(t, tt.wantLambda, op.Lambda, 1e-12)
			}
		})
	}
}

func TestImportRealControlledGates(t *testing.T) {
	c, err := importRealString(t, heredoc.Doc(`
		.numvars 3
		.variables a b c
		.begin
		t3 a -b c
		c b c
		v a b
		.end
	`))
	require.NoError(t, err)
	require.Len(t, c.Operations, 3)

	toffoli := c.Operations[0]
	assert.Equal(t, X, toffoli.Kind)
	assert.Equal(t, []Control{{Qubit: 0}, {Qubit: 1, Negative: true}}, toffoli.Controls)
	assert.Equal(t, []int{2}, toffoli.Targets)

	// "c" forces exactly one control
	cnot := c.Operations[1]
	assert.Equal(t, X, cnot.Kind)
	assert.Equal(t, []Control{{Qubit: 1}}, cnot.Controls)
	assert.Equal(t, []int{2}, cnot.Targets)

	// the V family forces exactly one control
	v := c.Operations[2]
	assert.Equal(t, V, v.Kind)
	assert.Equal(t, []Control{{Qubit: 0}}, v.Controls)
}

func TestImportRealTwoTargetGates(t *testing.T) {
	c, err := importRealString(t, heredoc.Doc(`
		.numvars 3
		.variables a b c
		.begin
		f2 a b
		p3 a b c
		.end
	`))
	require.NoError(t, err)
	require.Len(t, c.Operations, 2)

	swap := c.Operations[0]
	assert.Equal(t, SWAP, swap.Kind)
	assert.Empty(t, swap.Controls)
	assert.ElementsMatch(t, []int{0, 1}, swap.Targets)

	peres := c.Operations[1]
	assert.Equal(t, Peres, peres.Kind)
	assert.Len(t, peres.Targets, 2)
}

func TestImportRealBodyErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unsupported gate token", body: "zz&& a\n"},
		{name: "unresolved label", body: "h1 nosuch\n"},
		{name: "too few variables", body: "t3 a b\n"},
		{name: "too many controls for width", body: "t4 a b c\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importRealString(t, ".numvars 3\n.variables a b c\n.begin\n"+tt.body+".end\n")
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}
