package qcir

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpQASM(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(2, "q"))
	require.NoError(t, c.AddClassicalRegister(2, "c"))
	c.Append(NewStandard(c.NumQubits, nil, 0, H))
	c.Append(NewStandard(c.NumQubits, []Control{{Qubit: 0}}, 1, X))
	c.Append(NewStandard(c.NumQubits, nil, 1, RZ, math.Pi/2))
	c.Append(NewMeasure(c.NumQubits, 1, 0))

	var sb strings.Builder
	require.NoError(t, c.DumpQASM(&sb))

	assert.Equal(t, heredoc.Doc(`
		OPENQASM 2.0;
		include "qelib1.inc";
		qreg q[2];
		creg c[2];
		h q[0];
		cx q[0],q[1];
		rz(pi/2) q[1];
		measure q[1] -> c[0];
	`), sb.String())
}

func TestDumpQASMDefaultRegisters(t *testing.T) {
	c := NewCircuit()
	err := c.ImportGRCS(strings.NewReader("2\n0 h 0\n"))
	require.NoError(t, err)
	c.NumClassicalBits = 2

	var sb strings.Builder
	require.NoError(t, c.DumpQASM(&sb))

	out := sb.String()
	assert.Contains(t, out, "qreg q[2];")
	assert.Contains(t, out, "creg c[2];")
	assert.Contains(t, out, "h q[0];")
}

func TestDumpQASMNegativeControls(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(2, "q"))
	c.Append(NewStandard(c.NumQubits, []Control{{Qubit: 0, Negative: true}}, 1, X))

	var sb strings.Builder
	require.NoError(t, c.DumpQASM(&sb))

	// negative controls are conjugated with x gates
	assert.Contains(t, sb.String(), heredoc.Doc(`
		x q[0];
		cx q[0],q[1];
		x q[0];
	`))
}

func TestDumpQASMClassicControlled(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(1, "q"))
	require.NoError(t, c.AddClassicalRegister(1, "c"))
	c.Append(NewClassicControlled(NewStandard(c.NumQubits, nil, 0, X), 0, 1))

	var sb strings.Builder
	require.NoError(t, c.DumpQASM(&sb))
	assert.Contains(t, sb.String(), "if (c==1) x q[0];")
}

func TestQASMRoundTrip(t *testing.T) {
	src := heredoc.Doc(`
		OPENQASM 2.0;
		include "qelib1.inc";
		qreg q[3];
		creg c[3];
		h q[0];
		cx q[0],q[1];
		ccx q[0],q[1],q[2];
		rz(pi/4) q[2];
		barrier q[0],q[1],q[2];
		measure q[2] -> c[2];
	`)
	c := NewCircuit()
	require.NoError(t, c.ImportOpenQASM(strings.NewReader(src)))

	var sb strings.Builder
	require.NoError(t, c.DumpQASM(&sb))
	assert.Equal(t, src, sb.String())
}

func TestDumpQiskitDeviceTiers(t *testing.T) {
	tests := []struct {
		name   string
		qubits int
		device string
	}{
		{name: "small", qubits: 4, device: "FakeBurlington"},
		{name: "medium", qubits: 12, device: "FakeBoeblingen"},
		{name: "large", qubits: 40, device: "FakeRochester"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCircuit()
			require.NoError(t, c.AddQubitRegister(tt.qubits, "q"))

			var sb strings.Builder
			require.NoError(t, c.DumpQiskit(&sb, "test"))
			assert.Contains(t, sb.String(), "from qiskit.test.mock import "+tt.device)
		})
	}
}

func TestDumpQiskitAncillaRegister(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(5, "q"))
	c.Append(NewStandard(c.NumQubits, []Control{{Qubit: 0}, {Qubit: 1}, {Qubit: 2}, {Qubit: 3}}, 4, X))

	var sb strings.Builder
	require.NoError(t, c.DumpQiskit(&sb, "test"))
	out := sb.String()

	assert.Contains(t, out, "anc = QuantumRegister(2, 'anc')")
	assert.Contains(t, out, "qc = QuantumCircuit(q, c, anc)")
	assert.Contains(t, out, "mode='v-chain'")
	assert.Contains(t, out, `open("test_decomposed.qasm", "w")`)
	assert.Contains(t, out, `open("test_transpiled.qasm", "w")`)
}

func TestDumpQiskitTooManyQubits(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(54, "q"))

	var sb strings.Builder
	err := c.DumpQiskit(&sb, "test")
	assert.ErrorIs(t, err, ErrParse)
}

func TestDumpUnsupportedDirections(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(1, "q"))

	dir := t.TempDir()
	assert.ErrorIs(t, c.Dump(filepath.Join(dir, "out.real"), FormatReal), ErrParse)
	assert.ErrorIs(t, c.Dump(filepath.Join(dir, "out.txt"), FormatGRCS), ErrParse)
}

func TestDumpFileError(t *testing.T) {
	c := NewCircuit()
	err := c.Dump("/nonexistent-dir/out.qasm", FormatOpenQASM)
	assert.ErrorIs(t, err, ErrFile)
}

func TestImportDispatch(t *testing.T) {
	_, err := Import("circuit.unknown")
	assert.ErrorIs(t, err, ErrParse)

	_, err = Import("missing.qasm")
	assert.ErrorIs(t, err, ErrFile)
}
