package qcir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEdge carries its own reference count so the tests can audit the
// retain/release protocol.
type fakeEdge struct {
	refs int
}

// fakeBackend records every call the fold makes.
type fakeBackend struct {
	edges         []*fakeEdge
	identityCalls int
	gateCalls     int
	multiplyCalls int
	gcCalls       int
	normStates    []bool
}

func (b *fakeBackend) newEdge() Edge {
	e := &fakeEdge{}
	b.edges = append(b.edges, e)
	return e
}

func (b *fakeBackend) MakeIdentity(width int) Edge {
	b.identityCalls++
	return b.newEdge()
}

func (b *fakeBackend) GateDD(op *Operation, width int, line []int8, perm Permutation) Edge {
	b.gateCalls++
	return b.newEdge()
}

func (b *fakeBackend) Multiply(x, y Edge) Edge {
	b.multiplyCalls++
	return b.newEdge()
}

func (b *fakeBackend) IncRef(e Edge) { e.(*fakeEdge).refs++ }
func (b *fakeBackend) DecRef(e Edge) { e.(*fakeEdge).refs-- }

func (b *fakeBackend) GarbageCollect() { b.gcCalls++ }

func (b *fakeBackend) SetMatrixNormalization(on bool) { b.normStates = append(b.normStates, on) }

func (b *fakeBackend) IsTerminal(e Edge) bool { return false }

// outstanding sums the reference counts across all edges ever handed out.
func (b *fakeBackend) outstanding() int {
	n := 0
	for _, e := range b.edges {
		n += e.refs
	}
	return n
}

func buildTestCircuit(t *testing.T, nops int) *Circuit {
	t.Helper()
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(2, "q"))
	for i := 0; i < nops; i++ {
		c.Append(NewStandard(c.NumQubits, nil, i%2, H))
	}
	return c
}

func TestBuildFunctionalityEmptyCircuit(t *testing.T) {
	c := NewCircuit()
	b := &fakeBackend{}

	e, err := c.BuildFunctionality(b)
	require.NoError(t, err)
	require.NotNil(t, e)

	assert.Equal(t, 1, b.identityCalls)
	assert.Zero(t, b.multiplyCalls)
	assert.Empty(t, b.normStates)
}

func TestBuildFunctionalityRefProtocol(t *testing.T) {
	c := buildTestCircuit(t, 3)
	b := &fakeBackend{}

	e, err := c.BuildFunctionality(b)
	require.NoError(t, err)

	assert.Equal(t, 3, b.gateCalls)
	assert.Equal(t, 3, b.multiplyCalls)
	assert.Equal(t, 3, b.gcCalls)

	// exactly the final accumulator remains retained
	assert.Equal(t, 1, b.outstanding())
	assert.Equal(t, 1, e.(*fakeEdge).refs)

	assert.Equal(t, []bool{true, false}, b.normStates)
}

func TestBuildFunctionalityNonUnitaryFatal(t *testing.T) {
	c := buildTestCircuit(t, 1)
	c.Append(NewMeasure(c.NumQubits, 0, 0))
	b := &fakeBackend{}

	_, err := c.BuildFunctionality(b)
	assert.ErrorIs(t, err, ErrParse)

	// the accumulator is released on the error path
	assert.Zero(t, b.outstanding())
	assert.Equal(t, []bool{true, false}, b.normStates)
}

func TestSimulate(t *testing.T) {
	c := buildTestCircuit(t, 2)
	b := &fakeBackend{}
	in := b.newEdge()

	e, err := c.Simulate(in, b)
	require.NoError(t, err)

	assert.Zero(t, b.identityCalls)
	assert.Equal(t, 2, b.multiplyCalls)
	assert.Equal(t, 1, b.outstanding())
	assert.Equal(t, 1, e.(*fakeEdge).refs)

	// the simulation path never touches normalization mode
	assert.Empty(t, b.normStates)
}

func TestSimulateNonUnitaryFatal(t *testing.T) {
	c := buildTestCircuit(t, 0)
	c.Append(NewReset(c.NumQubits, []int{0}))
	b := &fakeBackend{}

	_, err := c.Simulate(b.newEdge(), b)
	assert.ErrorIs(t, err, ErrParse)
	assert.Zero(t, b.outstanding())
}

func TestBuildDDLineRoles(t *testing.T) {
	c := NewCircuit()
	require.NoError(t, c.AddQubitRegister(4, "q"))
	op := NewStandard(c.NumQubits, []Control{{Qubit: 0}, {Qubit: 1, Negative: true}}, 2, X)

	var captured []int8
	b := &roleCaptureBackend{onGate: func(line []int8) {
		captured = append([]int8(nil), line[:4]...)
	}}

	var line [MaxQubits]int8
	resetLine(line[:])
	_, err := op.BuildDD(b, line[:], c.OutputPermutation)
	require.NoError(t, err)

	assert.Equal(t, []int8{LineControlPos, LineControlNeg, LineTarget, LineDefault}, captured)
}

type roleCaptureBackend struct {
	fakeBackend
	onGate func(line []int8)
}

func (b *roleCaptureBackend) GateDD(op *Operation, width int, line []int8, perm Permutation) Edge {
	b.onGate(line)
	return b.newEdge()
}
