package qcir

// Edge is an opaque handle to a decision-diagram node owned by the backend.
type Edge any

// Backend is the decision-diagram package the builder folds operations
// through. Edges are reference counted by the backend; every edge retained
// across a fold step must be released exactly once when superseded.
type Backend interface {
	MakeIdentity(width int) Edge
	GateDD(op *Operation, width int, line []int8, perm Permutation) Edge
	Multiply(a, b Edge) Edge
	IncRef(e Edge)
	DecRef(e Edge)
	GarbageCollect()
	SetMatrixNormalization(on bool)
	IsTerminal(e Edge) bool
}

// BuildFunctionality folds the whole operation sequence into a single edge
// representing the circuit's unitary action. Every operation must be unitary.
func (c *Circuit) BuildFunctionality(b Backend) (Edge, error) {
	if c.NumQubits == 0 {
		return b.MakeIdentity(0), nil
	}

	var line [MaxQubits]int8

	b.SetMatrixNormalization(true)
	defer b.SetMatrixNormalization(false)

	e := b.MakeIdentity(c.NumQubits)
	b.IncRef(e)

	if err := c.fold(b, line[:], &e); err != nil {
		b.DecRef(e)
		return nil, err
	}
	return e, nil
}

// Simulate folds the operation sequence onto the given input state edge.
// Measurement and reset are not supported on this path.
func (c *Circuit) Simulate(in Edge, b Backend) (Edge, error) {
	var line [MaxQubits]int8

	e := in
	b.IncRef(e)

	if err := c.fold(b, line[:], &e); err != nil {
		b.DecRef(e)
		return nil, err
	}
	return e, nil
}

// fold multiplies each operation's fragment into the accumulator under the
// retain/release protocol, collecting garbage once per operation.
func (c *Circuit) fold(b Backend, line []int8, e *Edge) error {
	for _, op := range c.Operations {
		if !op.IsUnitary() {
			return parseErrorf("functionality not unitary")
		}

		resetLine(line)
		fragment, err := op.BuildDD(b, line, c.OutputPermutation)
		if err != nil {
			return err
		}

		tmp := b.Multiply(fragment, *e)
		b.IncRef(tmp)
		b.DecRef(*e)
		*e = tmp

		b.GarbageCollect()
	}
	return nil
}

// resetLine restores the scratch buffer to the unused sentinel. Stale roles
// from a prior operation would corrupt the next fragment.
func resetLine(line []int8) {
	for i := range line {
		line[i] = LineDefault
	}
}
