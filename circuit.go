package qcir

import (
	"fmt"
	"io"
	"sort"
)

// MaxQubits is the hard maximum circuit width; it also sizes the scratch
// line buffer handed to the decision-diagram backend.
const MaxQubits = 128

// Register is a named, contiguous index range inside the circuit's global
// qubit or classical-bit index space.
type Register struct {
	Start int
	Size  int
}

// RegisterMap maps register names to their index ranges.
type RegisterMap map[string]Register

// Permutation maps logical qubit indices to physical wire positions. It is a
// bijection over the currently live indices whenever the circuit is
// well-formed.
type Permutation map[int]int

// Circuit is the canonical in-memory model: registers, the input/output wire
// permutations, and the temporally ordered operation sequence.
type Circuit struct {
	Name             string
	NumQubits        int
	NumClassicalBits int

	QubitRegisters     RegisterMap
	ClassicalRegisters RegisterMap

	InputPermutation  Permutation
	OutputPermutation Permutation

	Operations []*Operation

	// MaxControls is the largest control count observed across all appended
	// operations; the Qiskit exporter sizes its ancilla register from it.
	MaxControls int
}

// NewCircuit returns an empty circuit.
func NewCircuit() *Circuit {
	return &Circuit{
		QubitRegisters:     RegisterMap{},
		ClassicalRegisters: RegisterMap{},
		InputPermutation:   Permutation{},
		OutputPermutation:  Permutation{},
	}
}

// Append adds an operation to the end of the sequence, tracking MaxControls.
func (c *Circuit) Append(op *Operation) {
	if op.Class == ClassStandard {
		c.updateMaxControls(len(op.Controls))
	}
	c.Operations = append(c.Operations, op)
}

func (c *Circuit) updateMaxControls(n int) {
	if n > c.MaxControls {
		c.MaxControls = n
	}
}

// AddQubitRegister declares (or grows) a qubit register of the given size.
// Only the register ending at the current width may be grown in place.
func (c *Circuit) AddQubitRegister(n int, name string) error {
	if c.NumQubits+n > MaxQubits {
		return parseErrorf("adding %d qubits exceeds the supported maximum: %d vs. %d", n, c.NumQubits+n, MaxQubits)
	}

	if reg, ok := c.QubitRegisters[name]; ok {
		if reg.Start+reg.Size != c.NumQubits {
			return parseErrorf("growing existing qubit register %q is only supported for the last register in a circuit", name)
		}
		reg.Size += n
		c.QubitRegisters[name] = reg
	} else {
		c.QubitRegisters[name] = Register{Start: c.NumQubits, Size: n}
	}

	for i := 0; i < n; i++ {
		j := c.NumQubits + i
		c.InputPermutation[j] = j
		c.OutputPermutation[j] = j
	}
	c.NumQubits += n

	for _, op := range c.Operations {
		op.SetNumQubits(c.NumQubits)
	}
	return nil
}

// AddClassicalRegister declares a classical register of the given size.
// Classical registers are never grown in place.
func (c *Circuit) AddClassicalRegister(n int, name string) error {
	if _, ok := c.ClassicalRegisters[name]; ok {
		return parseErrorf("growing existing classical register %q is not supported", name)
	}
	c.ClassicalRegisters[name] = Register{Start: c.NumClassicalBits, Size: n}
	c.NumClassicalBits += n
	return nil
}

// QubitRegisterOf returns the name of the register owning the given qubit.
func (c *Circuit) QubitRegisterOf(qubit int) (string, error) {
	for name, reg := range c.QubitRegisters {
		if qubit >= reg.Start && qubit < reg.Start+reg.Size {
			return name, nil
		}
	}
	return "", parseErrorf("qubit index %d not found in any register", qubit)
}

// QubitRegisterAndOffset returns the owning register's name and the qubit's
// offset within it.
func (c *Circuit) QubitRegisterAndOffset(qubit int) (string, int, error) {
	name, err := c.QubitRegisterOf(qubit)
	if err != nil {
		return "", 0, err
	}
	return name, qubit - c.QubitRegisters[name].Start, nil
}

// IsIdleQubit reports whether no operation acts on the given qubit.
func (c *Circuit) IsIdleQubit(qubit int) bool {
	for _, op := range c.Operations {
		if op.ActsOn(qubit) {
			return false
		}
	}
	return true
}

// StripTrailingIdleQubits removes idle qubits from the top of the index space
// until the first busy one. Interior idle qubits below that point are left
// alone: this trims trailing register slack, it is not dead-qubit elimination.
func (c *Circuit) StripTrailingIdleQubits() error {
	for i := c.NumQubits - 1; i >= 0; i-- {
		if !c.IsIdleQubit(i) {
			break
		}
		name, err := c.QubitRegisterOf(i)
		if err != nil {
			return err
		}
		delete(c.InputPermutation, i)
		delete(c.OutputPermutation, i)
		c.NumQubits--
		reg := c.QubitRegisters[name]
		if reg.Size == 1 {
			delete(c.QubitRegisters, name)
		} else {
			reg.Size--
			c.QubitRegisters[name] = reg
		}
	}
	for _, op := range c.Operations {
		op.SetNumQubits(c.NumQubits)
	}
	return nil
}

// NumIndividualOps counts operations weighted by their target count.
func (c *Circuit) NumIndividualOps() int {
	n := 0
	for _, op := range c.Operations {
		if op.Class == ClassicControlled {
			n += len(op.Inner.Targets)
			continue
		}
		n += len(op.Targets)
	}
	return n
}

// identityPermutations resets both permutations to the identity over the
// current width.
func (c *Circuit) identityPermutations() {
	c.InputPermutation = Permutation{}
	c.OutputPermutation = Permutation{}
	for i := 0; i < c.NumQubits; i++ {
		c.InputPermutation[i] = i
		c.OutputPermutation[i] = i
	}
}

// sortedRegisterNames returns the register names ordered by start index, the
// order the registers were declared in.
func sortedRegisterNames(regs RegisterMap) []string {
	names := make([]string, 0, len(regs))
	for name := range regs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return regs[names[i]].Start < regs[names[j]].Start
	})
	return names
}

// registerNameTable builds the per-index register name table used by the
// exporters. With fuse set, every index is renamed into a single default
// register spanning the whole width.
func registerNameTable(regs RegisterMap, total int, defaultName string, fuse bool) []RegName {
	names := make([]RegName, 0, total)
	if len(regs) == 0 || fuse {
		for i := 0; i < total; i++ {
			names = append(names, RegName{Reg: defaultName, Full: fmt.Sprintf("%s[%d]", defaultName, i)})
		}
		return names
	}
	for _, rn := range sortedRegisterNames(regs) {
		reg := regs[rn]
		for i := 0; i < reg.Size; i++ {
			names = append(names, RegName{Reg: rn, Full: fmt.Sprintf("%s[%d]", rn, i)})
		}
	}
	return names
}

// Print writes a listing of the operation sequence framed by the input and
// output permutations.
func (c *Circuit) Print(w io.Writer) {
	fmt.Fprintf(w, "i:")
	for i := 0; i < c.NumQubits; i++ {
		fmt.Fprintf(w, "\t%d", c.InputPermutation[i])
	}
	fmt.Fprintln(w)
	for i, op := range c.Operations {
		fmt.Fprintf(w, "%d:\t%s\n", i+1, op)
	}
	fmt.Fprintf(w, "o:")
	for i := 0; i < c.NumQubits; i++ {
		fmt.Fprintf(w, "\t%d", c.OutputPermutation[i])
	}
	fmt.Fprintln(w)
}

// PrintStatistics writes qubit and operation counts.
func (c *Circuit) PrintStatistics(w io.Writer) {
	fmt.Fprintln(w, "circuit statistics:")
	fmt.Fprintf(w, "\tn: %d\n", c.NumQubits)
	fmt.Fprintf(w, "\tm: %d\n", len(c.Operations))
}
