package qcir

import (
	"fmt"
	"io"
	"strings"
)

// OpKind identifies the gate of a standard operation.
type OpKind int8

const (
	None OpKind = iota
	I
	H
	X
	Y
	Z
	S
	Sdg
	T
	Tdg
	V
	Vdg
	SX
	SXdg
	RX
	RY
	RZ
	U1
	U2
	U3
	SWAP
	ISWAP
	Peres
	Peresdg
)

var kindNames = map[OpKind]string{
	None: "none", I: "id", H: "h", X: "x", Y: "y", Z: "z",
	S: "s", Sdg: "sdg", T: "t", Tdg: "tdg",
	V: "v", Vdg: "vdg", SX: "sx", SXdg: "sxdg",
	RX: "rx", RY: "ry", RZ: "rz", U1: "u1", U2: "u2", U3: "u3",
	SWAP: "swap", ISWAP: "iswap", Peres: "p", Peresdg: "pdg",
}

func (k OpKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// OpClass discriminates the operation variants.
type OpClass int8

const (
	ClassStandard OpClass = iota
	ClassMeasure
	ClassReset
	ClassBarrier
	ClassSnapshot
	ClassShowProbs
	ClassicControlled
)

// Control is a control qubit with polarity. Negative controls trigger on |0>.
type Control struct {
	Qubit    int
	Negative bool
}

// Operation is one entry in a circuit's operation sequence. It is a tagged
// variant: standard (unitary) gates, non-unitary markers (measure, reset,
// barrier, snapshot, probabilities), and classically-controlled wrappers.
type Operation struct {
	Class    OpClass
	Kind     OpKind
	Controls []Control
	Targets  []int // one target for most gates, two for the swap/Peres family

	// Rotation / phase parameters.
	Theta, Phi, Lambda float64

	Cbit       int // measure destination (absolute classical bit index)
	SnapshotID int

	// Classic-controlled wrapper state.
	Inner         *Operation
	ControlBit    int // absolute classical bit index the wrapper tests
	ExpectedValue int // register value the source comparison tested, kept for emission

	nqubits int
}

// NewStandard builds a (possibly controlled) gate operation.
func NewStandard(nqubits int, controls []Control, target int, kind OpKind, params ...float64) *Operation {
	op := &Operation{
		Class:    ClassStandard,
		Kind:     kind,
		Controls: controls,
		Targets:  []int{target},
		Cbit:     -1,
		nqubits:  nqubits,
	}
	switch len(params) {
	case 1:
		op.Lambda = params[0]
	case 2:
		op.Phi, op.Lambda = params[0], params[1]
	case 3:
		op.Theta, op.Phi, op.Lambda = params[0], params[1], params[2]
	}
	return op
}

// NewTwoTarget builds a two-target operation (swap/iswap/Peres family).
func NewTwoTarget(nqubits int, controls []Control, target0, target1 int, kind OpKind, params ...float64) *Operation {
	op := NewStandard(nqubits, controls, target0, kind, params...)
	op.Targets = append(op.Targets, target1)
	return op
}

// NewMeasure builds a measurement of qubit into classical bit cbit.
func NewMeasure(nqubits, qubit, cbit int) *Operation {
	return &Operation{Class: ClassMeasure, Targets: []int{qubit}, Cbit: cbit, nqubits: nqubits}
}

// NewReset builds a reset of the given qubits.
func NewReset(nqubits int, qubits []int) *Operation {
	return &Operation{Class: ClassReset, Targets: qubits, Cbit: -1, nqubits: nqubits}
}

// NewBarrier builds a barrier marker over the given qubits.
func NewBarrier(nqubits int, qubits []int) *Operation {
	return &Operation{Class: ClassBarrier, Targets: qubits, Cbit: -1, nqubits: nqubits}
}

// NewSnapshot builds a snapshot marker with the given id.
func NewSnapshot(nqubits int, qubits []int, id int) *Operation {
	return &Operation{Class: ClassSnapshot, Targets: qubits, Cbit: -1, SnapshotID: id, nqubits: nqubits}
}

// NewShowProbabilities builds a probabilities marker.
func NewShowProbabilities(nqubits int) *Operation {
	return &Operation{Class: ClassShowProbs, Cbit: -1, nqubits: nqubits}
}

// NewClassicControlled wraps op so that it only applies when the classical
// bit at index controlBit is set. expectedValue records the register value
// the source comparison tested so the exporter can reproduce it.
func NewClassicControlled(op *Operation, controlBit, expectedValue int) *Operation {
	return &Operation{Class: ClassicControlled, Inner: op, ControlBit: controlBit, ExpectedValue: expectedValue, Cbit: -1, nqubits: op.nqubits}
}

// IsUnitary reports whether the operation contributes a unitary to the
// circuit's functionality. Only plain standard gates do.
func (op *Operation) IsUnitary() bool {
	return op.Class == ClassStandard
}

// ActsOn reports whether the operation touches the given qubit index.
func (op *Operation) ActsOn(qubit int) bool {
	if op.Class == ClassicControlled {
		return op.Inner.ActsOn(qubit)
	}
	for _, t := range op.Targets {
		if t == qubit {
			return true
		}
	}
	for _, c := range op.Controls {
		if c.Qubit == qubit {
			return true
		}
	}
	return false
}

// NumQubits returns the circuit width this operation was last told about.
func (op *Operation) NumQubits() int { return op.nqubits }

// SetNumQubits informs the operation of the circuit's current width.
func (op *Operation) SetNumQubits(n int) {
	op.nqubits = n
	if op.Class == ClassicControlled {
		op.Inner.SetNumQubits(n)
	}
}

// Line-buffer role values for BuildDD.
const (
	LineDefault    int8 = -1
	LineControlNeg int8 = 0
	LineControlPos int8 = 1
	LineTarget     int8 = 2
)

// BuildDD asks the backend for this operation's decision-diagram fragment.
// line must already be reset to LineDefault by the caller; BuildDD fills in
// the control/target roles through the permutation before handing off.
func (op *Operation) BuildDD(b Backend, line []int8, perm Permutation) (Edge, error) {
	if !op.IsUnitary() {
		return nil, parseErrorf("operation %v is not unitary", op.Class)
	}
	for _, c := range op.Controls {
		role := LineControlPos
		if c.Negative {
			role = LineControlNeg
		}
		line[perm[c.Qubit]] = role
	}
	for _, t := range op.Targets {
		line[perm[t]] = LineTarget
	}
	return b.GateDD(op, op.nqubits, line, perm), nil
}

func (op *Operation) String() string {
	switch op.Class {
	case ClassMeasure:
		return fmt.Sprintf("measure q%d -> c%d", op.Targets[0], op.Cbit)
	case ClassReset:
		return fmt.Sprintf("reset %v", op.Targets)
	case ClassBarrier:
		return fmt.Sprintf("barrier %v", op.Targets)
	case ClassSnapshot:
		return fmt.Sprintf("snapshot(%d) %v", op.SnapshotID, op.Targets)
	case ClassShowProbs:
		return "show probabilities"
	case ClassicControlled:
		return fmt.Sprintf("if c%d: %s", op.ControlBit, op.Inner)
	}
	var sb strings.Builder
	for _, c := range op.Controls {
		if c.Negative {
			fmt.Fprintf(&sb, "!%d ", c.Qubit)
		} else {
			fmt.Fprintf(&sb, "%d ", c.Qubit)
		}
	}
	fmt.Fprintf(&sb, "%s %v", op.Kind, op.Targets)
	return sb.String()
}

// RegName is one entry of a per-index register name table: the plain register
// name and the fully indexed form, e.g. {"q", "q[3]"}.
type RegName struct {
	Reg  string
	Full string
}

// qasmName returns the OpenQASM gate name for a kind, without control prefix.
func qasmName(k OpKind) string {
	switch k {
	case V:
		return "sx"
	case Vdg:
		return "sxdg"
	default:
		return kindNames[k]
	}
}

// qasmParams renders the parenthesized parameter list, or "" for fixed gates.
func (op *Operation) qasmParams() string {
	switch op.Kind {
	case RX, RY, RZ, U1:
		return "(" + formatParam(op.Lambda) + ")"
	case U2:
		return "(" + formatParam(op.Phi) + "," + formatParam(op.Lambda) + ")"
	case U3:
		return "(" + formatParam(op.Theta) + "," + formatParam(op.Phi) + "," + formatParam(op.Lambda) + ")"
	}
	return ""
}

// WriteQASM renders the operation as one or more OpenQASM statements.
// Negative controls have no OpenQASM syntax and are conjugated with x gates.
func (op *Operation) WriteQASM(w io.Writer, qnames, cnames []RegName) {
	switch op.Class {
	case ClassMeasure:
		fmt.Fprintf(w, "measure %s -> %s;\n", qnames[op.Targets[0]].Full, cnames[op.Cbit].Full)
		return
	case ClassReset:
		for _, t := range op.Targets {
			fmt.Fprintf(w, "reset %s;\n", qnames[t].Full)
		}
		return
	case ClassBarrier:
		fmt.Fprintf(w, "barrier %s;\n", joinQubits(qnames, op.Targets))
		return
	case ClassSnapshot:
		fmt.Fprintf(w, "snapshot(%d) %s;\n", op.SnapshotID, joinQubits(qnames, op.Targets))
		return
	case ClassShowProbs:
		fmt.Fprintln(w, "probabilities;")
		return
	case ClassicControlled:
		iw := &strings.Builder{}
		op.Inner.WriteQASM(iw, qnames, cnames)
		for _, stmt := range strings.Split(strings.TrimRight(iw.String(), "\n"), "\n") {
			fmt.Fprintf(w, "if (%s==%d) %s\n", cnames[op.ControlBit].Reg, op.ExpectedValue, stmt)
		}
		return
	}

	op.writeNegationConjugation(w, qnames)
	defer op.writeNegationConjugation(w, qnames)

	if op.Kind == Peres || op.Kind == Peresdg {
		// Peres = CCX followed by CX on the control pair; the adjoint reverses.
		op.writePeresQASM(w, qnames)
		return
	}

	name := strings.Repeat("c", len(op.Controls)) + qasmName(op.Kind) + op.qasmParams()
	args := make([]string, 0, len(op.Controls)+len(op.Targets))
	for _, c := range op.Controls {
		args = append(args, qnames[c.Qubit].Full)
	}
	for _, t := range op.Targets {
		args = append(args, qnames[t].Full)
	}
	fmt.Fprintf(w, "%s %s;\n", name, strings.Join(args, ","))
}

func (op *Operation) writePeresQASM(w io.Writer, qnames []RegName) {
	pfx := strings.Repeat("c", len(op.Controls))
	var ctl string
	for _, c := range op.Controls {
		ctl += qnames[c.Qubit].Full + ","
	}
	t0, t1 := qnames[op.Targets[0]].Full, qnames[op.Targets[1]].Full
	if op.Kind == Peres {
		fmt.Fprintf(w, "%sccx %s%s,%s;\n", pfx, ctl, t1, t0)
		fmt.Fprintf(w, "%scx %s%s;\n", pfx, ctl, t1)
	} else {
		fmt.Fprintf(w, "%scx %s%s;\n", pfx, ctl, t1)
		fmt.Fprintf(w, "%sccx %s%s,%s;\n", pfx, ctl, t1, t0)
	}
}

// writeNegationConjugation emits x gates around a statement for every
// negative control, since the textual formats only know positive controls.
func (op *Operation) writeNegationConjugation(w io.Writer, qnames []RegName) {
	for _, c := range op.Controls {
		if c.Negative {
			fmt.Fprintf(w, "x %s;\n", qnames[c.Qubit].Full)
		}
	}
}

func joinQubits(qnames []RegName, qubits []int) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = qnames[q].Full
	}
	return strings.Join(parts, ",")
}

// WriteQiskit renders the operation as Qiskit circuit calls. anc names the
// ancilla register available for highly multi-controlled gates.
func (op *Operation) WriteQiskit(w io.Writer, qnames, cnames []RegName, anc string) {
	switch op.Class {
	case ClassMeasure:
		fmt.Fprintf(w, "qc.measure(%s, %s)\n", qnames[op.Targets[0]].Full, cnames[op.Cbit].Full)
		return
	case ClassReset:
		for _, t := range op.Targets {
			fmt.Fprintf(w, "qc.reset(%s)\n", qnames[t].Full)
		}
		return
	case ClassBarrier:
		fmt.Fprintf(w, "qc.barrier(%s)\n", joinQubits(qnames, op.Targets))
		return
	case ClassSnapshot:
		fmt.Fprintf(w, "qc.snapshot(%d)\n", op.SnapshotID)
		return
	case ClassShowProbs:
		fmt.Fprintln(w, "qc.snapshot('probabilities')")
		return
	case ClassicControlled:
		// The scripted pipeline has no classical-control surface; mark it.
		fmt.Fprintf(w, "# classically controlled operation on c[%d] omitted\n", op.ControlBit)
		return
	}

	for _, c := range op.Controls {
		if c.Negative {
			fmt.Fprintf(w, "qc.x(%s)\n", qnames[c.Qubit].Full)
		}
	}
	defer func() {
		for _, c := range op.Controls {
			if c.Negative {
				fmt.Fprintf(w, "qc.x(%s)\n", qnames[c.Qubit].Full)
			}
		}
	}()

	nc := len(op.Controls)
	target := qnames[op.Targets[0]].Full
	ctrls := make([]string, nc)
	for i, c := range op.Controls {
		ctrls[i] = qnames[c.Qubit].Full
	}

	switch op.Kind {
	case X:
		switch nc {
		case 0:
			fmt.Fprintf(w, "qc.x(%s)\n", target)
		case 1:
			fmt.Fprintf(w, "qc.cx(%s, %s)\n", ctrls[0], target)
		case 2:
			fmt.Fprintf(w, "qc.ccx(%s, %s, %s)\n", ctrls[0], ctrls[1], target)
		default:
			fmt.Fprintf(w, "qc.mcx([%s], %s, %s, mode='v-chain')\n", strings.Join(ctrls, ", "), target, anc)
		}
	case SWAP:
		fmt.Fprintf(w, "qc.swap(%s, %s)\n", qnames[op.Targets[0]].Full, qnames[op.Targets[1]].Full)
	case ISWAP:
		fmt.Fprintf(w, "qc.iswap(%s, %s)\n", qnames[op.Targets[0]].Full, qnames[op.Targets[1]].Full)
	case Peres, Peresdg:
		t1 := qnames[op.Targets[1]].Full
		ccxArgs := strings.Join(append(append([]string{}, ctrls...), t1, target), ", ")
		cxArgs := strings.Join(append(append([]string{}, ctrls...), t1), ", ")
		if op.Kind == Peres {
			fmt.Fprintf(w, "qc.ccx(%s)\n", ccxArgs)
			fmt.Fprintf(w, "qc.cx(%s)\n", cxArgs)
		} else {
			fmt.Fprintf(w, "qc.cx(%s)\n", cxArgs)
			fmt.Fprintf(w, "qc.ccx(%s)\n", ccxArgs)
		}
	default:
		name := qiskitName(op.Kind)
		params := op.qiskitParams()
		if nc == 0 {
			fmt.Fprintf(w, "qc.%s(%s%s)\n", name, params, target)
		} else {
			fmt.Fprintf(w, "qc.c%s(%s%s, %s)\n", name, params, strings.Join(ctrls, ", "), target)
		}
	}
}

func qiskitName(k OpKind) string {
	switch k {
	case I:
		return "id"
	case V:
		return "sx"
	case Vdg:
		return "sxdg"
	default:
		return kindNames[k]
	}
}

func (op *Operation) qiskitParams() string {
	switch op.Kind {
	case RX, RY, RZ, U1:
		return fmt.Sprintf("%g, ", op.Lambda)
	case U2:
		return fmt.Sprintf("%g, %g, ", op.Phi, op.Lambda)
	case U3:
		return fmt.Sprintf("%g, %g, %g, ", op.Theta, op.Phi, op.Lambda)
	}
	return ""
}
