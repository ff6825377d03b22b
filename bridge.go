package qcir

import (
	"go.uber.org/zap"
)

// ForeignBit references a single qubit or classical bit of an externally
// modeled circuit by its register name and the offset within that register.
type ForeignBit struct {
	Register string
	Index    int
}

// ForeignInstruction is one instruction of an externally modeled circuit.
// Instructions outside the natively translated gate set may carry a
// Definition, a sub-circuit that expresses them in terms of simpler
// instructions.
type ForeignInstruction struct {
	Name       string
	Params     []float64
	Qargs      []ForeignBit
	Cargs      []ForeignBit
	Definition *ForeignCircuit
}

// ForeignCircuit is the externally modeled circuit: its bit declarations in
// order, and its instruction stream. Definitions reuse the same shape, with
// Qubits and Clbits acting as the formal parameter lists.
type ForeignCircuit struct {
	Qubits []ForeignBit
	Clbits []ForeignBit
	Data   []ForeignInstruction
}

// foreignGateKinds maps natively translated instruction names to gate kinds.
// Controlled and multi-controlled names share a kind with their base gate;
// the control set is recovered from the argument count.
var foreignGateKinds = map[string]OpKind{
	"i": I, "id": I, "iden": I,
	"x": X, "cx": X, "ccx": X, "mcx_gray": X,
	"y": Y, "cy": Y,
	"z": Z, "cz": Z,
	"h": H, "ch": H,
	"s":   S,
	"sdg": Sdg,
	"t":   T,
	"tdg": Tdg,
	"rx": RX, "crx": RX, "mcrx": RX,
	"ry": RY, "cry": RY, "mcry": RY,
	"rz": RZ, "crz": RZ, "mcrz": RZ,
	"p": U1, "u1": U1, "cp": U1, "cu1": U1, "mcphase": U1,
	"sx": SX, "csx": SX,
	"sxdg": SXdg,
	"u2":   U2,
	"u": U3, "u3": U3, "cu3": U3,
}

var foreignTwoTargetKinds = map[string]OpKind{
	"swap": SWAP, "cswap": SWAP,
	"iswap": ISWAP,
}

// ImportForeign translates an externally modeled circuit into c, appending
// one operation per translatable instruction. Instructions without a native
// translation are flattened through their definitions; an instruction with
// neither is reported and skipped.
func (c *Circuit) ImportForeign(fc *ForeignCircuit) error {
	for i := range fc.Data {
		if err := c.appendForeign(&fc.Data[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Circuit) appendForeign(inst *ForeignInstruction) error {
	switch inst.Name {
	case "measure":
		if len(inst.Qargs) < 1 || len(inst.Cargs) < 1 {
			return parseErrorf("measure instruction needs a qubit and a classical bit")
		}
		qubit, err := c.foreignQubit(inst.Qargs[0])
		if err != nil {
			return err
		}
		cbit, err := c.foreignClbit(inst.Cargs[0])
		if err != nil {
			return err
		}
		c.Append(NewMeasure(c.NumQubits, qubit, cbit))
		return nil
	case "barrier":
		qubits, err := c.foreignQubits(inst.Qargs)
		if err != nil {
			return err
		}
		c.Append(NewBarrier(c.NumQubits, qubits))
		return nil
	case "reset":
		qubits, err := c.foreignQubits(inst.Qargs)
		if err != nil {
			return err
		}
		c.Append(NewReset(c.NumQubits, qubits))
		return nil
	}

	if kind, ok := foreignGateKinds[inst.Name]; ok {
		return c.appendForeignGate(kind, inst.Qargs, inst.Params)
	}
	if kind, ok := foreignTwoTargetKinds[inst.Name]; ok {
		return c.appendForeignTwoTarget(kind, inst.Qargs, inst.Params)
	}
	switch inst.Name {
	case "mcx_recursive":
		qargs := inst.Qargs
		if len(qargs) > 5 {
			// the last argument is an ancillary
			qargs = qargs[:len(qargs)-1]
		}
		return c.appendForeignGate(X, qargs, inst.Params)
	case "mcx_vchain":
		qargs := inst.Qargs
		ncontrols := (len(qargs) + 1) / 2
		if ncontrols > 2 {
			// trailing arguments are ancillaries
			qargs = qargs[:len(qargs)-(ncontrols-2)]
		}
		return c.appendForeignGate(X, qargs, inst.Params)
	}

	if inst.Definition == nil {
		zap.L().Error("failed to import foreign instruction, no definition available",
			zap.String("instruction", inst.Name))
		return nil
	}
	return c.importForeignDefinition(inst.Definition, inst.Qargs, inst.Cargs)
}

// importForeignDefinition flattens a composite instruction by substituting
// the definition's formal qubits and bits with the call site's actual
// arguments, then translating the definition's instruction stream.
func (c *Circuit) importForeignDefinition(def *ForeignCircuit, qargs, cargs []ForeignBit) error {
	qmap := make(map[ForeignBit]ForeignBit, len(qargs))
	for i, formal := range def.Qubits {
		if i >= len(qargs) {
			break
		}
		qmap[formal] = qargs[i]
	}
	cmap := make(map[ForeignBit]ForeignBit, len(cargs))
	for i, formal := range def.Clbits {
		if i >= len(cargs) {
			break
		}
		cmap[formal] = cargs[i]
	}

	for i := range def.Data {
		inst := def.Data[i]
		mapped := ForeignInstruction{
			Name:       inst.Name,
			Params:     inst.Params,
			Definition: inst.Definition,
			Qargs:      make([]ForeignBit, len(inst.Qargs)),
			Cargs:      make([]ForeignBit, len(inst.Cargs)),
		}
		for j, q := range inst.Qargs {
			actual, ok := qmap[q]
			if !ok {
				return parseErrorf("foreign definition references undeclared qubit %s[%d]", q.Register, q.Index)
			}
			mapped.Qargs[j] = actual
		}
		for j, cb := range inst.Cargs {
			actual, ok := cmap[cb]
			if !ok {
				return parseErrorf("foreign definition references undeclared bit %s[%d]", cb.Register, cb.Index)
			}
			mapped.Cargs[j] = actual
		}
		if err := c.appendForeign(&mapped); err != nil {
			return err
		}
	}
	return nil
}

// appendForeignGate treats the last argument as the target and everything
// before it as positive controls.
func (c *Circuit) appendForeignGate(kind OpKind, qargs []ForeignBit, params []float64) error {
	qubits, err := c.foreignQubits(qargs)
	if err != nil {
		return err
	}
	if len(qubits) == 0 {
		return parseErrorf("gate instruction without qubit arguments")
	}
	target := qubits[len(qubits)-1]
	controls := make([]Control, 0, len(qubits)-1)
	for _, q := range qubits[:len(qubits)-1] {
		controls = append(controls, Control{Qubit: q})
	}
	c.Append(NewStandard(c.NumQubits, controls, target, kind, foreignParams(params)...))
	return nil
}

func (c *Circuit) appendForeignTwoTarget(kind OpKind, qargs []ForeignBit, params []float64) error {
	qubits, err := c.foreignQubits(qargs)
	if err != nil {
		return err
	}
	if len(qubits) < 2 {
		return parseErrorf("two-target instruction with fewer than two qubit arguments")
	}
	target0 := qubits[len(qubits)-2]
	target1 := qubits[len(qubits)-1]
	controls := make([]Control, 0, len(qubits)-2)
	for _, q := range qubits[:len(qubits)-2] {
		controls = append(controls, Control{Qubit: q})
	}
	c.Append(NewTwoTarget(c.NumQubits, controls, target0, target1, kind, foreignParams(params)...))
	return nil
}

// foreignParams passes a 1/2/3 element parameter list through positionally
// as (lambda), (phi, lambda), (theta, phi, lambda).
func foreignParams(params []float64) []float64 {
	if len(params) > 3 {
		return params[:3]
	}
	return params
}

func (c *Circuit) foreignQubit(b ForeignBit) (int, error) {
	reg, ok := c.QubitRegisters[b.Register]
	if !ok {
		return 0, parseErrorf("foreign qubit register %q not found", b.Register)
	}
	if b.Index < 0 || b.Index >= reg.Size {
		return 0, parseErrorf("index %d out of bounds for qubit register %q", b.Index, b.Register)
	}
	return reg.Start + b.Index, nil
}

func (c *Circuit) foreignClbit(b ForeignBit) (int, error) {
	reg, ok := c.ClassicalRegisters[b.Register]
	if !ok {
		return 0, parseErrorf("foreign classical register %q not found", b.Register)
	}
	if b.Index < 0 || b.Index >= reg.Size {
		return 0, parseErrorf("index %d out of bounds for classical register %q", b.Index, b.Register)
	}
	return reg.Start + b.Index, nil
}

func (c *Circuit) foreignQubits(args []ForeignBit) ([]int, error) {
	qubits := make([]int, 0, len(args))
	for _, a := range args {
		q, err := c.foreignQubit(a)
		if err != nil {
			return nil, err
		}
		qubits = append(qubits, q)
	}
	return qubits, nil
}
