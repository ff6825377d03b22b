package qcir

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Default register names used when a circuit carries no explicit registers,
// and for the fused naming scheme of the Qiskit script.
const (
	defaultQreg   = "q"
	defaultCreg   = "c"
	defaultAncReg = "anc"
)

// qiskitMaxQubits bounds the scripted pipeline: the largest mock device tier
// has 53 qubits.
const qiskitMaxQubits = 53

// Dump writes the circuit to path in the given format. REAL and grid-benchmark
// emission are unsupported.
func (c *Circuit) Dump(path string, format Format) error {
	switch format {
	case FormatOpenQASM, FormatQiskit:
	case FormatReal:
		return parseErrorf("dumping in real format is not supported")
	case FormatGRCS:
		return parseErrorf("dumping in grid-benchmark format is not supported")
	default:
		return parseErrorf("format %v not supported for dumping", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fileErrorf("opening %q: %v", path, err)
	}
	defer f.Close()

	if format == FormatQiskit {
		return c.DumpQiskit(f, strings.TrimSuffix(path, ".py"))
	}
	return c.DumpQASM(f)
}

// DumpQASM emits the circuit as OpenQASM 2.0. Circuits without explicit
// registers fall back to single default-named registers of the full width.
func (c *Circuit) DumpQASM(w io.Writer) error {
	fmt.Fprintln(w, "OPENQASM 2.0;")
	fmt.Fprintln(w, "include \"qelib1.inc\";")

	if len(c.QubitRegisters) > 0 {
		for _, name := range sortedRegisterNames(c.QubitRegisters) {
			fmt.Fprintf(w, "qreg %s[%d];\n", name, c.QubitRegisters[name].Size)
		}
	} else {
		fmt.Fprintf(w, "qreg %s[%d];\n", defaultQreg, c.NumQubits)
	}
	if len(c.ClassicalRegisters) > 0 {
		for _, name := range sortedRegisterNames(c.ClassicalRegisters) {
			fmt.Fprintf(w, "creg %s[%d];\n", name, c.ClassicalRegisters[name].Size)
		}
	} else {
		fmt.Fprintf(w, "creg %s[%d];\n", defaultCreg, c.NumClassicalBits)
	}

	qnames := registerNameTable(c.QubitRegisters, c.NumQubits, defaultQreg, false)
	cnames := registerNameTable(c.ClassicalRegisters, c.NumClassicalBits, defaultCreg, false)
	for _, op := range c.Operations {
		op.WriteQASM(w, qnames, cnames)
	}
	return nil
}

// DumpQiskit emits a Qiskit script that rebuilds the circuit against fused
// default registers, decomposes it, maps it onto a mock device topology
// selected by total width, and writes the decomposed and layout-mapped
// circuits to auxiliary files next to name.
func (c *Circuit) DumpQiskit(w io.Writer, name string) error {
	ancillas := 0
	if c.MaxControls > 2 {
		ancillas = c.MaxControls - 2
	}
	totalQubits := c.NumQubits + ancillas
	if totalQubits > qiskitMaxQubits {
		return parseErrorf("no more than %d total qubits are supported, need %d", qiskitMaxQubits, totalQubits)
	}

	device := "FakeBurlington"
	if totalQubits > 20 {
		device = "FakeRochester"
	} else if totalQubits > 5 {
		device = "FakeBoeblingen"
	}

	fmt.Fprintln(w, "from qiskit import *")
	fmt.Fprintf(w, "from qiskit.test.mock import %s\n", device)
	fmt.Fprintln(w, "from qiskit.transpiler import PassManager, CouplingMap")
	fmt.Fprintln(w, "from qiskit.converters import circuit_to_dag, dag_to_circuit")
	fmt.Fprintln(w, "from qiskit.transpiler.passes import *")
	fmt.Fprintln(w, "from math import pi")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s = QuantumRegister(%d, '%s')\n", defaultQreg, c.NumQubits, defaultQreg)
	fmt.Fprintf(w, "%s = ClassicalRegister(%d, '%s')\n", defaultCreg, c.NumClassicalBits, defaultCreg)
	if ancillas > 0 {
		fmt.Fprintf(w, "%s = QuantumRegister(%d, '%s')\n", defaultAncReg, ancillas, defaultAncReg)
	}
	fmt.Fprintf(w, "qc = QuantumCircuit(%s, %s", defaultQreg, defaultCreg)
	if ancillas > 0 {
		fmt.Fprintf(w, ", %s", defaultAncReg)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)

	qnames := registerNameTable(c.QubitRegisters, c.NumQubits, defaultQreg, true)
	cnames := registerNameTable(c.ClassicalRegisters, c.NumClassicalBits, defaultCreg, true)
	for _, op := range c.Operations {
		op.WriteQiskit(w, qnames, cnames, defaultAncReg)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "dag = circuit_to_dag(qc)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "qc_decomposed = dag_to_circuit(Unroller(['id', 'u1', 'u2', 'u3', 'cx']).run(dag))")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "f = open(\"%s_decomposed.qasm\", \"w\")\n", name)
	fmt.Fprintln(w, "f.write(qc_decomposed.qasm())")
	fmt.Fprintln(w, "f.close()")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "coupling_map = CouplingMap(%s().configuration().coupling_map)\n", device)
	fmt.Fprintln(w, "layout_pass = TrivialLayout(coupling_map)")
	fmt.Fprintln(w, "layout_pass.run(dag)")
	fmt.Fprintln(w, "pm = PassManager()")
	fmt.Fprintln(w, "pm.append([TrivialLayout(coupling_map), FullAncillaAllocation(coupling_map), EnlargeWithAncilla(), ApplyLayout(), StochasticSwap(coupling_map, trials=100, seed=420)])")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "qc_transpiled = pm.run(dag_to_circuit(dag))")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "layout = pm.property_set['layout']")
	fmt.Fprintf(w, "f = open(\"%s_transpiled.qasm\", \"w\")\n", name)
	fmt.Fprintln(w, `f.write("// layout: physical qubit <- logical qubit\n")`)
	if ancillas > 0 {
		fmt.Fprintf(w, "for i in range(0, %s.size + %s.size):\n", defaultQreg, defaultAncReg)
	} else {
		fmt.Fprintf(w, "for i in range(0, %s.size):\n", defaultQreg)
	}
	fmt.Fprintln(w, "\tf.write(\"// \" + str(i) + \" \")")
	if ancillas > 0 {
		fmt.Fprintf(w, "\tif layout[i].register.name is '%s':\n", defaultQreg)
		fmt.Fprintln(w, "\t\tf.write(str(layout[i].index))")
		fmt.Fprintln(w, "\telse:")
		fmt.Fprintln(w, "\t\tf.write(str(layout[i].index + layout[0].register.size))")
	} else {
		fmt.Fprintln(w, "\tf.write(str(layout[i].index))")
	}
	fmt.Fprintln(w, "\tf.write(\"\\n\")")
	fmt.Fprintln(w, `f.write("\n")`)
	fmt.Fprintln(w, "f.write(qc_transpiled.qasm())")
	fmt.Fprintln(w, "f.close()")
	return nil
}
