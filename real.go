package qcir

import (
	"bufio"
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// realGateRegex matches a REAL-format gate token: an identifier (rx/ry/rz, q,
// or a single lowercase letter with an optional +/i suffix), an optional
// qubit-count digit run, and an optional colon-prefixed numeric literal.
var realGateRegex = regexp.MustCompile(`^(r[xyz]|q|[0a-z](?:[+i])?)(\d+)?(?::([-+]?[0-9]+\.?[0-9]*(?:[eE][-+]?[0-9]+)?))?$`)

// realIdentifiers maps REAL-format gate identifiers to gate kinds. "t" is
// handled separately: in this format it denotes a (multi-controlled) X.
var realIdentifiers = map[string]OpKind{
	"0":  I,
	"h":  H,
	"n":  X,
	"c":  X,
	"x":  X,
	"y":  Y,
	"z":  Z,
	"s":  S,
	"si": Sdg,
	"s+": Sdg,
	"v":  V,
	"vi": Vdg,
	"v+": Vdg,
	"rx": RX,
	"ry": RY,
	"rz": RZ,
	"f":  SWAP,
	"q":  RZ,
	"p":  Peres,
	"pi": Peresdg,
	"p+": Peresdg,
}

// snapTolerance decides when a REAL rotation divisor counts as an integer and
// the rotation snaps to an exact Z/S/T-family gate.
const snapTolerance = 1e-13

// realScanner reads whitespace-delimited tokens with line-discard support.
type realScanner struct {
	r *bufio.Reader
}

// next returns the next whitespace-delimited token, or io.EOF.
func (s *realScanner) next() (string, error) {
	var sb strings.Builder
	for {
		ch, _, err := s.r.ReadRune()
		if err != nil {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			continue
		}
		sb.WriteRune(ch)
	}
}

// discardLine drops the remainder of the current line.
func (s *realScanner) discardLine() {
	_, _ = s.r.ReadString('\n')
}

// restOfLine returns the remainder of the current line.
func (s *realScanner) restOfLine() string {
	line, _ := s.r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// ImportReal parses a REAL-format circuit description into the circuit.
func (c *Circuit) ImportReal(r io.Reader) error {
	rs := &realScanner{r: bufio.NewReader(r)}
	if err := c.readRealHeader(rs); err != nil {
		return err
	}
	return c.readRealGateDescriptions(rs)
}

func (c *Circuit) readRealHeader(rs *realScanner) error {
	for {
		cmd, err := rs.next()
		if err != nil {
			return parseErrorf("unexpected end of file in header")
		}
		cmd = strings.ToUpper(cmd)

		if strings.HasPrefix(cmd, "#") {
			rs.discardLine()
			continue
		}
		if !strings.HasPrefix(cmd, ".") {
			return parseErrorf("invalid file header: %q", cmd)
		}

		switch cmd {
		case ".BEGIN":
			return nil
		case ".NUMVARS":
			tok, err := rs.next()
			if err != nil {
				return parseErrorf(".numvars: missing count")
			}
			n, err := strconv.Atoi(tok)
			if err != nil {
				return parseErrorf(".numvars: invalid count %q", tok)
			}
			c.NumQubits = n
			c.NumClassicalBits = n
		case ".VARIABLES":
			for i := 0; i < c.NumQubits; i++ {
				variable, err := rs.next()
				if err != nil {
					return parseErrorf(".variables: expected %d identifiers", c.NumQubits)
				}
				c.QubitRegisters[variable] = Register{Start: i, Size: 1}
				c.ClassicalRegisters["c_"+variable] = Register{Start: i, Size: 1}
				c.InputPermutation[i] = i
				c.OutputPermutation[i] = i
			}
		case ".CONSTANTS", ".INPUTS", ".OUTPUTS", ".GARBAGE", ".VERSION", ".INPUTBUS", ".OUTPUTBUS":
			// Recognized but unused; the line is discarded.
			rs.discardLine()
		case ".DEFINE":
			zap.L().Warn("file contains a 'define' statement, which is not supported and skipped")
			for cmd != ".ENDDEFINE" {
				rs.discardLine()
				cmd, err = rs.next()
				if err != nil {
					return parseErrorf(".define: missing .enddefine")
				}
				cmd = strings.ToUpper(cmd)
			}
		default:
			return parseErrorf("unknown header command: %q", cmd)
		}
	}
}

func (c *Circuit) readRealGateDescriptions(rs *realScanner) error {
	for {
		cmd, err := rs.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fileErrorf("reading gate descriptions: %v", err)
		}
		cmd = strings.ToLower(cmd)

		if strings.HasPrefix(cmd, "#") {
			rs.discardLine()
			continue
		}
		if cmd == ".end" {
			return nil
		}

		if err := c.readRealGate(rs, cmd); err != nil {
			return err
		}
	}
}

func (c *Circuit) readRealGate(rs *realScanner, cmd string) error {
	m := realGateRegex.FindStringSubmatch(cmd)
	if m == nil {
		return parseErrorf("unsupported gate detected: %q", cmd)
	}

	gate := None
	if m[1] == "t" {
		// Toffoli-family shorthand in this format.
		gate = X
	} else {
		var ok bool
		gate, ok = realIdentifiers[m[1]]
		if !ok {
			return parseErrorf("unknown gate identifier: %q", m[1])
		}
	}

	ncontrols := 0
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return parseErrorf("invalid qubit count in %q", cmd)
		}
		ncontrols = n - 1
	}
	lambda := 0.0
	if m[3] != "" {
		l, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return parseErrorf("invalid parameter in %q", cmd)
		}
		lambda = l
	}

	if gate == V || gate == Vdg || m[1] == "c" {
		ncontrols = 1
	} else if gate == Peres || gate == Peresdg {
		ncontrols = 2
	}

	if ncontrols >= c.NumQubits {
		return parseErrorf("gate acts on %d qubits, but only %d qubits are available", ncontrols+1, c.NumQubits)
	}

	fields := strings.Fields(rs.restOfLine())

	controls := make([]Control, 0, ncontrols)
	for i := 0; i < ncontrols; i++ {
		if i >= len(fields) {
			return parseErrorf("too few variables for gate %q", m[1])
		}
		label := fields[i]
		negative := strings.HasPrefix(label, "-")
		if negative {
			label = label[1:]
		}
		reg, ok := c.QubitRegisters[label]
		if !ok {
			return parseErrorf("label %q not found", label)
		}
		controls = append(controls, Control{Qubit: reg.Start, Negative: negative})
	}

	if ncontrols >= len(fields) {
		return parseErrorf("too few variables (no target) for gate %q", m[1])
	}
	reg, ok := c.QubitRegisters[fields[ncontrols]]
	if !ok {
		return parseErrorf("label %q not found", fields[ncontrols])
	}
	target := reg.Start

	c.updateMaxControls(ncontrols)
	x := math.Round(lambda)

	switch gate {
	case None:
		return parseErrorf("'none' operation detected")
	case I, H, Y, Z, S, Sdg, T, Tdg, V, Vdg, U3, U2:
		c.Append(NewStandard(c.NumQubits, controls, target, gate, lambda))
	case X:
		c.Append(NewStandard(c.NumQubits, controls, target, gate))
	case RX, RY:
		c.Append(NewStandard(c.NumQubits, controls, target, gate, math.Pi/lambda))
	case RZ, U1:
		if math.Abs(lambda-x) < snapTolerance {
			switch x {
			case 1, -1:
				c.Append(NewStandard(c.NumQubits, controls, target, Z))
			case 2:
				c.Append(NewStandard(c.NumQubits, controls, target, S))
			case -2:
				c.Append(NewStandard(c.NumQubits, controls, target, Sdg))
			case 4:
				c.Append(NewStandard(c.NumQubits, controls, target, T))
			case -4:
				c.Append(NewStandard(c.NumQubits, controls, target, Tdg))
			default:
				c.Append(NewStandard(c.NumQubits, controls, target, gate, math.Pi/x))
			}
		} else {
			c.Append(NewStandard(c.NumQubits, controls, target, gate, math.Pi/lambda))
		}
	case SWAP, Peres, Peresdg:
		target1 := controls[len(controls)-1].Qubit
		controls = controls[:len(controls)-1]
		c.Append(NewTwoTarget(c.NumQubits, controls, target, target1, gate))
	}
	return nil
}
