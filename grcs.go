package qcir

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// ImportGRCS parses a grid-benchmark circuit: the first line holds the qubit
// count, every following non-empty line is "<cycle> <gate> [args…]".
func (c *Circuit) ImportGRCS(r io.Reader) error {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return parseErrorf("missing qubit count")
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return parseErrorf("invalid qubit count %q", strings.TrimSpace(sc.Text()))
	}
	c.NumQubits = n

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return parseErrorf("malformed line %q", line)
		}
		// The cycle number is read but unused.
		if _, err := strconv.Atoi(fields[0]); err != nil {
			return parseErrorf("invalid cycle in line %q", line)
		}

		identifier := fields[1]
		if identifier == "cz" {
			if len(fields) < 4 {
				return parseErrorf("cz needs a control and a target: %q", line)
			}
			control, err := strconv.Atoi(fields[2])
			if err != nil {
				return parseErrorf("invalid control in line %q", line)
			}
			target, err := strconv.Atoi(fields[3])
			if err != nil {
				return parseErrorf("invalid target in line %q", line)
			}
			c.Append(NewStandard(c.NumQubits, []Control{{Qubit: control}}, target, Z))
			continue
		}

		target, err := strconv.Atoi(fields[2])
		if err != nil {
			return parseErrorf("invalid target in line %q", line)
		}
		switch identifier {
		case "h":
			c.Append(NewStandard(c.NumQubits, nil, target, H))
		case "t":
			c.Append(NewStandard(c.NumQubits, nil, target, T))
		case "x_1_2":
			c.Append(NewStandard(c.NumQubits, nil, target, RX, math.Pi/2))
		case "y_1_2":
			c.Append(NewStandard(c.NumQubits, nil, target, RY, math.Pi/2))
		default:
			return parseErrorf("unknown gate %q", identifier)
		}
	}
	if err := sc.Err(); err != nil {
		return fileErrorf("reading grid benchmark: %v", err)
	}

	c.identityPermutations()
	return nil
}
