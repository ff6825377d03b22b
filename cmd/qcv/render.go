package main

import (
	"fmt"
	"strings"

	"qcir"
)

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate kind.
func gateDisplayName(k qcir.OpKind) string {
	name := strings.ToUpper(k.String())
	if len(name) > gateNameW {
		name = name[:gateNameW]
	}
	return name
}

// targetSymbol returns the wire symbol for a gate's target qubit, or "" when
// the gate renders as a named box instead.
func targetSymbol(k qcir.OpKind) string {
	switch k {
	case qcir.X:
		return "⊕"
	case qcir.Z:
		return "●"
	case qcir.SWAP, qcir.ISWAP:
		return "×"
	default:
		return ""
	}
}

// opColumn renders one operation as a cell per qubit wire. Every cell is
// exactly colW visual characters wide.
func (m Model) opColumn(op *qcir.Operation) []string {
	wire := strings.Repeat("─", colW)
	cells := make([]string, m.circuit.NumQubits)
	for q := range cells {
		cells[q] = wire
	}

	dashL := (colW - 1) / 2
	dashR := colW - dashL - 1
	dot := func(sym string) string {
		return strings.Repeat("─", dashL) + m.st.gate.Render(sym) + strings.Repeat("─", dashR)
	}
	box := func(name string) string {
		inner := padCenter(name, gateNameW)
		return "─┤" + m.st.gate.Render(inner) + "├" + strings.Repeat("─", colW-gateNameW-3)
	}

	inner := op
	if op.Class == qcir.ClassicControlled && op.Inner != nil {
		inner = op.Inner
	}

	switch inner.Class {
	case qcir.ClassMeasure:
		if len(inner.Targets) > 0 && inner.Targets[0] < len(cells) {
			cells[inner.Targets[0]] = box("M")
		}
	case qcir.ClassReset:
		for _, t := range inner.Targets {
			if t < len(cells) {
				cells[t] = box("|0>")
			}
		}
	case qcir.ClassBarrier:
		for _, t := range inner.Targets {
			if t < len(cells) {
				cells[t] = dot("║")
			}
		}
	case qcir.ClassSnapshot:
		for _, t := range inner.Targets {
			if t < len(cells) {
				cells[t] = dot("◇")
			}
		}
	case qcir.ClassShowProbs:
		for q := range cells {
			cells[q] = dot("◇")
		}
	default:
		for _, c := range inner.Controls {
			if c.Qubit >= len(cells) {
				continue
			}
			if c.Negative {
				cells[c.Qubit] = dot("○")
			} else {
				cells[c.Qubit] = dot("●")
			}
		}
		sym := targetSymbol(inner.Kind)
		for _, t := range inner.Targets {
			if t >= len(cells) {
				continue
			}
			if sym != "" {
				cells[t] = dot(sym)
			} else {
				cells[t] = box(gateDisplayName(inner.Kind))
			}
		}
	}

	// Vertical connector through the wires an entangling gate spans.
	lo, hi := spanOf(inner)
	for q := lo + 1; q < hi; q++ {
		if q < len(cells) && cells[q] == wire {
			cells[q] = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		}
	}

	return cells
}

// spanOf reports the lowest and highest wire an operation touches.
func spanOf(op *qcir.Operation) (int, int) {
	lo, hi := op.NumQubits(), -1
	for _, c := range op.Controls {
		lo = min(lo, c.Qubit)
		hi = max(hi, c.Qubit)
	}
	for _, t := range op.Targets {
		lo = min(lo, t)
		hi = max(hi, t)
	}
	return lo, hi
}

func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(m.st.title.Render(fmt.Sprintf("Circuit: %s", m.circuit.Name)))
	sb.WriteString("\n\n")

	visibleCols := max((width-labelW-4)/colW, 1)
	ops := m.circuit.Operations
	start := min(m.viewStartCol, max(len(ops)-1, 0))
	end := min(start+visibleCols, len(ops))

	columns := make([][]string, 0, end-start)
	for _, op := range ops[start:end] {
		columns = append(columns, m.opColumn(op))
	}

	for q := 0; q < m.circuit.NumQubits; q++ {
		label := fmt.Sprintf("q[%d]", q)
		sb.WriteString(m.st.label.Render(padCenter(label, labelW)))
		sb.WriteString("─")
		for _, col := range columns {
			sb.WriteString(col[q])
		}
		sb.WriteString("\n")
	}

	if len(ops) > end {
		sb.WriteString("\n")
		sb.WriteString(m.st.dim.Render(fmt.Sprintf("… %d more operations →", len(ops)-end)))
	}
	if m.showStats {
		sb.WriteString("\n\n")
		sb.WriteString(m.renderStats())
	}

	style := m.st.circuit
	if m.focus == focusCircuit {
		style = m.st.focused
	}
	return style.Width(width).Height(height).Render(sb.String())
}

func (m Model) renderStats() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "qubits:     %d\n", m.circuit.NumQubits)
	fmt.Fprintf(&sb, "clbits:     %d\n", m.circuit.NumClassicalBits)
	fmt.Fprintf(&sb, "operations: %d\n", len(m.circuit.Operations))
	fmt.Fprintf(&sb, "individual: %d", m.circuit.NumIndividualOps())
	return m.st.dim.Render(sb.String())
}

func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(m.st.title.Render("OpenQASM"))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmView.View())

	style := m.st.qasm
	if m.focus == focusQASM {
		style = m.st.focused
	}
	return style.Width(width).Height(height).Render(sb.String())
}

func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(m.st.title.Render("Controls"))
	sb.WriteString("  ")
	sb.WriteString(m.st.dim.Render("←→ Scroll  Tab Switch panel  i Stats  Ctrl+S Save  q Quit"))
	if m.statusMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(m.st.gate.Render(m.statusMsg))
	}
	return m.st.controls.Width(width).Height(height).Render(sb.String())
}
