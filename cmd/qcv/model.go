package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qcir"
)

// focus represents which panel has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
)

// Model represents the viewer state.
type Model struct {
	circuit *qcir.Circuit
	cfg     Config
	st      styles

	viewStartCol int // first operation column currently visible
	width        int
	height       int
	qasmView     viewport.Model
	focus        focus
	statusMsg    string // transient status message (e.g. save confirmation)
	showStats    bool
}

func initialModel(c *qcir.Circuit, cfg Config) Model {
	vp := viewport.New(40, 20)

	m := Model{
		circuit:  c,
		cfg:      cfg,
		st:       newStyles(cfg),
		qasmView: vp,
		focus:    focusCircuit,
	}
	m.qasmView.SetContent(m.qasmText())
	return m
}

func (m Model) qasmText() string {
	var sb strings.Builder
	if err := m.circuit.DumpQASM(&sb); err != nil {
		return fmt.Sprintf("rendering failed: %v", err)
	}
	return sb.String()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		ctrlH := 6
		circH := msg.Height - ctrlH - 4
		m.qasmView.Width = qasmW
		m.qasmView.Height = max(circH-4, 4)

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
			case "left", "h":
				if m.viewStartCol > 0 {
					m.viewStartCol--
				}
			case "right", "l":
				if m.viewStartCol < len(m.circuit.Operations)-1 {
					m.viewStartCol++
				}
			case "home", "g":
				m.viewStartCol = 0
			case "end", "G":
				m.viewStartCol = max(len(m.circuit.Operations)-1, 0)
			case "i":
				m.showStats = !m.showStats
			case "ctrl+s":
				if err := m.circuit.Dump(m.cfg.SaveName, qcir.FormatOpenQASM); err != nil {
					m.statusMsg = fmt.Sprintf("Save error: %v", err)
				} else {
					m.statusMsg = fmt.Sprintf("Saved %s", m.cfg.SaveName)
				}
			}

		case focusQASM:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusCircuit
			case "ctrl+s":
				if err := os.WriteFile(m.cfg.SaveName, []byte(m.qasmText()), 0644); err != nil {
					m.statusMsg = fmt.Sprintf("Save error: %v", err)
				} else {
					m.statusMsg = fmt.Sprintf("Saved %s", m.cfg.SaveName)
				}
			default:
				var cmd tea.Cmd
				m.qasmView, cmd = m.qasmView.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := m.width - qasmWidth - 4
	controlsHeight := 6
	circuitHeight := max(m.height-controlsHeight-2, 6)

	circuitPanel := m.renderCircuitPanel(circuitWidth, circuitHeight)
	qasmPanel := m.renderQASMPanel(qasmWidth, circuitHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, qasmPanel)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)
}
