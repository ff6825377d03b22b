// Command qcv is a terminal viewer for quantum circuit files. It imports a
// circuit in any supported format and shows the wire diagram alongside the
// OpenQASM rendering and circuit statistics.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"qcir"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: qcv <circuit file>")
		fmt.Fprintln(os.Stderr, "supported extensions: .real, .qasm, .txt")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := loadConfig()

	logger := newLogger(cfg.LogFile)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	circ, err := qcir.Import(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qcv: %v\n", err)
		os.Exit(1)
	}

	m := initialModel(circ, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "qcv: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes structured logs to a file so they do not tear the
// alternate screen. Logging is disabled when the file cannot be opened.
func newLogger(path string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
