package qcir

import (
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a circuit file format.
type Format int

const (
	FormatReal Format = iota
	FormatOpenQASM
	FormatGRCS
	FormatQiskit
)

func (f Format) String() string {
	switch f {
	case FormatReal:
		return "real"
	case FormatOpenQASM:
		return "openqasm"
	case FormatGRCS:
		return "grcs"
	case FormatQiskit:
		return "qiskit"
	}
	return "unknown"
}

// Import reads a circuit from path, dispatching on the file extension:
// .real, .qasm, or .txt (grid benchmark).
func Import(path string) (*Circuit, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "real":
		return ImportFormat(path, FormatReal)
	case "qasm":
		return ImportFormat(path, FormatOpenQASM)
	case "txt":
		return ImportFormat(path, FormatGRCS)
	}
	return nil, parseErrorf("extension %q not recognized", ext)
}

// ImportFormat reads a circuit from path with an explicit format tag.
func ImportFormat(path string, format Format) (*Circuit, error) {
	c := NewCircuit()
	base := filepath.Base(path)
	c.Name = strings.TrimSuffix(base, filepath.Ext(base))

	f, err := os.Open(path)
	if err != nil {
		return nil, fileErrorf("opening %q: %v", path, err)
	}
	defer f.Close()

	switch format {
	case FormatReal:
		err = c.ImportReal(f)
	case FormatOpenQASM:
		// Hosts without native multi-controlled gates need ancillas sized
		// from the control count; the OpenQASM gate set reaches two.
		c.updateMaxControls(2)
		err = c.ImportOpenQASM(f)
	case FormatGRCS:
		err = c.ImportGRCS(f)
	default:
		return nil, parseErrorf("format %v not supported for import", format)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
