package qcir

import (
	"math"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportGRCS(t *testing.T) {
	c := NewCircuit()
	err := c.ImportGRCS(strings.NewReader(heredoc.Doc(`
		3
		0 h 0
		1 cz 0 1
		2 x_1_2 2
	`)))
	require.NoError(t, err)

	assert.Equal(t, 3, c.NumQubits)
	require.Len(t, c.Operations, 3)

	h := c.Operations[0]
	assert.Equal(t, H, h.Kind)
	assert.Equal(t, []int{0}, h.Targets)

	cz := c.Operations[1]
	assert.Equal(t, Z, cz.Kind)
	assert.Equal(t, []Control{{Qubit: 0}}, cz.Controls)
	assert.Equal(t, []int{1}, cz.Targets)

	rx := c.Operations[2]
	assert.Equal(t, RX, rx.Kind)
	assert.Equal(t, []int{2}, rx.Targets)
	assert.InDelta(t, math.Pi/2, rx.Lambda, 1e-12)

	for i := 0; i < 3; i++ {
		assert.Equal(t, i, c.InputPermutation[i])
		assert.Equal(t, i, c.OutputPermutation[i])
	}
}

func TestImportGRCSHalfTurns(t *testing.T) {
	c := NewCircuit()
	err := c.ImportGRCS(strings.NewReader("2\n0 y_1_2 0\n0 t 1\n"))
	require.NoError(t, err)

	require.Len(t, c.Operations, 2)
	assert.Equal(t, RY, c.Operations[0].Kind)
	assert.InDelta(t, math.Pi/2, c.Operations[0].Lambda, 1e-12)
	assert.Equal(t, T, c.Operations[1].Kind)
}

func TestImportGRCSErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "empty input", src: ""},
		{name: "bad qubit count", src: "three\n"},
		{name: "unknown gate", src: "2\n0 hadamard 0\n"},
		{name: "malformed line", src: "2\n0 h\n"},
		{name: "bad cycle", src: "2\nx h 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCircuit()
			err := c.ImportGRCS(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}
