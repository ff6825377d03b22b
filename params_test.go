package qcir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatParam(t *testing.T) {
	tests := []struct {
		val  float64
		want string
	}{
		{val: math.Pi, want: "pi"},
		{val: -math.Pi, want: "-pi"},
		{val: math.Pi / 2, want: "pi/2"},
		{val: 3 * math.Pi / 4, want: "3*pi/4"},
		{val: 2 * math.Pi, want: "2*pi"},
		{val: 0.5, want: "0.5"},
		{val: 0, want: "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatParam(tt.val))
	}
}
