package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	tests := []struct {
		name             string
		prompt, complete int
		inRate, outRate  float64
		want             float64
	}{
		{"simple", 1000, 1000, 0.003, 0.015, 0.018},
		{"prompt only", 2000, 0, 0.003, 0.015, 0.006},
		{"fractional thousands", 1234, 567, 0.003, 0.015, 0.012207},
		{"zero usage", 0, 0, 0.003, 0.015, 0},
		{"single token", 1, 0, 0.003, 0, 0.000003},
		{"rounds to six decimals", 1, 0, 0.0000004, 0, 0},
		{"rounds half up", 500, 0, 0.000003, 0, 0.000002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cost(tt.prompt, tt.complete, tt.inRate, tt.outRate)
			assert.Equal(t, tt.want, got)
		})
	}
}
