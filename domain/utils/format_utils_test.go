package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatShortNotation(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"zero", 0, "0.00"},
		{"small balance", 123.456, "123.46"},
		{"under ten thousand", 1_234, "1.2k"},
		{"ten thousand", 10_000, "10k"},
		{"fifty thousand", 50_000, "50k"},
		{"just under a million", 999_999, "1000k"},
		{"millions", 2_500_000, "2.50M"},
		{"billions", 1_250_000_000, "1.25B"},
		{"trillions", 3_200_000_000_000, "3.20T"},
		{"negative thousands", -7_500, "-7.5k"},
		{"negative small", -42.5, "-42.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatShortNotation(tt.value))
		})
	}
}
