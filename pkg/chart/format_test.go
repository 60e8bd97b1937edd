package chart

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatVolume(t *testing.T) {
	tests := map[float64]string{
		0:             "0.00",
		9999.5:        "9999.50",
		10000:         "1.00万",
		12345678:      "1234.57万",
		99999999:      "10000.00万",
		100000000:     "1.00亿",
		8901234567:    "89.01亿",
		-1:            "0.00万",
		math.NaN():    "0.00万",
		1234567890123: "12345.68亿",
		11250:         "1.13万",
		36250:         "3.63万",
		1.125e8:       "1.13亿",
		0.125:         "0.13",
		1.005:         "1.00",
	}

	for volume, want := range tests {
		assert.Equal(t, want, FormatVolume(volume), "volume %v", volume)
	}
}

func TestFormatPriceLabel(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1720.5, "1721"},
		{12.6, "13"},
		{10, "10"},
		{9.96, "10"},
		{5.56, "5.6"},
		{1, "1"},
		{0.456, "0.46"},
		{0.5, "0.5"},
		{0.015, "0.01"},
		{0.125, "0.13"},
		{2.25, "2.3"},
		{1.05, "1.1"},
		{1.15, "1.1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPriceLabel(tt.value), "value %v", tt.value)
	}
}

func TestFormatBarTime(t *testing.T) {
	assert.Equal(t, "2024-03-01", FormatBarTime(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-01 10:30", FormatBarTime(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "-1.25%", FormatPercent(-1.25))
	assert.Equal(t, "3.00%", FormatPercent(3))
	assert.Equal(t, "-0.00%", FormatPercent(-0.001))
}

func TestToFixed(t *testing.T) {
	tests := []struct {
		value  float64
		digits int
		want   string
	}{
		{1.125, 2, "1.13"},
		{1.135, 2, "1.14"},
		{-1.125, 2, "-1.13"},
		{1.005, 2, "1.00"},
		{2.675, 2, "2.67"},
		{0.5, 0, "1"},
		{2.5, 0, "3"},
		{1.45, 1, "1.4"},
		{0, 2, "0.00"},
		{123456789.125, 2, "123456789.13"},
		{5e-324, 2, "0.00"},
		{math.NaN(), 2, "NaN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToFixed(tt.value, tt.digits), "%v to %d", tt.value, tt.digits)
	}
}

// Ties only exist where the binary value is exactly halfway, so every
// x.xx5 made of a whole number of eighths rounds up
func TestToFixed_EighthsRoundUp(t *testing.T) {
	for whole := 0; whole < 1000; whole++ {
		for _, frac := range []float64{0.125, 0.375, 0.625, 0.875} {
			v := float64(whole) + frac
			want := fmt.Sprintf("%d.%02d", whole, int(frac*100)+1)
			assert.Equal(t, want, ToFixed(v, 2), "%v", v)
		}
	}
}

func TestRoundFixed(t *testing.T) {
	assert.Equal(t, 1.13, RoundFixed(1.125, 2))
	assert.Equal(t, 0.01, RoundFixed(0.015, 2))
	assert.True(t, math.IsNaN(RoundFixed(math.NaN(), 2)))
}
