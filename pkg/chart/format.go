package chart

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	yi  = 1e8
	wan = 1e4
)

// ToFixed renders v with the given number of decimals, rounding the exact
// binary value of v half away from zero. 1.125 gives 1.13 while 1.005, stored
// as 1.00499..., gives 1.00.
func ToFixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}

	exact := decimal.RequireFromString(strconv.FormatFloat(v, 'f', exactDigits(v, digits), 64))
	out := exact.StringFixed(int32(digits))
	if v < 0 && !strings.HasPrefix(out, "-") {
		out = "-" + out
	}
	return out
}

// RoundFixed is ToFixed read back as a number
func RoundFixed(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	out, err := strconv.ParseFloat(ToFixed(v, digits), 64)
	if err != nil {
		return v
	}
	return out
}

// exactDigits is the number of decimals that writes v without rounding, and
// at least one more than digits
func exactDigits(v float64, digits int) int {
	n := digits + 1
	if v == 0 {
		return n
	}

	_, exp := math.Frexp(v)
	if fraction := 53 - exp; fraction > n {
		n = fraction
	}
	return n
}

// FormatVolume renders a volume with the 亿/万 units used by the host UI,
// always with two decimals. Negative or NaN volumes render as 0.00万.
func FormatVolume(volume float64) string {
	switch {
	case math.IsNaN(volume) || volume < 0:
		return "0.00万"
	case volume >= yi:
		return ToFixed(volume/yi, 2) + "亿"
	case volume >= wan:
		return ToFixed(volume/wan, 2) + "万"
	default:
		return ToFixed(volume, 2)
	}
}

// RoundPriceLabel rounds a price axis value: integers from 10, one decimal in
// [1,10) and two decimals below 1
func RoundPriceLabel(v float64) float64 {
	switch {
	case v >= 10:
		return math.Round(v)
	case v >= 1:
		return RoundFixed(v, 1)
	default:
		return RoundFixed(v, 2)
	}
}

// FormatPriceLabel renders RoundPriceLabel without trailing zeros
func FormatPriceLabel(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(RoundPriceLabel(v), 'f', -1, 64)
}

// FormatPrice renders a price with two decimals
func FormatPrice(v float64) string {
	return ToFixed(v, 2)
}

// FormatPercent renders a percentage value with two decimals and a % sign
func FormatPercent(v float64) string {
	return ToFixed(v, 2) + "%"
}

// FormatBarTime renders the date of a bar, with the clock for intraday bars
func FormatBarTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format("2006-01-02 15:04")
}
