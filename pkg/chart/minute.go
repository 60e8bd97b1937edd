package chart

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/raykavin/candleline/pkg/core"
)

// MinutesPerDay is the number of one minute points of a full trading day,
// 120 in the morning and 120 in the afternoon
const MinutesPerDay = 240

const (
	minuteLeftPadding   = 30
	minuteRightPadding  = 50
	minuteTopPadding    = 10
	minuteBottomReserve = 45

	ColorMinuteRise = "#52c41a"
	ColorMinuteFall = "#ff4d4f"
)

var codePattern = regexp.MustCompile(`^(SH|SZ)(\d{6})$`)

var boardLimits = []struct {
	prefixes []string
	limit    float64
}{
	{[]string{"300", "301", "302"}, 20}, // ChiNext
	{[]string{"688", "689"}, 20},        // STAR
	{[]string{"889", "83", "87", "82"}, 30},
}

// LimitRange returns the daily price limit of code in percent. Codes are
// an SH or SZ prefix and six digits; anything else gets the main board 10.
func LimitRange(code string) float64 {
	match := codePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code)))
	if match == nil {
		return 10
	}

	for _, board := range boardLimits {
		if lo.SomeBy(board.prefixes, func(prefix string) bool { return strings.HasPrefix(match[2], prefix) }) {
			return board.limit
		}
	}
	return 10
}

// MinutePoint is one minute of the intraday chart
type MinutePoint struct {
	Time    time.Time `json:"time"`
	Price   float64   `json:"price"`
	Percent float64   `json:"percent"`
}

// MinutePoints turns one minute bars into points priced against the previous
// close. Without a previous close the open of the first bar is used.
func MinutePoints(bars []core.Bar, prevClose float64) []MinutePoint {
	if len(bars) == 0 {
		return []MinutePoint{}
	}

	if prevClose <= 0 || math.IsNaN(prevClose) {
		prevClose = bars[0].Open
	}

	return lo.Map(bars, func(bar core.Bar, _ int) MinutePoint {
		percent := 0.0
		if prevClose > 0 {
			percent = RoundFixed((bar.Close-prevClose)/prevClose*100, 2)
		}
		return MinutePoint{Time: bar.Time, Price: bar.Close, Percent: percent}
	})
}

// MinuteGridLine is one percent rule of the intraday chart
type MinuteGridLine struct {
	Y       float64 `json:"y"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label,omitempty"`
	Zero    bool    `json:"zero"`
}

// TimeTick is one vertical rule of the intraday chart
type TimeTick struct {
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

var sessionTicks = []string{"9:30", "10:00", "10:30", "11:00", "11:30", "13:30", "14:00", "14:30", "15:00"}

// MinuteFrame maps the points of one trading day onto a padded plot. x runs
// by point index over the plot width and y by percent over the daily limit
// band of the code.
type MinuteFrame struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Code   string        `json:"code"`
	Limit  float64       `json:"limit"`
	Points []MinutePoint `json:"points"`
}

// NewMinuteFrame sorts a copy of points by time
func NewMinuteFrame(width, height float64, code string, points []MinutePoint) *MinuteFrame {
	sorted := append([]MinutePoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	return &MinuteFrame{
		Width:  width,
		Height: height,
		Code:   code,
		Limit:  LimitRange(code),
		Points: sorted,
	}
}

// PlotWidth is the width between the side paddings
func (f *MinuteFrame) PlotWidth() float64 {
	return f.Width - minuteLeftPadding - minuteRightPadding
}

// PlotHeight is the height between the top padding and the time labels
func (f *MinuteFrame) PlotHeight() float64 {
	return f.Height - minuteTopPadding - minuteBottomReserve
}

// XByIndex spreads the loaded points over the plot width, so a partial day
// is stretched to the right edge. A single point sits on the left edge.
func (f *MinuteFrame) XByIndex(index int) float64 {
	n := len(f.Points)
	if n <= 1 {
		return minuteLeftPadding
	}
	return minuteLeftPadding + float64(index)/float64(n-1)*f.PlotWidth()
}

// YByPercent maps +Limit to the top of the plot and -Limit to its bottom
func (f *MinuteFrame) YByPercent(percent float64) float64 {
	return minuteTopPadding + (f.Limit-percent)/(2*f.Limit)*f.PlotHeight()
}

// Path returns the pixel polyline of the points
func (f *MinuteFrame) Path() []Point {
	return lo.Map(f.Points, func(p MinutePoint, i int) Point {
		return Point{X: f.XByIndex(i), Y: f.YByPercent(p.Percent)}
	})
}

// Color is the rise colour when the last point is at or above the previous close
func (f *MinuteFrame) Color() string {
	if len(f.Points) == 0 || f.Points[len(f.Points)-1].Percent >= 0 {
		return ColorMinuteRise
	}
	return ColorMinuteFall
}

// PercentGrid returns a rule per whole percent from +Limit down to -Limit.
// Even percents are labelled.
func (f *MinuteFrame) PercentGrid() []MinuteGridLine {
	steps := int(2 * f.Limit)

	return lo.Times(steps+1, func(i int) MinuteGridLine {
		percent := f.Limit - float64(i)
		line := MinuteGridLine{
			Y:       f.YByPercent(percent),
			Percent: percent,
			Zero:    percent == 0,
		}
		if int(percent)%2 == 0 {
			line.Label = FormatPriceLabel(percent) + "%"
		}
		return line
	})
}

// TimeTicks returns the session clock rules, one grid column per half hour
// of trading with the lunch break folded away
func (f *MinuteFrame) TimeTicks() []TimeTick {
	column := f.PlotWidth() / float64(len(sessionTicks)-1)

	return lo.Map(sessionTicks, func(label string, i int) TimeTick {
		return TimeTick{X: minuteLeftPadding + float64(i)*column, Label: label}
	})
}
