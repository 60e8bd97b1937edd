package annotation

import (
	"fmt"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
)

// Migrate re-anchors a pixel anchored legacy line in domain units. Its pixels
// are scaled from the box it was drawn in to the viewport of f, x snapped to
// the nearest bar and y inverted to a price.
func Migrate(f *chart.Frame, legacy *core.LegacyPixelLine) (*core.TrendLine, error) {
	if len(f.Bars) == 0 {
		return nil, fmt.Errorf("%w: line %d has no bars to anchor to", core.ErrInvalidLine, legacy.ID)
	}

	sx, sy := 1.0, 1.0
	if legacy.Width > 0 {
		sx = f.Viewport.Width / legacy.Width
	}
	if legacy.Height > 0 {
		sy = f.Viewport.Height / legacy.Height
	}

	startTime, startPrice, _ := f.DomainPoint(legacy.X1*sx, legacy.Y1*sy)
	endTime, endPrice, _ := f.DomainPoint(legacy.X2*sx, legacy.Y2*sy)

	line := core.NewSegment(legacy.Code, legacy.Period, startTime, startPrice, endTime, endPrice)
	if err := line.Validate(); err != nil {
		return nil, fmt.Errorf("migrate line %d: %w", legacy.ID, err)
	}
	return line, nil
}
