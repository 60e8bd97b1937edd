package annotation

import (
	"context"
	"fmt"

	"github.com/raykavin/candleline/pkg/chart"
	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/signal"
)

const (
	DefaultHitTolerance = 5.0

	NoticeDegenerate   = "价格数据异常，无法画线"
	NoticeSaveFailed   = "保存趋势线失败"
	NoticeDeleteFailed = "删除失败，请重试"
)

// Engine is the trend line interaction state machine of one chart. It is
// driven from a single event loop and holds no locks.
type Engine struct {
	key          signal.Key
	storage      core.LineStorage
	refresh      *signal.Feed
	notifier     core.Notifier
	recorder     core.Recorder
	log          logger.Logger
	hitTolerance float64

	frame *chart.Frame
	lines []*core.TrendLine
	state State
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithNotifier sets the notifier told about failed writes
func WithNotifier(notifier core.Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = notifier
	}
}

// WithRecorder sets the observer of saved and deleted lines
func WithRecorder(recorder core.Recorder) EngineOption {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// WithHitTolerance sets how many pixels away from a line a click still selects it
func WithHitTolerance(pixels float64) EngineOption {
	return func(e *Engine) {
		e.hitTolerance = pixels
	}
}

// NewEngine creates the engine of the (code, period) chart. Successful writes
// are announced on refresh, never applied to the local line list.
func NewEngine(code, period string, storage core.LineStorage, refresh *signal.Feed, log logger.Logger, options ...EngineOption) *Engine {
	e := &Engine{
		key:          signal.NewKey(code, period),
		storage:      storage,
		refresh:      refresh,
		recorder:     core.NopRecorder{},
		log:          log.WithField("chart", signal.NewKey(code, period).String()),
		hitTolerance: DefaultHitTolerance,
	}

	for _, option := range options {
		option(e)
	}

	return e
}

// Key identifies the chart the engine annotates
func (e *Engine) Key() signal.Key {
	return e.key
}

// State returns a copy of the interaction state
func (e *Engine) State() State {
	return e.state.clone()
}

// SetScene installs the frame and the authoritative lines of the next render.
// A degenerate frame aborts drawing; a selection whose line is gone is dropped.
func (e *Engine) SetScene(frame *chart.Frame, lines []*core.TrendLine) {
	e.frame = frame
	e.lines = lines

	switch e.state.Mode {
	case Drawing:
		if frame == nil || frame.Degenerate() {
			e.reset()
		}
	case Selected:
		if _, ok := e.line(e.state.Selected); !ok {
			e.reset()
		}
	}
}

// Scene renders the current state
func (e *Engine) Scene() Scene {
	return Render(e.State(), e.frame, e.lines)
}

// StartDrawing enters Drawing with no captured point. It is refused on a
// degenerate price range, where the engine shows a notice instead.
func (e *Engine) StartDrawing() error {
	if e.frame == nil {
		return core.ErrViewportNotMeasured
	}

	if e.frame.Degenerate() {
		e.reset()
		return core.ErrDegenerateRange
	}

	e.state = State{Mode: Drawing, Pointer: e.state.Pointer}
	return nil
}

// Cancel discards the captured points without any storage call
func (e *Engine) Cancel() error {
	if e.state.Mode != Drawing {
		return core.ErrNotDrawing
	}
	e.reset()
	return nil
}

// PointerMove records the pointer for the crosshair and the preview segment
func (e *Engine) PointerMove(x, y float64) {
	e.state.Pointer = &chart.Point{X: x, Y: y}
}

// PointerLeave forgets the pointer
func (e *Engine) PointerLeave() {
	e.state.Pointer = nil
}

// Select marks an existing line as selected
func (e *Engine) Select(id int64) error {
	if _, ok := e.line(id); !ok {
		return fmt.Errorf("line %d: %w", id, core.ErrLineNotFound)
	}
	e.state = State{Mode: Selected, Selected: id, Pointer: e.state.Pointer}
	return nil
}

// Click handles a pointer click. While drawing it captures an anchor and
// commits the line on the second one. Otherwise it presses the delete button
// of the selected line, selects the line under the pointer or clears the selection.
func (e *Engine) Click(ctx context.Context, x, y float64) error {
	if e.frame == nil {
		return core.ErrViewportNotMeasured
	}

	switch e.state.Mode {
	case Drawing:
		anchor, ok := e.anchor(x, y)
		if !ok {
			return nil
		}

		if len(e.state.Points) == 0 {
			e.state.Points = []Anchor{anchor}
			return nil
		}

		first := e.state.Points[0]
		return e.commit(ctx, core.NewSegment(e.key.Code, e.key.Period, first.Time, first.Price, anchor.Time, anchor.Price))

	case Selected:
		if line, ok := e.line(e.state.Selected); ok {
			if button, ok := deleteButton(e.frame, line); ok && button.Contains(chart.Point{X: x, Y: y}) {
				return e.ConfirmDelete(ctx)
			}
		}
	}

	if id, ok := e.hit(chart.Point{X: x, Y: y}); ok {
		e.state = State{Mode: Selected, Selected: id, Pointer: e.state.Pointer}
		return nil
	}

	e.reset()
	return nil
}

// DoubleClick commits a flat line at the pointer price when no point has been
// captured yet. With one point captured it behaves like Click.
func (e *Engine) DoubleClick(ctx context.Context, x, y float64) error {
	if e.state.Mode != Drawing {
		return core.ErrNotDrawing
	}

	if len(e.state.Points) > 0 {
		return e.Click(ctx, x, y)
	}

	anchor, ok := e.anchor(x, y)
	if !ok {
		return nil
	}

	return e.commit(ctx, core.NewSegment(e.key.Code, e.key.Period, anchor.Time, anchor.Price, anchor.Time, anchor.Price))
}

// ConfirmDelete deletes the selected line with a single storage call. The line
// list is left untouched until the refresh signal brings the stored one back.
func (e *Engine) ConfirmDelete(ctx context.Context) error {
	if e.state.Mode != Selected {
		return core.ErrNoSelection
	}

	id := e.state.Selected
	e.reset()

	err := e.storage.DeleteLine(ctx, id)
	e.recorder.LineDeleted(err)
	if err != nil {
		e.fail(fmt.Errorf("delete line %d: %w", id, err), NoticeDeleteFailed)
		return err
	}

	seq := e.refresh.Publish(e.key)
	e.log.WithField("id", id).WithField("seq", seq).Info("trend line deleted")
	return nil
}

func (e *Engine) commit(ctx context.Context, line *core.TrendLine) error {
	e.reset()

	err := e.storage.SaveLines(ctx, []*core.TrendLine{line})
	e.recorder.LineSaved(line.Kind, err)
	if err != nil {
		e.fail(fmt.Errorf("save line: %w", err), NoticeSaveFailed)
		return err
	}

	seq := e.refresh.Publish(e.key)
	e.log.WithField("id", line.ID).WithField("seq", seq).Infof("trend line saved %s", line)
	return nil
}

// fail reports a rejected write; the notice lasts until the next state change
func (e *Engine) fail(err error, notice string) {
	e.state.Notice = notice
	e.log.WithError(err).Error("trend line write failed")
	if e.notifier != nil {
		e.notifier.OnError(err)
	}
}

func (e *Engine) reset() {
	e.state = State{Mode: Idle, Pointer: e.state.Pointer}
}

func (e *Engine) anchor(x, y float64) (Anchor, bool) {
	ms, price, ok := e.frame.DomainPoint(x, y)
	if !ok {
		return Anchor{}, false
	}
	return Anchor{Time: ms, Price: price}, true
}

func (e *Engine) line(id int64) (*core.TrendLine, bool) {
	for _, line := range e.lines {
		if line.ID == id {
			return line, true
		}
	}
	return nil, false
}

// hit returns the closest line within tolerance of p, the first one on ties
func (e *Engine) hit(p chart.Point) (int64, bool) {
	var (
		best  int64
		found bool
		dist  = e.hitTolerance
	)

	for _, line := range e.lines {
		segment, ok := Project(e.frame, line)
		if !ok {
			continue
		}

		if d := chart.DistanceToSegment(p, segment); d <= dist && (!found || d < dist) {
			best, dist, found = line.ID, d, true
		}
	}

	return best, found
}
