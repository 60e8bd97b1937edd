package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/raykavin/candleline"
	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/signal"
)

// Gesture is a pointer or button event sent by the client
type Gesture struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	ID   int64   `json:"id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("JSON encoding failed: ", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidLine), errors.Is(err, core.ErrViewportNotMeasured), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotDrawing), errors.Is(err, core.ErrNoSelection), errors.Is(err, core.ErrDegenerateRange):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("chart request failed")
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

// refused reports gestures that do not apply to the current state
func refused(err error) bool {
	for _, target := range []error{errBadRequest, core.ErrNotDrawing, core.ErrNoSelection,
		core.ErrLineNotFound, core.ErrViewportNotMeasured} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// chartOf opens the chart named by the query and sizes it when width and height are given
func (s *Server) chartOf(query url.Values) (*candleline.Chart, error) {
	code := query.Get("code")
	if code == "" {
		return nil, fmt.Errorf("%w: missing code", errBadRequest)
	}

	c, err := s.chart(code, query.Get("period"))
	if err != nil {
		return nil, err
	}

	if query.Has("width") || query.Has("height") {
		width, werr := strconv.ParseFloat(query.Get("width"), 64)
		height, herr := strconv.ParseFloat(query.Get("height"), 64)
		if werr != nil || herr != nil || width <= 0 || height <= 0 {
			return nil, fmt.Errorf("%w: invalid width or height", errBadRequest)
		}
		c.Resize(width, height)
	}
	return c, nil
}

// handleHealth reports the uptime
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"uptime": time.Since(s.started).Round(time.Second).String()})
}

// handleIndex renders the chart page, redirecting to the first code when none is asked
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" && len(s.codes) > 0 {
		http.Redirect(w, r, fmt.Sprintf("/?code=%s&period=%s", s.codes[0], s.period), http.StatusFound)
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = s.period
	}

	w.Header().Set("Content-Type", "text/html")
	err := s.indexHTML.Execute(w, map[string]any{
		"code":   code,
		"period": period,
		"codes":  s.codes,
	})
	if err != nil {
		s.log.Error("Template execution failed: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	c, err := s.chartOf(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	svg, err := c.SVG(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(svg); err != nil {
		s.log.Error("Failed writing SVG response: ", err)
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	c, err := s.chartOf(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	view, err := c.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// handleGesture applies one gesture to the chart engine and answers with the new view
func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	c, err := s.chartOf(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	var g Gesture
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	ctx := r.Context()
	switch g.Type {
	case "move":
		c.PointerMove(g.X, g.Y)
	case "leave":
		c.PointerLeave()
	case "draw":
		err = c.StartDrawing()
	case "cancel":
		err = c.Cancel()
	case "click":
		err = c.Click(ctx, g.X, g.Y)
	case "dblclick":
		err = c.DoubleClick(ctx, g.X, g.Y)
	case "select":
		err = c.Select(ctx, g.ID)
	case "delete":
		err = c.ConfirmDelete(ctx)
	default:
		err = fmt.Errorf("%w: unknown gesture %q", errBadRequest, g.Type)
	}

	if err != nil {
		if refused(err) {
			s.writeError(w, err)
			return
		}
		// failed writes and a degenerate range are shown as the scene notice
		s.log.WithError(err).WithField("gesture", g.Type).Warn("gesture failed")
	}

	view, err := c.Snapshot(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	code, period := r.URL.Query().Get("code"), r.URL.Query().Get("period")
	if code == "" {
		s.writeError(w, fmt.Errorf("%w: missing code", errBadRequest))
		return
	}
	if period == "" {
		period = s.period
	}

	lines, err := s.storage.Lines(r.Context(), code, period)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if lines == nil {
		lines = []*core.TrendLine{}
	}
	s.writeJSON(w, http.StatusOK, lines)
}

// handleAddLine stores a line sent as JSON and announces it
func (s *Server) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var line core.TrendLine
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	if err := line.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.storage.SaveLines(r.Context(), []*core.TrendLine{&line}); err != nil {
		s.writeError(w, err)
		return
	}

	s.refresh.Publish(signal.NewKey(line.Code, line.Period))
	s.writeJSON(w, http.StatusCreated, &line)
}

// handleDeleteLine deletes /api/lines/{id}?code=&period= and announces it
func (s *Server) handleDeleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid id", errBadRequest))
		return
	}

	code, period := r.URL.Query().Get("code"), r.URL.Query().Get("period")
	if code == "" {
		s.writeError(w, fmt.Errorf("%w: missing code", errBadRequest))
		return
	}
	if period == "" {
		period = s.period
	}

	if err := s.storage.DeleteLine(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.refresh.Publish(signal.NewKey(code, period))
	w.WriteHeader(http.StatusNoContent)
}

const (
	defaultMinuteWidth  = 600
	defaultMinuteHeight = 300
)

// minuteView loads the intraday chart named by the query
func (s *Server) minuteView(r *http.Request) (candleline.MinuteView, error) {
	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		return candleline.MinuteView{}, fmt.Errorf("%w: missing code", errBadRequest)
	}

	width, height := float64(defaultMinuteWidth), float64(defaultMinuteHeight)
	if query.Has("width") || query.Has("height") {
		var werr, herr error
		width, werr = strconv.ParseFloat(query.Get("width"), 64)
		height, herr = strconv.ParseFloat(query.Get("height"), 64)
		if werr != nil || herr != nil || width <= 0 || height <= 0 {
			return candleline.MinuteView{}, fmt.Errorf("%w: invalid width or height", errBadRequest)
		}
	}

	points, err := candleline.LoadMinutes(r.Context(), s.minutes, code, time.Time{})
	if err != nil {
		return candleline.MinuteView{}, err
	}
	return candleline.NewMinuteView(width, height, code, points), nil
}

func (s *Server) handleMinute(w http.ResponseWriter, r *http.Request) {
	view, err := s.minuteView(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleMinuteSVG(w http.ResponseWriter, r *http.Request) {
	view, err := s.minuteView(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(candleline.RenderMinuteSVG(view)); err != nil {
		s.log.Error("Failed writing SVG response: ", err)
	}
}
