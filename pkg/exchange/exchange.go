package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raykavin/candleline/pkg/core"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnknownSeries    = errors.New("unknown series")
)

// SourceFunc adapts a function to core.BarSource
type SourceFunc func(ctx context.Context, code, period string, anchor time.Time, limit int) ([]core.Bar, error)

func (f SourceFunc) Bars(ctx context.Context, code, period string, anchor time.Time, limit int) ([]core.Bar, error) {
	return f(ctx, code, period, anchor, limit)
}

// Router sends each code to the source registered for its prefix, the
// longest prefix winning. Codes without a match go to the fallback.
type Router struct {
	routes   map[string]core.BarSource
	fallback core.BarSource
}

func NewRouter(fallback core.BarSource) *Router {
	return &Router{routes: make(map[string]core.BarSource), fallback: fallback}
}

// Route registers source for the codes starting with prefix
func (r *Router) Route(prefix string, source core.BarSource) *Router {
	r.routes[strings.ToUpper(prefix)] = source
	return r
}

func (r *Router) Bars(ctx context.Context, code, period string, anchor time.Time, limit int) ([]core.Bar, error) {
	upper := strings.ToUpper(code)

	var match string
	source := r.fallback
	for prefix, candidate := range r.routes {
		if strings.HasPrefix(upper, prefix) && len(prefix) >= len(match) {
			match, source = prefix, candidate
		}
	}

	if source == nil {
		return nil, fmt.Errorf("%w: no source for %s", ErrUnknownSeries, code)
	}
	return source.Bars(ctx, code, period, anchor, limit)
}
