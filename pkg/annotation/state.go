package annotation

import (
	"github.com/raykavin/candleline/pkg/chart"
)

// Mode is the interaction mode of the engine
type Mode int

const (
	Idle Mode = iota
	Drawing
	Selected
)

func (m Mode) String() string {
	switch m {
	case Drawing:
		return "drawing"
	case Selected:
		return "selected"
	default:
		return "idle"
	}
}

// Anchor is a captured point in domain units
type Anchor struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

// State is the transient interaction state. It is never persisted.
type State struct {
	Mode     Mode         `json:"mode"`
	Points   []Anchor     `json:"points,omitempty"`
	Pointer  *chart.Point `json:"pointer,omitempty"`
	Selected int64        `json:"selected,omitempty"`
	Notice   string       `json:"notice,omitempty"`
}

func (s State) clone() State {
	out := s
	out.Points = append([]Anchor(nil), s.Points...)
	if s.Pointer != nil {
		p := *s.Pointer
		out.Pointer = &p
	}
	return out
}
