// Package overlay turns pointer picks on the terrain into the elevation
// label and level-line state shown on top of it.
package overlay

import (
	"fmt"
	"math"
)

// Pick is what the renderer reports for one pointer-move event: the cell
// under the pointer and the position inside it. OK is false when the
// pointer is not over the terrain.
type Pick struct {
	CellID int
	PX, PY float64
	OK     bool
}

// State is the overlay to display after an event.
type State struct {
	Visible    bool    `json:"visible"`
	ElevationM float64 `json:"elevation_m"`
	Label      string  `json:"label,omitempty"`
	// ContourRadius is the radius of the sphere the terrain is cut with to
	// draw the level line.
	ContourRadius float64 `json:"contour_radius,omitempty"`
}

// PointerMoveHandler reacts to pointer movement over the terrain.
type PointerMoveHandler interface {
	OnPointerMove(p Pick) State
}

// CellResolver interpolates an elevation inside a mesh cell.
type CellResolver interface {
	ResolveElevation(cellID int, px, py float64) (float64, error)
}

// LevelLine shows the altitude under the pointer and the contour line at that altitude.
type LevelLine struct {
	cells  CellResolver
	radius float64
}

// NewLevelLine creates a handler resolving elevations through cells on a
// sphere of the given radius.
func NewLevelLine(cells CellResolver, radius float64) *LevelLine {
	return &LevelLine{cells: cells, radius: radius}
}

// OnPointerMove returns a hidden state when nothing is picked or the pick
// cannot be resolved.
func (l *LevelLine) OnPointerMove(p Pick) State {
	if !p.OK {
		return State{}
	}
	elevation, err := l.cells.ResolveElevation(p.CellID, p.PX, p.PY)
	if err != nil || math.IsNaN(elevation) {
		return State{}
	}
	return State{
		Visible:       true,
		ElevationM:    elevation,
		Label:         Label(elevation),
		ContourRadius: l.radius + elevation,
	}
}

// Label formats an elevation for display, rounded to whole meters.
func Label(elevation float64) string {
	return fmt.Sprintf("Altitude : %d m", int(math.Round(elevation)))
}
