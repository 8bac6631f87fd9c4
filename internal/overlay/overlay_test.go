package overlay

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"go.ngs.io/glider-terrain/internal/adapter/interp"
	"go.ngs.io/glider-terrain/internal/domain"
)

// fakeCells resolves every cell from the same corners.
type fakeCells struct {
	corners []float64
	calls   int
}

func (f *fakeCells) ResolveElevation(cellID int, px, py float64) (float64, error) {
	f.calls++
	if cellID < 0 || cellID > 9 {
		return 0, fmt.Errorf("%w: cell %d", domain.ErrInvalidCell, cellID)
	}
	return interp.ResolveElevation(f.corners, px, py)
}

func TestLevelLine(t *testing.T) {
	const radius = 6371009.0
	cells := &fakeCells{corners: []float64{100, 200, 150, 50}}
	h := NewLevelLine(cells, radius)

	tests := []struct {
		name      string
		pick      Pick
		visible   bool
		elevation float64
		label     string
	}{
		{"center", Pick{CellID: 3, PX: 0.5, PY: 0.5, OK: true}, true, 125, "Altitude : 125 m"},
		{"corner", Pick{CellID: 3, PX: 1, PY: 0, OK: true}, true, 200, "Altitude : 200 m"},
		{"rounded", Pick{CellID: 3, PX: 0.253, PY: 0, OK: true}, true, 125.3, "Altitude : 125 m"},
		{"no pick", Pick{}, false, 0, ""},
		{"invalid cell", Pick{CellID: 42, PX: 0.5, PY: 0.5, OK: true}, false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.OnPointerMove(tt.pick)
			if got.Visible != tt.visible {
				t.Fatalf("Visible = %v, expected %v", got.Visible, tt.visible)
			}
			if !tt.visible {
				if got != (State{}) {
					t.Errorf("expected zero state when hidden, got %+v", got)
				}
				return
			}
			if math.Abs(got.ElevationM-tt.elevation) > 1e-9 {
				t.Errorf("ElevationM = %.6f, expected %.6f", got.ElevationM, tt.elevation)
			}
			if got.Label != tt.label {
				t.Errorf("Label = %q, expected %q", got.Label, tt.label)
			}
			if math.Abs(got.ContourRadius-(radius+tt.elevation)) > 1e-6 {
				t.Errorf("ContourRadius = %.3f, expected %.3f", got.ContourRadius, radius+tt.elevation)
			}
		})
	}
}

func TestLevelLineSkipsResolverWithoutPick(t *testing.T) {
	cells := &fakeCells{corners: []float64{1, 2, 3, 4}}
	h := NewLevelLine(cells, 1)
	h.OnPointerMove(Pick{CellID: 1, PX: 0.5, PY: 0.5})
	if cells.calls != 0 {
		t.Fatalf("resolver called %d times for a miss", cells.calls)
	}
}

func TestLevelLineMalformedCorners(t *testing.T) {
	h := NewLevelLine(&fakeCells{corners: []float64{1, 2, 3}}, 1)
	if st := h.OnPointerMove(Pick{CellID: 0, OK: true}); st.Visible {
		t.Fatalf("expected hidden state, got %+v", st)
	}
	if _, err := interp.ResolveElevation([]float64{1, 2, 3}, 0, 0); !errors.Is(err, domain.ErrInvalidCell) {
		t.Fatalf("expected ErrInvalidCell, got %v", err)
	}
}

func TestLabel(t *testing.T) {
	tests := map[float64]string{
		0:      "Altitude : 0 m",
		812.49: "Altitude : 812 m",
		812.5:  "Altitude : 813 m",
		-3.6:   "Altitude : -4 m",
	}
	for in, want := range tests {
		if got := Label(in); got != want {
			t.Errorf("Label(%v) = %q, expected %q", in, got, want)
		}
	}
}
