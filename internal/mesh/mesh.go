package mesh

import (
	"fmt"

	"go.ngs.io/glider-terrain/internal/adapter/interp"
	"go.ngs.io/glider-terrain/internal/domain"
)

// Config holds the geometry the mesh is built against.
type Config struct {
	Radius       float64 // Reference sphere radius in meters.
	Quad         domain.BoundingQuad
	Coefficients interp.QuadCoefficients
}

// TexCoord is a texture coordinate; (0, 0) is the lower-left of the image.
type TexCoord [2]float64

// Mesh is a structured surface of Cols x Rows vertices stored row by row,
// north row first. Vertex (row, col) has index row*Cols + col and cell
// (row, col) spans vertices (row, col) to (row+1, col+1).
type Mesh struct {
	Cols   int
	Rows   int
	Radius float64
	Window Window

	Points     []domain.CartesianPoint
	Geo        []domain.GeoPoint
	Elevations []int16
	TexCoords  []TexCoord
	Inside     []bool // Texture coordinate lies in the unit square.

	Planes []Plane
}

// BuildTerrainMesh lays out the raw lattice inside the quad's bounding
// rectangle, attaches Cartesian positions, elevations and texture
// coordinates, and derives the clip planes of the quad boundary.
//
// Vertices whose texture coordinate falls outside the unit square, or cannot
// be solved, get the sentinel (0, 0) and are flagged as outside.
func BuildTerrainMesh(cfg Config, raw *domain.RawElevations) (*Mesh, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if cfg.Radius <= 0 {
		return nil, fmt.Errorf("sphere radius must be positive, got %g", cfg.Radius)
	}

	w := FilterLattice(raw, cfg.Quad.Bound())
	if w.Rows() < 2 || w.Cols() < 2 {
		return nil, fmt.Errorf("bounding quad overlaps only %dx%d dataset samples, need at least 2x2", w.Rows(), w.Cols())
	}

	n := w.Len()
	m := &Mesh{
		Cols:       w.Cols(),
		Rows:       w.Rows(),
		Radius:     cfg.Radius,
		Window:     w,
		Points:     make([]domain.CartesianPoint, 0, n),
		Geo:        make([]domain.GeoPoint, 0, n),
		Elevations: make([]int16, 0, n),
		TexCoords:  make([]TexCoord, 0, n),
		Inside:     make([]bool, 0, n),
	}

	for row := w.RowStart; row < w.RowEnd; row++ {
		lat := raw.Latitude(row)
		for col := w.ColStart; col < w.ColEnd; col++ {
			lon := raw.Longitude(col)
			alt := raw.At(row, col)

			m.Points = append(m.Points, domain.ToCartesian(lat, lon, cfg.Radius+float64(alt)))
			m.Geo = append(m.Geo, domain.GeoPoint{Lat: lat, Lon: lon, Elevation: float64(alt)})
			m.Elevations = append(m.Elevations, alt)

			l, mm, err := cfg.Coefficients.Solve(lat, lon)
			if err != nil || !interp.InUnitSquare(l, mm) {
				m.TexCoords = append(m.TexCoords, TexCoord{0, 0})
				m.Inside = append(m.Inside, false)
				continue
			}
			m.TexCoords = append(m.TexCoords, TexCoord{clampUnit(l), clampUnit(mm)})
			m.Inside = append(m.Inside, true)
		}
	}

	m.Planes = ClipPlanes(cfg.Quad, cfg.Radius)
	return m, nil
}

func clampUnit(v float64) float64 {
	return min(1, max(0, v))
}

// PointID returns the vertex index of (row, col).
func (m *Mesh) PointID(row, col int) int {
	return row*m.Cols + col
}

// CellCount returns the number of quad cells.
func (m *Mesh) CellCount() int {
	return (m.Rows - 1) * (m.Cols - 1)
}

// CellPointIDs returns the vertex indices of a cell in quad order:
// (row, col), (row, col+1), (row+1, col+1), (row+1, col).
func (m *Mesh) CellPointIDs(cellID int) ([4]int, error) {
	if cellID < 0 || cellID >= m.CellCount() {
		return [4]int{}, fmt.Errorf("%w: cell %d out of range [0, %d)", domain.ErrInvalidCell, cellID, m.CellCount())
	}
	row, col := cellID/(m.Cols-1), cellID%(m.Cols-1)
	p0 := m.PointID(row, col)
	return [4]int{p0, p0 + 1, p0 + 1 + m.Cols, p0 + m.Cols}, nil
}

// CellCorners returns the corner elevations of a cell in quad order.
func (m *Mesh) CellCorners(cellID int) ([4]float64, error) {
	ids, err := m.CellPointIDs(cellID)
	if err != nil {
		return [4]float64{}, err
	}
	var out [4]float64
	for i, id := range ids {
		out[i] = float64(m.Elevations[id])
	}
	return out, nil
}

// ResolveElevation interpolates the elevation at local position (px, py) of a cell.
func (m *Mesh) ResolveElevation(cellID int, px, py float64) (float64, error) {
	corners, err := m.CellCorners(cellID)
	if err != nil {
		return 0, err
	}
	return interp.ResolveElevation(corners[:], px, py)
}

// CellVisible reports whether any vertex of a cell survives the polygon clip.
func (m *Mesh) CellVisible(cellID int) bool {
	ids, err := m.CellPointIDs(cellID)
	if err != nil {
		return false
	}
	for _, id := range ids {
		if InsideAll(m.Planes, m.Points[id]) {
			return true
		}
	}
	return false
}

// VisibleCells returns the ids of the cells kept by the polygon clip.
func (m *Mesh) VisibleCells() []int {
	out := make([]int, 0, m.CellCount())
	for id := 0; id < m.CellCount(); id++ {
		if m.CellVisible(id) {
			out = append(out, id)
		}
	}
	return out
}

// ElevationGrid returns the mesh elevations as an ascending lon/lat grid for
// bilinear lookups.
func (m *Mesh) ElevationGrid() (*interp.Grid2D, error) {
	grid := &interp.Grid2D{
		X:      make([]float64, m.Cols),
		Y:      make([]float64, m.Rows),
		Values: make([][]float64, m.Rows),
	}
	for col := 0; col < m.Cols; col++ {
		grid.X[col] = m.Geo[col].Lon
	}
	for row := 0; row < m.Rows; row++ {
		src := m.Rows - 1 - row
		grid.Y[row] = m.Geo[m.PointID(src, 0)].Lat
		values := make([]float64, m.Cols)
		for col := range values {
			values[col] = float64(m.Elevations[m.PointID(src, col)])
		}
		grid.Values[row] = values
	}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("invalid elevation grid: %w", err)
	}
	return grid, nil
}
