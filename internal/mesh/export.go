package mesh

import (
	"fmt"
	"image/color"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/spatial/r3"

	"go.ngs.io/glider-terrain/internal/domain"
)

// ExportVersion identifies the layout of Export.
const ExportVersion = 2

// ColorSampler returns the texture color at a texture coordinate.
type ColorSampler interface {
	Sample(u, v float64) color.RGBA
}

// Export is the renderer-facing form of a mesh. Vectors are stored flat so
// the file stays compact: Points is x,y,z per vertex, TexCoords is u,v per
// vertex and Colors is r,g,b per vertex.
//
// Points are offsets from Origin, the vertex centroid. float32 offsets keep
// millimetre precision across a map; absolute float32 coordinates near the
// Earth radius would be quantized to half a metre.
type Export struct {
	Version    int                   `msgpack:"version"`
	Cols       int                   `msgpack:"cols"`
	Rows       int                   `msgpack:"rows"`
	Radius     float64               `msgpack:"radius"`
	Window     Window                `msgpack:"window"`
	Origin     domain.CartesianPoint `msgpack:"origin"`
	Points     []float32             `msgpack:"points"`
	Elevations []int16   `msgpack:"elevations"`
	TexCoords  []float32 `msgpack:"tex_coords"`
	Inside     []bool    `msgpack:"inside"`
	Colors     []uint8   `msgpack:"colors,omitempty"`
	Cells      []int32   `msgpack:"cells"` // Visible cell ids.
	Planes     []Plane   `msgpack:"planes"`
}

// Export flattens the mesh. When tex is non-nil, every vertex inside the
// quad is colored from it; outside vertices are left black.
func (m *Mesh) Export(tex ColorSampler) *Export {
	n := len(m.Points)
	e := &Export{
		Version:    ExportVersion,
		Cols:       m.Cols,
		Rows:       m.Rows,
		Radius:     m.Radius,
		Window:     m.Window,
		Points:     make([]float32, 0, 3*n),
		Elevations: m.Elevations,
		TexCoords:  make([]float32, 0, 2*n),
		Inside:     m.Inside,
		Planes:     m.Planes,
	}
	for _, p := range m.Points {
		e.Origin = r3.Add(e.Origin, p)
	}
	if n > 0 {
		e.Origin = r3.Scale(1/float64(n), e.Origin)
	}
	for i, p := range m.Points {
		d := r3.Sub(p, e.Origin)
		e.Points = append(e.Points, float32(d.X), float32(d.Y), float32(d.Z))
		tc := m.TexCoords[i]
		e.TexCoords = append(e.TexCoords, float32(tc[0]), float32(tc[1]))
	}
	if tex != nil {
		e.Colors = make([]uint8, 3*n)
		for i, tc := range m.TexCoords {
			if !m.Inside[i] {
				continue
			}
			c := tex.Sample(tc[0], tc[1])
			e.Colors[3*i], e.Colors[3*i+1], e.Colors[3*i+2] = c.R, c.G, c.B
		}
	}
	for _, id := range m.VisibleCells() {
		e.Cells = append(e.Cells, int32(id))
	}
	return e
}

// Point returns the absolute position of vertex i.
func (e *Export) Point(i int) domain.CartesianPoint {
	return r3.Add(e.Origin, domain.CartesianPoint{
		X: float64(e.Points[3*i]),
		Y: float64(e.Points[3*i+1]),
		Z: float64(e.Points[3*i+2]),
	})
}

// WriteExport writes e as zstd-compressed msgpack.
func WriteExport(w io.Writer, e *Export) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(e); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to encode mesh: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush zstd stream: %w", err)
	}
	return nil
}

// ReadExport reads a file written by WriteExport.
func ReadExport(r io.Reader) (*Export, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress mesh: %w", err)
	}

	var e Export
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode mesh: %w", err)
	}
	if e.Version != ExportVersion {
		return nil, fmt.Errorf("unsupported mesh export version %d", e.Version)
	}
	if len(e.Points) != 3*e.Cols*e.Rows || len(e.TexCoords) != 2*e.Cols*e.Rows {
		return nil, fmt.Errorf("mesh export holds %d points for a %dx%d grid", len(e.Points)/3, e.Cols, e.Rows)
	}
	return &e, nil
}
