package usecase

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"go.ngs.io/glider-terrain/internal/adapter/interp"
	"go.ngs.io/glider-terrain/internal/adapter/store/dem"
	"go.ngs.io/glider-terrain/internal/adapter/texture"
	"go.ngs.io/glider-terrain/internal/config"
	"go.ngs.io/glider-terrain/internal/domain"
	"go.ngs.io/glider-terrain/internal/flight"
	"go.ngs.io/glider-terrain/internal/mesh"
	"go.ngs.io/glider-terrain/internal/overlay"
)

// ErrNotConfigured is returned by operations whose optional dependency was not provided.
var ErrNotConfigured = errors.New("not configured")

// textureQuality is the JPEG quality used when serving the texture.
const textureQuality = 90

// Projector converts projected coordinates to geographic ones.
type Projector interface {
	ToGeographicAll(points []domain.ProjectedPoint) ([]domain.GeoPoint, error)
}

// Deps are the adapters a Terrain is built from. Only DEM is required.
type Deps struct {
	DEM       dem.Store
	Projector Projector
	Texture   *texture.Texture
	Geoid     flight.GeoidModel
}

// Terrain is the initialised map. It is immutable and safe for concurrent use.
type Terrain struct {
	cfg     config.Config
	quad    domain.BoundingQuad
	coeffs  interp.QuadCoefficients
	mesh    *mesh.Mesh
	grid    *interp.Grid2D
	handler overlay.PointerMoveHandler
	camera  domain.Camera
	visible int
	elevMin int16
	elevMax int16

	projector Projector
	tex       *texture.Texture
	geoid     flight.GeoidModel

	exportOnce sync.Once
	exportData []byte
	exportErr  error
}

// New resolves the map area, computes its interpolation coefficients, loads
// the DEM and builds the mesh.
func New(cfg config.Config, deps Deps) (*Terrain, error) {
	if deps.DEM == nil {
		return nil, errors.New("no DEM store provided")
	}

	corners, err := resolveMapArea(cfg, deps.Projector)
	if err != nil {
		return nil, err
	}
	quad, err := domain.NewBoundingQuad(corners)
	if err != nil {
		return nil, fmt.Errorf("invalid map area: %w", err)
	}
	coeffs, err := interp.NewQuadCoefficients(quad)
	if err != nil {
		return nil, fmt.Errorf("invalid map area: %w", err)
	}
	log.Printf("Map area: SW (%.6f, %.6f) NE (%.6f, %.6f)",
		corners[domain.CornerSW].Lat, corners[domain.CornerSW].Lon,
		corners[domain.CornerNE].Lat, corners[domain.CornerNE].Lon)

	raw, err := deps.DEM.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load DEM: %w", err)
	}
	log.Printf("DEM loaded: %dx%d samples", raw.Rows, raw.Cols)

	m, err := mesh.BuildTerrainMesh(mesh.Config{Radius: cfg.EarthRadius, Quad: quad, Coefficients: coeffs}, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to build terrain mesh: %w", err)
	}
	grid, err := m.ElevationGrid()
	if err != nil {
		return nil, err
	}
	visible := len(m.VisibleCells())
	log.Printf("Terrain mesh: %dx%d vertices, %d of %d cells inside the map area",
		m.Cols, m.Rows, visible, m.CellCount())

	t := &Terrain{
		cfg:       cfg,
		quad:      quad,
		coeffs:    coeffs,
		mesh:      m,
		grid:      grid,
		handler:   overlay.NewLevelLine(m, cfg.EarthRadius),
		camera:    domain.CameraPose(quad.Center(), cfg.EarthRadius, cfg.CameraAltitude, cfg.CameraRoll),
		visible:   visible,
		projector: deps.Projector,
		tex:       deps.Texture,
		geoid:     deps.Geoid,
	}
	t.elevMin, t.elevMax = elevationRange(m.Elevations)
	return t, nil
}

func resolveMapArea(cfg config.Config, proj Projector) ([4]domain.GeoPoint, error) {
	if cfg.MapAreaCRS == "" {
		return cfg.GeographicMapArea(), nil
	}
	if proj == nil {
		return [4]domain.GeoPoint{}, fmt.Errorf("map area is in %s but no projector was provided", cfg.MapAreaCRS)
	}
	pts, err := proj.ToGeographicAll(cfg.ProjectedMapArea())
	if err != nil {
		return [4]domain.GeoPoint{}, fmt.Errorf("failed to reproject map area: %w", err)
	}
	if len(pts) != 4 {
		return [4]domain.GeoPoint{}, fmt.Errorf("map area reprojected to %d corners", len(pts))
	}
	var out [4]domain.GeoPoint
	copy(out[:], pts)
	return out, nil
}

func elevationRange(values []int16) (lo, hi int16) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi
}

// Mesh returns the terrain mesh.
func (t *Terrain) Mesh() *mesh.Mesh {
	return t.mesh
}

// Pick resolves a pointer pick into the overlay state.
func (t *Terrain) Pick(p overlay.Pick) overlay.State {
	return t.handler.OnPointerMove(p)
}

// ElevationAt interpolates the DEM at a geographic point inside the mesh window.
func (t *Terrain) ElevationAt(lat, lon float64) (float64, error) {
	return t.grid.InterpolateAt(lon, lat)
}

// Locate returns the texture coordinate of a geographic point and whether it
// lies inside the map area.
func (t *Terrain) Locate(lat, lon float64) (l, m float64, inside bool, err error) {
	l, m, err = t.coeffs.Solve(lat, lon)
	if err != nil {
		return 0, 0, false, err
	}
	return l, m, interp.InUnitSquare(l, m), nil
}

// Project converts projected points in the map's CRS to geographic points.
func (t *Terrain) Project(points []domain.ProjectedPoint) ([]domain.GeoPoint, error) {
	if t.projector == nil {
		return nil, fmt.Errorf("projection: %w", ErrNotConfigured)
	}
	return t.projector.ToGeographicAll(points)
}

// Track processes recorded fixes into a flight track over the map.
func (t *Terrain) Track(fixes []flight.Fix) (*flight.Track, error) {
	if t.projector == nil {
		return nil, fmt.Errorf("projection: %w", ErrNotConfigured)
	}
	return flight.BuildTrack(fixes, t.projector, flight.Options{
		Radius: t.cfg.EarthRadius,
		Area:   &t.quad,
		Geoid:  t.geoid,
	})
}

// MeshExport returns the encoded mesh export. It is built on first use.
func (t *Terrain) MeshExport() ([]byte, error) {
	t.exportOnce.Do(func() {
		var sampler mesh.ColorSampler
		if t.tex != nil {
			sampler = t.tex
		}
		var buf bytes.Buffer
		if err := mesh.WriteExport(&buf, t.mesh.Export(sampler)); err != nil {
			t.exportErr = err
			return
		}
		t.exportData = buf.Bytes()
	})
	return t.exportData, t.exportErr
}

// WriteTexture writes the texture as a JPEG.
func (t *Terrain) WriteTexture(w io.Writer) error {
	if t.tex == nil {
		return fmt.Errorf("texture: %w", ErrNotConfigured)
	}
	return t.tex.EncodeJPEG(w, textureQuality)
}

// TubeStyle is a cosmetic setting passed through to the renderer.
type TubeStyle struct {
	Radius float64    `json:"radius"`
	Color  [3]float64 `json:"color,omitempty"`
}

// TextureInfo describes the loaded texture.
type TextureInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MapMetadata is everything the renderer needs besides the mesh itself.
type MapMetadata struct {
	Corners        [4]domain.GeoPoint      `json:"corners"`
	Coefficients   interp.QuadCoefficients `json:"coefficients"`
	EarthRadius    float64                 `json:"earth_radius"`
	Cols           int                     `json:"cols"`
	Rows           int                     `json:"rows"`
	Window         mesh.Window             `json:"window"`
	VisibleCells   int                     `json:"visible_cells"`
	ElevationRange [2]int16                `json:"elevation_range"`
	ClipPlanes     []mesh.Plane            `json:"clip_planes"`
	Camera         domain.Camera           `json:"camera"`
	LevelLine      TubeStyle               `json:"level_line"`
	GliderPath     TubeStyle               `json:"glider_path"`
	Texture        *TextureInfo            `json:"texture,omitempty"`
	MapAreaCRS     string                  `json:"map_area_crs,omitempty"`
}

// Metadata describes the map.
func (t *Terrain) Metadata() MapMetadata {
	md := MapMetadata{
		Corners:        t.quad.Corners(),
		Coefficients:   t.coeffs,
		EarthRadius:    t.cfg.EarthRadius,
		Cols:           t.mesh.Cols,
		Rows:           t.mesh.Rows,
		Window:         t.mesh.Window,
		VisibleCells:   t.visible,
		ElevationRange: [2]int16{t.elevMin, t.elevMax},
		ClipPlanes:     t.mesh.Planes,
		Camera:         t.camera,
		LevelLine:      TubeStyle{Radius: t.cfg.LevelLineTubeRadius, Color: t.cfg.LevelLineTubeColor},
		GliderPath:     TubeStyle{Radius: t.cfg.GliderPathTubeRadius},
		MapAreaCRS:     t.cfg.MapAreaCRS,
	}
	if t.tex != nil {
		w, h := t.tex.Size()
		md.Texture = &TextureInfo{Width: w, Height: h}
	}
	return md
}
