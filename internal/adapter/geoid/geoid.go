// Package geoid provides EGM2008 geoid heights for converting GPS altitudes to
// heights above mean sea level.
package geoid

import (
	"errors"
	"fmt"
	"sync"

	"go.ngs.io/glider-terrain/internal/adapter/interp"
	"go.ngs.io/glider-terrain/internal/adapter/store/ncgrid"
)

// margin is the half-size in degrees of the grid window loaded around a query.
const margin = 2.0

var names = ncgrid.VarNames{
	Lat:  []string{"lat", "latitude", "y"},
	Lon:  []string{"lon", "longitude", "x"},
	Data: []string{"geoid", "geoid_height", "N", "height", "z"},
}

// Store provides geoid height lookups. The grid window is loaded lazily and
// reloaded when a query falls outside it.
type Store struct {
	geoidPath string // Path to EGM2008 NetCDF file.
	grid      *interp.Grid2D
	mu        sync.Mutex
}

// NewStore creates a new geoid store.
func NewStore(geoidPath string) *Store {
	return &Store{
		geoidPath: geoidPath,
	}
}

// GetGeoidHeight returns the geoid height N at a location: the separation
// between the WGS84 ellipsoid and the geoid, positive when the geoid is above.
//
// An ellipsoidal height h converts to an orthometric height H with
//
//	H = h - N
func (s *Store) GetGeoidHeight(lat, lon float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grid != nil {
		height, err := s.grid.InterpolateAt(lon, lat)
		if err == nil {
			return height, nil
		}
		if !errors.Is(err, interp.ErrOutOfGrid) {
			return 0, fmt.Errorf("failed to interpolate geoid height: %w", err)
		}
	}

	if err := s.loadGrid(lat, lon); err != nil {
		return 0, fmt.Errorf("failed to load geoid grid: %w", err)
	}

	height, err := s.grid.InterpolateAt(lon, lat)
	if err != nil {
		return 0, fmt.Errorf("failed to interpolate geoid height: %w", err)
	}
	return height, nil
}

// Orthometric converts an ellipsoidal height at a location.
func (s *Store) Orthometric(lat, lon, ellipsoidal float64) (float64, error) {
	n, err := s.GetGeoidHeight(lat, lon)
	if err != nil {
		return 0, err
	}
	return ellipsoidal - n, nil
}

func (s *Store) loadGrid(lat, lon float64) error {
	grid, err := ncgrid.LoadAround(s.geoidPath, names, lat, lon, margin)
	if err != nil {
		return err
	}
	g2, err := grid.Grid2D()
	if err != nil {
		return err
	}
	s.grid = g2
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
