package dem

import (
	"fmt"
	"math"

	"go.ngs.io/glider-terrain/internal/adapter/store/ncgrid"
	"go.ngs.io/glider-terrain/internal/domain"
)

// NetCDFStore reads an elevation grid from a NetCDF file with lat/lon axes.
type NetCDFStore struct {
	path  string
	names ncgrid.VarNames
}

// NewNetCDFStore creates a NetCDF-backed DEM store.
func NewNetCDFStore(path string) *NetCDFStore {
	return &NetCDFStore{
		path: path,
		names: ncgrid.VarNames{
			Lat:  []string{"lat", "latitude", "y"},
			Lon:  []string{"lon", "longitude", "x"},
			Data: []string{"elevation", "z", "Band1"},
		},
	}
}

// Load reads the whole grid, flipping it so that row 0 is the northern edge.
func (s *NetCDFStore) Load() (*domain.RawElevations, error) {
	grid, err := ncgrid.Load(s.path, s.names)
	if err != nil {
		return nil, fmt.Errorf("failed to load DEM grid: %w", err)
	}

	rows, cols := len(grid.Lat), len(grid.Lon)
	if rows < 2 || cols < 2 || len(grid.Values) != rows {
		return nil, fmt.Errorf("%w: NetCDF grid is %dx%d with %d value rows", domain.ErrDatasetShape, rows, cols, len(grid.Values))
	}

	northFirst := grid.Lat[0] > grid.Lat[rows-1]
	westFirst := grid.Lon[0] < grid.Lon[cols-1]

	raw := &domain.RawElevations{
		Rows: rows,
		Cols: cols,
		Extent: domain.Extent{
			South: math.Min(grid.Lat[0], grid.Lat[rows-1]),
			North: math.Max(grid.Lat[0], grid.Lat[rows-1]),
			West:  math.Min(grid.Lon[0], grid.Lon[cols-1]),
			East:  math.Max(grid.Lon[0], grid.Lon[cols-1]),
		},
		Values: make([]int16, rows*cols),
	}

	nodata := 0
	for i, row := range grid.Values {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", domain.ErrDatasetShape, i, len(row), cols)
		}
		dstRow := i
		if !northFirst {
			dstRow = rows - 1 - i
		}
		for j, v := range row {
			if math.IsNaN(v) {
				nodata++
				continue
			}
			dstCol := j
			if !westFirst {
				dstCol = cols - 1 - j
			}
			raw.Values[dstRow*cols+dstCol] = toInt16(v)
		}
	}

	if nodata > 0 {
		return nil, fmt.Errorf("%w: %d nodata samples in %s", domain.ErrDatasetShape, nodata, s.path)
	}

	if err := raw.Validate(); err != nil {
		return nil, err
	}
	return raw, nil
}

// Close releases resources (no-op, the file is closed after Load).
func (s *NetCDFStore) Close() error {
	return nil
}

// toInt16 rounds and saturates a sample.
func toInt16(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
