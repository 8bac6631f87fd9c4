// Package ncgrid reads 2D latitude/longitude grids from NetCDF files.
package ncgrid

import (
	"fmt"
	"math"
	"sort"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/glider-terrain/internal/adapter/interp"
)

// VarNames lists candidate variable names, tried in order.
type VarNames struct {
	Lat  []string
	Lon  []string
	Data []string
}

// Grid is a (subset of a) NetCDF grid. Values[i][j] is the sample at (Lat[i], Lon[j]).
// Axes keep the file's ordering.
type Grid struct {
	Lat    []float64
	Lon    []float64
	Values [][]float64
}

// Load reads the whole grid.
func Load(path string, names VarNames) (*Grid, error) {
	return load(path, names, nil)
}

// LoadAround reads the part of the grid within ±margin degrees of (lat, lon).
func LoadAround(path string, names VarNames, lat, lon, margin float64) (*Grid, error) {
	return load(path, names, &window{lat: lat, lon: lon, margin: margin})
}

type window struct {
	lat, lon, margin float64
}

//nolint:gocyclo // NetCDF loading has many cases.
func load(path string, names VarNames, win *window) (*Grid, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	latData, err := readAxis(nc, names.Lat)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lonData, err := readAxis(nc, names.Lon)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}

	latStart, latEnd := 0, len(latData)
	lonStart, lonEnd := 0, len(lonData)
	if win != nil && win.margin > 0 {
		latStart, latEnd = subsetRange(latData, win.lat-win.margin, win.lat+win.margin)
		lonStart, lonEnd = subsetRange(lonData, win.lon-win.margin, win.lon+win.margin)
	}

	var dataVar netcdf.Var
	var dataFound bool
	for _, name := range names.Data {
		if v, err := nc.Var(name); err == nil {
			dataVar = v
			dataFound = true
			break
		}
	}
	if !dataFound {
		return nil, fmt.Errorf("data variable not found (tried: %v)", names.Data)
	}

	dims, err := dataVar.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("expected 2D data, got %dD", len(dims))
	}
	dim0Len, err := dims[0].Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get dim0 length: %w", err)
	}
	dim1Len, err := dims[1].Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get dim1 length: %w", err)
	}

	nLat, nLon := len(latData), len(lonData)
	nSubsetLat := latEnd - latStart
	nSubsetLon := lonEnd - lonStart

	var values [][]float64
	switch {
	case dim0Len == uint64(nLat) && dim1Len == uint64(nLon):
		values, err = readSubset(dataVar, latStart, lonStart, nSubsetLat, nSubsetLon)
	case dim0Len == uint64(nLon) && dim1Len == uint64(nLat):
		// Data is [lon, lat].
		var transposed [][]float64
		transposed, err = readSubset(dataVar, lonStart, latStart, nSubsetLon, nSubsetLat)
		if err == nil {
			values = transpose2D(transposed)
		}
	default:
		return nil, fmt.Errorf("dimension mismatch: data is [%d, %d], expected [%d, %d] or [%d, %d]",
			dim0Len, dim1Len, nLat, nLon, nLon, nLat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return &Grid{
		Lat:    latData[latStart:latEnd],
		Lon:    lonData[lonStart:lonEnd],
		Values: values,
	}, nil
}

// Grid2D converts the grid to an interpolation grid with ascending axes
// (X = longitude, Y = latitude).
func (g *Grid) Grid2D() (*interp.Grid2D, error) {
	lat := append([]float64(nil), g.Lat...)
	lon := append([]float64(nil), g.Lon...)
	values := make([][]float64, len(g.Values))
	for i, row := range g.Values {
		values[i] = append([]float64(nil), row...)
	}

	if len(lat) > 1 && lat[0] > lat[len(lat)-1] {
		reverse(lat)
		reverse(values)
	}
	if len(lon) > 1 && lon[0] > lon[len(lon)-1] {
		reverse(lon)
		for _, row := range values {
			reverse(row)
		}
	}

	grid := &interp.Grid2D{X: lon, Y: lat, Values: values}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	return grid, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// subsetRange returns a [start, end) index range covering [lo, hi] with at least 2 samples.
func subsetRange(axis []float64, lo, hi float64) (int, int) {
	startIdx := findNearestIndex(axis, lo)
	endIdx := findNearestIndex(axis, hi)
	if startIdx > endIdx {
		startIdx, endIdx = endIdx, startIdx
	}
	start := max(0, min(startIdx, len(axis)-2))
	end := max(start+2, min(endIdx+1, len(axis)))
	return start, end
}

func readAxis(nc netcdf.Dataset, names []string) ([]float64, error) {
	for _, name := range names {
		if v, err := nc.Var(name); err == nil {
			data, err := readFloat64Var(v)
			if err == nil {
				return data, nil
			}
		}
	}
	return nil, fmt.Errorf("variable not found (tried: %v)", names)
}

// readFloat64Var reads a 1D float64 array from a NetCDF variable.
func readFloat64Var(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}

	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}

	data := make([]float64, length)
	if err := v.ReadFloat64s(data); err != nil {
		return nil, err
	}
	return data, nil
}

// readSubset reads nRows x nCols values starting at [startRow, startCol].
// Supports DOUBLE, FLOAT, INT and SHORT variables; packing attributes are applied by unpack.
func readSubset(v netcdf.Var, startRow, startCol, nRows, nCols int) ([][]float64, error) {
	varType, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get variable type: %w", err)
	}

	totalSize := nRows * nCols
	flatData := make([]float64, totalSize)

	//nolint:gosec // G115: indices come from validated axis lengths.
	start := []uint64{uint64(startRow), uint64(startCol)}
	//nolint:gosec // G115: counts come from validated axis lengths.
	count := []uint64{uint64(nRows), uint64(nCols)}

	switch varType {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64Slice(flatData, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float64 subset: %w", err)
		}
	case netcdf.FLOAT:
		buf := make([]float32, totalSize)
		if err := v.ReadFloat32Slice(buf, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float32 subset: %w", err)
		}
		for i, val := range buf {
			flatData[i] = float64(val)
		}
	case netcdf.SHORT:
		buf := make([]int16, totalSize)
		if err := v.ReadInt16Slice(buf, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int16 subset: %w", err)
		}
		for i, val := range buf {
			flatData[i] = float64(val)
		}
	case netcdf.INT:
		buf := make([]int32, totalSize)
		if err := v.ReadInt32Slice(buf, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int32 subset: %w", err)
		}
		for i, val := range buf {
			flatData[i] = float64(val)
		}
	case netcdf.BYTE, netcdf.UBYTE, netcdf.CHAR, netcdf.USHORT, netcdf.UINT, netcdf.INT64, netcdf.UINT64, netcdf.STRING:
		return nil, fmt.Errorf("unsupported data type: %v (expected DOUBLE, FLOAT, INT, or SHORT)", varType)
	}

	unpack(v, flatData)

	values := make([][]float64, nRows)
	for i := 0; i < nRows; i++ {
		values[i] = flatData[i*nCols : (i+1)*nCols]
	}
	return values, nil
}

// unpack applies the CF packing attributes in place: samples equal to
// _FillValue or missing_value become NaN, the rest become
// packed*scale_factor + add_offset.
func unpack(v netcdf.Var, data []float64) {
	fill, hasFill := numericAttr(v, "_FillValue")
	missing, hasMissing := numericAttr(v, "missing_value")
	scale, ok := numericAttr(v, "scale_factor")
	if !ok || scale == 0 {
		scale = 1
	}
	offset, _ := numericAttr(v, "add_offset")

	for i, x := range data {
		if (hasFill && x == fill) || (hasMissing && x == missing) {
			data[i] = math.NaN()
			continue
		}
		data[i] = x*scale + offset
	}
}

// numericAttr reads the first value of a numeric attribute, whatever its stored type.
func numericAttr(v netcdf.Var, name string) (float64, bool) {
	attr := v.Attr(name)
	n, err := attr.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	typ, err := attr.Type()
	if err != nil {
		return 0, false
	}

	switch typ {
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if attr.ReadFloat64s(buf) == nil {
			return buf[0], true
		}
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if attr.ReadFloat32s(buf) == nil {
			return float64(buf[0]), true
		}
	case netcdf.INT:
		buf := make([]int32, n)
		if attr.ReadInt32s(buf) == nil {
			return float64(buf[0]), true
		}
	case netcdf.SHORT:
		buf := make([]int16, n)
		if attr.ReadInt16s(buf) == nil {
			return float64(buf[0]), true
		}
	}
	return 0, false
}

// transpose2D turns a [lon][lat] block into [lat][lon], backed by one slice.
func transpose2D(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return data
	}
	rows, cols := len(data[0]), len(data)
	flat := make([]float64, rows*cols)
	out := make([][]float64, rows)
	for r := range out {
		out[r] = flat[r*cols : (r+1)*cols]
		for c, col := range data {
			out[r][c] = col[r]
		}
	}
	return out
}

// findNearestIndex returns the index of the sample closest to target on a
// monotonic axis, ascending or descending.
func findNearestIndex(axis []float64, target float64) int {
	n := len(axis)
	if n == 0 {
		return 0
	}
	descending := n > 1 && axis[0] > axis[n-1]
	i := sort.Search(n, func(i int) bool {
		if descending {
			return axis[i] <= target
		}
		return axis[i] >= target
	})
	switch {
	case i == n:
		return n - 1
	case i > 0 && math.Abs(axis[i-1]-target) < math.Abs(axis[i]-target):
		return i - 1
	}
	return i
}
