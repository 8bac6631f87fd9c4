package ncgrid

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"
)

var testNames = VarNames{
	Lat:  []string{"lat", "latitude"},
	Lon:  []string{"lon", "longitude"},
	Data: []string{"elevation", "z"},
}

// createGridFile writes a lat/lon grid with a SHORT elevation variable.
// attrs run in define mode and may add attributes to the elevation variable.
func createGridFile(t *testing.T, path string, latVals, lonVals []float64, values [][]int16, attrs ...func(v netcdf.Var) error) {
	t.Helper()
	//nolint:gosec // G301: Standard test directory permissions.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer func() { _ = f.Close() }()

	latDim, _ := f.AddDim("lat", uint64(len(latVals)))
	lonDim, _ := f.AddDim("lon", uint64(len(lonVals)))
	vlat, _ := f.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := f.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	velev, _ := f.AddVar("elevation", netcdf.SHORT, []netcdf.Dim{latDim, lonDim})
	for _, attr := range attrs {
		if err := attr(velev); err != nil {
			t.Fatalf("write attribute: %v", err)
		}
	}

	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	if err := vlat.WriteFloat64s(latVals); err != nil {
		t.Fatalf("write lat: %v", err)
	}
	if err := vlon.WriteFloat64s(lonVals); err != nil {
		t.Fatalf("write lon: %v", err)
	}
	flat := make([]int16, 0, len(latVals)*len(lonVals))
	for i := range values {
		flat = append(flat, values[i]...)
	}
	if err := velev.WriteInt16s(flat); err != nil {
		t.Fatalf("write elevation: %v", err)
	}
}

func TestLoadReadsWholeGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dem.nc")
	createGridFile(t, path,
		[]float64{63.3, 63.2, 63.1},
		[]float64{12.8, 12.9},
		[][]int16{{900, 910}, {800, 810}, {700, 710}},
	)

	grid, err := Load(path, testNames)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(grid.Lat) != 3 || len(grid.Lon) != 2 {
		t.Fatalf("expected 3x2 axes, got %dx%d", len(grid.Lat), len(grid.Lon))
	}
	if grid.Values[0][1] != 910 || grid.Values[2][0] != 700 {
		t.Errorf("unexpected values: %v", grid.Values)
	}
}

func TestGrid2DSortsDescendingLatitude(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dem.nc")
	createGridFile(t, path,
		[]float64{63.3, 63.2, 63.1},
		[]float64{12.8, 12.9},
		[][]int16{{900, 910}, {800, 810}, {700, 710}},
	)

	grid, err := Load(path, testNames)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	g2, err := grid.Grid2D()
	if err != nil {
		t.Fatalf("Grid2D: %v", err)
	}
	if g2.Y[0] != 63.1 || g2.Values[0][0] != 700 {
		t.Errorf("expected south row first, got Y=%v values=%v", g2.Y, g2.Values)
	}

	v, err := g2.InterpolateAt(12.85, 63.25)
	if err != nil {
		t.Fatalf("InterpolateAt: %v", err)
	}
	if math.Abs(v-855) > 1e-6 {
		t.Errorf("expected 855, got %.6f", v)
	}

	// The source grid is left untouched.
	if grid.Lat[0] != 63.3 {
		t.Errorf("Grid2D modified the source axes: %v", grid.Lat)
	}
}

func TestLoadAroundReadsSubset(t *testing.T) {
	latVals := make([]float64, 21)
	for i := range latVals {
		latVals[i] = float64(i)
	}
	lonVals := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	values := make([][]int16, len(latVals))
	for i := range values {
		values[i] = make([]int16, len(lonVals))
		for j := range values[i] {
			values[i][j] = int16(100*i + j)
		}
	}
	path := filepath.Join(t.TempDir(), "geoid.nc")
	createGridFile(t, path, latVals, lonVals, values)

	grid, err := LoadAround(path, testNames, 10, 5, 2)
	if err != nil {
		t.Fatalf("LoadAround: %v", err)
	}
	if grid.Lat[0] != 8 || grid.Lat[len(grid.Lat)-1] != 12 {
		t.Errorf("expected latitudes 8..12, got %v", grid.Lat)
	}
	if grid.Lon[0] != 3 || grid.Lon[len(grid.Lon)-1] != 7 {
		t.Errorf("expected longitudes 3..7, got %v", grid.Lon)
	}
	if grid.Values[0][0] != 803 {
		t.Errorf("expected first value 803, got %.0f", grid.Values[0][0])
	}
}

func TestLoadMissingVariable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dem.nc")
	createGridFile(t, path, []float64{0, 1}, []float64{0, 1}, [][]int16{{1, 2}, {3, 4}})

	_, err := Load(path, VarNames{Lat: []string{"lat"}, Lon: []string{"lon"}, Data: []string{"height"}})
	if err == nil {
		t.Fatal("expected error for missing data variable")
	}
}

func TestFindNearestIndexDescending(t *testing.T) {
	axis := []float64{65, 64, 63, 62, 61, 60}
	if got := findNearestIndex(axis, 62.9); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := findNearestIndex(axis, 59); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestLoadUnpacksValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packed.nc")
	createGridFile(t, path,
		[]float64{63.1, 63.2},
		[]float64{12.8, 12.9, 13.0},
		[][]int16{{1000, -32768, 1200}, {1400, 1600, -9999}},
		func(v netcdf.Var) error { return v.Attr("_FillValue").WriteInt16s([]int16{-32768}) },
		func(v netcdf.Var) error { return v.Attr("missing_value").WriteInt16s([]int16{-9999}) },
		func(v netcdf.Var) error { return v.Attr("scale_factor").WriteFloat32s([]float32{0.5}) },
		func(v netcdf.Var) error { return v.Attr("add_offset").WriteFloat64s([]float64{100}) },
	)

	grid, err := Load(path, testNames)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name     string
		row, col int
		expected float64
	}{
		{"scaled and offset", 0, 0, 600},
		{"last valid sample", 1, 1, 900},
		{"second row", 1, 0, 800},
	}
	for _, tt := range tests {
		if got := grid.Values[tt.row][tt.col]; math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("%s: expected %.1f, got %v", tt.name, tt.expected, got)
		}
	}
	if !math.IsNaN(grid.Values[0][1]) {
		t.Errorf("_FillValue sample: expected NaN, got %v", grid.Values[0][1])
	}
	if !math.IsNaN(grid.Values[1][2]) {
		t.Errorf("missing_value sample: expected NaN, got %v", grid.Values[1][2])
	}
}
