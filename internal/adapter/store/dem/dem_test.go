package dem

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/glider-terrain/internal/domain"
)

var testExtent = domain.Extent{South: 60, West: 10, North: 65, East: 15}

func writeBILFile(t *testing.T, values []int16) string {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteBIL(&buf, values); err != nil {
		t.Fatalf("WriteBIL: %v", err)
	}
	path := filepath.Join(t.TempDir(), "dem.bil")
	//nolint:gosec // G306: Standard test file permissions.
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestBILStoreLoad(t *testing.T) {
	values := []int16{1, 2, 3, -4, 5, 6}
	path := writeBILFile(t, values)

	raw, err := NewBILStore(path, 2, 3, testExtent).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if raw.Rows != 2 || raw.Cols != 3 {
		t.Fatalf("expected 2x3, got %dx%d", raw.Rows, raw.Cols)
	}
	if raw.At(1, 0) != -4 || raw.At(0, 2) != 3 {
		t.Errorf("unexpected values: %v", raw.Values)
	}
	if raw.Latitude(0) != 65 || raw.Latitude(1) != 60 {
		t.Errorf("expected row 0 at 65N and row 1 at 60N, got %.3f and %.3f", raw.Latitude(0), raw.Latitude(1))
	}
	if raw.Longitude(0) != 10 || raw.Longitude(2) != 15 {
		t.Errorf("expected columns from 10E to 15E, got %.3f..%.3f", raw.Longitude(0), raw.Longitude(2))
	}
}

func TestBILStoreLoadShapeMismatch(t *testing.T) {
	path := writeBILFile(t, []int16{1, 2, 3, 4, 5})

	_, err := NewBILStore(path, 2, 3, testExtent).Load()
	if !errors.Is(err, domain.ErrDatasetShape) {
		t.Fatalf("expected ErrDatasetShape, got %v", err)
	}
}

func TestReadBILShortInput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBIL(&buf, []int16{1, 2, 3}); err != nil {
		t.Fatalf("WriteBIL: %v", err)
	}
	_, err := ReadBIL(&buf, 2, 2, testExtent)
	if !errors.Is(err, domain.ErrDatasetShape) {
		t.Fatalf("expected ErrDatasetShape, got %v", err)
	}
}

func createDEMFile(t *testing.T, path string, latVals, lonVals []float64, flat []float32) {
	t.Helper()
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer func() { _ = f.Close() }()

	latDim, _ := f.AddDim("lat", uint64(len(latVals)))
	lonDim, _ := f.AddDim("lon", uint64(len(lonVals)))
	vlat, _ := f.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := f.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	velev, _ := f.AddVar("elevation", netcdf.FLOAT, []netcdf.Dim{latDim, lonDim})
	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	if err := vlat.WriteFloat64s(latVals); err != nil {
		t.Fatalf("write lat: %v", err)
	}
	if err := vlon.WriteFloat64s(lonVals); err != nil {
		t.Fatalf("write lon: %v", err)
	}
	if err := velev.WriteFloat32s(flat); err != nil {
		t.Fatalf("write elevation: %v", err)
	}
}

func TestNetCDFStoreFlipsSouthFirstGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dem.nc")
	// South-first rows, as GEBCO-style files store them.
	createDEMFile(t, path,
		[]float64{63.1, 63.2, 63.3},
		[]float64{12.8, 12.9},
		[]float32{700.4, 710, 800, 810, 900, 909.6},
	)

	raw, err := NewNetCDFStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if raw.Rows != 3 || raw.Cols != 2 {
		t.Fatalf("expected 3x2, got %dx%d", raw.Rows, raw.Cols)
	}
	if raw.At(0, 0) != 900 || raw.At(0, 1) != 910 {
		t.Errorf("expected north row first, got %v", raw.Values)
	}
	if raw.At(2, 0) != 700 {
		t.Errorf("expected south-west sample 700, got %d", raw.At(2, 0))
	}
	if raw.Extent.North != 63.3 || raw.Extent.South != 63.1 || raw.Extent.West != 12.8 || raw.Extent.East != 12.9 {
		t.Errorf("unexpected extent %+v", raw.Extent)
	}
}

func TestNetCDFStoreRejectsNodata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holes.nc")
	createDEMFile(t, path,
		[]float64{63.3, 63.2},
		[]float64{12.8, 12.9},
		[]float32{900, float32(math.NaN()), 800, 810},
	)

	_, err := NewNetCDFStore(path).Load()
	if !errors.Is(err, domain.ErrDatasetShape) {
		t.Fatalf("expected ErrDatasetShape for a nodata sample, got %v", err)
	}
}

func TestWriteNetCDFRoundTrip(t *testing.T) {
	raw := &domain.RawElevations{
		Rows:   3,
		Cols:   4,
		Extent: domain.Extent{South: 63.0, West: 12.5, North: 63.2, East: 12.8},
		Values: []int16{
			900, 910, 920, 930,
			800, 810, 820, 830,
			-5, 0, 5, math.MaxInt16,
		},
	}
	path := filepath.Join(t.TempDir(), "dem.nc")
	if err := WriteNetCDF(path, raw); err != nil {
		t.Fatalf("WriteNetCDF: %v", err)
	}

	got, err := NewNetCDFStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Rows != raw.Rows || got.Cols != raw.Cols {
		t.Fatalf("expected %dx%d, got %dx%d", raw.Rows, raw.Cols, got.Rows, got.Cols)
	}
	for i, v := range raw.Values {
		if got.Values[i] != v {
			t.Fatalf("value %d: got %d, expected %d", i, got.Values[i], v)
		}
	}
	if math.Abs(got.Extent.North-63.2) > 1e-9 || math.Abs(got.Extent.East-12.8) > 1e-9 {
		t.Errorf("unexpected extent %+v", got.Extent)
	}
}

func TestWriteNetCDFRejectsBadShape(t *testing.T) {
	raw := &domain.RawElevations{Rows: 2, Cols: 2, Extent: testExtent, Values: []int16{1}}
	err := WriteNetCDF(filepath.Join(t.TempDir(), "bad.nc"), raw)
	if !errors.Is(err, domain.ErrDatasetShape) {
		t.Fatalf("expected ErrDatasetShape, got %v", err)
	}
}
