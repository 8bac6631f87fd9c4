package dem

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/glider-terrain/internal/domain"
)

// WriteNetCDF writes raw as a NetCDF file readable by NetCDFStore: lat
// (north first) and lon axes plus a SHORT elevation variable.
func WriteNetCDF(path string, raw *domain.RawElevations) error {
	if err := raw.Validate(); err != nil {
		return err
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	latDim, err := ds.AddDim("lat", uint64(raw.Rows))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim("lon", uint64(raw.Cols))
	if err != nil {
		return err
	}

	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	elevVar, err := ds.AddVar("elevation", netcdf.SHORT, []netcdf.Dim{latDim, lonDim})
	if err != nil {
		return err
	}
	if err := latVar.Attr("units").WriteBytes([]byte("degrees_north")); err != nil {
		return err
	}
	if err := lonVar.Attr("units").WriteBytes([]byte("degrees_east")); err != nil {
		return err
	}
	if err := elevVar.Attr("units").WriteBytes([]byte("m")); err != nil {
		return err
	}
	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	lat := make([]float64, raw.Rows)
	for i := range lat {
		lat[i] = raw.Latitude(i)
	}
	lon := make([]float64, raw.Cols)
	for j := range lon {
		lon[j] = raw.Longitude(j)
	}

	if err := latVar.WriteFloat64s(lat); err != nil {
		return fmt.Errorf("failed to write lat: %w", err)
	}
	if err := lonVar.WriteFloat64s(lon); err != nil {
		return fmt.Errorf("failed to write lon: %w", err)
	}
	if err := elevVar.WriteInt16s(raw.Values); err != nil {
		return fmt.Errorf("failed to write elevation: %w", err)
	}
	return nil
}
