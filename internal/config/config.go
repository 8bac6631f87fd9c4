// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.ngs.io/glider-terrain/internal/domain"
)

// DEM file formats.
const (
	FormatBIL    = "bil"
	FormatNetCDF = "netcdf"
)

// Config is the full runtime configuration. It is read once at startup.
type Config struct {
	Port string

	DEMPath   string
	DEMFormat string
	DEMRows   int
	DEMCols   int
	DEMExtent domain.Extent

	EarthRadius float64

	// MapArea holds the SW, SE, NE and NW corners. With an empty MapAreaCRS
	// each pair is (lat, lon); otherwise it is (northing, easting) in that CRS.
	MapArea    [4][2]float64
	MapAreaCRS string

	TexturePath    string
	TextureMaxSize int

	LevelLineTubeRadius  float64
	LevelLineTubeColor   [3]float64
	GliderPathTubeRadius float64
	CameraAltitude       float64
	CameraRoll           float64

	GeoidPath          string
	CORSAllowedOrigins []string
	MeshDownloadRPS    float64
}

// Default returns the configuration for the Åre map area on the
// EarthEnv-DEM90 N60E010 tile.
func Default() Config {
	return Config{
		Port:      "8080",
		DEMPath:   "./data/EarthEnv-DEM90_N60E010.bil",
		DEMFormat: FormatBIL,
		DEMRows:   6000,
		DEMCols:   6000,
		DEMExtent: domain.Extent{South: 60, West: 10, North: 65, East: 15},

		EarthRadius: 6371009,

		MapArea: [4][2]float64{
			{63.13304365211308, 12.825512884793955},
			{63.145143746674435, 13.265575207847208},
			{63.2938907308566, 13.247244782969224},
			{63.28171029538654, 12.80492828636552},
		},

		TexturePath:    "./data/glider_map.jpg",
		TextureMaxSize: 4096,

		LevelLineTubeRadius:  15,
		LevelLineTubeColor:   [3]float64{1, 0.2, 0.2},
		GliderPathTubeRadius: 25,
		CameraAltitude:       40000,
		CameraRoll:           0,

		MeshDownloadRPS: 1,
	}
}

// FromEnv overlays environment variables on Default and validates the result.
func FromEnv() (Config, error) {
	cfg := Default()
	var errs []error

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DEMPath = getEnv("DEM_PATH", cfg.DEMPath)
	cfg.DEMFormat = strings.ToLower(getEnv("DEM_FORMAT", cfg.DEMFormat))
	cfg.MapAreaCRS = getEnv("MAP_AREA_CRS", cfg.MapAreaCRS)
	cfg.TexturePath = getEnv("TEXTURE_PATH", cfg.TexturePath)
	cfg.GeoidPath = getEnv("GEOID_EGM2008_PATH", cfg.GeoidPath)

	intVar := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	floatVar := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = f
		}
	}

	intVar("DEM_ROWS", &cfg.DEMRows)
	intVar("DEM_COLS", &cfg.DEMCols)
	intVar("TEXTURE_MAX_SIZE", &cfg.TextureMaxSize)
	floatVar("EARTH_RADIUS", &cfg.EarthRadius)
	floatVar("LEVEL_LINE_TUBE_RADIUS", &cfg.LevelLineTubeRadius)
	floatVar("GLIDER_PATH_TUBE_RADIUS", &cfg.GliderPathTubeRadius)
	floatVar("CAMERA_ALTITUDE", &cfg.CameraAltitude)
	floatVar("CAMERA_ROLL", &cfg.CameraRoll)
	floatVar("MESH_DOWNLOAD_RPS", &cfg.MeshDownloadRPS)

	if v := os.Getenv("DEM_EXTENT"); v != "" {
		vals, err := parseFloats(v, ",", 4)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid DEM_EXTENT: %w", err))
		} else {
			cfg.DEMExtent = domain.Extent{South: vals[0], West: vals[1], North: vals[2], East: vals[3]}
		}
	}

	if v := os.Getenv("MAP_AREA"); v != "" {
		area, err := parseMapArea(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid MAP_AREA: %w", err))
		} else {
			cfg.MapArea = area
		}
	} else if cfg.MapAreaCRS != "" {
		errs = append(errs, errors.New("MAP_AREA_CRS is set but MAP_AREA is not"))
	}

	if v := os.Getenv("LEVEL_LINE_TUBE_COLOR"); v != "" {
		rgb, err := parseFloats(v, ",", 3)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid LEVEL_LINE_TUBE_COLOR: %w", err))
		} else {
			cfg.LevelLineTubeColor = [3]float64{rgb[0], rgb[1], rgb[2]}
		}
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = strings.Split(v, ",")
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is empty"))
	}
	if c.DEMFormat != FormatBIL && c.DEMFormat != FormatNetCDF {
		errs = append(errs, fmt.Errorf("unknown DEM format %q (expected %s or %s)", c.DEMFormat, FormatBIL, FormatNetCDF))
	}
	if c.DEMFormat == FormatBIL && (c.DEMRows < 2 || c.DEMCols < 2) {
		errs = append(errs, fmt.Errorf("DEM must be at least 2x2, got %dx%d", c.DEMRows, c.DEMCols))
	}
	if err := c.DEMExtent.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("DEM extent: %w", err))
	}
	if c.EarthRadius <= 0 {
		errs = append(errs, fmt.Errorf("earth radius must be positive, got %g", c.EarthRadius))
	}
	if c.TextureMaxSize < 0 {
		errs = append(errs, fmt.Errorf("texture max size must not be negative, got %d", c.TextureMaxSize))
	}
	if c.CameraAltitude <= 0 {
		errs = append(errs, fmt.Errorf("camera altitude must be positive, got %g", c.CameraAltitude))
	}
	if c.MeshDownloadRPS <= 0 {
		errs = append(errs, fmt.Errorf("mesh download rate must be positive, got %g", c.MeshDownloadRPS))
	}
	for i, v := range c.LevelLineTubeColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("level line color component %d out of [0, 1]: %g", i, v))
		}
	}
	return errors.Join(errs...)
}

// GeographicMapArea returns the map corners as geographic points. Only
// meaningful when MapAreaCRS is empty.
func (c Config) GeographicMapArea() [4]domain.GeoPoint {
	var out [4]domain.GeoPoint
	for i, p := range c.MapArea {
		out[i] = domain.GeoPoint{Lat: p[0], Lon: p[1]}
	}
	return out
}

// ProjectedMapArea returns the map corners as projected points in MapAreaCRS.
func (c Config) ProjectedMapArea() []domain.ProjectedPoint {
	out := make([]domain.ProjectedPoint, len(c.MapArea))
	for i, p := range c.MapArea {
		out[i] = domain.ProjectedPoint{Northing: p[0], Easting: p[1]}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseMapArea parses "a,b;a,b;a,b;a,b".
func parseMapArea(s string) ([4][2]float64, error) {
	var out [4][2]float64
	pairs := strings.Split(strings.TrimSpace(s), ";")
	if len(pairs) != 4 {
		return out, fmt.Errorf("expected 4 corners, got %d", len(pairs))
	}
	for i, pair := range pairs {
		vals, err := parseFloats(pair, ",", 2)
		if err != nil {
			return out, fmt.Errorf("corner %d: %w", i, err)
		}
		out[i] = [2]float64{vals[0], vals[1]}
	}
	return out, nil
}

func parseFloats(s, sep string, n int) ([]float64, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
