// Package main provides the glider terrain map HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.ngs.io/glider-terrain/internal/adapter/geoid"
	"go.ngs.io/glider-terrain/internal/adapter/reproject"
	"go.ngs.io/glider-terrain/internal/adapter/store/dem"
	"go.ngs.io/glider-terrain/internal/adapter/texture"
	"go.ngs.io/glider-terrain/internal/config"
	httpHandler "go.ngs.io/glider-terrain/internal/http"
	"go.ngs.io/glider-terrain/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("glider-terrain version %s\n", version)
		return
	}

	// Load configuration from environment.
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting glider terrain server...")
	log.Printf("Port: %s", cfg.Port)
	log.Printf("DEM: %s (%s)", cfg.DEMPath, cfg.DEMFormat)

	deps, closeDeps := buildDeps(cfg)
	defer closeDeps()

	terrain, err := usecase.New(cfg, deps)
	if err != nil {
		log.Fatalf("Failed to initialize terrain: %v", err)
	}

	// Setup router.
	router := httpHandler.SetupRouter(terrain, httpHandler.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MeshRPS:        cfg.MeshDownloadRPS,
	})

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/map")
	log.Printf("  - GET /v1/mesh")
	log.Printf("  - GET /v1/pick")
	log.Printf("  - GET /v1/elevation")
	if deps.Texture != nil {
		log.Printf("  - GET /v1/texture")
	}
	if deps.Projector != nil {
		log.Printf("  - GET /v1/project")
		log.Printf("  - POST /v1/flight/track")
	}

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildDeps creates the adapters described by cfg. Optional adapters that
// fail to initialize are skipped with a warning.
func buildDeps(cfg config.Config) (usecase.Deps, func()) {
	var deps usecase.Deps
	var closers []func() error

	switch cfg.DEMFormat {
	case config.FormatNetCDF:
		deps.DEM = dem.NewNetCDFStore(cfg.DEMPath)
	default:
		deps.DEM = dem.NewBILStore(cfg.DEMPath, cfg.DEMRows, cfg.DEMCols, cfg.DEMExtent)
	}
	closers = append(closers, deps.DEM.Close)

	if cfg.MapAreaCRS != "" {
		log.Printf("Initializing %s -> WGS84 transform", cfg.MapAreaCRS)
		tr := reproject.NewTransformer(cfg.MapAreaCRS)
		deps.Projector = tr
		closers = append(closers, tr.Close)
	} else {
		log.Printf("Projection disabled (MAP_AREA_CRS not set, map area is geographic)")
	}

	if cfg.TexturePath != "" {
		tex, err := texture.Load(cfg.TexturePath, cfg.TextureMaxSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: texture disabled: %v\n", err)
		} else {
			w, h := tex.Size()
			log.Printf("Texture loaded: %s (%dx%d)", cfg.TexturePath, w, h)
			deps.Texture = tex
		}
	}

	if cfg.GeoidPath != "" {
		log.Printf("Initializing EGM2008 geoid store")
		log.Printf("  Geoid path: %s", cfg.GeoidPath)
		store := geoid.NewStore(cfg.GeoidPath)
		deps.Geoid = store
		closers = append(closers, store.Close)
		log.Printf("Geoid store initialized (flight altitudes will be corrected to MSL)")
	}

	return deps, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: close failed: %v\n", err)
			}
		}
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Glider Terrain Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  glider-terrain [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	for _, line := range envUsage {
		fmt.Println("  " + line)
	}
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with the default Åre map area")
	fmt.Println("  DEM_PATH=./data/EarthEnv-DEM90_N60E010.bil glider-terrain")
	fmt.Println()
	fmt.Println("  # Map corners given in RT90")
	fmt.Println("  MAP_AREA_CRS=EPSG:3021 \\")
	fmt.Println("  MAP_AREA='7005969,1349602;7006362,1371835;7022967,1371573;7022573,1349340' glider-terrain")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                  Health check")
	fmt.Println("  GET  /v1/map                  Map metadata (corners, clip planes, camera)")
	fmt.Println("  GET  /v1/mesh                 Terrain mesh (msgpack + zstd)")
	fmt.Println("  GET  /v1/texture              Map texture (JPEG, if configured)")
	fmt.Println("  GET  /v1/pick                 Overlay state for a picked cell")
	fmt.Println("  GET  /v1/elevation            Elevation at a geographic point")
	fmt.Println("  GET  /v1/project              Projected -> geographic (if MAP_AREA_CRS is set)")
	fmt.Println("  POST /v1/flight/track         Process glider fixes (if MAP_AREA_CRS is set)")
	fmt.Println()
}

var envUsage = strings.Split(strings.TrimSpace(`
PORT                     Server port (default: 8080)
DEM_PATH                 Raw elevation file (default: ./data/EarthEnv-DEM90_N60E010.bil)
DEM_FORMAT               bil or netcdf (default: bil)
DEM_ROWS, DEM_COLS       BIL dimensions (default: 6000 x 6000)
DEM_EXTENT               BIL extent as south,west,north,east (default: 60,10,65,15)
EARTH_RADIUS             Sphere radius in meters (default: 6371009)
MAP_AREA                 SW;SE;NE;NW corners as a,b pairs (default: Åre, lat,lon)
MAP_AREA_CRS             CRS of MAP_AREA, e.g. EPSG:3021 with northing,easting (default: geographic)
TEXTURE_PATH             Map texture image (default: ./data/glider_map.jpg)
TEXTURE_MAX_SIZE         Downscale texture to fit this many pixels, 0 keeps it (default: 4096)
LEVEL_LINE_TUBE_RADIUS   Level line tube radius in meters (default: 15)
LEVEL_LINE_TUBE_COLOR    Level line color as r,g,b in [0,1] (default: 1,0.2,0.2)
GLIDER_PATH_TUBE_RADIUS  Flight track tube radius in meters (default: 25)
CAMERA_ALTITUDE          Camera altitude above the map center in meters (default: 40000)
CAMERA_ROLL              Camera roll in degrees (default: 0)
GEOID_EGM2008_PATH       EGM2008 geoid NetCDF file (optional, corrects GPS altitudes to MSL)
CORS_ALLOWED_ORIGINS     Comma-separated list of allowed origins (default: all origins)
MESH_DOWNLOAD_RPS        Sustained mesh downloads per second (default: 1)`), "\n")
