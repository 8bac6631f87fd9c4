// Package main builds the terrain mesh once and writes it to a file for
// offline rendering.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.ngs.io/glider-terrain/internal/adapter/reproject"
	"go.ngs.io/glider-terrain/internal/adapter/store/dem"
	"go.ngs.io/glider-terrain/internal/adapter/texture"
	"go.ngs.io/glider-terrain/internal/config"
	"go.ngs.io/glider-terrain/internal/usecase"
)

func main() {
	// Command line flags
	outPath := flag.String("out", "./terrain.msgpack.zst", "Output mesh file")
	noColors := flag.Bool("no-colors", false, "Do not bake texture colors into the mesh")
	flag.Parse()

	// The rest of the configuration comes from the same environment as the server.
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var deps usecase.Deps
	if cfg.DEMFormat == config.FormatNetCDF {
		deps.DEM = dem.NewNetCDFStore(cfg.DEMPath)
	} else {
		deps.DEM = dem.NewBILStore(cfg.DEMPath, cfg.DEMRows, cfg.DEMCols, cfg.DEMExtent)
	}
	defer func() { _ = deps.DEM.Close() }()

	if cfg.MapAreaCRS != "" {
		tr := reproject.NewTransformer(cfg.MapAreaCRS)
		defer func() { _ = tr.Close() }()
		deps.Projector = tr
	}

	if !*noColors && cfg.TexturePath != "" {
		tex, err := texture.Load(cfg.TexturePath, cfg.TextureMaxSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: exporting without colors: %v\n", err)
		} else {
			deps.Texture = tex
		}
	}

	terrain, err := usecase.New(cfg, deps)
	if err != nil {
		log.Fatalf("Failed to build terrain: %v", err)
	}

	data, err := terrain.MeshExport()
	if err != nil {
		log.Fatalf("Failed to encode mesh: %v", err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outPath, err)
	}

	m := terrain.Mesh()
	log.Printf("Wrote %s: %dx%d vertices, %d cells, %.1f MB",
		*outPath, m.Cols, m.Rows, m.CellCount(), float64(len(data))/1024/1024)
}
