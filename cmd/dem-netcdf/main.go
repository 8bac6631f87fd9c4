// Package main converts a raw .bil elevation tile into a NetCDF grid.
package main

import (
	"flag"
	"log"
	"path/filepath"
	"strings"

	"go.ngs.io/glider-terrain/internal/adapter/store/dem"
	"go.ngs.io/glider-terrain/internal/domain"
)

func main() {
	// Command line flags
	inPath := flag.String("in", "./data/EarthEnv-DEM90_N60E010.bil", "Input .bil file (little-endian int16, row-major, north row first)")
	outPath := flag.String("out", "", "Output NetCDF file (default: input with .nc extension)")
	rows := flag.Int("rows", 6000, "Number of rows in the input")
	cols := flag.Int("cols", 6000, "Number of columns in the input")
	south := flag.Float64("south", 60, "Southern edge latitude")
	west := flag.Float64("west", 10, "Western edge longitude")
	north := flag.Float64("north", 65, "Northern edge latitude")
	east := flag.Float64("east", 15, "Eastern edge longitude")
	flag.Parse()

	if *outPath == "" {
		*outPath = strings.TrimSuffix(*inPath, filepath.Ext(*inPath)) + ".nc"
	}

	extent := domain.Extent{South: *south, West: *west, North: *north, East: *east}
	if err := extent.Validate(); err != nil {
		log.Fatalf("Invalid extent: %v", err)
	}

	store := dem.NewBILStore(*inPath, *rows, *cols, extent)
	raw, err := store.Load()
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *inPath, err)
	}
	log.Printf("Loaded %d x %d samples from %s", raw.Rows, raw.Cols, *inPath)
	log.Printf("Extent: %.4f°-%.4f°N, %.4f°-%.4f°E", extent.South, extent.North, extent.West, extent.East)

	if err := dem.WriteNetCDF(*outPath, raw); err != nil {
		log.Fatalf("Failed to write %s: %v", *outPath, err)
	}
	log.Printf("✓ Wrote %s", *outPath)
}
