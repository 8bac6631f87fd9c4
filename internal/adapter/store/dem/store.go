// Package dem loads raw digital elevation model grids.
package dem

import "go.ngs.io/glider-terrain/internal/domain"

// Store provides access to a raw elevation grid.
type Store interface {
	// Load reads the whole grid. Row 0 of the result is the northern edge.
	Load() (*domain.RawElevations, error)

	// Close releases any resources held by the store.
	Close() error
}
