package dem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"go.ngs.io/glider-terrain/internal/domain"
)

// BILStore reads a band-interleaved raw file of little-endian int16 samples
// (e.g. EarthEnv-DEM90 tiles). The file carries no header, so its dimensions
// and geographic extent come from configuration.
type BILStore struct {
	path   string
	rows   int
	cols   int
	extent domain.Extent
}

// NewBILStore creates a store for a rows x cols raw file covering extent.
func NewBILStore(path string, rows, cols int, extent domain.Extent) *BILStore {
	return &BILStore{
		path:   path,
		rows:   rows,
		cols:   cols,
		extent: extent,
	}
}

// Load reads the file. A size that does not match rows x cols is an ErrDatasetShape.
func (s *BILStore) Load() (*domain.RawElevations, error) {
	//nolint:gosec // G304: path comes from configuration.
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DEM file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat DEM file: %w", err)
	}
	expected := int64(s.rows) * int64(s.cols) * 2
	if info.Size() != expected {
		return nil, fmt.Errorf("%w: %s is %d bytes, expected %d (%d x %d int16)",
			domain.ErrDatasetShape, s.path, info.Size(), expected, s.rows, s.cols)
	}

	return ReadBIL(f, s.rows, s.cols, s.extent)
}

// Close releases resources (no-op for BIL files).
func (s *BILStore) Close() error {
	return nil
}

// ReadBIL decodes rows x cols little-endian int16 samples from r.
func ReadBIL(r io.Reader, rows, cols int, extent domain.Extent) (*domain.RawElevations, error) {
	raw := &domain.RawElevations{
		Rows:   rows,
		Cols:   cols,
		Extent: extent,
		Values: make([]int16, rows*cols),
	}
	if err := binary.Read(r, binary.LittleEndian, raw.Values); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: short read: %v", domain.ErrDatasetShape, err)
		}
		return nil, fmt.Errorf("failed to read DEM samples: %w", err)
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	return raw, nil
}

// WriteBIL encodes samples as little-endian int16.
func WriteBIL(w io.Writer, values []int16) error {
	return binary.Write(w, binary.LittleEndian, values)
}
