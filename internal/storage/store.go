package storage

import (
	"context"

	"methodorder/internal/catalog"
	"methodorder/internal/extractor"
)

// CatalogStore persists discovered types and methods. It stores raw
// discovery results only; orderings are always recomputed.
type CatalogStore interface {
	// SaveFile upserts the units of a single file.
	SaveFile(ctx context.Context, fu *extractor.FileUnits) error

	// RemoveFile drops a file and its units.
	RemoveFile(ctx context.Context, path string) error

	// LoadCatalog rebuilds a linked catalog from the stored files.
	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)

	Close() error
}
