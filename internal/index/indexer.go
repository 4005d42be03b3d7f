// Package index builds the project catalog, reusing stored extraction
// results for files whose content has not changed.
package index

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"methodorder/internal/catalog"
	"methodorder/internal/crawler"
	"methodorder/internal/extractor"
	"methodorder/internal/storage"

	"go.uber.org/zap"
)

// Stats summarizes one indexing run.
type Stats struct {
	Files   int
	Reused  int
	Removed int
	Types   int
}

// Indexer orchestrates source scanning and catalog persistence.
type Indexer struct {
	extractors []*extractor.Extractor
	store      storage.CatalogStore
	logger     *zap.Logger
}

// NewIndexer creates an indexer. store may be nil, in which case every
// build extracts all files and nothing is persisted.
func NewIndexer(exts []*extractor.Extractor, store storage.CatalogStore, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{extractors: exts, store: store, logger: logger}
}

// ForLanguages creates extractors for the named languages.
func ForLanguages(langs []string) ([]*extractor.Extractor, error) {
	exts := make([]*extractor.Extractor, 0, len(langs))
	for _, l := range langs {
		ext, err := extractor.NewExtractor(l)
		if err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, nil
}

// BuildCatalog scans root and returns a linked catalog. When a store is
// configured, the stored catalog is updated in place: unchanged files are
// reused, changed files are saved and files no longer present are removed.
func (i *Indexer) BuildCatalog(ctx context.Context, root string) (*catalog.Catalog, Stats, error) {
	var stats Stats

	// Stored paths are absolute so they match regardless of the working directory.
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to resolve root: %w", err)
	}

	c := catalog.New()
	if i.store != nil {
		if c, err = i.store.LoadCatalog(ctx); err != nil {
			return nil, stats, fmt.Errorf("failed to load previous catalog: %w", err)
		}
	}

	cache := func(path, hash string) (*extractor.FileUnits, bool) {
		fu, ok := c.Files[path]
		if !ok || fu.Hash == "" || fu.Hash != hash {
			return nil, false
		}
		stats.Reused++
		return fu, true
	}

	var changed []*extractor.FileUnits
	seen := make(map[string]bool)
	cr := crawler.NewCrawler(i.extractors, crawler.WithLogger(i.logger), crawler.WithCache(cache))
	err = cr.ScanProject(root, func(fu *extractor.FileUnits) {
		stats.Files++
		seen[fu.Path] = true
		if c.Files[fu.Path] != fu {
			c.AddFile(fu)
			changed = append(changed, fu)
		}
	})
	if err != nil {
		return nil, stats, fmt.Errorf("scan failed: %w", err)
	}

	var removed []string
	for p := range c.Files {
		if !seen[p] {
			removed = append(removed, p)
		}
	}
	sort.Strings(removed)
	for _, p := range removed {
		c.RemoveFile(p)
	}
	stats.Removed = len(removed)

	if i.store != nil {
		for _, fu := range changed {
			if err := i.store.SaveFile(ctx, fu); err != nil {
				return nil, stats, fmt.Errorf("failed to save %s: %w", fu.Path, err)
			}
		}
		for _, p := range removed {
			if err := i.store.RemoveFile(ctx, p); err != nil {
				return nil, stats, err
			}
		}
	}

	c.Link()
	stats.Types = len(c.Types())

	i.logger.Info("catalog built",
		zap.String("root", root),
		zap.Int("files", stats.Files),
		zap.Int("reused", stats.Reused),
		zap.Int("removed", stats.Removed),
		zap.Int("types", stats.Types))
	return c, stats, nil
}

// LoadCatalog returns the stored catalog without scanning.
func (i *Indexer) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if i.store == nil {
		return nil, fmt.Errorf("no catalog store configured")
	}
	return i.store.LoadCatalog(ctx)
}
