package crawler

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"methodorder/internal/extractor"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/mod/modfile"
)

// CacheFunc returns previously extracted units for a file whose content
// fingerprint is unchanged.
type CacheFunc func(path, hash string) (*extractor.FileUnits, bool)

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets the logger used for skipped files.
func WithLogger(l *zap.Logger) Option {
	return func(c *Crawler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCache lets the crawler reuse extraction results of unchanged files.
func WithCache(fn CacheFunc) Option {
	return func(c *Crawler) { c.cache = fn }
}

// Crawler scans a directory for source files.
type Crawler struct {
	extractors []*extractor.Extractor
	ignored    []string
	cache      CacheFunc
	logger     *zap.Logger
}

// NewCrawler creates a new crawler instance for the given languages.
func NewCrawler(exts []*extractor.Extractor, opts ...Option) *Crawler {
	c := &Crawler{
		extractors: exts,
		ignored:    []string{".git", "vendor", "node_modules", "testdata", "_examples"},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fingerprint returns the content hash stored with each file.
func Fingerprint(src []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(src))
}

// ScanProject walks the root directory and extracts every supported file,
// test files included. Results are streamed per file in lexical path order.
//
// Go files are qualified by import path, so equally named packages in
// different directories stay distinct. The module path comes from root's
// go.mod when present; otherwise directories are qualified relative to root
// and root itself keeps its declared package name.
func (c *Crawler) ScanProject(root string, onFile func(*extractor.FileUnits)) error {
	module := modulePath(root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		ext := c.extractorFor(d.Name())
		if ext == nil {
			return nil
		}

		var importPath string
		if ext.Language() == "go" {
			importPath = goImportPath(root, module, filepath.Dir(path))
		}

		fu, err := c.scanFile(ext, path, importPath)
		if err != nil {
			// Log and continue instead of failing the whole scan
			c.logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
			return nil
		}
		onFile(fu)
		return nil
	})
}

func (c *Crawler) scanFile(ext *extractor.Extractor, path, importPath string) (*extractor.FileUnits, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	hash := Fingerprint(src)

	if c.cache != nil {
		if fu, ok := c.cache(path, hash); ok {
			c.logger.Debug("file unchanged", zap.String("path", path))
			return fu, nil
		}
	}

	fu, err := ext.ExtractSourceAs(path, importPath, src)
	if err != nil {
		return nil, err
	}
	fu.Hash = hash
	return fu, nil
}

func (c *Crawler) extractorFor(name string) *extractor.Extractor {
	for _, ext := range c.extractors {
		if ext.Handles(name) {
			return ext
		}
	}
	return nil
}

func modulePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func goImportPath(root, module, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	switch {
	case module != "":
		return path.Join(module, rel)
	case rel == ".":
		return ""
	default:
		return rel
	}
}
