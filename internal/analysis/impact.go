// Package analysis maps source changes onto the types whose method order
// they can affect.
package analysis

import (
	"path/filepath"
	"sort"

	"methodorder/internal/catalog"
	"methodorder/internal/git"
)

// ImpactReport summarizes the types affected by changes.
type ImpactReport struct {
	// DirectlyAffected types had their declaration or one of their methods changed.
	DirectlyAffected []*catalog.Type
	// IndirectlyAffected types inherit from a directly affected type.
	IndirectlyAffected []*catalog.Type
	// ChangedMethods holds the signatures of the changed methods.
	ChangedMethods []string
}

// Analyzer performs impact analysis on a catalog.
type Analyzer struct {
	c    *catalog.Catalog
	root string
}

// NewAnalyzer creates an analyzer. root is the repository root that change
// paths are relative to.
func NewAnalyzer(c *catalog.Catalog, root string) *Analyzer {
	return &Analyzer{c: c, root: root}
}

// AnalyzeImpact identifies the types affected by the given changes.
func (a *Analyzer) AnalyzeImpact(changes []git.ChangedFile) *ImpactReport {
	report := &ImpactReport{
		DirectlyAffected:   []*catalog.Type{},
		IndirectlyAffected: []*catalog.Type{},
	}

	byPath := make(map[string]git.ChangedFile, len(changes))
	for _, ch := range changes {
		byPath[a.abs(ch.Path)] = ch
	}

	direct := make(map[string]bool)
	for _, t := range a.c.Types() {
		hit := false
		if ch, ok := byPath[absPath(t.Filepath)]; ok {
			hit = ch.Deleted || overlaps(t.StartLine, t.EndLine, ch.ChangedLines)
		}
		for _, m := range t.Methods {
			ch, ok := byPath[absPath(m.Filepath())]
			if !ok {
				continue
			}
			if ch.Deleted || overlaps(m.StartLine(), m.EndLine(), ch.ChangedLines) {
				report.ChangedMethods = append(report.ChangedMethods, m.String())
				hit = true
			}
		}
		if hit {
			direct[t.Qualified] = true
			report.DirectlyAffected = append(report.DirectlyAffected, t)
		}
	}

	indirect := make(map[string]bool)
	for _, t := range report.DirectlyAffected {
		for _, d := range a.c.Descendants(t.Qualified) {
			if direct[d.Qualified] || indirect[d.Qualified] {
				continue
			}
			indirect[d.Qualified] = true
			report.IndirectlyAffected = append(report.IndirectlyAffected, d)
		}
	}
	sort.Slice(report.IndirectlyAffected, func(i, j int) bool {
		return report.IndirectlyAffected[i].Qualified < report.IndirectlyAffected[j].Qualified
	})
	return report
}

func (a *Analyzer) abs(path string) string {
	if a.root == "" || filepath.IsAbs(path) {
		return absPath(path)
	}
	return absPath(filepath.Join(a.root, path))
}

// absPath resolves catalog paths, which are relative when the catalog was
// scanned from a relative root.
func absPath(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	// git reports the repository root with symlinks resolved.
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return p
}

func overlaps(start, end int, lines []int) bool {
	if end < start {
		end = start
	}
	for _, line := range lines {
		if line >= start && line <= end {
			return true
		}
	}
	return false
}
