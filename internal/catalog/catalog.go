// Package catalog indexes extracted types and methods and answers the
// discovery questions a collector asks: which methods does a type declare,
// and which types does it inherit from.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"methodorder/internal/collector"
	"methodorder/internal/extractor"
	"methodorder/internal/method"
)

// Catalog holds the extraction results of a project, keyed by file path.
// Lookups are safe for concurrent use once all files have been added.
type Catalog struct {
	Files map[string]*extractor.FileUnits

	mu        sync.Mutex
	types     map[string]*Type
	nameIndex map[string][]string // simple name -> qualified names
	linked    bool
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		Files:     make(map[string]*extractor.FileUnits),
		types:     make(map[string]*Type),
		nameIndex: make(map[string][]string),
	}
}

// AddFile adds or replaces the units of one file.
func (c *Catalog) AddFile(fu *extractor.FileUnits) {
	if fu == nil {
		return
	}
	c.Files[fu.Path] = fu
	c.linked = false
}

// RemoveFile drops a file from the catalog.
func (c *Catalog) RemoveFile(path string) {
	delete(c.Files, path)
	c.linked = false
}

// Link rebuilds the type index. Files are visited in path order and units in
// source order, which defines the declaration order of each type's methods.
func (c *Catalog) Link() {
	c.types = make(map[string]*Type)
	c.nameIndex = make(map[string][]string)

	paths := make([]string, 0, len(c.Files))
	for p := range c.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		for _, u := range c.Files[p].Units {
			if u.UnitType == extractor.UnitType && u.Type != nil {
				c.addType(u)
			}
		}
	}
	for _, p := range paths {
		for _, u := range c.Files[p].Units {
			if u.UnitType != extractor.UnitMethod || u.Method == nil {
				continue
			}
			q := extractor.Qualify(u.Package, u.Owner)
			t, ok := c.types[q]
			if !ok {
				t = c.addType(&extractor.CodeUnit{
					Filepath: u.Filepath,
					Package:  u.Package,
					Language: u.Language,
					Name:     u.Owner,
					Type:     &extractor.TypeDetails{Kind: "type"},
				})
			}
			t.Methods = append(t.Methods, &Method{unit: u, declaringType: q})
		}
	}

	for _, t := range c.types {
		t.resolvedParents = nil
		for _, ref := range t.Parents {
			if q, ok := c.resolveParent(t, ref); ok && q != t.Qualified {
				t.resolvedParents = append(t.resolvedParents, q)
			}
		}
	}
	c.linked = true
}

func (c *Catalog) addType(u *extractor.CodeUnit) *Type {
	q := extractor.Qualify(u.Package, u.Name)
	if existing, ok := c.types[q]; ok {
		return existing
	}
	t := &Type{
		Qualified: q,
		Name:      u.Name,
		Package:   u.Package,
		Language:  u.Language,
		Filepath:  u.Filepath,
		StartLine: u.StartLine,
		EndLine:   u.EndLine,
		Kind:      u.Type.Kind,
		Directive: u.Type.Directive,
		Parents:   append([]string(nil), u.Type.Parents...),
	}
	c.types[q] = t
	simple := u.Name
	if i := strings.LastIndex(simple, "."); i >= 0 {
		simple = simple[i+1:]
	}
	c.nameIndex[simple] = append(c.nameIndex[simple], q)
	return t
}

// resolveParent finds a parent reference from the innermost scope outwards:
// enclosing types, the package, a fully qualified name, then a unique simple name.
func (c *Catalog) resolveParent(child *Type, ref string) (string, bool) {
	scope := child.Name
	for {
		i := strings.LastIndex(scope, ".")
		if i < 0 {
			break
		}
		scope = scope[:i]
		if q := extractor.Qualify(child.Package, scope+"."+ref); c.types[q] != nil {
			return q, true
		}
	}
	if q := extractor.Qualify(child.Package, ref); c.types[q] != nil {
		return q, true
	}
	if c.types[ref] != nil {
		return ref, true
	}
	alias, name, qualified := strings.Cut(ref, ".")
	if !qualified {
		if ids := c.nameIndex[ref]; len(ids) == 1 {
			return ids[0], true
		}
		return "", false
	}
	// pkg.Name written against an import path: match on its last element.
	var found string
	for _, q := range c.nameIndex[name] {
		pkg := c.types[q].Package
		if pkg == alias || strings.HasSuffix(pkg, "/"+alias) {
			if found != "" {
				return "", false
			}
			found = q
		}
	}
	return found, found != ""
}

func (c *Catalog) ensureLinked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.linked {
		c.Link()
	}
}

// Type looks up a type by qualified name, or by a simple, nested or
// package-relative name ("sorter.Strategy") that matches exactly one type.
func (c *Catalog) Type(name string) (*Type, bool) {
	c.ensureLinked()
	if t, ok := c.types[name]; ok {
		return t, true
	}
	var match *Type
	for q, t := range c.types {
		if t.Name == name || strings.HasSuffix(q, "."+name) || strings.HasSuffix(q, "/"+name) {
			if match != nil {
				return nil, false
			}
			match = t
		}
	}
	return match, match != nil
}

// Types lists all types sorted by qualified name.
func (c *Catalog) Types() []*Type {
	c.ensureLinked()
	out := make([]*Type, 0, len(c.types))
	for _, t := range c.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Qualified < out[j].Qualified })
	return out
}

// RawMethods implements collector.Discovery.
func (c *Catalog) RawMethods(class string) []method.Raw {
	t, ok := c.Type(class)
	if !ok || len(t.Methods) == 0 {
		return nil
	}
	out := make([]method.Raw, 0, len(t.Methods))
	for _, m := range t.Methods {
		out = append(out, m)
	}
	return out
}

// InheritanceChain implements collector.Discovery. Ancestors come before
// descendants: each type is listed after all of its parents, parents in
// declaration order. Depth is the shortest distance from class.
func (c *Catalog) InheritanceChain(class string) []collector.Link {
	root, ok := c.Type(class)
	if !ok {
		return nil
	}

	depth := map[string]int{root.Qualified: 0}
	queue := []*Type{root}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for _, p := range t.resolvedParents {
			if _, seen := depth[p]; !seen {
				depth[p] = depth[t.Qualified] + 1
				queue = append(queue, c.types[p])
			}
		}
	}

	var chain []collector.Link
	visited := make(map[string]bool)
	var visit func(t *Type)
	visit = func(t *Type) {
		if visited[t.Qualified] {
			return
		}
		visited[t.Qualified] = true
		for _, p := range t.resolvedParents {
			visit(c.types[p])
		}
		chain = append(chain, collector.Link{Class: t.Qualified, Depth: depth[t.Qualified]})
	}
	visit(root)
	return chain
}

// Descendants lists the types that inherit from class, directly or not,
// sorted by qualified name.
func (c *Catalog) Descendants(class string) []*Type {
	root, ok := c.Type(class)
	if !ok {
		return nil
	}
	var out []*Type
	for _, t := range c.Types() {
		if t == root {
			continue
		}
		for _, l := range c.InheritanceChain(t.Qualified) {
			if l.Class == root.Qualified {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Directive returns the ordering directive declared on a type, if any.
func (c *Catalog) Directive(class string) string {
	if t, ok := c.Type(class); ok {
		return t.Directive
	}
	return ""
}
