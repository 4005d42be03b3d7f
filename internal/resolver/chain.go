// Package resolver decides which ordering strategy applies to a class by
// consulting a chain of sources; the first source with an answer wins.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"methodorder/internal/collector"
	"methodorder/internal/config"
	"methodorder/internal/sorter"

	"go.uber.org/zap"
)

// StrategySource names the strategy requested for a class, if any.
type StrategySource interface {
	Name() string
	Lookup(class string) (strategy string, ok bool)
}

// StageResult records what one source answered for a class.
type StageResult struct {
	Source   string
	Strategy string
	Matched  bool
}

// Chain resolves strategy names from its sources against a registry.
// It implements collector.Selector.
type Chain struct {
	registry *sorter.Registry
	sources  []StrategySource
	logger   *zap.Logger
}

var _ collector.Selector = (*Chain)(nil)

// NewChain creates a chain that consults sources in order.
func NewChain(reg *sorter.Registry, logger *zap.Logger, sources ...StrategySource) *Chain {
	if reg == nil {
		reg = sorter.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{registry: reg, sources: sources, logger: logger}
}

func (c *Chain) StrategyFor(class string) (sorter.Strategy, bool, error) {
	for _, src := range c.sources {
		name, ok := src.Lookup(class)
		if !ok {
			continue
		}
		s, err := c.registry.Parse(name)
		if err != nil {
			return sorter.Strategy{}, false, fmt.Errorf("%s source: %w", src.Name(), err)
		}
		c.logger.Debug("strategy resolved",
			zap.String("class", class),
			zap.String("source", src.Name()),
			zap.String("strategy", s.Name()))
		return s, true, nil
	}
	return sorter.Strategy{}, false, nil
}

// Explain reports the answer of every source for class, in chain order.
func (c *Chain) Explain(class string) []StageResult {
	out := make([]StageResult, 0, len(c.sources))
	for _, src := range c.sources {
		name, ok := src.Lookup(class)
		out = append(out, StageResult{Source: src.Name(), Strategy: name, Matched: ok})
	}
	return out
}

// FixedSource answers the same strategy for every class.
type FixedSource struct {
	Strategy string
}

func (f FixedSource) Name() string { return "override" }

func (f FixedSource) Lookup(string) (string, bool) {
	return f.Strategy, f.Strategy != ""
}

// ConfigSource answers from per-type configuration. Keys may be qualified
// names or trailing parts of them ("UserSuite" matches "demo.UserSuite").
type ConfigSource struct {
	types map[string]string
	keys  []string // longest first
}

func NewConfigSource(types map[string]string) *ConfigSource {
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &ConfigSource{types: types, keys: keys}
}

func (s *ConfigSource) Name() string { return "config" }

func (s *ConfigSource) Lookup(class string) (string, bool) {
	if v, ok := s.types[class]; ok {
		return v, true
	}
	for _, k := range s.keys {
		if strings.HasSuffix(class, "."+k) {
			return s.types[k], true
		}
	}
	return "", false
}

// Directives exposes ordering directives declared in source.
type Directives interface {
	Directive(class string) string
}

// DirectiveSource answers from source directives such as
// "//methodorder:name_ascending" or @FixMethodOrder.
type DirectiveSource struct {
	directives Directives
}

func NewDirectiveSource(d Directives) *DirectiveSource {
	return &DirectiveSource{directives: d}
}

func (s *DirectiveSource) Name() string { return "directive" }

func (s *DirectiveSource) Lookup(class string) (string, bool) {
	if s.directives == nil {
		return "", false
	}
	d := s.directives.Directive(class)
	return d, d != ""
}

// CollectorOptions translates the configured default strategy into collector options.
func CollectorOptions(cfg *config.Config, reg *sorter.Registry) ([]collector.Option, error) {
	if !cfg.HasDefault() {
		return []collector.Option{collector.WithoutDefault()}, nil
	}
	s, err := reg.Parse(cfg.Ordering.Default)
	if err != nil {
		return nil, fmt.Errorf("invalid default strategy: %w", err)
	}
	return []collector.Option{collector.WithDefault(s)}, nil
}
