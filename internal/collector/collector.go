// Package collector gathers the declared methods of a class and its
// ancestors and orders them, one declaring class at a time.
package collector

import (
	"methodorder/internal/method"
	"methodorder/internal/sorter"

	"go.uber.org/zap"
)

// Link is one class of an inheritance chain. Depth 0 is the class being
// collected, 1 its direct parents, and so on.
type Link struct {
	Class string
	Depth int
}

// Discovery reports raw methods and inheritance for a class.
type Discovery interface {
	// RawMethods lists the methods declared directly on class, in the
	// source's own order. A nil result means the class declares nothing.
	RawMethods(class string) []method.Raw

	// InheritanceChain lists class and its ancestors in the order their
	// methods should be emitted.
	InheritanceChain(class string) []Link
}

// Selector resolves the strategy that applies to a declaring class.
// ok is false when nothing is configured for the class.
type Selector interface {
	StrategyFor(class string) (s sorter.Strategy, ok bool, err error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(class string) (sorter.Strategy, bool, error)

func (f SelectorFunc) StrategyFor(class string) (sorter.Strategy, bool, error) {
	return f(class)
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDefault replaces the fallback strategy used when the selector has none.
func WithDefault(s sorter.Strategy) Option {
	return func(c *Collector) {
		c.fallback = s
		c.hasFallback = true
	}
}

// WithoutDefault removes the fallback, so unresolved classes fail with a ConfigurationError.
func WithoutDefault() Option {
	return func(c *Collector) {
		c.hasFallback = false
	}
}

// Collector orders the methods of a class. It holds no mutable state and is
// safe for concurrent use.
type Collector struct {
	discovery   Discovery
	selector    Selector
	fallback    sorter.Strategy
	hasFallback bool
	logger      *zap.Logger
}

// New creates a collector. Without options, classes with no configured
// strategy are ordered with sorter.Unspecified.
func New(d Discovery, sel Selector, opts ...Option) *Collector {
	c := &Collector{
		discovery:   d,
		selector:    sel,
		fallback:    sorter.Unspecified(),
		hasFallback: true,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OrderedMethods returns the ordered methods of class and its ancestors.
func (c *Collector) OrderedMethods(class string) ([]method.Descriptor, error) {
	chain := c.discovery.InheritanceChain(class)
	if len(chain) == 0 {
		chain = []Link{{Class: class}}
	}
	raw := make(map[string][]method.Raw, len(chain))
	for _, l := range chain {
		if _, seen := raw[l.Class]; !seen {
			raw[l.Class] = c.discovery.RawMethods(l.Class)
		}
	}
	return c.collect(class, chain, raw)
}

// Collect orders methods already gathered by the caller. chain is echoed as
// given; only methods within one declaring class are reordered. An empty
// chain stands for the class alone.
func Collect(class string, chain []Link, rawByClass map[string][]method.Raw, sel Selector, opts ...Option) ([]method.Descriptor, error) {
	return New(nil, sel, opts...).collect(class, chain, rawByClass)
}

func (c *Collector) collect(class string, chain []Link, rawByClass map[string][]method.Raw) ([]method.Descriptor, error) {
	if len(chain) == 0 {
		chain = []Link{{Class: class}}
	}
	chain = uniqueLinks(chain)

	declared := make(map[string][]method.Descriptor, len(chain))
	shallowest := make(map[string]int)
	for _, l := range chain {
		var ds []method.Descriptor
		for _, r := range rawByClass[l.Class] {
			if r == nil {
				continue
			}
			d := method.FromRaw(r)
			ds = append(ds, d)
			key := d.OverrideKey()
			if depth, ok := shallowest[key]; !ok || l.Depth < depth {
				shallowest[key] = l.Depth
			}
		}
		declared[l.Class] = ds
	}

	var out []method.Descriptor
	for _, l := range chain {
		strategy, err := c.strategyFor(l.Class)
		if err != nil {
			return nil, err
		}

		kept := make([]method.Descriptor, 0, len(declared[l.Class]))
		for _, d := range declared[l.Class] {
			if shallowest[d.OverrideKey()] < l.Depth {
				c.logger.Debug("method overridden in subclass",
					zap.String("class", class),
					zap.String("method", d.Signature()))
				continue
			}
			kept = append(kept, d)
		}

		c.logger.Debug("ordering declared methods",
			zap.String("class", class),
			zap.String("declaring_class", l.Class),
			zap.String("strategy", strategy.Name()),
			zap.Int("methods", len(kept)))

		out = append(out, strategy.Sort(kept)...)
	}

	if out == nil {
		out = []method.Descriptor{}
	}
	return out, nil
}

func (c *Collector) strategyFor(class string) (sorter.Strategy, error) {
	if c.selector != nil {
		s, ok, err := c.selector.StrategyFor(class)
		if err != nil {
			return sorter.Strategy{}, &ConfigurationError{Class: class, Reason: "strategy lookup failed", Err: err}
		}
		if ok {
			return s, nil
		}
	}
	if c.hasFallback {
		return c.fallback, nil
	}
	return sorter.Strategy{}, &ConfigurationError{Class: class, Reason: "no strategy configured and no default"}
}

// uniqueLinks drops repeated classes, keeping the shallowest depth at the
// position of the first occurrence.
func uniqueLinks(chain []Link) []Link {
	index := make(map[string]int, len(chain))
	out := make([]Link, 0, len(chain))
	for _, l := range chain {
		if i, ok := index[l.Class]; ok {
			if l.Depth < out[i].Depth {
				out[i].Depth = l.Depth
			}
			continue
		}
		index[l.Class] = len(out)
		out = append(out, l)
	}
	return out
}
