package sorter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownStrategy is returned when a name resolves to no registered strategy.
var ErrUnknownStrategy = errors.New("unknown ordering strategy")

var builtinAliases = map[string]Kind{
	"unspecified":               KindUnspecified,
	"default":                   KindUnspecified,
	"declaration":               KindDeclarationOrder,
	"declaration_order":         KindDeclarationOrder,
	"jvm":                       KindDeclarationOrder,
	"name_ascending":            KindNameAscending,
	"nameascending":             KindNameAscending,
	"defaultmethodsorter":       KindUnspecified,
	"jvmmethodsorter":           KindDeclarationOrder,
	"nameascendingmethodsorter": KindNameAscending,
}

// Registry maps strategy names to strategies. It starts with the built-ins
// and accepts Custom strategies registered by name.
type Registry struct {
	mu     sync.RWMutex
	custom map[string]Strategy
}

// NewRegistry creates a registry holding only the built-in strategies.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string]Strategy)}
}

// Register adds a Custom strategy. Built-in names cannot be shadowed.
func (r *Registry) Register(s Strategy) error {
	if s.Kind() != KindCustom {
		return fmt.Errorf("only custom strategies can be registered, got %s", s.Kind())
	}
	key := normalize(s.name)
	if key == "" {
		return fmt.Errorf("custom strategy requires a name")
	}
	if _, ok := builtinAliases[key]; ok || key == KindCustom.String() {
		return fmt.Errorf("strategy name %q is reserved", s.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[key] = s
	return nil
}

// Lookup resolves a strategy name. Accepted spellings include the built-in
// names, their aliases ("default", "jvm"), annotation forms such as
// "MethodSorters.NAME_ASCENDING", and "Name.class" for custom strategies.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	key := normalize(name)
	if kind, ok := builtinAliases[key]; ok {
		return Strategy{kind: kind}, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.custom[key]
	return s, ok
}

// Parse is Lookup with an error for unknown names.
func (r *Registry) Parse(name string) (Strategy, error) {
	s, ok := r.Lookup(name)
	if !ok {
		return Strategy{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Names lists the canonical built-in names followed by the custom names, each group sorted.
func (r *Registry) Names() []string {
	names := []string{
		KindDeclarationOrder.String(),
		KindNameAscending.String(),
		KindUnspecified.String(),
	}
	r.mu.RLock()
	custom := make([]string, 0, len(r.custom))
	for _, s := range r.custom {
		custom = append(custom, s.Name())
	}
	r.mu.RUnlock()
	sort.Strings(custom)
	return append(names, custom...)
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, ".class")
	if i := strings.LastIndex(n, "."); i >= 0 {
		n = n[i+1:]
	}
	return strings.ReplaceAll(n, "-", "_")
}
