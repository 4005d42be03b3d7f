// Package sorter defines the strategies that order the methods declared on a
// single type. A strategy never compares methods of different declaring types.
package sorter

import (
	"cmp"
	"slices"

	"methodorder/internal/method"
)

// Kind tags the built-in strategy variants.
type Kind int

const (
	// KindUnspecified orders by a fixed name hash. It is the zero value.
	KindUnspecified Kind = iota
	// KindDeclarationOrder keeps the order reported by the discovery source.
	KindDeclarationOrder
	// KindNameAscending orders by name, then by signature.
	KindNameAscending
	// KindCustom delegates to a user supplied Comparator.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindUnspecified:
		return "unspecified"
	case KindDeclarationOrder:
		return "declaration"
	case KindNameAscending:
		return "name_ascending"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Comparator returns a negative number when a sorts before b, a positive
// number when it sorts after, and zero when they are tied.
//
// Custom comparators must be a total order over the methods of one type.
// A comparator that breaks antisymmetry or transitivity yields an
// unspecified, but still complete, ordering.
type Comparator func(a, b method.Descriptor) int

// Strategy is an immutable ordering strategy. The zero value is Unspecified.
type Strategy struct {
	kind Kind
	name string
	cmp  Comparator
}

// Unspecified returns the default strategy: deterministic on every run and
// platform, but deliberately unrelated to declaration or alphabetical order.
func Unspecified() Strategy {
	return Strategy{kind: KindUnspecified}
}

// DeclarationOrder returns the pass-through strategy. The resulting order is
// whatever the discovery source reports, synthetic entries included, and may
// differ between platforms or runs.
func DeclarationOrder() Strategy {
	return Strategy{kind: KindDeclarationOrder}
}

// NameAscending orders lexicographically by name with the signature as tiebreak.
func NameAscending() Strategy {
	return Strategy{kind: KindNameAscending}
}

// Custom wraps an externally supplied comparator under the given name.
func Custom(name string, c Comparator) Strategy {
	return Strategy{kind: KindCustom, name: name, cmp: c}
}

func (s Strategy) Kind() Kind { return s.kind }

// Name returns the registered name of the strategy.
func (s Strategy) Name() string {
	if s.kind == KindCustom && s.name != "" {
		return s.name
	}
	return s.kind.String()
}

// Compare applies the strategy's comparison relation.
func (s Strategy) Compare(a, b method.Descriptor) int {
	switch s.kind {
	case KindNameAscending:
		return compareByName(a, b)
	case KindDeclarationOrder:
		return 0
	case KindCustom:
		if s.cmp == nil {
			return 0
		}
		return s.cmp(a, b)
	default:
		return compareByHash(a, b)
	}
}

// Sort returns a newly allocated, ordered copy of methods. The input is left untouched.
func (s Strategy) Sort(methods []method.Descriptor) []method.Descriptor {
	out := make([]method.Descriptor, len(methods))
	copy(out, methods)
	if s.kind == KindDeclarationOrder {
		return out
	}
	slices.SortStableFunc(out, s.Compare)
	return out
}

func compareByName(a, b method.Descriptor) int {
	if c := cmp.Compare(a.Name(), b.Name()); c != 0 {
		return c
	}
	return cmp.Compare(a.Signature(), b.Signature())
}

func compareByHash(a, b method.Descriptor) int {
	if c := cmp.Compare(NameHash(a.Name()), NameHash(b.Name())); c != 0 {
		return c
	}
	return cmp.Compare(a.Signature(), b.Signature())
}
