package collector

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"methodorder/internal/method"
	"methodorder/internal/sorter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeDiscovery struct {
	methods map[string][]method.Raw
	chains  map[string][]Link
}

func (f fakeDiscovery) RawMethods(class string) []method.Raw { return f.methods[class] }
func (f fakeDiscovery) InheritanceChain(class string) []Link { return f.chains[class] }

func m(owner, result, name string, params ...string) method.Raw {
	return method.New(name, owner, params, method.FormatSignature(result, owner, name, params), false)
}

func fixed(byClass map[string]sorter.Strategy) Selector {
	return SelectorFunc(func(class string) (sorter.Strategy, bool, error) {
		s, ok := byClass[class]
		return s, ok, nil
	})
}

func names(ds []method.Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Name())
	}
	return out
}

func signatures(ds []method.Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Signature())
	}
	return out
}

func superSub() fakeDiscovery {
	return fakeDiscovery{
		methods: map[string][]method.Raw{
			"t.Super": {m("t.Super", "void", "superMario")},
			"t.Sub":   {m("t.Sub", "void", "subBowser")},
		},
		chains: map[string][]Link{
			"t.Super": {{Class: "t.Super"}},
			"t.Sub":   {{Class: "t.Super", Depth: 1}, {Class: "t.Sub"}},
		},
	}
}

func TestCollector_OrderedMethods_Inheritance(t *testing.T) {
	c := New(superSub(), nil, WithLogger(zaptest.NewLogger(t)))

	got, err := c.OrderedMethods("t.Sub")
	require.NoError(t, err)
	assert.Equal(t, []string{"superMario", "subBowser"}, names(got))

	got, err = c.OrderedMethods("t.Super")
	require.NoError(t, err)
	assert.Equal(t, []string{"superMario"}, names(got))
}

func TestCollector_SubclassOrderIndependentOfSuperclass(t *testing.T) {
	sub := []method.Raw{
		m("t.Sub", "void", "subBowser"),
		m("t.Sub", "void", "subPeach"),
		m("t.Sub", "void", "subToad"),
	}
	chain := []Link{{Class: "t.Super", Depth: 1}, {Class: "t.Sub"}}

	var subOrders [][]string
	for _, n := range []int{0, 1, 5, 20} {
		var super []method.Raw
		for i := 0; i < n; i++ {
			super = append(super, m("t.Super", "void", fmt.Sprintf("super%02d", i)))
		}
		got, err := Collect("t.Sub", chain, map[string][]method.Raw{"t.Super": super, "t.Sub": sub}, nil)
		require.NoError(t, err)
		require.Len(t, got, n+len(sub))
		subOrders = append(subOrders, names(got[n:]))
	}
	for _, o := range subOrders[1:] {
		assert.Equal(t, subOrders[0], o)
	}
}

func TestCollect_OverrideDeduplication(t *testing.T) {
	raw := map[string][]method.Raw{
		"t.Parent": {m("t.Parent", "void", "alpha"), m("t.Parent", "void", "beta", "int")},
		"t.Child":  {m("t.Child", "void", "alpha"), m("t.Child", "void", "beta")},
	}
	want := []string{
		"void t.Parent.beta(int)",
		"void t.Child.alpha()",
		"void t.Child.beta()",
	}
	sel := fixed(map[string]sorter.Strategy{
		"t.Parent": sorter.NameAscending(),
		"t.Child":  sorter.NameAscending(),
	})

	t.Run("Ancestors First", func(t *testing.T) {
		chain := []Link{{Class: "t.Parent", Depth: 1}, {Class: "t.Child"}}
		got, err := Collect("t.Child", chain, raw, sel)
		require.NoError(t, err)
		assert.Equal(t, want, signatures(got))
	})

	t.Run("Descendants First", func(t *testing.T) {
		chain := []Link{{Class: "t.Child"}, {Class: "t.Parent", Depth: 1}}
		got, err := Collect("t.Child", chain, raw, sel)
		require.NoError(t, err)
		assert.Equal(t, []string{want[1], want[2], want[0]}, signatures(got))
	})

	t.Run("Repeated Class In Chain", func(t *testing.T) {
		chain := []Link{{Class: "t.Parent", Depth: 1}, {Class: "t.Child"}, {Class: "t.Parent", Depth: 2}}
		got, err := Collect("t.Child", chain, raw, sel)
		require.NoError(t, err)
		assert.Equal(t, want, signatures(got))
	})

	t.Run("Same Depth Duplicates Kept", func(t *testing.T) {
		raw := map[string][]method.Raw{
			"t.Left":  {m("t.Left", "", "Close")},
			"t.Right": {m("t.Right", "", "Close")},
		}
		chain := []Link{{Class: "t.Left", Depth: 1}, {Class: "t.Right", Depth: 1}, {Class: "t.Both"}}
		got, err := Collect("t.Both", chain, raw, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"t.Left.Close()", "t.Right.Close()"}, signatures(got))
	})
}

func TestCollect_PerClassStrategies(t *testing.T) {
	raw := map[string][]method.Raw{
		"t.Parent": {m("t.Parent", "void", "zeta"), m("t.Parent", "void", "eta")},
		"t.Child":  {m("t.Child", "void", "omega"), m("t.Child", "void", "alpha"), m("t.Child", "void", "mu")},
	}
	chain := []Link{{Class: "t.Parent", Depth: 1}, {Class: "t.Child"}}
	sel := fixed(map[string]sorter.Strategy{
		"t.Parent": sorter.NameAscending(),
		"t.Child":  sorter.DeclarationOrder(),
	})

	got, err := Collect("t.Child", chain, raw, sel)
	require.NoError(t, err)
	assert.Equal(t, []string{"eta", "zeta", "omega", "alpha", "mu"}, names(got))
}

func TestCollect_DefaultIsUnspecified(t *testing.T) {
	owner := "t.Dummy"
	raw := map[string][]method.Raw{owner: {
		m(owner, "Object", "alpha", "int", "double", "Thread"),
		m(owner, "void", "beta", "int[][]"),
		m(owner, "int", "gamma"),
		m(owner, "void", "gamma", "boolean"),
		m(owner, "void", "delta"),
		m(owner, "void", "epsilon"),
	}}

	got, err := Collect(owner, []Link{{Class: owner}}, raw, fixed(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"void t.Dummy.epsilon()",
		"void t.Dummy.beta(int[][])",
		"Object t.Dummy.alpha(int,double,Thread)",
		"void t.Dummy.delta()",
		"int t.Dummy.gamma()",
		"void t.Dummy.gamma(boolean)",
	}, signatures(got))
}

func TestCollect_CustomStrategyAcrossHierarchy(t *testing.T) {
	parent, child := "t.ParentOrderedSortWithAsc", "t.OrderedSortWithAsc"
	order := map[string]int{
		"alpha()":                  0,
		"alpha(int,double,Thread)": 10,
		"beta(int[][])":            5,
		"gamma()":                  4,
		"gamma(boolean)":           3,
		"delta()":                  2,
		"epsilon()":                1,
	}
	byNumber := sorter.Custom("OrderedComparator", func(a, b method.Descriptor) int {
		return order[a.OverrideKey()] - order[b.OverrideKey()]
	})
	raw := map[string][]method.Raw{
		parent: {m(parent, "void", "alpha")},
		child: {
			m(child, "Object", "alpha", "int", "double", "Thread"),
			m(child, "void", "beta", "int[][]"),
			m(child, "int", "gamma"),
			m(child, "void", "gamma", "boolean"),
			m(child, "void", "delta"),
			m(child, "void", "epsilon"),
		},
	}
	chain := []Link{{Class: parent, Depth: 1}, {Class: child}}
	sel := fixed(map[string]sorter.Strategy{parent: byNumber, child: byNumber})

	got, err := Collect(child, chain, raw, sel)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"void t.ParentOrderedSortWithAsc.alpha()",
		"void t.OrderedSortWithAsc.epsilon()",
		"void t.OrderedSortWithAsc.delta()",
		"void t.OrderedSortWithAsc.gamma(boolean)",
		"int t.OrderedSortWithAsc.gamma()",
		"void t.OrderedSortWithAsc.beta(int[][])",
		"Object t.OrderedSortWithAsc.alpha(int,double,Thread)",
	}, signatures(got))
}

func TestCollect_MissingMethods(t *testing.T) {
	chain := []Link{{Class: "t.Marker", Depth: 1}, {Class: "t.Empty"}}
	raw := map[string][]method.Raw{"t.Marker": nil}

	got, err := Collect("t.Empty", chain, raw, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	t.Run("No Chain", func(t *testing.T) {
		c := New(fakeDiscovery{methods: map[string][]method.Raw{"t.Solo": {m("t.Solo", "", "Run")}}}, nil)
		got, err := c.OrderedMethods("t.Solo")
		require.NoError(t, err)
		assert.Equal(t, []string{"Run"}, names(got))

		direct, err := Collect("t.Solo", nil, map[string][]method.Raw{"t.Solo": {m("t.Solo", "", "Run")}}, nil)
		require.NoError(t, err)
		assert.Equal(t, names(got), names(direct))
	})
}

func TestCollect_ConfigurationError(t *testing.T) {
	chain := []Link{{Class: "t.A"}}
	raw := map[string][]method.Raw{"t.A": {m("t.A", "", "Run")}}

	t.Run("No Default", func(t *testing.T) {
		_, err := Collect("t.A", chain, raw, fixed(nil), WithoutDefault())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "t.A", cfgErr.Class)
	})

	t.Run("Selector Failure", func(t *testing.T) {
		boom := errors.New("unknown ordering strategy")
		sel := SelectorFunc(func(string) (sorter.Strategy, bool, error) {
			return sorter.Strategy{}, false, boom
		})
		_, err := Collect("t.A", chain, raw, sel)
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "t.A")
	})

	t.Run("Custom Default", func(t *testing.T) {
		got, err := Collect("t.A", chain, raw, nil, WithoutDefault(), WithDefault(sorter.NameAscending()))
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestCollector_Concurrent(t *testing.T) {
	c := New(superSub(), nil)

	var wg sync.WaitGroup
	results := make([][]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			class := "t.Sub"
			if i%2 == 1 {
				class = "t.Super"
			}
			got, err := c.OrderedMethods(class)
			if err == nil {
				results[i] = names(got)
			}
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if i%2 == 1 {
			assert.Equal(t, []string{"superMario"}, r)
		} else {
			assert.Equal(t, []string{"superMario", "subBowser"}, r)
		}
	}
}
