package resolver

import (
	"testing"

	"methodorder/internal/collector"
	"methodorder/internal/config"
	"methodorder/internal/method"
	"methodorder/internal/sorter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeDirectives map[string]string

func (f fakeDirectives) Directive(class string) string { return f[class] }

func TestChain_StrategyFor(t *testing.T) {
	chain := NewChain(sorter.NewRegistry(), zaptest.NewLogger(t),
		NewConfigSource(map[string]string{
			"demo.UserSuite": "name_ascending",
			"OrderSuite":     "jvm",
		}),
		NewDirectiveSource(fakeDirectives{
			"demo.UserSuite":  "jvm",
			"demo.CartSuite":  "MethodSorters.NAME_ASCENDING",
			"demo.BadSuite":   "shuffled",
			"demo.OrderSuite": "name_ascending",
		}),
	)

	tests := []struct {
		class string
		want  sorter.Kind
		ok    bool
	}{
		{"demo.UserSuite", sorter.KindNameAscending, true},
		{"demo.OrderSuite", sorter.KindDeclarationOrder, true},
		{"demo.CartSuite", sorter.KindNameAscending, true},
		{"demo.PlainSuite", sorter.KindUnspecified, false},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			s, ok, err := chain.StrategyFor(tt.class)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, s.Kind())
		})
	}

	t.Run("Unknown Name", func(t *testing.T) {
		_, _, err := chain.StrategyFor("demo.BadSuite")
		assert.ErrorIs(t, err, sorter.ErrUnknownStrategy)
		assert.Contains(t, err.Error(), "directive")
	})

	t.Run("Explain", func(t *testing.T) {
		assert.Equal(t, []StageResult{
			{Source: "config", Strategy: "name_ascending", Matched: true},
			{Source: "directive", Strategy: "jvm", Matched: true},
		}, chain.Explain("demo.UserSuite"))
	})
}

func TestChain_CustomStrategy(t *testing.T) {
	reg := sorter.NewRegistry()
	require.NoError(t, reg.Register(sorter.Custom("OrderedComparator", func(a, b method.Descriptor) int {
		return len(a.Name()) - len(b.Name())
	})))

	chain := NewChain(reg, nil, NewDirectiveSource(fakeDirectives{"demo.Sorted": "OrderedComparator.class"}))
	s, ok, err := chain.StrategyFor("demo.Sorted")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "OrderedComparator", s.Name())
}

func TestFixedSource(t *testing.T) {
	chain := NewChain(nil, nil, FixedSource{Strategy: "declaration"}, NewDirectiveSource(nil))
	s, ok, err := chain.StrategyFor("anything")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sorter.KindDeclarationOrder, s.Kind())

	_, ok = FixedSource{}.Lookup("anything")
	assert.False(t, ok)
}

func TestCollectorOptions(t *testing.T) {
	reg := sorter.NewRegistry()
	raw := map[string][]method.Raw{"demo.S": {
		method.New("b", "demo.S", nil, "", false),
		method.New("a", "demo.S", nil, "", false),
	}}
	chain := []collector.Link{{Class: "demo.S"}}

	t.Run("Configured Default", func(t *testing.T) {
		cfg := config.Default()
		cfg.Ordering.Default = "name_ascending"
		opts, err := CollectorOptions(cfg, reg)
		require.NoError(t, err)

		got, err := collector.Collect("demo.S", chain, raw, nil, opts...)
		require.NoError(t, err)
		assert.Equal(t, "a", got[0].Name())
	})

	t.Run("No Default", func(t *testing.T) {
		cfg := config.Default()
		cfg.Ordering.Default = config.NoDefault
		opts, err := CollectorOptions(cfg, reg)
		require.NoError(t, err)

		_, err = collector.Collect("demo.S", chain, raw, NewChain(reg, nil), opts...)
		assert.ErrorIs(t, err, collector.ErrConfiguration)
	})

	t.Run("Invalid Default", func(t *testing.T) {
		cfg := config.Default()
		cfg.Ordering.Default = "random"
		_, err := CollectorOptions(cfg, reg)
		assert.ErrorIs(t, err, sorter.ErrUnknownStrategy)
	})
}
