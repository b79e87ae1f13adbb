package contracts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/domain"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(&mockLogger{})
	require.NoError(t, err)
	return r
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ES", "ES"},
		{"CME:ES", "ES"},
		{"CME_MINI:MNQ", "MNQ"},
		{"NYMEX_2:CL", "CL"},
		{"  GC  ", "GC"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeSymbol(tc.raw), "raw=%q", tc.raw)
	}
}

func TestSpecFor(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("known symbol", func(t *testing.T) {
		spec := r.SpecFor("ES")
		assert.Equal(t, 50.0, spec.Multiplier)
		assert.Equal(t, 2.25, spec.CommissionPerSide)
	})

	t.Run("exchange prefix is stripped", func(t *testing.T) {
		assert.Equal(t, r.SpecFor("ES"), r.SpecFor("CME_MINI:ES"))
	})

	t.Run("continuous contract suffix", func(t *testing.T) {
		assert.Equal(t, r.SpecFor("NQ"), r.SpecFor("NQ1!"))
	})

	t.Run("month code falls back to root", func(t *testing.T) {
		assert.Equal(t, r.SpecFor("ES"), r.SpecFor("ESZ6"))
		assert.Equal(t, r.SpecFor("MNQ"), r.SpecFor("MNQH2026"))
	})

	t.Run("unknown symbol gets default", func(t *testing.T) {
		assert.Equal(t, DefaultSpec, r.SpecFor("UNKNOWN"))
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("overlays built-ins", func(t *testing.T) {
		r := newTestRegistry(t)
		path := filepath.Join(t.TempDir(), "contracts.yaml")
		doc := `
contracts:
  ES:
    multiplier: 50
    commissionPerSide: 2.50
    currency: USD
  FDAX:
    multiplier: 25
    commissionPerSide: 1.70
    currency: EUR
priceRanges:
  MICRO:
    - symbol: MES
      min: 4000
      max: 10000
`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
		require.NoError(t, r.LoadFile(path))

		assert.Equal(t, 2.50, r.SpecFor("ES").CommissionPerSide, "file wins over built-in")
		assert.Equal(t, 25.0, r.SpecFor("FDAX").Multiplier)
		assert.Equal(t, "MES", r.ResolveSymbol(context.Background(), "MICRO", 6900))
	})

	t.Run("rejects non-positive multiplier", func(t *testing.T) {
		r := newTestRegistry(t)
		path := filepath.Join(t.TempDir(), "contracts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("contracts:\n  BAD:\n    multiplier: 0\n"), 0o644))
		assert.Error(t, r.LoadFile(path))
	})

	t.Run("missing file", func(t *testing.T) {
		r := newTestRegistry(t)
		assert.Error(t, r.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")))
	})
}

func TestResolveSymbol(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		raw   string
		price float64
		want  string
	}{
		{"micro alias resolves to MES by price", "MICRO", 6900, "MES"},
		{"micro alias resolves to MNQ by price", "MICRO", 25400, "MNQ"},
		{"price outside all bands keeps alias", "MICRO", 150, "MICRO"},
		{"symbol without ranges passes through", "CME:ES", 6900, "ES"},
		{"zero price passes through", "MICRO", 0, "MICRO"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.ResolveSymbol(ctx, tc.raw, tc.price))
		})
	}
}

func TestParseLeverageRatio(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1:20", 20},
		{"1:2.5", 2.5},
		{"x20", 20},
		{"X5", 5},
		{"20", 20},
		{" 1 : 10 ", 10},
		{"", 0},
		{"abc", 0},
		{"-3", 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseLeverageRatio(tc.in), "in=%q", tc.in)
	}
}

func TestEffectiveMultiplier(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	t.Run("table value without margin data", func(t *testing.T) {
		tr := domain.Trade{Contract: "ES", Quantity: 1, EntryPrice: 6900}
		assert.Equal(t, 50.0, r.EffectiveMultiplier(ctx, tr))
	})

	t.Run("implied multiplier overrides on large deviation", func(t *testing.T) {
		// margin*ratio/(qty*entry) = 850*2/(1*0.85) = 2000, far from the
		// default multiplier of 1 for an unknown cross pair.
		tr := domain.Trade{
			Contract:   "EURGBP",
			Quantity:   1,
			EntryPrice: 0.85,
			Margin:     850,
			Leverage:   "1:2",
		}
		assert.InDelta(t, 2000.0, r.EffectiveMultiplier(ctx, tr), 1e-9)
	})

	t.Run("small deviation keeps table value", func(t *testing.T) {
		// Implied = 7245*50/(1*6900) = 52.5, within 10% of 50.
		tr := domain.Trade{
			Contract:   "ES",
			Quantity:   1,
			EntryPrice: 6900,
			Margin:     7245,
			Leverage:   "1:50",
		}
		assert.Equal(t, 50.0, r.EffectiveMultiplier(ctx, tr))
	})

	t.Run("unparseable leverage keeps table value", func(t *testing.T) {
		tr := domain.Trade{Contract: "ES", Quantity: 1, EntryPrice: 6900, Margin: 500, Leverage: "cross"}
		assert.Equal(t, 50.0, r.EffectiveMultiplier(ctx, tr))
	})
}
