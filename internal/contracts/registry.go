package contracts

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

// Spec describes the economics of one instrument: the dollar value of one
// price point per unit quantity, and the commission charged per side.
type Spec struct {
	Multiplier        float64 `yaml:"multiplier"`
	CommissionPerSide float64 `yaml:"commissionPerSide"`
	Currency          string  `yaml:"currency"`
}

// PriceRange maps a fill-price band to a concrete symbol. Used to
// disambiguate instruments that share a ticker alias in some exports and
// can only be told apart by price magnitude. Best effort: the bands track
// market levels and belong in configuration, not code.
type PriceRange struct {
	Symbol string  `yaml:"symbol"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
}

// registryFile is the YAML document shape accepted by LoadFile.
type registryFile struct {
	Contracts   map[string]Spec         `yaml:"contracts"`
	PriceRanges map[string][]PriceRange `yaml:"priceRanges"`
}

// DefaultSpec is returned for symbols the registry does not know.
// Unrecognized instruments must not block processing.
var DefaultSpec = Spec{Multiplier: 1, CommissionPerSide: 0, Currency: "USD"}

// multiplierDeviationTolerance is the relative deviation above which a
// margin/leverage-implied multiplier overrides the table value. Below it,
// the difference is treated as fill-price vs margin-price rounding noise.
const multiplierDeviationTolerance = 0.10

// exchangePrefix matches "CME:", "NYMEX_2:" style prefixes on raw symbols.
var exchangePrefix = regexp.MustCompile(`^[A-Z0-9_]+:`)

// Registry looks up instrument specs by symbol.
type Registry struct {
	specs  map[string]Spec
	ranges map[string][]PriceRange
	logger ports.Logger
}

// NewRegistry creates a registry pre-populated with the built-in CME futures
// table. Pass a YAML file through LoadFile to extend or override it.
func NewRegistry(logger ports.Logger) (*Registry, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for contract registry: %w", ports.ErrConfigurationError)
	}
	r := &Registry{
		specs:  make(map[string]Spec, len(builtinSpecs)),
		ranges: make(map[string][]PriceRange, len(builtinRanges)),
		logger: logger,
	}
	for sym, spec := range builtinSpecs {
		r.specs[sym] = spec
	}
	for alias, ranges := range builtinRanges {
		r.ranges[alias] = append([]PriceRange(nil), ranges...)
	}
	return r, nil
}

// LoadFile overlays contract specs and price ranges from a YAML file on top
// of the built-in table. Entries in the file win over built-ins.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read contracts file '%s': %w", path, err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse contracts file '%s': %w", path, err)
	}
	for sym, spec := range f.Contracts {
		if spec.Multiplier <= 0 {
			return fmt.Errorf("contract '%s' has non-positive multiplier %v: %w", sym, spec.Multiplier, ports.ErrConfigurationError)
		}
		r.specs[NormalizeSymbol(sym)] = spec
	}
	for alias, ranges := range f.PriceRanges {
		r.ranges[NormalizeSymbol(alias)] = ranges
	}
	r.logger.Info(context.Background(), "Contracts file loaded",
		map[string]interface{}{"path": path, "contracts": len(f.Contracts), "priceRanges": len(f.PriceRanges)})
	return nil
}

// NormalizeSymbol strips any "EXCHANGE:" style prefix and trims whitespace.
func NormalizeSymbol(raw string) string {
	return exchangePrefix.ReplaceAllString(strings.TrimSpace(raw), "")
}

// SpecFor returns the spec for a raw symbol, falling back to DefaultSpec
// for unknown instruments.
func (r *Registry) SpecFor(rawSymbol string) Spec {
	sym := NormalizeSymbol(rawSymbol)
	if spec, ok := r.specs[sym]; ok {
		return spec
	}
	// Continuous-contract suffixes ("ES1!") and month codes ("ESZ6") fall
	// back to the root symbol.
	if root := rootSymbol(sym); root != sym {
		if spec, ok := r.specs[root]; ok {
			return spec
		}
	}
	return DefaultSpec
}

// ResolveSymbol disambiguates a ticker alias by fill-price magnitude using
// the configured price-range table. When no range table exists for the
// symbol the normalized symbol is returned unchanged. Overlapping bands are
// resolved in table order with a warning, since the heuristic cannot decide
// between them.
func (r *Registry) ResolveSymbol(ctx context.Context, rawSymbol string, fillPrice float64) string {
	sym := NormalizeSymbol(rawSymbol)
	ranges, ok := r.ranges[sym]
	if !ok || fillPrice <= 0 {
		return sym
	}
	var matches []string
	for _, pr := range ranges {
		if fillPrice >= pr.Min && fillPrice < pr.Max {
			matches = append(matches, pr.Symbol)
		}
	}
	switch len(matches) {
	case 0:
		r.logger.Warn(ctx, "Fill price outside all disambiguation ranges, keeping raw symbol",
			map[string]interface{}{"symbol": sym, "fillPrice": fillPrice})
		return sym
	case 1:
		return matches[0]
	default:
		r.logger.Warn(ctx, "Ambiguous price-range disambiguation, using first match",
			map[string]interface{}{"symbol": sym, "fillPrice": fillPrice, "candidates": strings.Join(matches, ",")})
		return matches[0]
	}
}

// EffectiveMultiplier returns the multiplier to price a trade with. When the
// trade carries margin and a leverage ratio, the implied multiplier
// margin*leverage/(quantity*entryPrice) is preferred over the table value if
// it deviates by more than the tolerance. This catches non-USD-quoted cross
// pairs whose table multiplier would misstate P&L in USD terms.
func (r *Registry) EffectiveMultiplier(ctx context.Context, t domain.Trade) float64 {
	spec := r.SpecFor(t.Contract)
	ratio := ParseLeverageRatio(t.Leverage)
	if t.Margin <= 0 || ratio <= 0 || t.Quantity <= 0 || t.EntryPrice <= 0 {
		return spec.Multiplier
	}
	implied := t.Margin * ratio / (float64(t.Quantity) * t.EntryPrice)
	if implied <= 0 {
		return spec.Multiplier
	}
	deviation := (implied - spec.Multiplier) / spec.Multiplier
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation <= multiplierDeviationTolerance {
		return spec.Multiplier
	}
	r.logger.Debug(ctx, "Using margin-implied multiplier",
		map[string]interface{}{"contract": t.Contract, "table": spec.Multiplier, "implied": implied})
	return implied
}

// ParseLeverageRatio extracts the numeric ratio from a leverage string such
// as "1:20", "20" or "x20". Returns 0 when no ratio is present.
func ParseLeverageRatio(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "x"), "X")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// rootSymbol strips continuous-contract markers and month/year codes:
// "ES1!" -> "ES", "ESZ6" -> "ES", "MNQH2026" -> "MNQ".
func rootSymbol(sym string) string {
	if idx := strings.Index(sym, "1!"); idx > 0 {
		return sym[:idx]
	}
	if idx := strings.Index(sym, "2!"); idx > 0 {
		return sym[:idx]
	}
	// Trailing digits, optionally preceded by a single month-code letter.
	trimmed := strings.TrimRight(sym, "0123456789")
	if trimmed != sym && len(trimmed) > 1 {
		if last := trimmed[len(trimmed)-1]; strings.ContainsRune("FGHJKMNQUVXZ", rune(last)) {
			return trimmed[:len(trimmed)-1]
		}
		return trimmed
	}
	return sym
}
