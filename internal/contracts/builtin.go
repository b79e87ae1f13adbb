package contracts

// Built-in contract table for the CME futures complex commonly seen in
// retail broker exports. Commissions are typical per-side all-in retail
// rates; both tables can be overridden via LoadFile.
var builtinSpecs = map[string]Spec{
	// Equity index
	"ES":  {Multiplier: 50, CommissionPerSide: 2.25, Currency: "USD"},
	"MES": {Multiplier: 5, CommissionPerSide: 0.62, Currency: "USD"},
	"NQ":  {Multiplier: 20, CommissionPerSide: 2.25, Currency: "USD"},
	"MNQ": {Multiplier: 2, CommissionPerSide: 0.62, Currency: "USD"},
	"YM":  {Multiplier: 5, CommissionPerSide: 2.25, Currency: "USD"},
	"MYM": {Multiplier: 0.5, CommissionPerSide: 0.62, Currency: "USD"},
	"RTY": {Multiplier: 50, CommissionPerSide: 2.25, Currency: "USD"},
	"M2K": {Multiplier: 5, CommissionPerSide: 0.62, Currency: "USD"},

	// Metals
	"GC":  {Multiplier: 100, CommissionPerSide: 2.55, Currency: "USD"},
	"MGC": {Multiplier: 10, CommissionPerSide: 0.82, Currency: "USD"},
	"SI":  {Multiplier: 5000, CommissionPerSide: 2.55, Currency: "USD"},
	"SIL": {Multiplier: 1000, CommissionPerSide: 0.82, Currency: "USD"},

	// Energy
	"CL":  {Multiplier: 1000, CommissionPerSide: 2.55, Currency: "USD"},
	"MCL": {Multiplier: 100, CommissionPerSide: 0.82, Currency: "USD"},
	"NG":  {Multiplier: 10000, CommissionPerSide: 2.55, Currency: "USD"},

	// FX
	"6E":  {Multiplier: 125000, CommissionPerSide: 2.55, Currency: "USD"},
	"6B":  {Multiplier: 62500, CommissionPerSide: 2.55, Currency: "USD"},
	"6A":  {Multiplier: 100000, CommissionPerSide: 2.55, Currency: "USD"},
	"M6E": {Multiplier: 12500, CommissionPerSide: 0.82, Currency: "USD"},
}

// Price bands for ticker aliases whose exports do not say which contract
// was traded. Bands reflect index levels at the time of writing and drift
// with the market, so deployments should maintain them in the contracts
// YAML file rather than rely on these defaults.
var builtinRanges = map[string][]PriceRange{
	"MICRO": {
		{Symbol: "MES", Min: 3000, Max: 9000},
		{Symbol: "MNQ", Min: 15000, Max: 32000},
		{Symbol: "MYM", Min: 32000, Max: 60000},
	},
	"INDEX": {
		{Symbol: "ES", Min: 3000, Max: 9000},
		{Symbol: "NQ", Min: 15000, Max: 32000},
		{Symbol: "YM", Min: 32000, Max: 60000},
	},
}
