// Package goldprice resolves the current and historical market price of gold
// per gram in the reporting currency (SAR).
//
// Price retrieval never fails: upstream outages degrade through a fallback
// chain (manual override, live providers, last memoized value, bounded random
// fallback). Callers must not special-case "price service down".
package goldprice

import (
	"time"

	"github.com/shopspring/decimal"
)

type SourceKind string

const (
	SourceLive     SourceKind = "live"
	SourceCached   SourceKind = "cached"
	SourceFallback SourceKind = "fallback"
	SourceOverride SourceKind = "override"
)

// Quote is a resolved gold price. Source is informational provenance only;
// it never changes the computation downstream.
type Quote struct {
	PricePerGram decimal.Decimal `json:"price_per_gram"`
	AsOf         time.Time       `json:"as_of"`
	Source       SourceKind      `json:"source"`
}

// GramsPerTroyOunce converts troy-ounce spot quotes to grams.
var GramsPerTroyOunce = decimal.NewFromFloat(31.1034768)

// AnnualAppreciationRate backs the historical reverse-decay estimate.
const AnnualAppreciationRate = 0.08
