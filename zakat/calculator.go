// Package zakat computes the annual Zakat liability of an investment
// portfolio against the gold-equivalent Nisab threshold.
//
// The calculator is a pure function over its inputs: it never touches the
// database, never fetches prices, and never logs. The caller resolves the
// current gold price first (see the goldprice package) and passes it in.
package zakat

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryRealEstate Category = "RealEstate"
	CategoryStock      Category = "Stock"
	CategoryCrypto     Category = "Crypto"
	CategoryGold       Category = "Gold"
	CategoryOther      Category = "Other"
)

// Rate is the levy on zakatable wealth. NisabGoldGrams is the minimum
// threshold expressed in grams of gold. Both are religious-law constants,
// not configuration.
var (
	Rate           = decimal.RequireFromString("0.025")
	NisabGoldGrams = decimal.NewFromInt(85)
)

// ErrInvalidGoldPrice rejects a non-positive gold price before it can turn
// the Nisab threshold into nonsense.
var ErrInvalidGoldPrice = errors.New("current gold price per gram must be a positive number")

// Investment is one portfolio record as supplied by the investment store.
type Investment struct {
	Name         string
	Category     Category
	AmountOwned  decimal.Decimal
	BuyPrice     decimal.Decimal
	CurrentPrice decimal.Decimal
	PurchaseDate *time.Time
}

// CurrentValue is derived, never stored.
func (inv Investment) CurrentValue() decimal.Decimal {
	return inv.CurrentPrice.Mul(inv.AmountOwned)
}

// Item is the audited per-investment outcome. Reason documents which
// classification branch fired.
type Item struct {
	Name      string          `json:"name"`
	Value     decimal.Decimal `json:"value"`
	Zakatable decimal.Decimal `json:"zakatable"`
	Zakat     decimal.Decimal `json:"zakat"`
	Reason    string          `json:"reason"`
}

// CategoryBreakdown aggregates one asset category in input order.
type CategoryBreakdown struct {
	Total     decimal.Decimal `json:"total"`
	Zakatable decimal.Decimal `json:"zakatable"`
	Zakat     decimal.Decimal `json:"zakat"`
	Items     []Item          `json:"items"`
}

type Breakdown struct {
	RealEstate CategoryBreakdown `json:"real_estate"`
	Stocks     CategoryBreakdown `json:"stocks"`
	Crypto     CategoryBreakdown `json:"crypto"`
	Gold       CategoryBreakdown `json:"gold"`
}

// Result is the full liability breakdown.
//
// TotalZakatable and TotalZakat are the raw per-category sums regardless of
// MeetsNisab; ZakatDue is the Nisab-gated figure (zero when the portfolio is
// below the threshold that makes Zakat obligatory). Callers choose which to
// present.
type Result struct {
	GoldNisabValue          decimal.Decimal `json:"gold_nisab_value"`
	CurrentGoldPricePerGram decimal.Decimal `json:"current_gold_price_per_gram"`
	ZakatRate               decimal.Decimal `json:"zakat_rate"`
	MeetsNisab              bool            `json:"meets_nisab"`
	TotalLiquidAssets       decimal.Decimal `json:"total_liquid_assets"`
	TotalZakatable          decimal.Decimal `json:"total_zakatable"`
	TotalZakat              decimal.Decimal `json:"total_zakat"`
	ZakatDue                decimal.Decimal `json:"zakat_due"`
	CategoryBreakdown       Breakdown       `json:"category_breakdown"`
	SkippedItems            int             `json:"skipped_items"`
	Timestamp               time.Time       `json:"timestamp"`
}

// Domestic-market heuristic for stock classification.
var domesticMarkers = []string{"tadawul", "saudi", ".sr", "tasi"}

const speculatorHoldingDays = 365

// Calculate classifies every investment and returns the liability breakdown.
// It never fails for a well-typed list; unrecognized categories are excluded
// from every bucket and surfaced via SkippedItems.
func Calculate(investments []Investment, goldPricePerGram decimal.Decimal) (*Result, error) {
	return CalculateAt(investments, goldPricePerGram, time.Now())
}

// CalculateAt is Calculate with an explicit "now", used for the stock
// holding-period clock.
func CalculateAt(investments []Investment, goldPricePerGram decimal.Decimal, now time.Time) (*Result, error) {
	if !goldPricePerGram.IsPositive() {
		return nil, ErrInvalidGoldPrice
	}

	nisabValue := NisabGoldGrams.Mul(goldPricePerGram)

	result := &Result{
		GoldNisabValue:          nisabValue,
		CurrentGoldPricePerGram: goldPricePerGram,
		ZakatRate:               Rate,
		Timestamp:               now,
	}

	for _, inv := range investments {
		switch inv.Category {
		case CategoryRealEstate:
			item := fullyZakatable(inv, "trade asset (urud al-tijarah), fully zakatable")
			addItem(&result.CategoryBreakdown.RealEstate, item)
		case CategoryStock:
			item := classifyStock(inv, now)
			addItem(&result.CategoryBreakdown.Stocks, item)
		case CategoryCrypto:
			item := fullyZakatable(inv, "crypto holding, treated as liquid wealth, fully zakatable")
			addItem(&result.CategoryBreakdown.Crypto, item)
		case CategoryGold:
			item := classifyGold(inv, nisabValue)
			addItem(&result.CategoryBreakdown.Gold, item)
		default:
			// Unknown asset classes are not zakatable by default.
			result.SkippedItems++
		}
	}

	b := result.CategoryBreakdown
	result.TotalLiquidAssets = b.Crypto.Total.Add(b.Gold.Total)
	result.TotalZakatable = b.RealEstate.Zakatable.Add(b.Stocks.Zakatable).Add(b.Crypto.Zakatable).Add(b.Gold.Zakatable)
	result.TotalZakat = b.RealEstate.Zakat.Add(b.Stocks.Zakat).Add(b.Crypto.Zakat).Add(b.Gold.Zakat)
	result.MeetsNisab = result.TotalLiquidAssets.GreaterThanOrEqual(nisabValue)
	if result.MeetsNisab {
		result.ZakatDue = result.TotalZakat
	} else {
		result.ZakatDue = decimal.Zero
	}

	return result, nil
}

func fullyZakatable(inv Investment, reason string) Item {
	value := inv.CurrentValue()
	return Item{
		Name:      inv.Name,
		Value:     value,
		Zakatable: value,
		Zakat:     value.Mul(Rate),
		Reason:    reason,
	}
}

func notZakatable(inv Investment, reason string) Item {
	return Item{
		Name:      inv.Name,
		Value:     inv.CurrentValue(),
		Zakatable: decimal.Zero,
		Zakat:     decimal.Zero,
		Reason:    reason,
	}
}

// classifyStock splits domestic holdings by holding period: short-term
// holders ("speculators") owe zakat on the full market value, long-term
// holders ("investors") owe nothing because the issuing company is assumed
// to pay zakat on their behalf. International listings are always trade
// assets. A missing purchase date defaults to a full year held.
func classifyStock(inv Investment, now time.Time) Item {
	if !isDomesticStock(inv.Name) {
		return fullyZakatable(inv, "international stock, treated as trade asset, fully zakatable")
	}

	heldDays := speculatorHoldingDays
	if inv.PurchaseDate != nil {
		heldDays = int(now.Sub(*inv.PurchaseDate).Hours() / 24)
	}
	if heldDays < speculatorHoldingDays {
		return fullyZakatable(inv, "domestic stock held under one year (speculator), fully zakatable")
	}
	return notZakatable(inv, "domestic stock held one year or more (investor), company pays zakat")
}

func isDomesticStock(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range domesticMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// classifyGold compares the holding's value against the Nisab value computed
// for this calculation. At-or-above counts as above (>=).
func classifyGold(inv Investment, nisabValue decimal.Decimal) Item {
	value := inv.CurrentValue()
	if value.LessThan(nisabValue) {
		return notZakatable(inv, "gold holding below nisab threshold")
	}
	return fullyZakatable(inv, "gold holding at or above nisab threshold, fully zakatable")
}

// addItem keeps per-category sums as running totals over items in input
// order; zakat is summed per item, never recomputed from the aggregated
// zakatable figure.
func addItem(b *CategoryBreakdown, item Item) {
	b.Total = b.Total.Add(item.Value)
	b.Zakatable = b.Zakatable.Add(item.Zakatable)
	b.Zakat = b.Zakat.Add(item.Zakat)
	b.Items = append(b.Items, item)
}
