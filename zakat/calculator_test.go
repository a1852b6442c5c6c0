package zakat

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func daysAgo(days int) *time.Time {
	t := testNow.AddDate(0, 0, -days)
	return &t
}

func mustCalculate(t *testing.T, investments []Investment, goldPrice decimal.Decimal) *Result {
	t.Helper()
	result, err := CalculateAt(investments, goldPrice, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestCalculate_RejectsNonPositiveGoldPrice(t *testing.T) {
	for _, price := range []decimal.Decimal{decimal.Zero, dec("-10")} {
		if _, err := CalculateAt(nil, price, testNow); err != ErrInvalidGoldPrice {
			t.Fatalf("price %s: expected ErrInvalidGoldPrice, got %v", price, err)
		}
	}
}

func TestCalculate_EmptyPortfolio(t *testing.T) {
	result := mustCalculate(t, nil, dec("350"))

	if result.MeetsNisab {
		t.Fatal("empty portfolio must not meet nisab")
	}
	if !result.TotalZakat.IsZero() || !result.TotalZakatable.IsZero() || !result.TotalLiquidAssets.IsZero() {
		t.Fatalf("expected all-zero totals, got zakat=%s zakatable=%s liquid=%s",
			result.TotalZakat, result.TotalZakatable, result.TotalLiquidAssets)
	}
	if !result.GoldNisabValue.Equal(dec("29750")) {
		t.Fatalf("expected nisab 85*350=29750, got %s", result.GoldNisabValue)
	}
}

func TestCalculate_ReferenceScenario(t *testing.T) {
	// Long-held domestic stock plus a small gold holding, both below any
	// liability: the worked example for the whole classification pipeline.
	investments := []Investment{
		{
			Name:         "Tadawul Bank",
			Category:     CategoryStock,
			AmountOwned:  dec("100"),
			CurrentPrice: dec("50"),
			PurchaseDate: daysAgo(400),
		},
		{
			Name:         "Bars",
			Category:     CategoryGold,
			AmountOwned:  dec("10"),
			CurrentPrice: dec("300"),
		},
	}

	result := mustCalculate(t, investments, dec("350"))

	stocks := result.CategoryBreakdown.Stocks
	if !stocks.Total.Equal(dec("5000")) || !stocks.Zakatable.IsZero() || !stocks.Zakat.IsZero() {
		t.Fatalf("stocks: expected total=5000 zakatable=0 zakat=0, got %s/%s/%s",
			stocks.Total, stocks.Zakatable, stocks.Zakat)
	}

	gold := result.CategoryBreakdown.Gold
	if !gold.Total.Equal(dec("3000")) || !gold.Zakatable.IsZero() {
		t.Fatalf("gold: expected total=3000 zakatable=0, got %s/%s", gold.Total, gold.Zakatable)
	}

	if !result.TotalLiquidAssets.Equal(dec("3000")) {
		t.Fatalf("expected liquid assets 3000, got %s", result.TotalLiquidAssets)
	}
	if result.MeetsNisab {
		t.Fatal("3000 < 29750 must not meet nisab")
	}
	if !result.TotalZakat.IsZero() {
		t.Fatalf("expected total zakat 0, got %s", result.TotalZakat)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	investments := []Investment{
		{Name: "Villa", Category: CategoryRealEstate, AmountOwned: dec("1"), CurrentPrice: dec("800000")},
		{Name: "BTC", Category: CategoryCrypto, AmountOwned: dec("0.5"), CurrentPrice: dec("250000")},
		{Name: "Saudi Aramco", Category: CategoryStock, AmountOwned: dec("200"), CurrentPrice: dec("32"), PurchaseDate: daysAgo(100)},
	}

	a := mustCalculate(t, investments, dec("312.5"))
	b := mustCalculate(t, investments, dec("312.5"))

	if !a.TotalZakat.Equal(b.TotalZakat) || !a.TotalZakatable.Equal(b.TotalZakatable) ||
		!a.TotalLiquidAssets.Equal(b.TotalLiquidAssets) || a.MeetsNisab != b.MeetsNisab {
		t.Fatal("repeated calculation with identical inputs diverged")
	}
	for i := range a.CategoryBreakdown.Stocks.Items {
		ai, bi := a.CategoryBreakdown.Stocks.Items[i], b.CategoryBreakdown.Stocks.Items[i]
		if ai.Name != bi.Name || ai.Reason != bi.Reason ||
			!ai.Value.Equal(bi.Value) || !ai.Zakatable.Equal(bi.Zakatable) || !ai.Zakat.Equal(bi.Zakat) {
			t.Fatalf("stock item %d diverged: %+v vs %+v", i, ai, bi)
		}
	}
}

func TestCalculate_ConservationPerCategory(t *testing.T) {
	investments := []Investment{
		{Name: "Apartment", Category: CategoryRealEstate, AmountOwned: dec("1"), CurrentPrice: dec("450000")},
		{Name: "Tadawul Telecom", Category: CategoryStock, AmountOwned: dec("50"), CurrentPrice: dec("40"), PurchaseDate: daysAgo(30)},
		{Name: "TASI Index Fund", Category: CategoryStock, AmountOwned: dec("10"), CurrentPrice: dec("120"), PurchaseDate: daysAgo(800)},
		{Name: "AAPL", Category: CategoryStock, AmountOwned: dec("5"), CurrentPrice: dec("700")},
		{Name: "ETH", Category: CategoryCrypto, AmountOwned: dec("3"), CurrentPrice: dec("9000")},
		{Name: "Coins", Category: CategoryGold, AmountOwned: dec("120"), CurrentPrice: dec("310")},
	}

	result := mustCalculate(t, investments, dec("310"))

	b := result.CategoryBreakdown
	for name, cat := range map[string]CategoryBreakdown{
		"real_estate": b.RealEstate, "stocks": b.Stocks, "crypto": b.Crypto, "gold": b.Gold,
	} {
		if cat.Zakatable.GreaterThan(cat.Total) {
			t.Fatalf("%s: zakatable %s exceeds total %s", name, cat.Zakatable, cat.Total)
		}
		if !cat.Zakat.Equal(cat.Zakatable.Mul(Rate)) {
			t.Fatalf("%s: zakat %s != zakatable*rate %s", name, cat.Zakat, cat.Zakatable.Mul(Rate))
		}
		for _, item := range cat.Items {
			if item.Zakatable.GreaterThan(item.Value) {
				t.Fatalf("%s item %q: zakatable %s exceeds value %s", name, item.Name, item.Zakatable, item.Value)
			}
			if item.Reason == "" {
				t.Fatalf("%s item %q: missing classification reason", name, item.Name)
			}
		}
	}
}

func TestCalculate_NisabMonotonicity(t *testing.T) {
	base := []Investment{
		{Name: "Bars", Category: CategoryGold, AmountOwned: dec("50"), CurrentPrice: dec("300")},
		{Name: "BTC", Category: CategoryCrypto, AmountOwned: dec("0.1"), CurrentPrice: dec("200000")},
	}

	goldPrice := dec("350")
	prev := mustCalculate(t, base, goldPrice)

	// Grow the crypto position step by step: liquid assets never shrink and
	// meetsNisab never flips true -> false.
	for _, amount := range []string{"0.2", "0.5", "1", "2", "5"} {
		grown := []Investment{
			base[0],
			{Name: "BTC", Category: CategoryCrypto, AmountOwned: dec(amount), CurrentPrice: dec("200000")},
		}
		next := mustCalculate(t, grown, goldPrice)

		if next.TotalLiquidAssets.LessThan(prev.TotalLiquidAssets) {
			t.Fatalf("liquid assets decreased: %s -> %s", prev.TotalLiquidAssets, next.TotalLiquidAssets)
		}
		if prev.MeetsNisab && !next.MeetsNisab {
			t.Fatal("meetsNisab flipped true -> false while assets grew")
		}
		prev = next
	}
	if !prev.MeetsNisab {
		t.Fatal("expected the largest portfolio to meet nisab")
	}
}

func TestCalculate_GoldThresholdBoundary(t *testing.T) {
	goldPrice := dec("350")
	nisab := dec("29750") // 85 * 350

	cases := []struct {
		name      string
		amount    string
		zakatable decimal.Decimal
	}{
		{"just below", "84.999", decimal.Zero},
		{"exactly at nisab", "85", nisab},
		{"above", "90", dec("31500")},
	}

	for _, tc := range cases {
		investments := []Investment{
			{Name: "Bars", Category: CategoryGold, AmountOwned: dec(tc.amount), CurrentPrice: goldPrice},
		}
		result := mustCalculate(t, investments, goldPrice)
		got := result.CategoryBreakdown.Gold.Zakatable
		if !got.Equal(tc.zakatable) {
			t.Fatalf("%s: expected zakatable %s, got %s", tc.name, tc.zakatable, got)
		}
	}
}

func TestCalculate_StockHoldingPeriodBoundary(t *testing.T) {
	cases := []struct {
		name         string
		purchaseDate *time.Time
		zakatable    bool
		reasonPart   string
	}{
		{"held 364 days is speculator", daysAgo(364), true, "speculator"},
		{"held exactly 365 days is investor", daysAgo(365), false, "investor"},
		{"held 400 days is investor", daysAgo(400), false, "investor"},
		{"missing purchase date defaults to investor", nil, false, "investor"},
	}

	for _, tc := range cases {
		investments := []Investment{
			{Name: "Tadawul Bank", Category: CategoryStock, AmountOwned: dec("10"), CurrentPrice: dec("100"), PurchaseDate: tc.purchaseDate},
		}
		result := mustCalculate(t, investments, dec("350"))

		item := result.CategoryBreakdown.Stocks.Items[0]
		if tc.zakatable && !item.Zakatable.Equal(dec("1000")) {
			t.Fatalf("%s: expected fully zakatable 1000, got %s", tc.name, item.Zakatable)
		}
		if !tc.zakatable && !item.Zakatable.IsZero() {
			t.Fatalf("%s: expected zero zakatable, got %s", tc.name, item.Zakatable)
		}
		if !containsFold(item.Reason, tc.reasonPart) {
			t.Fatalf("%s: reason %q does not mention %q", tc.name, item.Reason, tc.reasonPart)
		}
	}
}

func TestCalculate_InternationalStockAlwaysZakatable(t *testing.T) {
	longHeld := daysAgo(1000)
	investments := []Investment{
		{Name: "MSFT", Category: CategoryStock, AmountOwned: dec("10"), CurrentPrice: dec("400"), PurchaseDate: longHeld},
	}
	result := mustCalculate(t, investments, dec("350"))

	item := result.CategoryBreakdown.Stocks.Items[0]
	if !item.Zakatable.Equal(dec("4000")) {
		t.Fatalf("international stock must stay fully zakatable regardless of holding period, got %s", item.Zakatable)
	}
}

func TestCalculate_DomesticMarkerDetection(t *testing.T) {
	cases := []struct {
		name     string
		domestic bool
	}{
		{"Tadawul Bank", true},
		{"SAUDI ARAMCO", true},
		{"2222.SR", true},
		{"TASI Tracker", true},
		{"Vanguard S&P 500", false},
	}
	for _, tc := range cases {
		if got := isDomesticStock(tc.name); got != tc.domestic {
			t.Fatalf("%q: expected domestic=%v, got %v", tc.name, tc.domestic, got)
		}
	}
}

func TestCalculate_UnknownCategoriesSkippedButCounted(t *testing.T) {
	investments := []Investment{
		{Name: "Vintage Car", Category: CategoryOther, AmountOwned: dec("1"), CurrentPrice: dec("90000")},
		{Name: "Mystery", Category: Category("Collectible"), AmountOwned: dec("2"), CurrentPrice: dec("100")},
		{Name: "ETH", Category: CategoryCrypto, AmountOwned: dec("1"), CurrentPrice: dec("9000")},
	}

	result := mustCalculate(t, investments, dec("350"))

	if result.SkippedItems != 2 {
		t.Fatalf("expected 2 skipped items, got %d", result.SkippedItems)
	}
	if !result.TotalLiquidAssets.Equal(dec("9000")) {
		t.Fatalf("skipped items must not contribute to any total, liquid=%s", result.TotalLiquidAssets)
	}
}

func TestCalculate_ZeroAmountContributesNothing(t *testing.T) {
	investments := []Investment{
		{Name: "Empty Position", Category: CategoryGold, AmountOwned: decimal.Zero, CurrentPrice: dec("310")},
		{Name: "Tadawul Bank", Category: CategoryStock, AmountOwned: decimal.Zero, CurrentPrice: dec("50"), PurchaseDate: daysAgo(10)},
	}

	result := mustCalculate(t, investments, dec("310"))

	if !result.TotalZakat.IsZero() || !result.TotalLiquidAssets.IsZero() {
		t.Fatalf("zero-amount records must contribute zero, zakat=%s liquid=%s",
			result.TotalZakat, result.TotalLiquidAssets)
	}
	if len(result.CategoryBreakdown.Gold.Items) != 1 || len(result.CategoryBreakdown.Stocks.Items) != 1 {
		t.Fatal("zero-amount records still appear in item detail")
	}
}

func TestCalculate_NisabGatedZakatDue(t *testing.T) {
	// Real estate alone produces a raw levy but no liquid assets: the raw
	// totals stay populated while the gated figure is zero.
	investments := []Investment{
		{Name: "Rental Flat", Category: CategoryRealEstate, AmountOwned: dec("1"), CurrentPrice: dec("600000")},
	}

	result := mustCalculate(t, investments, dec("350"))

	if result.MeetsNisab {
		t.Fatal("no liquid assets must not meet nisab")
	}
	if !result.TotalZakat.Equal(dec("15000")) {
		t.Fatalf("expected raw total zakat 600000*0.025=15000, got %s", result.TotalZakat)
	}
	if !result.ZakatDue.IsZero() {
		t.Fatalf("expected nisab-gated due of 0, got %s", result.ZakatDue)
	}

	// Add enough gold to cross the threshold: the gated figure now matches.
	investments = append(investments, Investment{
		Name: "Bars", Category: CategoryGold, AmountOwned: dec("100"), CurrentPrice: dec("350"),
	})
	result = mustCalculate(t, investments, dec("350"))
	if !result.MeetsNisab {
		t.Fatal("100 grams at nisab price must meet the threshold")
	}
	if !result.ZakatDue.Equal(result.TotalZakat) {
		t.Fatalf("expected gated due %s to equal raw total %s", result.ZakatDue, result.TotalZakat)
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
