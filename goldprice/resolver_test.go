package goldprice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type stubSource struct {
	name   string
	kind   SourceKind
	prices []decimal.Decimal
	err    error
	calls  int
}

func (s *stubSource) Name() string     { return s.name }
func (s *stubSource) Kind() SourceKind { return s.kind }

func (s *stubSource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	i := s.calls - 1
	if i >= len(s.prices) {
		i = len(s.prices) - 1
	}
	return s.prices[i], nil
}

type stubHistory struct {
	name   string
	points []PricePoint
	err    error
	calls  int
	dates  []time.Time
}

func (s *stubHistory) Name() string { return s.name }

func (s *stubHistory) Fetch(ctx context.Context, date time.Time) ([]PricePoint, error) {
	s.calls++
	s.dates = append(s.dates, date)
	if s.err != nil {
		return nil, s.err
	}
	return s.points, nil
}

// lockedCache wraps MemoryCache with a scripted cross-process refresh lock.
type lockedCache struct {
	*MemoryCache
	obtained  bool
	lockCalls int
	released  int
}

func (c *lockedCache) LockRefresh(ctx context.Context) (func(), bool) {
	c.lockCalls++
	if !c.obtained {
		return nil, false
	}
	return func() { c.released++ }, true
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestGetCurrentPrice_CacheFreshness(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	src := &stubSource{name: "stub", kind: SourceLive, prices: []decimal.Decimal{dec("310.00"), dec("999.99")}}
	r := NewResolver(NewMemoryCache(),
		WithSources([]Source{src}),
		WithClock(fixedClock(now)),
	)

	first := r.GetCurrentPrice(context.Background())
	second := r.GetCurrentPrice(context.Background())

	if !first.PricePerGram.Equal(second.PricePerGram) {
		t.Fatalf("expected identical price within freshness window, got %s then %s", first.PricePerGram, second.PricePerGram)
	}
	if src.calls != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", src.calls)
	}
	if first.Source != SourceLive {
		t.Fatalf("expected first quote source live, got %s", first.Source)
	}
	if second.Source != SourceCached {
		t.Fatalf("expected second quote source cached, got %s", second.Source)
	}
}

func TestGetCurrentPrice_NeverFailsWithAllTiersDown(t *testing.T) {
	down := &stubSource{name: "down", kind: SourceLive, err: errors.New("connection refused")}
	r := NewResolver(NewMemoryCache(), WithSources([]Source{down}))

	q := r.GetCurrentPrice(context.Background())

	if !q.PricePerGram.IsPositive() {
		t.Fatalf("expected a positive fallback price, got %s", q.PricePerGram)
	}
	if q.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %s", q.Source)
	}

	// The synthesized price must sit in the configured USD/oz band after
	// conversion to SAR per gram.
	low := usdPerOunceToSARPerGram(decimal.NewFromInt(fallbackBandLowUSD)).Round(2)
	high := usdPerOunceToSARPerGram(decimal.NewFromInt(fallbackBandHighUSD)).Round(2)
	if q.PricePerGram.LessThan(low) || q.PricePerGram.GreaterThan(high) {
		t.Fatalf("fallback price %s outside band [%s, %s]", q.PricePerGram, low, high)
	}

	// Fallback is memoized: a second call serves the cache.
	again := r.GetCurrentPrice(context.Background())
	if !again.PricePerGram.Equal(q.PricePerGram) {
		t.Fatalf("expected memoized fallback %s, got %s", q.PricePerGram, again.PricePerGram)
	}
}

func TestGetCurrentPrice_StaleCachePreferredOverNewFallback(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	src := &stubSource{name: "flaky", kind: SourceLive, prices: []decimal.Decimal{dec("312.50")}}
	cache := NewMemoryCache()
	r := NewResolver(cache,
		WithSources([]Source{src}),
		WithClock(func() time.Time { return clock }),
	)

	first := r.GetCurrentPrice(context.Background())
	if !first.PricePerGram.Equal(dec("312.50")) {
		t.Fatalf("expected live price 312.50, got %s", first.PricePerGram)
	}

	// Expire the cache, then kill the upstream.
	clock = start.Add(DefaultFreshness + time.Minute)
	src.err = errors.New("timeout")

	q := r.GetCurrentPrice(context.Background())
	if !q.PricePerGram.Equal(dec("312.50")) {
		t.Fatalf("expected stale cached price 312.50, got %s", q.PricePerGram)
	}
	if q.Source != SourceCached {
		t.Fatalf("expected cached source, got %s", q.Source)
	}

	// A failed refresh must not overwrite the cache timestamp.
	stored, ok := cache.Get()
	if !ok || !stored.AsOf.Equal(start) {
		t.Fatalf("expected cache AsOf to remain %s, got %s", start, stored.AsOf)
	}
}

func TestGetCurrentPrice_SuccessfulRefreshReplacesCache(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	src := &stubSource{name: "stub", kind: SourceLive, prices: []decimal.Decimal{dec("310.00"), dec("320.00")}}
	r := NewResolver(NewMemoryCache(),
		WithSources([]Source{src}),
		WithClock(func() time.Time { return clock }),
	)

	first := r.GetCurrentPrice(context.Background())
	clock = start.Add(DefaultFreshness + time.Minute)
	second := r.GetCurrentPrice(context.Background())

	if !first.PricePerGram.Equal(dec("310.00")) || !second.PricePerGram.Equal(dec("320.00")) {
		t.Fatalf("expected refresh to replace price, got %s then %s", first.PricePerGram, second.PricePerGram)
	}
	if second.Source != SourceLive {
		t.Fatalf("expected live source after refresh, got %s", second.Source)
	}
}

func TestGetCurrentPrice_SourcePrecedence(t *testing.T) {
	primary := &stubSource{name: "primary", kind: SourceLive, err: errors.New("rate limited")}
	secondary := &stubSource{name: "secondary", kind: SourceLive, prices: []decimal.Decimal{dec("315.25")}}
	r := NewResolver(NewMemoryCache(), WithSources([]Source{primary, secondary}))

	q := r.GetCurrentPrice(context.Background())

	if primary.calls != 1 {
		t.Fatalf("expected primary to be tried first, calls=%d", primary.calls)
	}
	if !q.PricePerGram.Equal(dec("315.25")) {
		t.Fatalf("expected secondary price 315.25, got %s", q.PricePerGram)
	}
}

func TestGetCurrentPrice_RefreshLockHeldServesStaleValue(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := &lockedCache{MemoryCache: NewMemoryCache(), obtained: false}
	cache.Set(Quote{PricePerGram: dec("312.50"), AsOf: start, Source: SourceLive})

	src := &stubSource{name: "stub", kind: SourceLive, prices: []decimal.Decimal{dec("999.99")}}
	r := NewResolver(cache,
		WithSources([]Source{src}),
		WithClock(fixedClock(start.Add(DefaultFreshness+time.Minute))),
	)

	q := r.GetCurrentPrice(context.Background())

	if src.calls != 0 {
		t.Fatalf("expected no upstream fetch while another instance refreshes, got %d", src.calls)
	}
	if !q.PricePerGram.Equal(dec("312.50")) || q.Source != SourceCached {
		t.Fatalf("expected the cached value 312.50, got %s (%s)", q.PricePerGram, q.Source)
	}
	if cache.lockCalls != 1 {
		t.Fatalf("expected a single lock attempt, got %d", cache.lockCalls)
	}
}

func TestGetCurrentPrice_RefreshLockHeldEmptyCacheStillFetches(t *testing.T) {
	cache := &lockedCache{MemoryCache: NewMemoryCache(), obtained: false}
	src := &stubSource{name: "stub", kind: SourceLive, prices: []decimal.Decimal{dec("310.00")}}
	r := NewResolver(cache, WithSources([]Source{src}))

	q := r.GetCurrentPrice(context.Background())

	if src.calls != 1 {
		t.Fatalf("expected an unguarded fetch with an empty cache, got %d calls", src.calls)
	}
	if !q.PricePerGram.Equal(dec("310.00")) {
		t.Fatalf("expected live price 310.00, got %s", q.PricePerGram)
	}
}

func TestGetCurrentPrice_RefreshLockAcquiredAndReleased(t *testing.T) {
	cache := &lockedCache{MemoryCache: NewMemoryCache(), obtained: true}
	src := &stubSource{name: "stub", kind: SourceLive, prices: []decimal.Decimal{dec("310.00")}}
	r := NewResolver(cache, WithSources([]Source{src}))

	r.GetCurrentPrice(context.Background())

	if cache.lockCalls != 1 || cache.released != 1 {
		t.Fatalf("expected one acquire and one release, got %d/%d", cache.lockCalls, cache.released)
	}

	// A fresh cache hit must not touch the lock at all.
	r.GetCurrentPrice(context.Background())
	if cache.lockCalls != 1 {
		t.Fatalf("expected no lock attempt inside the freshness window, got %d", cache.lockCalls)
	}
}

func TestGetHistoricalPrice_InvalidDate(t *testing.T) {
	r := NewResolver(NewMemoryCache(), WithSources(nil), WithHistoricalSources(nil))
	_, err := r.GetHistoricalPrice(context.Background(), time.Time{}, nil)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestGetHistoricalPrice_NearestPointWins(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	hist := &stubHistory{name: "stub", points: []PricePoint{
		{Date: date.AddDate(0, 0, -3), Close: dec("290.00")},
		{Date: date.AddDate(0, 0, 1), Close: dec("295.00")},
		{Date: date.AddDate(0, 0, 2), Close: dec("299.00")},
	}}
	r := NewResolver(NewMemoryCache(), WithSources(nil), WithHistoricalSources([]HistoricalSource{hist}))

	price, err := r.GetHistoricalPrice(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(dec("295.00")) {
		t.Fatalf("expected nearest close 295.00, got %s", price)
	}
}

func TestGetHistoricalPrice_SourcesReceiveRequestedDate(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	first := &stubHistory{name: "first", err: errors.New("unavailable")}
	second := &stubHistory{name: "second", points: []PricePoint{{Date: date, Close: dec("288.40")}}}
	r := NewResolver(NewMemoryCache(), WithSources(nil),
		WithHistoricalSources([]HistoricalSource{first, second}))

	if _, err := r.GetHistoricalPrice(context.Background(), date, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every tier gets the date the caller asked for, never a shifted
	// window edge. An exact-date provider queried for anything else would
	// answer for the wrong day.
	for _, src := range []*stubHistory{first, second} {
		if len(src.dates) != 1 || !src.dates[0].Equal(date) {
			t.Fatalf("source %q queried for %v, want exactly [%s]", src.name, src.dates, date)
		}
	}
}

func TestGetHistoricalPrice_TieKeepsFirstSeen(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	hist := &stubHistory{name: "stub", points: []PricePoint{
		{Date: date.AddDate(0, 0, -1), Close: dec("291.00")},
		{Date: date.AddDate(0, 0, 1), Close: dec("293.00")},
	}}
	r := NewResolver(NewMemoryCache(), WithSources(nil), WithHistoricalSources([]HistoricalSource{hist}))

	price, err := r.GetHistoricalPrice(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(dec("291.00")) {
		t.Fatalf("expected first-seen point on tie, got %s", price)
	}
}

func TestGetHistoricalPrice_SecondTierUsedWhenFirstFails(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	first := &stubHistory{name: "first", err: errors.New("unavailable")}
	second := &stubHistory{name: "second", points: []PricePoint{{Date: date, Close: dec("288.40")}}}
	r := NewResolver(NewMemoryCache(), WithSources(nil),
		WithHistoricalSources([]HistoricalSource{first, second}))

	price, err := r.GetHistoricalPrice(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.calls != 1 {
		t.Fatalf("expected first tier to be tried, calls=%d", first.calls)
	}
	if !price.Equal(dec("288.40")) {
		t.Fatalf("expected second tier close 288.40, got %s", price)
	}
}

func TestGetHistoricalPrice_DecayEstimateOneYear(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	date := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	current := dec("1000")

	r := NewResolver(NewMemoryCache(),
		WithSources(nil),
		WithHistoricalSources(nil),
		WithClock(fixedClock(now)),
	)

	price, err := r.GetHistoricalPrice(context.Background(), date, &current)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := dec("1000").Div(dec("1.08"))
	diff := price.Sub(expected).Abs()
	if diff.GreaterThan(dec("0.10")) {
		t.Fatalf("expected ~%s (P/1.08) one year back, got %s (diff %s)", expected.Round(2), price, diff)
	}
}

func TestGetHistoricalPrice_DecayFetchesCurrentWhenNoOverride(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	date := now.AddDate(-2, 0, 0)
	src := &stubSource{name: "stub", kind: SourceLive, prices: []decimal.Decimal{dec("400.00")}}

	r := NewResolver(NewMemoryCache(),
		WithSources([]Source{src}),
		WithHistoricalSources(nil),
		WithClock(fixedClock(now)),
	)

	price, err := r.GetHistoricalPrice(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected the resolver to fetch a current price, calls=%d", src.calls)
	}

	// ~400 / 1.08^2
	expected := dec("400").Div(dec("1.08")).Div(dec("1.08"))
	if price.Sub(expected).Abs().GreaterThan(dec("0.25")) {
		t.Fatalf("expected ~%s two years back, got %s", expected.Round(2), price)
	}
}
