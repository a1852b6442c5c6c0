package goldprice

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wafirapp/wafir-backend/config"
)

const (
	// DefaultFreshness is how long a memoized quote is served without any
	// upstream call.
	DefaultFreshness = 10 * time.Minute

	// Fallback band, USD per troy ounce, when no provider and no cache exist.
	fallbackBandLowUSD  = 2600
	fallbackBandHighUSD = 2650
)

var ErrInvalidDate = errors.New("invalid date")

// Resolver produces current and historical gold prices per gram in SAR.
type Resolver struct {
	mu      sync.Mutex
	cache   QuoteCache
	sources []Source
	history []HistoricalSource
	fresh   time.Duration
	now     func() time.Time
	rnd     *rand.Rand
}

type Option func(*Resolver)

func WithSources(sources []Source) Option {
	return func(r *Resolver) { r.sources = sources }
}

func WithHistoricalSources(sources []HistoricalSource) Option {
	return func(r *Resolver) { r.history = sources }
}

func WithFreshness(d time.Duration) Option {
	return func(r *Resolver) { r.fresh = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(cache QuoteCache, opts ...Option) *Resolver {
	r := &Resolver{
		cache:   cache,
		sources: DefaultSources(),
		history: DefaultHistoricalSources(),
		fresh:   DefaultFreshness,
		now:     time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if cache == nil {
		r.cache = NewMemoryCache()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetCurrentPrice returns a quote and never fails for price unavailability.
//
// Within the freshness window the memoized quote is returned with no upstream
// call. Past the window the source chain is tried in order; only a successful
// fetch replaces the cache. A failed refresh with an existing cache returns
// the stale value. With no cache at all, a bounded random fallback price is
// synthesized and cached.
//
// The whole call holds the resolver mutex so concurrent callers never race
// two upstream fetches into the cache. When the cache is shared across
// processes, a try-lock serializes refreshes between instances: losing the
// race serves whatever the cache holds instead of fetching.
func (r *Resolver) GetCurrentPrice(ctx context.Context) Quote {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cached, haveCache := r.cache.Get()
	if haveCache && now.Sub(cached.AsOf) < r.fresh {
		return Quote{PricePerGram: cached.PricePerGram, AsOf: cached.AsOf, Source: SourceCached}
	}

	if rl, ok := r.cache.(RefreshLocker); ok {
		release, obtained := rl.LockRefresh(ctx)
		if obtained {
			defer release()
		} else {
			// Another instance is refreshing; it may already have
			// landed a newer quote.
			if q, ok := r.cache.Get(); ok {
				return Quote{PricePerGram: q.PricePerGram, AsOf: q.AsOf, Source: SourceCached}
			}
			// Empty cache: fetching unguarded beats returning nothing.
		}
	}

	logger := config.GetLogger()
	for _, src := range r.sources {
		price, err := src.Fetch(ctx)
		if err != nil || !price.IsPositive() {
			if err != nil && logger != nil {
				logger.WithField("source", src.Name()).Debug(err.Error())
			}
			continue
		}
		quote := Quote{PricePerGram: price.Round(2), AsOf: now, Source: src.Kind()}
		r.cache.Set(quote)
		return quote
	}

	// Every tier failed. Prefer the stale cache over inventing a price.
	if haveCache {
		return Quote{PricePerGram: cached.PricePerGram, AsOf: cached.AsOf, Source: SourceCached}
	}

	quote := Quote{PricePerGram: r.fallbackPricePerGram(), AsOf: now, Source: SourceFallback}
	r.cache.Set(quote)
	return quote
}

func (r *Resolver) fallbackPricePerGram() decimal.Decimal {
	usdPerOunce := fallbackBandLowUSD + r.rnd.Float64()*(fallbackBandHighUSD-fallbackBandLowUSD)
	return usdPerOunceToSARPerGram(decimal.NewFromFloat(usdPerOunce)).Round(2)
}

// GetHistoricalPrice returns a best-effort price per gram as of date.
//
// Tier 1: a range provider that queries ±3 days around date; the point with
// the smallest absolute delta wins, first-seen on ties (accepted, documented
// non-determinism). Tier 2+: further providers in chain order, each handed
// the requested date itself. Last: reverse compound decay from the current
// price; this path never fails.
//
// currentOverride avoids a redundant current-price fetch when the caller
// already holds one. The only error is an invalid date.
func (r *Resolver) GetHistoricalPrice(ctx context.Context, date time.Time, currentOverride *decimal.Decimal) (decimal.Decimal, error) {
	if date.IsZero() {
		return decimal.Zero, ErrInvalidDate
	}

	logger := config.GetLogger()
	for _, src := range r.history {
		points, err := src.Fetch(ctx, date)
		if err != nil || len(points) == 0 {
			if err != nil && logger != nil {
				logger.WithField("source", src.Name()).Debug(err.Error())
			}
			continue
		}
		best := points[0]
		bestDelta := absDuration(points[0].Date.Sub(date))
		for _, p := range points[1:] {
			if d := absDuration(p.Date.Sub(date)); d < bestDelta {
				best = p
				bestDelta = d
			}
		}
		return best.Close.Round(2), nil
	}

	current := decimal.Zero
	if currentOverride != nil && currentOverride.IsPositive() {
		current = *currentOverride
	} else {
		current = r.GetCurrentPrice(ctx).PricePerGram
	}
	return estimateByDecay(current, date, r.now()), nil
}

// estimateByDecay back-estimates a price via reverse compound decay at the
// fixed annual appreciation rate, using exact fractional years.
func estimateByDecay(current decimal.Decimal, date, now time.Time) decimal.Decimal {
	years := now.Sub(date).Hours() / 24 / 365.25
	cf, _ := current.Float64()
	estimated := cf / math.Pow(1+AnnualAppreciationRate, years)
	return decimal.NewFromFloat(estimated).Round(2)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
