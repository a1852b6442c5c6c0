package goldprice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wafirapp/wafir-backend/config"
)

// Source is one tier of the current-price fallback chain. Fetch returns a
// price per gram in SAR, or an error when the tier is unavailable. The
// resolver tries tiers in order and stops at the first success.
type Source interface {
	Name() string
	Kind() SourceKind
	Fetch(ctx context.Context) (decimal.Decimal, error)
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// DefaultSources builds the production source chain from env configuration.
// The keyed goldapi.io tier is absent when no credential is set.
func DefaultSources() []Source {
	sources := []Source{
		overrideSource{},
		spotSource{},
	}
	if config.GoldAPIKey() != "" {
		sources = append(sources, goldAPISource{apiKey: config.GoldAPIKey()})
	}
	return sources
}

// overrideSource short-circuits everything when the operator configured a
// manual price. Makes the resolver fully deterministic for tests and demos.
type overrideSource struct{}

func (overrideSource) Name() string     { return "manual-override" }
func (overrideSource) Kind() SourceKind { return SourceOverride }

func (overrideSource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	price, ok := config.GoldPriceOverride()
	if !ok {
		return decimal.Zero, errors.New("gold price override not configured")
	}
	return price, nil
}

// spotSource queries the free gold-api.com spot endpoint. The response price
// is USD per troy ounce; conversion to SAR per gram happens here.
type spotSource struct{}

func (spotSource) Name() string     { return "gold-api.com" }
func (spotSource) Kind() SourceKind { return SourceLive }

func (spotSource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.gold-api.com/price/XAU", nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("gold-api.com returned status %d", resp.StatusCode)
	}

	var body struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}
	if body.Price <= 0 {
		return decimal.Zero, errors.New("gold-api.com returned non-positive price")
	}
	return usdPerOunceToSARPerGram(decimal.NewFromFloat(body.Price)), nil
}

// goldAPISource queries goldapi.io with an API-key credential. The response
// carries a direct per-gram price when available, otherwise a per-ounce price.
type goldAPISource struct {
	apiKey string
}

func (goldAPISource) Name() string     { return "goldapi.io" }
func (goldAPISource) Kind() SourceKind { return SourceLive }

func (s goldAPISource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.goldapi.io/api/XAU/USD", nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("x-access-token", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("goldapi.io returned status %d", resp.StatusCode)
	}

	var body struct {
		Price       float64 `json:"price"`
		PriceGram24 float64 `json:"price_gram_24k"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}
	if body.PriceGram24 > 0 {
		return decimal.NewFromFloat(body.PriceGram24).Mul(config.USDToSAR()), nil
	}
	if body.Price > 0 {
		return usdPerOunceToSARPerGram(decimal.NewFromFloat(body.Price)), nil
	}
	return decimal.Zero, errors.New("goldapi.io returned no usable price")
}

func usdPerOunceToSARPerGram(usdPerOunce decimal.Decimal) decimal.Decimal {
	return usdPerOunce.Mul(config.USDToSAR()).DivRound(GramsPerTroyOunce, 6)
}
