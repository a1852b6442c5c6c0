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

// PricePoint is one sample of a historical time series, already converted to
// SAR per gram.
type PricePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

// HistoricalSource supplies prices around a requested date. Each provider
// picks its own query window: range providers return the surrounding series,
// exact-date providers a single point for the date itself.
type HistoricalSource interface {
	Name() string
	Fetch(ctx context.Context, date time.Time) ([]PricePoint, error)
}

// rangeWindowDays is how far range providers look either side of the
// requested date to survive weekends and market holidays.
const rangeWindowDays = 3

// DefaultHistoricalSources builds the historical tier chain. The keyed
// goldapi.io tier is absent when no credential is set.
func DefaultHistoricalSources() []HistoricalSource {
	sources := []HistoricalSource{
		futuresHistorySource{},
	}
	if config.GoldAPIKey() != "" {
		sources = append(sources, goldAPIHistorySource{apiKey: config.GoldAPIKey()})
	}
	return sources
}

// futuresHistorySource reads daily gold futures closes from the Yahoo Finance
// chart API (no credential required).
type futuresHistorySource struct{}

func (futuresHistorySource) Name() string { return "yahoo-gc-futures" }

func (futuresHistorySource) Fetch(ctx context.Context, date time.Time) ([]PricePoint, error) {
	from := date.AddDate(0, 0, -rangeWindowDays)
	to := date.AddDate(0, 0, rangeWindowDays)
	url := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v8/finance/chart/GC=F?period1=%d&period2=%d&interval=1d",
		from.Unix(), to.AddDate(0, 0, 1).Unix(),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo chart API returned status %d", resp.StatusCode)
	}

	var body struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.New("yahoo chart API returned no series")
	}

	result := body.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	var points []PricePoint
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] <= 0 {
			continue
		}
		points = append(points, PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: usdPerOunceToSARPerGram(decimal.NewFromFloat(closes[i])),
		})
	}
	if len(points) == 0 {
		return nil, errors.New("yahoo chart API returned no usable closes")
	}
	return points, nil
}

// goldAPIHistorySource queries goldapi.io for a single exact date.
type goldAPIHistorySource struct {
	apiKey string
}

func (goldAPIHistorySource) Name() string { return "goldapi.io-history" }

func (s goldAPIHistorySource) Fetch(ctx context.Context, date time.Time) ([]PricePoint, error) {
	url := fmt.Sprintf("https://www.goldapi.io/api/XAU/USD/%s", date.Format("20060102"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-access-token", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("goldapi.io returned status %d", resp.StatusCode)
	}

	var body struct {
		Price       float64 `json:"price"`
		PriceGram24 float64 `json:"price_gram_24k"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	var perGram decimal.Decimal
	switch {
	case body.PriceGram24 > 0:
		perGram = decimal.NewFromFloat(body.PriceGram24).Mul(config.USDToSAR())
	case body.Price > 0:
		perGram = usdPerOunceToSARPerGram(decimal.NewFromFloat(body.Price))
	default:
		return nil, errors.New("goldapi.io returned no usable price")
	}
	return []PricePoint{{Date: date, Close: perGram}}, nil
}
