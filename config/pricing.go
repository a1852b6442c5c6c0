package config

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Pricing knobs for the gold price resolver. Conversion rates are named,
// env-overridable values so regional deployments can vary them without
// touching calculation logic.
//
// Set via env:
// - GOLD_PRICE_OVERRIDE=312.50   (SAR per gram; short-circuits every provider)
// - GOLD_API_KEY=goldapi-xxxx    (secondary keyed provider credential)
// - USD_SAR_RATE=3.75

const defaultUSDToSAR = "3.75"

// GoldPriceOverride returns the operator-supplied manual price per gram,
// if configured. Used for deterministic testing/demo.
func GoldPriceOverride() (decimal.Decimal, bool) {
	raw := strings.TrimSpace(os.Getenv("GOLD_PRICE_OVERRIDE"))
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// GoldAPIKey returns the credential for the secondary priced gold API.
// An empty key means the tier is absent.
func GoldAPIKey() string {
	return strings.TrimSpace(os.Getenv("GOLD_API_KEY"))
}

// USDToSAR returns the fixed USD to SAR conversion rate.
func USDToSAR() decimal.Decimal {
	raw := strings.TrimSpace(os.Getenv("USD_SAR_RATE"))
	if raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil && d.IsPositive() {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultUSDToSAR)
	return d
}
