package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wafirapp/wafir-backend/goldprice"
	"github.com/wafirapp/wafir-backend/models"
	"github.com/wafirapp/wafir-backend/zakat"
)

// CalculateZakat resolves the current gold price, runs the calculator over
// the caller's portfolio and returns the full liability breakdown. The price
// is resolved before calling the calculator; the calculator itself stays
// pure.
func CalculateZakat(resolver *goldprice.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := currentUserId(c)
		if !ok {
			return
		}

		portfolio, err := models.GetZakatPortfolio(c.Request.Context())
		if err != nil {
			writeModelError(c, "zakat.go", "CalculateZakat", err)
			return
		}

		quote := resolver.GetCurrentPrice(c.Request.Context())
		result, err := zakat.Calculate(portfolio, quote.PricePerGram)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		pending, nerr := models.HasUnreadNotification(c.Request.Context(), userId, models.NotificationTypeZakatDue)
		if nerr == nil && shouldNotifyZakatDue(result, pending) {
			_ = models.CreateNotification(c.Request.Context(), userId, models.NotificationTypeZakatDue,
				"Zakat of "+result.ZakatDue.Round(2).String()+" SAR is due on your portfolio")
		}

		c.JSON(http.StatusOK, gin.H{
			"result":       result,
			"price_source": quote.Source,
			"price_as_of":  quote.AsOf,
		})
	}
}

// shouldNotifyZakatDue gates the due notification: only above-Nisab positive
// liabilities notify, and never while an earlier notice is still unread, so
// repeated reads of the liability do not pile up duplicates.
func shouldNotifyZakatDue(result *zakat.Result, hasUnread bool) bool {
	return result != nil && result.MeetsNisab && result.ZakatDue.IsPositive() && !hasUnread
}

// GetGoldPrice returns the current quote plus the derived nisab value.
func GetGoldPrice(resolver *goldprice.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		quote := resolver.GetCurrentPrice(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"price_per_gram":   quote.PricePerGram,
			"as_of":            quote.AsOf,
			"source":           quote.Source,
			"gold_nisab_value": zakat.NisabGoldGrams.Mul(quote.PricePerGram),
		})
	}
}

// GetHistoricalGoldPrice serves a best-effort price for a past date. The
// date must parse; everything past that degrades inside the resolver.
func GetHistoricalGoldPrice(resolver *goldprice.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("date")
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}

		var override *decimal.Decimal
		if rawPrice := c.Query("current_price"); rawPrice != "" {
			if d, perr := decimal.NewFromString(rawPrice); perr == nil && d.IsPositive() {
				override = &d
			}
		}

		price, err := resolver.GetHistoricalPrice(c.Request.Context(), date, override)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"date":           date.Format("2006-01-02"),
			"price_per_gram": price,
		})
	}
}
