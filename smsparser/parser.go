// Package smsparser extracts transaction drafts from bank notification SMS
// text. Messages are treated as untrusted free text: anything that does not
// match a known pattern is skipped, never an error.
package smsparser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPurchase   Kind = "purchase"
	KindWithdrawal Kind = "withdrawal"
	KindDeposit    Kind = "deposit"
	KindTransfer   Kind = "transfer"
)

type Transaction struct {
	Kind     Kind
	Amount   decimal.Decimal
	Currency string
	Merchant string
	Date     *time.Time
}

// IsExpense reports whether the transaction should become an expense draft.
func (t Transaction) IsExpense() bool {
	return t.Kind == KindPurchase || t.Kind == KindWithdrawal
}

// Groups:
// 1: keyword deciding the kind
// 2: currency (optional, defaults to SAR)
// 3: amount, possibly with thousands separators
// 4: merchant ("at STARBUCKS"), optional
var txnPattern = regexp.MustCompile(
	`(?i)(purchase|pos|debited|withdrawal|atm|credited|deposit|salary|transfer)\s*(?:of)?\s*(sar|usd)?\s*([\d,]+(?:\.\d{1,2})?)(?:\s*(?:at|@|from)\s+([^\n,;.]+))?`)

var datePattern = regexp.MustCompile(`(?i)\bon\s+(\d{4}-\d{2}-\d{2})`)

// Parse extracts every recognizable transaction from a message. Multiple
// notifications may share one SMS body, separated by newlines or semicolons.
func Parse(text string) ([]Transaction, error) {
	var results []Transaction

	var when *time.Time
	if m := datePattern.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("2006-01-02", m[1]); err == nil {
			when = &d
		}
	}

	for _, match := range txnPattern.FindAllStringSubmatch(text, -1) {
		keyword := strings.ToLower(match[1])
		currency := strings.ToUpper(match[2])
		amountStr := strings.ReplaceAll(match[3], ",", "")
		merchant := strings.TrimSpace(match[4])

		amount, err := decimal.NewFromString(amountStr)
		if err != nil || !amount.IsPositive() {
			continue
		}
		if currency == "" {
			currency = "SAR"
		}

		var kind Kind
		switch keyword {
		case "purchase", "pos", "debited":
			kind = KindPurchase
		case "withdrawal", "atm":
			kind = KindWithdrawal
		case "credited", "deposit", "salary":
			kind = KindDeposit
		default:
			kind = KindTransfer
		}

		results = append(results, Transaction{
			Kind:     kind,
			Amount:   amount,
			Currency: currency,
			Merchant: merchant,
			Date:     when,
		})
	}

	return results, nil
}
