// mockbank is a standalone server simulating a retail bank feed: accounts,
// a rolling transaction history and the notification SMS text the bank would
// send for each transaction. The backend treats it as an opaque provider;
// its SMS output is what /api/expenses/import-sms parses.
//
// Usage:
//
//	MOCKBANK_PORT=8090 go run ./cmd/mockbank
package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const defaultPort = "8090"

type account struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

type transaction struct {
	ID       int             `json:"id"`
	Account  string          `json:"account"`
	Kind     string          `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
	Merchant string          `json:"merchant"`
	Date     string          `json:"date"`
}

var merchants = []string{
	"STARBUCKS RIYADH", "PANDA HYPERMARKET", "JARIR BOOKSTORE",
	"ALBAIK JEDDAH", "EXTRA STORES", "CAREEM", "STC PAY",
}

// bank holds the simulated state. A ticker appends a random transaction
// every few seconds so repeated polls see fresh data.
type bank struct {
	mu           sync.Mutex
	rnd          *rand.Rand
	accounts     []account
	transactions []transaction
	nextID       int
}

func newBank() *bank {
	b := &bank{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		accounts: []account{
			{ID: "SA4420000001234567891234", Name: "Current Account", Currency: "SAR", Balance: decimal.NewFromInt(15230)},
			{ID: "SA4420000009876543210987", Name: "Savings Account", Currency: "SAR", Balance: decimal.NewFromInt(82000)},
		},
		nextID: 1,
	}
	for i := 0; i < 10; i++ {
		b.appendRandomTransaction()
	}
	return b
}

func (b *bank) appendRandomTransaction() {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct := b.accounts[b.rnd.Intn(len(b.accounts))]
	amount := decimal.NewFromInt(int64(5 + b.rnd.Intn(900))).Add(decimal.NewFromInt(int64(b.rnd.Intn(100))).Div(decimal.NewFromInt(100)))
	kind := "purchase"
	merchant := merchants[b.rnd.Intn(len(merchants))]
	switch b.rnd.Intn(5) {
	case 3:
		kind = "withdrawal"
		merchant = ""
	case 4:
		kind = "deposit"
		merchant = ""
	}

	txn := transaction{
		ID:       b.nextID,
		Account:  acct.ID,
		Kind:     kind,
		Amount:   amount,
		Merchant: merchant,
		Date:     time.Now().Format("2006-01-02"),
	}
	b.nextID++
	b.transactions = append(b.transactions, txn)
	if len(b.transactions) > 100 {
		b.transactions = b.transactions[len(b.transactions)-100:]
	}
}

// sms renders a transaction as the notification text a Saudi bank would send.
func sms(t transaction) string {
	switch t.Kind {
	case "withdrawal":
		return fmt.Sprintf("ATM withdrawal SAR %s on %s from acct %s", t.Amount, t.Date, t.Account[len(t.Account)-4:])
	case "deposit":
		return fmt.Sprintf("Deposit of SAR %s on %s to acct %s", t.Amount, t.Date, t.Account[len(t.Account)-4:])
	default:
		return fmt.Sprintf("Purchase of SAR %s at %s on %s, acct %s", t.Amount, t.Merchant, t.Date, t.Account[len(t.Account)-4:])
	}
}

func main() {
	port := os.Getenv("MOCKBANK_PORT")
	if port == "" {
		port = defaultPort
	}

	b := newBank()
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			b.appendRandomTransaction()
		}
	}()

	r := gin.Default()

	r.GET("/accounts", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		c.JSON(http.StatusOK, b.accounts)
	})

	r.GET("/accounts/:id/transactions", func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		var out []transaction
		for i := len(b.transactions) - 1; i >= 0 && len(out) < limit; i-- {
			if b.transactions[i].Account == c.Param("id") {
				out = append(out, b.transactions[i])
			}
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/sms", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if len(b.transactions) == 0 {
			c.JSON(http.StatusOK, gin.H{"messages": []string{}})
			return
		}
		var messages []string
		for i := len(b.transactions) - 1; i >= 0 && len(messages) < 5; i-- {
			messages = append(messages, sms(b.transactions[i]))
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages})
	})

	if err := r.Run(":" + port); err != nil {
		fmt.Fprintf(os.Stderr, "mockbank stopped: %v\n", err)
		os.Exit(1)
	}
}
