package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wafirapp/wafir-backend/models"
	"github.com/wafirapp/wafir-backend/smsparser"
	"github.com/wafirapp/wafir-backend/utils"
)

func ListExpenses() gin.HandlerFunc {
	return func(c *gin.Context) {
		expenses, err := models.GetExpenses(c.Request.Context())
		if err != nil {
			writeModelError(c, "expense.go", "ListExpenses", err)
			return
		}
		c.JSON(http.StatusOK, expenses)
	}
}

func CreateExpense() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewExpense
		if !bindJSON(c, &input) {
			return
		}
		expense, err := models.CreateExpense(c.Request.Context(), &input)
		if err != nil {
			writeModelError(c, "expense.go", "CreateExpense", err)
			return
		}
		c.JSON(http.StatusCreated, expense)
	}
}

func UpdateExpense() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewExpense
		if !bindJSON(c, &input) {
			return
		}
		expense, err := models.UpdateExpense(c.Request.Context(), id, &input)
		if err != nil {
			writeModelError(c, "expense.go", "UpdateExpense", err)
			return
		}
		c.JSON(http.StatusOK, expense)
	}
}

func DeleteExpense() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		expense, err := models.DeleteExpense(c.Request.Context(), id)
		if err != nil {
			writeModelError(c, "expense.go", "DeleteExpense", err)
			return
		}
		c.JSON(http.StatusOK, expense)
	}
}

type smsImportInput struct {
	Text string `json:"text" binding:"required"`
}

// ImportExpensesFromSMS parses a bank SMS body and records an expense for
// every purchase or withdrawal found. Deposits and transfers are reported
// back but not recorded.
func ImportExpensesFromSMS() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := currentUserId(c)
		if !ok {
			return
		}
		var input smsImportInput
		if !bindJSON(c, &input) {
			return
		}

		// Serialize imports per user so a double-submitted SMS body cannot
		// record the same expenses twice.
		lock, err := utils.UserLock(c.Request.Context(), userId, "SmsImport", "expense.go", "ImportExpensesFromSMS")
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if lock != nil {
			defer lock.Release(c.Request.Context())
		}

		transactions, err := smsparser.Parse(input.Text)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var created []models.Expense
		var skipped int
		for _, txn := range transactions {
			if !txn.IsExpense() {
				skipped++
				continue
			}
			description := txn.Merchant
			if description == "" {
				description = string(txn.Kind)
			}
			spentAt := txn.Date
			if spentAt == nil {
				now := time.Now()
				spentAt = &now
			}
			expense, err := models.CreateExpense(c.Request.Context(), &models.NewExpense{
				Description: description,
				Category:    string(txn.Kind),
				Amount:      txn.Amount,
				SpentAt:     spentAt,
			})
			if err != nil {
				writeModelError(c, "expense.go", "ImportExpensesFromSMS", err)
				return
			}
			created = append(created, *expense)
		}

		c.JSON(http.StatusOK, gin.H{
			"created": created,
			"skipped": skipped,
			"parsed":  len(transactions),
		})
	}
}
