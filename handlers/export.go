package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wafirapp/wafir-backend/models"
	"github.com/wafirapp/wafir-backend/utils"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportInvestments writes the caller's portfolio as a spreadsheet.
// Pass ?format=csv for plain CSV, anything else yields xlsx.
func ExportInvestments() gin.HandlerFunc {
	return func(c *gin.Context) {
		investments, err := models.GetInvestments(c.Request.Context())
		if err != nil {
			writeModelError(c, "export.go", "ExportInvestments", err)
			return
		}

		if c.Query("format") == "csv" {
			filename := utils.GenerateUniqueFilename("investments", "csv")
			c.Header("Content-Type", "text/csv")
			c.Header("Content-Disposition", "attachment; filename="+filename)
			w := csv.NewWriter(c.Writer)
			w.Write([]string{"Name", "Category", "AmountOwned", "BuyPrice", "CurrentPrice", "CurrentValue", "PurchaseDate"})
			for _, inv := range investments {
				w.Write([]string{
					inv.Name,
					string(inv.Category),
					inv.AmountOwned.String(),
					inv.BuyPrice.String(),
					inv.CurrentPrice.String(),
					inv.CurrentValue().String(),
					formatDate(inv.PurchaseDate),
				})
			}
			w.Flush()
			return
		}

		f := excelize.NewFile()
		sheet := "Sheet1"

		headings := []string{"Name", "Category", "AmountOwned", "BuyPrice", "CurrentPrice", "CurrentValue", "PurchaseDate"}
		for i, h := range headings {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}
		for row, inv := range investments {
			f.SetCellValue(sheet, "A"+fmt.Sprint(row+2), inv.Name)
			f.SetCellValue(sheet, "B"+fmt.Sprint(row+2), string(inv.Category))
			f.SetCellValue(sheet, "C"+fmt.Sprint(row+2), inv.AmountOwned.InexactFloat64())
			f.SetCellValue(sheet, "D"+fmt.Sprint(row+2), inv.BuyPrice.InexactFloat64())
			f.SetCellValue(sheet, "E"+fmt.Sprint(row+2), inv.CurrentPrice.InexactFloat64())
			f.SetCellValue(sheet, "F"+fmt.Sprint(row+2), inv.CurrentValue().InexactFloat64())
			f.SetCellValue(sheet, "G"+fmt.Sprint(row+2), formatDate(inv.PurchaseDate))
		}

		filename := utils.GenerateUniqueFilename("investments", "xlsx")
		c.Header("Content-Type", xlsxContentType)
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
		}
	}
}

// ExportExpenses mirrors ExportInvestments for the expense ledger.
func ExportExpenses() gin.HandlerFunc {
	return func(c *gin.Context) {
		expenses, err := models.GetExpenses(c.Request.Context())
		if err != nil {
			writeModelError(c, "export.go", "ExportExpenses", err)
			return
		}

		if c.Query("format") == "csv" {
			filename := utils.GenerateUniqueFilename("expenses", "csv")
			c.Header("Content-Type", "text/csv")
			c.Header("Content-Disposition", "attachment; filename="+filename)
			w := csv.NewWriter(c.Writer)
			w.Write([]string{"Description", "Category", "Amount", "SpentAt"})
			for _, e := range expenses {
				w.Write([]string{
					e.Description,
					e.Category,
					e.Amount.String(),
					e.SpentAt.Format("2006-01-02"),
				})
			}
			w.Flush()
			return
		}

		f := excelize.NewFile()
		sheet := "Sheet1"

		headings := []string{"Description", "Category", "Amount", "SpentAt"}
		for i, h := range headings {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}
		for row, e := range expenses {
			f.SetCellValue(sheet, "A"+fmt.Sprint(row+2), e.Description)
			f.SetCellValue(sheet, "B"+fmt.Sprint(row+2), e.Category)
			f.SetCellValue(sheet, "C"+fmt.Sprint(row+2), e.Amount.InexactFloat64())
			f.SetCellValue(sheet, "D"+fmt.Sprint(row+2), e.SpentAt.Format("2006-01-02"))
		}

		filename := utils.GenerateUniqueFilename("expenses", "xlsx")
		c.Header("Content-Type", xlsxContentType)
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
		}
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
