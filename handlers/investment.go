package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wafirapp/wafir-backend/models"
)

func ListInvestments() gin.HandlerFunc {
	return func(c *gin.Context) {
		investments, err := models.GetInvestments(c.Request.Context())
		if err != nil {
			writeModelError(c, "investment.go", "ListInvestments", err)
			return
		}
		c.JSON(http.StatusOK, investments)
	}
}

func CreateInvestment() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInvestment
		if !bindJSON(c, &input) {
			return
		}
		investment, err := models.CreateInvestment(c.Request.Context(), &input)
		if err != nil {
			writeModelError(c, "investment.go", "CreateInvestment", err)
			return
		}
		c.JSON(http.StatusCreated, investment)
	}
}

func UpdateInvestment() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewInvestment
		if !bindJSON(c, &input) {
			return
		}
		investment, err := models.UpdateInvestment(c.Request.Context(), id, &input)
		if err != nil {
			writeModelError(c, "investment.go", "UpdateInvestment", err)
			return
		}
		c.JSON(http.StatusOK, investment)
	}
}

func DeleteInvestment() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		investment, err := models.DeleteInvestment(c.Request.Context(), id)
		if err != nil {
			writeModelError(c, "investment.go", "DeleteInvestment", err)
			return
		}
		c.JSON(http.StatusOK, investment)
	}
}
