package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wafirapp/wafir-backend/models"
)

func ListBudgets() gin.HandlerFunc {
	return func(c *gin.Context) {
		budgets, err := models.GetBudgetsWithStats(c.Request.Context(), time.Now())
		if err != nil {
			writeModelError(c, "budget.go", "ListBudgets", err)
			return
		}
		c.JSON(http.StatusOK, budgets)
	}
}

func CreateBudget() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewBudget
		if !bindJSON(c, &input) {
			return
		}
		budget, err := models.CreateBudget(c.Request.Context(), &input)
		if err != nil {
			writeModelError(c, "budget.go", "CreateBudget", err)
			return
		}
		c.JSON(http.StatusCreated, budget)
	}
}

func UpdateBudget() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewBudget
		if !bindJSON(c, &input) {
			return
		}
		budget, err := models.UpdateBudget(c.Request.Context(), id, &input)
		if err != nil {
			writeModelError(c, "budget.go", "UpdateBudget", err)
			return
		}
		c.JSON(http.StatusOK, budget)
	}
}

func DeleteBudget() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		budget, err := models.DeleteBudget(c.Request.Context(), id)
		if err != nil {
			writeModelError(c, "budget.go", "DeleteBudget", err)
			return
		}
		c.JSON(http.StatusOK, budget)
	}
}
