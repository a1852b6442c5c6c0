package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wafirapp/wafir-backend/models"
)

func ListAdvisors() gin.HandlerFunc {
	return func(c *gin.Context) {
		advisors, err := models.ListAdvisors(c.Request.Context())
		if err != nil {
			writeModelError(c, "advisor.go", "ListAdvisors", err)
			return
		}
		c.JSON(http.StatusOK, advisors)
	}
}

func CreateAdvisorRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewAdvisorRequest
		if !bindJSON(c, &input) {
			return
		}
		request, err := models.CreateAdvisorRequest(c.Request.Context(), &input)
		if err != nil {
			writeModelError(c, "advisor.go", "CreateAdvisorRequest", err)
			return
		}
		c.JSON(http.StatusCreated, request)
	}
}

type advisorResponse struct {
	Accept bool `json:"accept"`
}

func RespondAdvisorRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input advisorResponse
		if !bindJSON(c, &input) {
			return
		}
		request, err := models.RespondAdvisorRequest(c.Request.Context(), id, input.Accept)
		if err != nil {
			writeModelError(c, "advisor.go", "RespondAdvisorRequest", err)
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

func GetAdvisorRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := models.GetAdvisorRequests(c.Request.Context())
		if err != nil {
			writeModelError(c, "advisor.go", "GetAdvisorRequests", err)
			return
		}
		c.JSON(http.StatusOK, requests)
	}
}

func SendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMessage
		if !bindJSON(c, &input) {
			return
		}
		message, err := models.SendMessage(c.Request.Context(), &input)
		if err != nil {
			writeModelError(c, "advisor.go", "SendMessage", err)
			return
		}
		c.JSON(http.StatusCreated, message)
	}
}

func GetConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		otherId, ok := idParam(c)
		if !ok {
			return
		}
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}
		messages, err := models.GetConversation(c.Request.Context(), otherId, limit)
		if err != nil {
			writeModelError(c, "advisor.go", "GetConversation", err)
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}
