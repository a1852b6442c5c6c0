package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wafirapp/wafir-backend/models"
)

func Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if !bindJSON(c, &input) {
			return
		}
		user, err := models.RegisterUser(c.Request.Context(), &input)
		if err != nil {
			writeModelError(c, "auth.go", "Register", err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.Credentials
		if !bindJSON(c, &input) {
			return
		}
		info, err := models.Login(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := models.Logout(c.Request.Context()); err != nil {
			writeModelError(c, "auth.go", "Logout", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// DeactivateUser disables an account and kills its sessions. Admin only,
// enforced at the route.
func DeactivateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		user, err := models.DeactivateUser(c.Request.Context(), id)
		if err != nil {
			writeModelError(c, "auth.go", "DeactivateUser", err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := currentUserId(c)
		if !ok {
			return
		}
		user, err := models.GetUserByID(c.Request.Context(), userId)
		if err != nil {
			writeModelError(c, "auth.go", "Me", err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
