package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const msgInternalError = "Internal server error"

// clientCredentials reads client_id:client_secret from Basic auth.
func clientCredentials(c *gin.Context) (string, string, bool) {
	id, secret, ok := c.Request.BasicAuth()
	if !ok || id == "" {
		return "", "", false
	}
	return id, secret, true
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

func respondInternalError(c *gin.Context) {
	respondMessage(c, http.StatusInternalServerError, msgInternalError)
}
