package handlers

import (
	"net/http"
	"time"

	"github.com/mepla/Enchilada/internal/middleware"

	"github.com/gin-gonic/gin"
)

// TokenInfo handles GET /tokeninfo and describes the caller's own token.
func TokenInfo(c *gin.Context) {
	result, ok := middleware.GateResultFrom(c)
	if !ok {
		respondInternalError(c)
		return
	}

	tok := result.Token
	remaining := int64(time.Until(tok.ExpiresAt) / time.Second)
	if remaining < 0 {
		remaining = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":        result.UID,
		"client_id":  tok.ClientID,
		"scope":      tok.Scope,
		"token_type": tok.TokenType,
		"issue_date": tok.IssueDate,
		"expires_in": remaining,
		"lifetime":   tok.ExpiresIn,
	})
}
