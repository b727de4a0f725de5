package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/internal/utils"
)

// AuthHTTPHandler issues operator tokens for the protected (mutating)
// routes. Token issuance checks the shared operator key from config.
type AuthHTTPHandler struct {
	jwtSecret   string
	operatorKey string
	tokenTTL    time.Duration
}

func NewAuthHTTPHandler(jwtSecret, operatorKey string, tokenTTL time.Duration) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		jwtSecret:   jwtSecret,
		operatorKey: operatorKey,
		tokenTTL:    tokenTTL,
	}
}

type issueTokenRequest struct {
	Operator string `json:"operator"`
	Key      string `json:"key"`
}

func (s *AuthHTTPHandler) IssueToken(c *gin.Context) {
	if s.jwtSecret == "" || s.operatorKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Token issuance is not configured",
		})
		return
	}

	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	operator := strings.TrimSpace(req.Operator)
	if operator == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Operator name is required",
		})
		return
	}
	if req.Key != s.operatorKey {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid operator key",
		})
		return
	}

	token, expiresAt, err := utils.GenerateToken([]byte(s.jwtSecret), operator, s.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token":      token,
			"expires_at": expiresAt,
		},
	})
}
