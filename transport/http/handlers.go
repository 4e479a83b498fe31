package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/signet-labs/signet/core"
	"github.com/signet-labs/signet/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints.
type AuthHandlers struct {
	authService *service.AuthService
	log         logrus.FieldLogger
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService, log logrus.FieldLogger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		log:         log,
	}
}

// LoginMessage returns the challenge message to sign for a wallet.
func (h *AuthHandlers) LoginMessage(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
		ChainType     string `json:"chainType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	chain, err := core.ParseChainType(req.ChainType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported chain type"})
		return
	}

	challenge, err := h.authService.Challenge(req.WalletAddress, chain)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   challenge.Message,
		"timestamp": challenge.Timestamp,
	})
}

// Login verifies a signed challenge and returns a token pair.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
		Message       string `json:"message" binding:"required"`
		Timestamp     int64  `json:"timestamp" binding:"required"`
		ChainType     string `json:"chainType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	chain, err := core.ParseChainType(req.ChainType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported chain type"})
		return
	}

	pair, user, err := h.authService.Login(c.Request.Context(), chain, service.LoginInput{
		Address:   req.WalletAddress,
		Signature: req.Signature,
		Message:   req.Message,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user":         user,
		"tokenType":    "Bearer",
		"expiresIn":    int(h.authService.AccessTTL().Seconds()),
	})
}

// Refresh rotates a refresh token and returns a new pair.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    int(h.authService.AccessTTL().Seconds()),
	})
}

// Logout invalidates a refresh token.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		// An already-expired token still counts as logged out.
		if errors.Is(err, core.ErrTokenExpired) {
			c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user and their session's wallet binding.
func (h *AuthHandlers) Me(c *gin.Context) {
	session := sessionFromContext(c)
	user := userFromContext(c)
	if session == nil || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"walletAddress": session.WalletAddress,
		"chainType":     session.Chain.String(),
	})
}

// writeError is the single place translating error kinds into statuses.
// Auth failures get one generic message so responses never reveal why a
// signature or token was rejected.
func (h *AuthHandlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrUnsupportedChain):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported chain type"})
	case errors.Is(err, core.ErrInvalidChallenge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid challenge"})
	case errors.Is(err, core.ErrChallengeExpired),
		errors.Is(err, core.ErrInvalidSignature),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrTokenExpired),
		errors.Is(err, core.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
	case errors.Is(err, core.ErrUserNotFound), errors.Is(err, core.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		h.log.WithError(err).Error("Internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
