package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errStaffAuthDisabled  = errors.New("Staff authentication is disabled")
)

// AuthController issues staff tokens for the dashboard. There is a single
// shared staff password, stored only as a bcrypt hash.
type AuthController struct {
	Enabled      bool
	PasswordHash []byte
	Secret       []byte
	TTL          time.Duration
}

func NewAuthController(enabled bool, passwordHash, secret string, ttl time.Duration) *AuthController {
	return &AuthController{
		Enabled:      enabled,
		PasswordHash: []byte(passwordHash),
		Secret:       []byte(secret),
		TTL:          ttl,
	}
}

// Login -> POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	if !ac.Enabled {
		utils.RespondError(c, http.StatusNotFound, errStaffAuthDisabled)
		return
	}

	var input struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	if err := bcrypt.CompareHashAndPassword(ac.PasswordHash, []byte(input.Password)); err != nil {
		utils.InfoLogger.WithField("client", c.ClientIP()).Warn("Rejected staff login")
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	token, expiresAt, err := utils.GenerateStaffToken(ac.Secret, ac.TTL)
	if err != nil {
		respondInternal(c, "generate staff token", err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}
