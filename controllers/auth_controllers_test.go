package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/controllers"
	"github.com/yeremiapane/queue-app/utils"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthRouter(ac *controllers.AuthController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/login", ac.Login)
	return router
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("counter-1"), bcrypt.MinCost)
	require.NoError(t, err)

	secret := "test-secret"
	ac := controllers.NewAuthController(true, string(hash), secret, time.Hour)
	router := setupAuthRouter(ac)

	w, resp := performRequest(t, router, "POST", "/api/auth/login", map[string]string{"password": "counter-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	token, ok := resp["token"].(string)
	require.True(t, ok)
	claims, err := utils.ParseStaffToken([]byte(secret), token)
	require.NoError(t, err)
	assert.Equal(t, "staff", claims.Role)

	w, resp = performRequest(t, router, "POST", "/api/auth/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", resp["error"])

	w, _ = performRequest(t, router, "POST", "/api/auth/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginDisabled(t *testing.T) {
	ac := controllers.NewAuthController(false, "", "", time.Hour)
	router := setupAuthRouter(ac)

	w, resp := performRequest(t, router, "POST", "/api/auth/login", map[string]string{"password": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Staff authentication is disabled", resp["error"])
}
