package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, expiresAt, err := GenerateStaffToken(secret, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ParseStaffToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, "QueueApp", claims.Issuer)
}

func TestStaffTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := GenerateStaffToken([]byte("a"), time.Hour)
	require.NoError(t, err)

	_, err = ParseStaffToken([]byte("b"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStaffTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, _, err := GenerateStaffToken(secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseStaffToken(secret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStaffTokenRejectsGarbage(t *testing.T) {
	_, err := ParseStaffToken([]byte("s"), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
