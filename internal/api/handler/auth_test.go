package handler

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTenantToken(t *testing.T, secret, tenantID string, expiresAt time.Time) string {
	t.Helper()
	claims := TenantClaims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTenantAuth_ValidateToken_Valid(t *testing.T) {
	secret := "shared-secret"
	auth := NewTenantAuth(secret)
	token := signTenantToken(t, secret, "tenant-42", time.Now().Add(time.Hour))

	tenantID, err := auth.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, "tenant-42", tenantID)
}

func TestTenantAuth_ValidateToken_WrongSecret(t *testing.T) {
	auth := NewTenantAuth("correct-secret")
	token := signTenantToken(t, "wrong-secret", "tenant-42", time.Now().Add(time.Hour))

	_, err := auth.ValidateToken(token)

	assert.Error(t, err)
}

func TestTenantAuth_ValidateToken_Expired(t *testing.T) {
	secret := "shared-secret"
	auth := NewTenantAuth(secret)
	token := signTenantToken(t, secret, "tenant-42", time.Now().Add(-time.Hour))

	_, err := auth.ValidateToken(token)

	assert.Error(t, err)
}

func TestTenantAuth_ValidateToken_EmptySecretConfigured(t *testing.T) {
	auth := NewTenantAuth("")

	_, err := auth.ValidateToken("anything")

	assert.Error(t, err)
}

func TestTenantAuth_ValidateToken_MissingTenantID(t *testing.T) {
	secret := "shared-secret"
	auth := NewTenantAuth(secret)
	token := signTenantToken(t, secret, "", time.Now().Add(time.Hour))

	_, err := auth.ValidateToken(token)

	assert.Error(t, err)
}
