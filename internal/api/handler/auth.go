// Package handler provides HTTP handlers for the API.
package handler

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TenantClaims is the JWT payload the control API expects. Tokens are
// minted outside this service (the login/session surface is an external
// collaborator, spec §1) and carry the tenant they authenticate.
type TenantClaims struct {
	TenantID string `json:"tenantId"`
	jwt.RegisteredClaims
}

// TenantAuth validates externally-issued bearer tokens against a shared
// HMAC secret and implements middleware.TokenValidator. There is no
// corresponding login handler here — this package only verifies tokens
// someone else issued.
type TenantAuth struct {
	jwtSecret string
}

// NewTenantAuth builds a TenantAuth over the control API's configured JWT
// secret.
func NewTenantAuth(jwtSecret string) *TenantAuth {
	return &TenantAuth{jwtSecret: jwtSecret}
}

// ValidateToken implements middleware.TokenValidator, returning the tenant
// id carried in the token's claims.
func (a *TenantAuth) ValidateToken(tokenString string) (string, error) {
	if a.jwtSecret == "" {
		return "", fmt.Errorf("jwt secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &TenantClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(a.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*TenantClaims)
	if !ok || !token.Valid || claims.TenantID == "" {
		return "", jwt.ErrSignatureInvalid
	}

	return claims.TenantID, nil
}
