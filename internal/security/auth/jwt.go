package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
)

// Claims are the token payload: who the caller is and what role they hold.
type Claims struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
	Phone  string      `json:"phone"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256-signed tokens
type TokenManager struct {
	secret    []byte
	issuer    string
	expiresIn time.Duration
}

// NewTokenManager creates a token manager
func NewTokenManager(secret string, expiresIn time.Duration) *TokenManager {
	if expiresIn <= 0 {
		expiresIn = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:    []byte(secret),
		issuer:    "smartrent360",
		expiresIn: expiresIn,
	}
}

// ExpiresIn returns the configured token lifetime.
func (tm *TokenManager) ExpiresIn() time.Duration {
	return tm.expiresIn
}

// GenerateToken signs a token embedding {userId, role, phone}.
func (tm *TokenManager) GenerateToken(userID string, role domain.Role, phone string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id required")
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Phone:  phone,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiresIn)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// ValidateToken parses and verifies a token, returning its claims.
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
