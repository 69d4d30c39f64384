package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	purposeAccess       = "access"
	purposeConfirmation = "confirmation"
)

// Claims carried by every token the service issues.
type Claims struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// GenerateAccessToken issues a signed access token and returns its expiry.
func GenerateAccessToken(userID uint, email, role, secret string, expiry time.Duration) (string, time.Time, error) {
	return sign(Claims{UserID: userID, Email: email, Role: role, Purpose: purposeAccess}, secret, expiry)
}

// GenerateConfirmationToken issues the token mailed in the signup confirmation link.
func GenerateConfirmationToken(userID uint, email, secret string, expiry time.Duration) (string, error) {
	token, _, err := sign(Claims{UserID: userID, Email: email, Purpose: purposeConfirmation}, secret, expiry)
	return token, err
}

// ValidateToken parses an access token.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	return parse(tokenString, secret, purposeAccess)
}

// ValidateConfirmationToken parses a signup confirmation token.
func ValidateConfirmationToken(tokenString, secret string) (*Claims, error) {
	return parse(tokenString, secret, purposeConfirmation)
}

func sign(claims Claims, secret string, expiry time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expiry)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", claims.UserID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func parse(tokenString, secret, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
