package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers every verification failure: bad signature, expired,
// malformed, wrong token type, or revoked. Callers get no finer detail.
var ErrInvalidToken = errors.New("token is invalid or expired")

// Claims embeds the registered JWT claims and tags the token with its type
// so refresh tokens cannot authorize requests and access tokens cannot be
// exchanged for new pairs.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// signToken mints an HS256 token for the user with a fresh jti.
func signToken(userID, tokenType string, secret []byte, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// parseToken verifies signature and expiry and returns the claims.
func parseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
