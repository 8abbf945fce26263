package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskflow/accounts/internal/config"
	"github.com/taskflow/accounts/internal/identity"
)

const denylistPrefix = "denylist:v1:"

// Service issues and refreshes token pairs and maintains the refresh-token
// denylist. The cache may be nil in development, in which case logout is a
// no-op and revocation is not enforced.
type Service struct {
	cfg   config.Config
	repo  identity.Repository
	cache *redis.Client
}

// NewService creates the token service.
func NewService(cfg config.Config, repo identity.Repository, cache *redis.Client) *Service {
	return &Service{cfg: cfg, repo: repo, cache: cache}
}

// TokenPair is the credential pair handed to the client on registration and
// login. The server retains no session state beyond the denylist.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	ExpiresIn    int64  `json:"expires_in"`
}

// IssuePair mints a fresh access/refresh pair for the user.
func (s *Service) IssuePair(user identity.User) (TokenPair, error) {
	access, accessClaims, err := signToken(user.ID, tokenTypeAccess, []byte(s.cfg.JWTSecret), s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := signToken(user.ID, tokenTypeRefresh, []byte(s.cfg.JWTSecret), s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessClaims.ExpiresAt.Time).Seconds()),
	}, nil
}

// Refresh verifies the refresh token and issues a new access token. The
// token must be a refresh token, not denylisted, and its subject must still
// resolve to an active account.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := parseToken(refreshToken, []byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, ErrInvalidToken
	}
	if claims.TokenType != tokenTypeRefresh {
		return "", 0, ErrInvalidToken
	}

	if s.cache != nil {
		revoked, err := s.cache.Exists(ctx, denylistPrefix+claims.ID).Result()
		if err != nil {
			// Fail closed: without the denylist we cannot trust the token.
			return "", 0, fmt.Errorf("denylist lookup: %w", err)
		}
		if revoked > 0 {
			return "", 0, ErrInvalidToken
		}
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return "", 0, ErrInvalidToken
		}
		return "", 0, err
	}
	if !user.IsActive {
		return "", 0, ErrInvalidToken
	}

	access, _, err := signToken(user.ID, tokenTypeAccess, []byte(s.cfg.JWTSecret), s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Logout denylists the refresh token for its remaining lifetime so it can
// no longer be exchanged for access tokens.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := parseToken(refreshToken, []byte(s.cfg.JWTSecret))
	if err != nil {
		return ErrInvalidToken
	}
	if claims.TokenType != tokenTypeRefresh {
		return ErrInvalidToken
	}
	if s.cache == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, denylistPrefix+claims.ID, "revoked", ttl).Err()
}

// VerifyAccess validates a bearer access token and returns its claims. Used
// by the authentication middleware.
func VerifyAccess(tokenString string, secret []byte) (*Claims, error) {
	claims, err := parseToken(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
