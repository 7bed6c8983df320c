// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, JWT signing)
// from the domain logic. Domain services consume it through small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/vidly/pkg/uuid"
)

// ErrTokenInvalid is returned when a token fails signature, format or expiry checks.
var ErrTokenInvalid = errors.New("sec: token invalid")

// Audience values bind each token kind to its own secret.
const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// # Claims

// Identity is the account data embedded in an access token.
type Identity struct {
	ID       string
	Email    string
	Username string
	FullName string
}

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID   string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// RefreshClaims is the payload of a refresh token. It carries the account id only.
type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"_id"`
}

// # Token Issuer

// TokenConfig configures the two independent signing keys and lifetimes.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenIssuer mints and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenIssuer validates the configuration and returns a [TokenIssuer].
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("sec: token secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("sec: token lifetimes must be positive")
	}

	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		accessTTL:     cfg.AccessTTL,
		refreshSecret: []byte(cfg.RefreshSecret),
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}, nil
}

// WithClock returns a copy of the issuer that reads time from now.
func (issuer *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	clone := *issuer
	clone.now = now
	return &clone
}

// AccessTTL reports the configured access token lifetime.
func (issuer *TokenIssuer) AccessTTL() time.Duration { return issuer.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (issuer *TokenIssuer) RefreshTTL() time.Duration { return issuer.refreshTTL }

// IssueAccessToken signs {id, email, username, fullName} with the access secret.
func (issuer *TokenIssuer) IssueAccessToken(identity Identity) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: issuer.registered(identity.ID, audienceAccess, issuer.accessTTL),
		UserID:           identity.ID,
		Email:            identity.Email,
		Username:         identity.Username,
		FullName:         identity.FullName,
	}
	return sign(claims, issuer.accessSecret)
}

// IssueRefreshToken signs {id} with the refresh secret.
func (issuer *TokenIssuer) IssueRefreshToken(userID string) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: issuer.registered(userID, audienceRefresh, issuer.refreshTTL),
		UserID:           userID,
	}
	return sign(claims, issuer.refreshSecret)
}

// VerifyAccessToken checks an access token against the access secret.
func (issuer *TokenIssuer) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := issuer.verify(tokenString, issuer.accessSecret, audienceAccess, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing account id", ErrTokenInvalid)
	}
	return claims, nil
}

// VerifyRefreshToken checks a refresh token against the refresh secret.
func (issuer *TokenIssuer) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := issuer.verify(tokenString, issuer.refreshSecret, audienceRefresh, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing account id", ErrTokenInvalid)
	}
	return claims, nil
}

// registered builds the standard claims. The random jti keeps two tokens minted
// within the same second distinct.
func (issuer *TokenIssuer) registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	currentTime := issuer.now()
	return jwt.RegisteredClaims{
		ID:        uuid.New(),
		Subject:   subject,
		Issuer:    issuer.issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(ttl)),
	}
}

func (issuer *TokenIssuer) verify(tokenString string, secret []byte, audience string, claims jwt.Claims) error {
	if tokenString == "" {
		return fmt.Errorf("%w: empty token", ErrTokenInvalid)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(issuer.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}
