package tokenizer

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/signet-labs/signet/core"
	"github.com/signet-labs/signet/ports"
)

const (
	AudienceAccess  = "signet:access"
	AudienceRefresh = "signet:refresh"
)

// JWTTokenizer signs HS256 tokens with distinct secrets for access and
// refresh tokens, so a leaked access secret cannot forge refresh tokens.
type JWTTokenizer struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewJWTTokenizer creates a tokenizer from the two signing secrets.
func NewJWTTokenizer(accessSecret, refreshSecret []byte) ports.Tokenizer {
	return &JWTTokenizer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
	}
}

// SessionToAccessToken mints the short-lived access token for a session.
func (j *JWTTokenizer) SessionToAccessToken(session *core.Session) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(session.AccessExpiry),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
		Wallet:    session.WalletAddress,
		Chain:     session.Chain.String(),
		RefreshID: session.RefreshID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// SessionToRefreshToken mints the long-lived refresh token for a session.
// The JWT ID is the session's RefreshID, which the revocation store keys on.
func (j *JWTTokenizer) SessionToRefreshToken(session *core.Session) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			ID:        session.RefreshID,
			ExpiresAt: jwt.NewNumericDate(session.RefreshExpiry),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceRefresh},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// AccessTokenToSession parses and validates an access token.
func (j *JWTTokenizer) AccessTokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, j.keyFunc(j.accessSecret),
		jwt.WithAudience(AudienceAccess))
	if err != nil {
		return nil, mapParseError(err)
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	chain, err := core.ParseChainType(claims.Chain)
	if err != nil {
		return nil, core.ErrInvalidToken
	}

	return &core.Session{
		UserID:        claims.Subject,
		WalletAddress: claims.Wallet,
		Chain:         chain,
		RefreshID:     claims.RefreshID,
		IssuedAt:      claims.IssuedAt.Time,
		AccessExpiry:  claims.ExpiresAt.Time,
	}, nil
}

// RefreshTokenToSession parses and validates a refresh token. Only the user
// ID and rotation key are recoverable; wallet binding is re-resolved from
// storage on refresh.
func (j *JWTTokenizer) RefreshTokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &RefreshClaims{}, j.keyFunc(j.refreshSecret),
		jwt.WithAudience(AudienceRefresh))
	if err != nil {
		return nil, mapParseError(err)
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	return &core.Session{
		UserID:        claims.Subject,
		RefreshID:     claims.ID,
		IssuedAt:      claims.IssuedAt.Time,
		RefreshExpiry: claims.ExpiresAt.Time,
	}, nil
}

func (j *JWTTokenizer) keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		// Reject algorithm-confusion attempts up front.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}
}

func mapParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return core.ErrTokenExpired
	}
	return fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
}
