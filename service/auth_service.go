package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/signet-labs/signet/core"
	"github.com/signet-labs/signet/internal/verify"
	"github.com/signet-labs/signet/ports"
)

// Defaults; override with the setters on AuthService.
const (
	DefaultChallengeWindow = 5 * time.Minute
	DefaultAccessTTL       = 15 * time.Minute
	DefaultRefreshTTL      = 30 * 24 * time.Hour
)

// LoginInput is a signed challenge submitted for verification.
type LoginInput struct {
	Address   string
	Signature string
	Message   string
	Timestamp int64 // unix milliseconds, as returned by Challenge
}

// AuthService orchestrates challenge verification, user/wallet resolution
// and token issuance.
type AuthService struct {
	tokenizer ports.Tokenizer
	users     ports.UserStore
	tokens    ports.TokenStore
	events    ports.EventPublisher
	log       logrus.FieldLogger

	// challengeWindow bounds replay of a captured signature: challenges
	// older (or newer, for skewed clocks) than this are rejected. There is
	// no single-use nonce, so replay within the window is possible.
	challengeWindow time.Duration
	accessTTL       time.Duration
	refreshTTL      time.Duration
}

// NewAuthService creates a new authentication service. events may be nil for
// single-instance deployments.
func NewAuthService(
	tokenizer ports.Tokenizer,
	users ports.UserStore,
	tokens ports.TokenStore,
	events ports.EventPublisher,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		tokenizer:       tokenizer,
		users:           users,
		tokens:          tokens,
		events:          events,
		log:             log,
		challengeWindow: DefaultChallengeWindow,
		accessTTL:       DefaultAccessTTL,
		refreshTTL:      DefaultRefreshTTL,
	}
}

// SetTTLs overrides the default challenge window and token lifetimes.
func (s *AuthService) SetTTLs(challengeWindow, accessTTL, refreshTTL time.Duration) {
	s.challengeWindow = challengeWindow
	s.accessTTL = accessTTL
	s.refreshTTL = refreshTTL
}

// Challenge generates a sign-in challenge for the given wallet.
func (s *AuthService) Challenge(address string, chain core.ChainType) (*core.Challenge, error) {
	return core.NewChallenge(address, chain)
}

// Login verifies a signed challenge and issues a token pair, creating the
// user and wallet on first login. No side effects occur on any failure path.
func (s *AuthService) Login(ctx context.Context, chain core.ChainType, in LoginInput) (*core.TokenPair, *core.User, error) {
	if _, err := core.ParseChainType(chain.String()); err != nil {
		return nil, nil, err
	}

	// The submitted message must be the canonical rendering for this
	// address and timestamp; anything else never reaches the verifier.
	if in.Message != core.ChallengeMessage(in.Address, in.Timestamp) {
		return nil, nil, core.ErrInvalidChallenge
	}

	skew := time.Since(time.UnixMilli(in.Timestamp))
	if skew > s.challengeWindow || skew < -s.challengeWindow {
		return nil, nil, core.ErrChallengeExpired
	}

	if err := verify.Signature(chain, in.Address, in.Message, in.Signature); err != nil {
		return nil, nil, err
	}

	user, wallet, err := s.users.FindOrCreateByWallet(ctx, in.Address, chain)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.mintPair(user.ID, wallet.Address, wallet.Chain)
	if err != nil {
		return nil, nil, err
	}

	if s.events != nil {
		if err := s.events.PublishLogin(ctx, user.ID, wallet.Address, wallet.Chain); err != nil {
			s.log.WithError(err).Warn("Failed to publish login event")
		}
	}

	s.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"chain":   wallet.Chain.String(),
	}).Info("Wallet login")

	return pair, user, nil
}

// Refresh rotates a refresh token: the old token's JTI is revoked for its
// remaining lifetime and a brand-new pair is minted. Reuse of the old token
// fails with ErrTokenRevoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	session, err := s.tokenizer.RefreshTokenToSession(refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.tokens.IsRevoked(ctx, session.RefreshID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, core.ErrTokenRevoked
	}

	// The refresh token carries only the user ID; re-resolve the wallet
	// binding from storage.
	wallet, err := s.users.GetPrimaryWallet(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Revoke(ctx, session.RefreshID, time.Until(session.RefreshExpiry)); err != nil {
		return nil, err
	}

	return s.mintPair(session.UserID, wallet.Address, wallet.Chain)
}

// Logout revokes a refresh token. Expired tokens are still recorded for a
// short grace period so they cannot resurface on skewed clocks.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.tokenizer.RefreshTokenToSession(refreshToken)
	if err != nil {
		return err
	}

	ttl := time.Until(session.RefreshExpiry)
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := s.tokens.Revoke(ctx, session.RefreshID, ttl); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishLogout(ctx, session.UserID, session.RefreshID); err != nil {
			s.log.WithError(err).Warn("Failed to publish logout event")
		}
	}
	return nil
}

// ValidateAccessToken verifies an access token and enforces the claims
// invariant: the user must exist and the claimed wallet must belong to them.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Session, *core.User, error) {
	session, err := s.tokenizer.AccessTokenToSession(accessToken)
	if err != nil {
		return nil, nil, err
	}

	if session.RefreshID != "" {
		revoked, err := s.tokens.IsRevoked(ctx, session.RefreshID)
		if err != nil {
			return nil, nil, err
		}
		if revoked {
			return nil, nil, core.ErrTokenRevoked
		}
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}

	wallet, err := s.users.GetWallet(ctx, session.WalletAddress, session.Chain)
	if err != nil || wallet.UserID != user.ID {
		return nil, nil, fmt.Errorf("%w: wallet binding", core.ErrInvalidToken)
	}

	return session, user, nil
}

// GetUserByID is a pure lookup used by session introspection.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return s.users.GetUser(ctx, id)
}

// AccessTTL reports the configured access token lifetime.
func (s *AuthService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *AuthService) mintPair(userID, address string, chain core.ChainType) (*core.TokenPair, error) {
	now := time.Now()
	session := &core.Session{
		UserID:        userID,
		WalletAddress: address,
		Chain:         chain,
		RefreshID:     uuid.New().String(),
		IssuedAt:      now,
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshExpiry: now.Add(s.refreshTTL),
	}

	accessToken, err := s.tokenizer.SessionToAccessToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	refreshToken, err := s.tokenizer.SessionToRefreshToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &core.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		UserID:           userID,
		WalletAddress:    address,
		Chain:            chain,
		IssuedAt:         now,
		AccessExpiresAt:  session.AccessExpiry,
		RefreshExpiresAt: session.RefreshExpiry,
	}, nil
}
