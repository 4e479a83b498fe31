package core

import "errors"

var (
	ErrUnsupportedChain = errors.New("unsupported chain type")
	ErrInvalidChallenge = errors.New("invalid challenge")
	ErrChallengeExpired = errors.New("challenge has expired")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrUserNotFound     = errors.New("user not found")
	ErrWalletNotFound   = errors.New("wallet not found")
	ErrStoreOperation   = errors.New("store operation failed")
)
