package ports

import (
	"context"
	"time"

	"github.com/signet-labs/signet/core"
)

// TokenStore tracks revoked refresh-token JTIs. Entries carry a TTL equal to
// the remaining lifetime of the revoked token; after that the token is
// expired anyway and the entry can lapse.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UserStore persists users and their wallets.
//
// FindOrCreateByWallet must be race-safe under concurrent first logins for
// the same address: implementations rely on a uniqueness constraint over
// (address, chain) and re-read on conflict rather than failing.
type UserStore interface {
	FindOrCreateByWallet(ctx context.Context, address string, chain core.ChainType) (*core.User, *core.Wallet, error)
	GetUser(ctx context.Context, id string) (*core.User, error)
	GetWallet(ctx context.Context, address string, chain core.ChainType) (*core.Wallet, error)
	GetPrimaryWallet(ctx context.Context, userID string) (*core.Wallet, error)
}
