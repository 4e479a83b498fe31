package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signet-labs/signet/core"
	"github.com/signet-labs/signet/ports"
)

type walletKey struct {
	address string
	chain   core.ChainType
}

// MemoryUserStore is an in-memory user/wallet store for tests and local
// development. The mutex plays the role of the database uniqueness
// constraint: find-or-create is atomic under it.
type MemoryUserStore struct {
	users   map[string]*core.User
	wallets map[walletKey]*core.Wallet
	mu      sync.Mutex
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() ports.UserStore {
	return &MemoryUserStore{
		users:   make(map[string]*core.User),
		wallets: make(map[walletKey]*core.Wallet),
	}
}

// FindOrCreateByWallet returns the user owning (address, chain), creating
// the user and wallet on first sight.
func (s *MemoryUserStore) FindOrCreateByWallet(ctx context.Context, address string, chain core.ChainType) (*core.User, *core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := walletKey{address: address, chain: chain}
	if wallet, ok := s.wallets[key]; ok {
		user, ok := s.users[wallet.UserID]
		if !ok {
			return nil, nil, core.ErrUserNotFound
		}
		return copyUser(user), copyWallet(wallet), nil
	}

	now := time.Now()
	user := &core.User{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	wallet := &core.Wallet{
		Address:   address,
		Chain:     chain,
		UserID:    user.ID,
		IsPrimary: true,
		CreatedAt: now,
	}
	s.users[user.ID] = user
	s.wallets[key] = wallet

	return copyUser(user), copyWallet(wallet), nil
}

// GetUser returns a user by ID.
func (s *MemoryUserStore) GetUser(ctx context.Context, id string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return copyUser(user), nil
}

// GetWallet returns a wallet by (address, chain).
func (s *MemoryUserStore) GetWallet(ctx context.Context, address string, chain core.ChainType) (*core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, ok := s.wallets[walletKey{address: address, chain: chain}]
	if !ok {
		return nil, core.ErrWalletNotFound
	}
	return copyWallet(wallet), nil
}

// GetPrimaryWallet returns a user's primary wallet.
func (s *MemoryUserStore) GetPrimaryWallet(ctx context.Context, userID string) (*core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, wallet := range s.wallets {
		if wallet.UserID == userID && wallet.IsPrimary {
			return copyWallet(wallet), nil
		}
	}
	return nil, core.ErrWalletNotFound
}

func copyUser(u *core.User) *core.User {
	c := *u
	return &c
}

func copyWallet(w *core.Wallet) *core.Wallet {
	c := *w
	return &c
}
