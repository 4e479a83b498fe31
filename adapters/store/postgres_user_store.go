package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/signet-labs/signet/core"
	"github.com/signet-labs/signet/ports"
)

// uniqueViolation is the Postgres error code raised by the UNIQUE constraint
// on wallets(address, chain).
const uniqueViolation = "23505"

// PostgresUserStore persists users and wallets in Postgres.
//
// Schema (see schema.sql): users(id, display_name, avatar_url, created_at,
// updated_at) and wallets(address, chain, user_id, is_primary, created_at)
// with UNIQUE(address, chain).
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgresUserStore creates a new Postgres-backed user store.
func NewPostgresUserStore(db *sql.DB) ports.UserStore {
	return &PostgresUserStore{db: db}
}

// FindOrCreateByWallet returns the user owning (address, chain), creating a
// user and wallet atomically on first sight. Concurrent first logins for the
// same address race on the insert; the loser hits the uniqueness constraint
// and re-reads instead of failing.
func (s *PostgresUserStore) FindOrCreateByWallet(ctx context.Context, address string, chain core.ChainType) (*core.User, *core.Wallet, error) {
	user, wallet, err := s.findByWallet(ctx, address, chain)
	if err == nil {
		return user, wallet, nil
	}
	if !errors.Is(err, core.ErrWalletNotFound) {
		return nil, nil, err
	}

	user, wallet, err = s.createWithWallet(ctx, address, chain)
	if err == nil {
		return user, wallet, nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		// Lost the race; the row exists now.
		return s.findByWallet(ctx, address, chain)
	}
	return nil, nil, fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
}

func (s *PostgresUserStore) findByWallet(ctx context.Context, address string, chain core.ChainType) (*core.User, *core.Wallet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.display_name, u.avatar_url, u.created_at, u.updated_at,
		       w.address, w.chain, w.user_id, w.is_primary, w.created_at
		FROM wallets w
		JOIN users u ON u.id = w.user_id
		WHERE w.address = $1 AND w.chain = $2`,
		address, chain.String())

	var user core.User
	var wallet core.Wallet
	var chainStr string
	var displayName, avatarURL sql.NullString
	err := row.Scan(
		&user.ID, &displayName, &avatarURL, &user.CreatedAt, &user.UpdatedAt,
		&wallet.Address, &chainStr, &wallet.UserID, &wallet.IsPrimary, &wallet.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, core.ErrWalletNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	user.DisplayName = displayName.String
	user.AvatarURL = avatarURL.String
	wallet.Chain = core.ChainType(chainStr)
	return &user, &wallet, nil
}

func (s *PostgresUserStore) createWithWallet(ctx context.Context, address string, chain core.ChainType) (*core.User, *core.Wallet, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	user := &core.User{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at) VALUES ($1, $2, $3)`,
		user.ID, user.CreatedAt, user.UpdatedAt); err != nil {
		return nil, nil, err
	}

	wallet := &core.Wallet{
		Address:   address,
		Chain:     chain,
		UserID:    user.ID,
		IsPrimary: true,
		CreatedAt: now,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (address, chain, user_id, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		wallet.Address, wallet.Chain.String(), wallet.UserID, wallet.IsPrimary, wallet.CreatedAt); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return user, wallet, nil
}

// GetUser returns a user by ID.
func (s *PostgresUserStore) GetUser(ctx context.Context, id string) (*core.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, avatar_url, created_at, updated_at
		FROM users WHERE id = $1`, id)

	var user core.User
	var displayName, avatarURL sql.NullString
	err := row.Scan(&user.ID, &displayName, &avatarURL, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	user.DisplayName = displayName.String
	user.AvatarURL = avatarURL.String
	return &user, nil
}

// GetWallet returns a wallet by (address, chain).
func (s *PostgresUserStore) GetWallet(ctx context.Context, address string, chain core.ChainType) (*core.Wallet, error) {
	return s.scanWallet(s.db.QueryRowContext(ctx, `
		SELECT address, chain, user_id, is_primary, created_at
		FROM wallets WHERE address = $1 AND chain = $2`,
		address, chain.String()))
}

// GetPrimaryWallet returns a user's primary wallet.
func (s *PostgresUserStore) GetPrimaryWallet(ctx context.Context, userID string) (*core.Wallet, error) {
	return s.scanWallet(s.db.QueryRowContext(ctx, `
		SELECT address, chain, user_id, is_primary, created_at
		FROM wallets WHERE user_id = $1 AND is_primary`, userID))
}

func (s *PostgresUserStore) scanWallet(row *sql.Row) (*core.Wallet, error) {
	var wallet core.Wallet
	var chainStr string
	err := row.Scan(&wallet.Address, &chainStr, &wallet.UserID, &wallet.IsPrimary, &wallet.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	wallet.Chain = core.ChainType(chainStr)
	return &wallet, nil
}
