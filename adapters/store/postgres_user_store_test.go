package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signet-labs/signet/core"
)

const (
	testAddr   = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	testUserID = "5f0e3c5a-9f6b-4c4e-8a2d-0d7f6f1b2c3d"
)

var (
	selectByWallet = regexp.QuoteMeta("SELECT u.id, u.display_name, u.avatar_url, u.created_at, u.updated_at,")
	insertUser     = regexp.QuoteMeta("INSERT INTO users")
	insertWallet   = regexp.QuoteMeta("INSERT INTO wallets")
)

func walletJoinRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "display_name", "avatar_url", "created_at", "updated_at",
		"address", "chain", "user_id", "is_primary", "w_created_at",
	}).AddRow(testUserID, nil, nil, now, now, testAddr, "evm", testUserID, true, now)
}

func TestFindOrCreateByWalletExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(selectByWallet).
		WithArgs(testAddr, "evm").
		WillReturnRows(walletJoinRows(time.Now()))

	s := NewPostgresUserStore(db)
	user, wallet, err := s.FindOrCreateByWallet(context.Background(), testAddr, core.ChainEVM)
	require.NoError(t, err)
	assert.Equal(t, testUserID, user.ID)
	assert.Equal(t, core.ChainEVM, wallet.Chain)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrCreateByWalletCreates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(selectByWallet).
		WithArgs(testAddr, "evm").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec(insertUser).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertWallet).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewPostgresUserStore(db)
	user, wallet, err := s.FindOrCreateByWallet(context.Background(), testAddr, core.ChainEVM)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, user.ID, wallet.UserID)
	assert.True(t, wallet.IsPrimary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrCreateByWalletLosesRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// First read misses, the insert collides with a concurrent first login,
	// then the re-read finds the winner's row.
	mock.ExpectQuery(selectByWallet).
		WithArgs(testAddr, "evm").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec(insertUser).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertWallet).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()
	mock.ExpectQuery(selectByWallet).
		WithArgs(testAddr, "evm").
		WillReturnRows(walletJoinRows(time.Now()))

	s := NewPostgresUserStore(db)
	user, _, err := s.FindOrCreateByWallet(context.Background(), testAddr, core.ChainEVM)
	require.NoError(t, err)
	assert.Equal(t, testUserID, user.ID, "must adopt the winner's user")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, display_name")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	s := NewPostgresUserStore(db)
	_, err = s.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}
