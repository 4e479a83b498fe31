package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signet-labs/signet/adapters/store"
	"github.com/signet-labs/signet/adapters/tokenizer"
	"github.com/signet-labs/signet/core"
)

type recordingEvents struct {
	mu      sync.Mutex
	logins  int
	logouts int
}

func (e *recordingEvents) PublishLogin(ctx context.Context, userID, address string, chain core.ChainType) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logins++
	return nil
}

func (e *recordingEvents) PublishLogout(ctx context.Context, userID, refreshID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logouts++
	return nil
}

type testEnv struct {
	svc    *AuthService
	users  *store.MemoryUserStore
	events *recordingEvents
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := store.NewMemoryUserStore().(*store.MemoryUserStore)
	events := &recordingEvents{}
	svc := NewAuthService(
		tokenizer.NewJWTTokenizer([]byte("access-secret"), []byte("refresh-secret")),
		users,
		store.NewMemoryTokenStore(),
		events,
		logger,
	)
	return &testEnv{svc: svc, users: users, events: events}
}

type evmWallet struct {
	address string
	sign    func(message string) string
}

func newEVMWallet(t *testing.T) *evmWallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &evmWallet{
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
		sign: func(message string) string {
			sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
			require.NoError(t, err)
			return hexutil.Encode(sig)
		},
	}
}

func (w *evmWallet) loginInput(ts int64) LoginInput {
	message := core.ChallengeMessage(w.address, ts)
	return LoginInput{
		Address:   w.address,
		Signature: w.sign(message),
		Message:   message,
		Timestamp: ts,
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	env := newTestEnv(t)
	wallet := newEVMWallet(t)
	ctx := context.Background()

	challenge, err := env.svc.Challenge(wallet.address, core.ChainEVM)
	require.NoError(t, err)
	assert.Contains(t, challenge.Message, wallet.address)

	pair, user, err := env.svc.Login(ctx, core.ChainEVM, LoginInput{
		Address:   wallet.address,
		Signature: wallet.sign(challenge.Message),
		Message:   challenge.Message,
		Timestamp: challenge.Timestamp,
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, wallet.address, pair.WalletAddress)
	assert.Equal(t, 1, env.events.logins)

	// Access token claims resolve back to the created user and wallet.
	session, got, err := env.svc.ValidateAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, wallet.address, session.WalletAddress)
	assert.Equal(t, core.ChainEVM, session.Chain)
}

func TestLoginSameWalletSameUser(t *testing.T) {
	env := newTestEnv(t)
	wallet := newEVMWallet(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	_, first, err := env.svc.Login(ctx, core.ChainEVM, wallet.loginInput(now))
	require.NoError(t, err)
	_, second, err := env.svc.Login(ctx, core.ChainEVM, wallet.loginInput(now))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestLoginFreshnessWindow(t *testing.T) {
	env := newTestEnv(t)
	wallet := newEVMWallet(t)
	ctx := context.Background()

	t.Run("just inside window", func(t *testing.T) {
		ts := time.Now().Add(-(DefaultChallengeWindow - 2*time.Second)).UnixMilli()
		_, _, err := env.svc.Login(ctx, core.ChainEVM, wallet.loginInput(ts))
		assert.NoError(t, err)
	})

	t.Run("past window", func(t *testing.T) {
		ts := time.Now().Add(-(DefaultChallengeWindow + 2*time.Second)).UnixMilli()
		_, _, err := env.svc.Login(ctx, core.ChainEVM, wallet.loginInput(ts))
		assert.ErrorIs(t, err, core.ErrChallengeExpired)
	})

	t.Run("future beyond window", func(t *testing.T) {
		ts := time.Now().Add(DefaultChallengeWindow + 2*time.Second).UnixMilli()
		_, _, err := env.svc.Login(ctx, core.ChainEVM, wallet.loginInput(ts))
		assert.ErrorIs(t, err, core.ErrChallengeExpired)
	})
}

func TestLoginRejectsBadSignatureWithoutSideEffects(t *testing.T) {
	env := newTestEnv(t)
	wallet := newEVMWallet(t)
	other := newEVMWallet(t)
	ctx := context.Background()

	in := wallet.loginInput(time.Now().UnixMilli())
	in.Signature = other.sign(in.Message) // valid signature, wrong key

	_, _, err := env.svc.Login(ctx, core.ChainEVM, in)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)

	_, err = env.users.GetWallet(ctx, wallet.address, core.ChainEVM)
	assert.ErrorIs(t, err, core.ErrWalletNotFound, "failed login must create nothing")
	assert.Zero(t, env.events.logins)
}

func TestLoginRejectsNonCanonicalMessage(t *testing.T) {
	env := newTestEnv(t)
	wallet := newEVMWallet(t)

	in := wallet.loginInput(time.Now().UnixMilli())
	in.Message += " extra"
	in.Signature = wallet.sign(in.Message)

	_, _, err := env.svc.Login(context.Background(), core.ChainEVM, in)
	assert.ErrorIs(t, err, core.ErrInvalidChallenge)
}

func TestLoginRejectsUnsupportedChain(t *testing.T) {
	env := newTestEnv(t)
	wallet := newEVMWallet(t)

	_, _, err := env.svc.Login(context.Background(), core.ChainSui, wallet.loginInput(time.Now().UnixMilli()))
	assert.ErrorIs(t, err, core.ErrUnsupportedChain)
}

func TestRefreshRotates(t *testing.T) {
	env := newTestEnv(t)
	wallet := newEVMWallet(t)
	ctx := context.Background()

	pair, user, err := env.svc.Login(ctx, core.ChainEVM, wallet.loginInput(time.Now().UnixMilli()))
	require.NoError(t, err)

	rotated, err := env.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The new pair still resolves to the same user.
	_, got, err := env.svc.ValidateAccessToken(ctx, rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// The old refresh token is spent.
	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	// Access tokens from the rotated-out pair die with it.
	_, _, err = env.svc.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestLogoutRevokes(t *testing.T) {
	env := newTestEnv(t)
	wallet := newEVMWallet(t)
	ctx := context.Background()

	pair, _, err := env.svc.Login(ctx, core.ChainEVM, wallet.loginInput(time.Now().UnixMilli()))
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, pair.RefreshToken))
	assert.Equal(t, 1, env.events.logouts)

	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, _, err = env.svc.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestGetUserByID(t *testing.T) {
	env := newTestEnv(t)
	wallet := newEVMWallet(t)
	ctx := context.Background()

	_, user, err := env.svc.Login(ctx, core.ChainEVM, wallet.loginInput(time.Now().UnixMilli()))
	require.NoError(t, err)

	got, err := env.svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = env.svc.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}
