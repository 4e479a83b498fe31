package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signet-labs/signet/core"
)

// SignFunc asks the connected wallet to sign a challenge message and returns
// the encoded signature.
type SignFunc func(message string) (string, error)

// API talks to the auth endpoints and implements Actions for the reconciler.
// Network calls carry a bounded timeout via the underlying http.Client,
// separate from the server's challenge freshness window.
type API struct {
	baseURL string
	chain   core.ChainType
	sign    SignFunc
	store   *StateStore
	http    *http.Client
	log     logrus.FieldLogger
}

// NewAPI creates an API client for the given chain family and wallet signer.
func NewAPI(baseURL string, chain core.ChainType, sign SignFunc, store *StateStore, log logrus.FieldLogger) *API {
	return &API{
		baseURL: baseURL,
		chain:   chain,
		sign:    sign,
		store:   store,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// Login runs the full challenge handshake: fetch the message, have the
// wallet sign it, submit the signature.
func (a *API) Login(ctx context.Context, address string) (*LoginResult, error) {
	var challenge struct {
		Message   string `json:"message"`
		Timestamp int64  `json:"timestamp"`
	}
	err := a.post(ctx, "/auth/login-message", map[string]interface{}{
		"walletAddress": address,
		"chainType":     a.chain.String(),
	}, &challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch login message: %w", err)
	}

	signature, err := a.sign(challenge.Message)
	if err != nil {
		return nil, fmt.Errorf("wallet refused to sign: %w", err)
	}

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	err = a.post(ctx, "/auth/login", map[string]interface{}{
		"walletAddress": address,
		"signature":     signature,
		"message":       challenge.Message,
		"timestamp":     challenge.Timestamp,
		"chainType":     a.chain.String(),
	}, &tokens)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return &LoginResult{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout invalidates the current refresh token server-side.
func (a *API) Logout(ctx context.Context) error {
	refresh := a.store.Snapshot().RefreshToken
	if refresh == "" {
		return nil
	}
	return a.post(ctx, "/auth/logout", map[string]interface{}{
		"refreshToken": refresh,
	}, nil)
}

// Refresh rotates the stored token pair. Any failure is a full logout: the
// local session is cleared and the reconciler converges from there.
func (a *API) Refresh(ctx context.Context) error {
	refresh := a.store.Snapshot().RefreshToken
	if refresh == "" {
		return fmt.Errorf("no refresh token")
	}

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	err := a.post(ctx, "/auth/refresh", map[string]interface{}{
		"refreshToken": refresh,
	}, &tokens)
	if err != nil {
		a.log.WithError(err).Warn("Refresh failed; logging out")
		a.store.ClearTokens()
		return err
	}

	a.store.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	return nil
}

func (a *API) post(ctx context.Context, path string, body map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
