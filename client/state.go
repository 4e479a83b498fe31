package client

import "sync"

// Snapshot is the triple (plus refresh token) the reconciler observes. A
// zero Snapshot means no wallet and no session.
type Snapshot struct {
	Address      string
	Connected    bool
	AccessToken  string
	RefreshToken string
}

// Persistence stores session tokens across client restarts. Wallet
// connection state is never durable; only tokens survive a restart.
type Persistence interface {
	Save(access, refresh string) error
	Load() (access, refresh string, ok bool, err error)
}

// StateStore owns the client session state. All reads and writes go through
// accessors; every mutation notifies the registered observer with the new
// snapshot, in mutation order.
type StateStore struct {
	mu       sync.Mutex
	snap     Snapshot
	persist  Persistence
	observer func(Snapshot)
}

// NewStateStore creates a state store. persist may be nil for ephemeral
// sessions.
func NewStateStore(persist Persistence) *StateStore {
	return &StateStore{persist: persist}
}

// SetObserver registers the single observer notified on every mutation. The
// observer runs with the store's lock held, so mutations and notifications
// share one serialization order; it must not call back into the store
// synchronously.
func (s *StateStore) SetObserver(fn func(Snapshot)) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// Restore loads persisted tokens. The wallet starts disconnected; the
// reconciler converges once the wallet provider reports a connection.
func (s *StateStore) Restore() error {
	if s.persist == nil {
		return nil
	}
	access, refresh, ok, err := s.persist.Load()
	if err != nil || !ok {
		return err
	}
	s.mutate(func(snap *Snapshot) {
		snap.AccessToken = access
		snap.RefreshToken = refresh
	})
	return nil
}

// Snapshot returns a copy of the current state.
func (s *StateStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// SetWallet records a wallet provider connect/disconnect event.
func (s *StateStore) SetWallet(address string, connected bool) {
	s.mutate(func(snap *Snapshot) {
		snap.Address = address
		snap.Connected = connected
	})
}

// SetTokens stores a freshly issued token pair.
func (s *StateStore) SetTokens(access, refresh string) {
	s.mutate(func(snap *Snapshot) {
		snap.AccessToken = access
		snap.RefreshToken = refresh
	})
}

// ClearTokens drops the session but keeps the wallet state.
func (s *StateStore) ClearTokens() {
	s.SetTokens("", "")
}

// Clear resets everything: wallet state and tokens.
func (s *StateStore) Clear() {
	s.mutate(func(snap *Snapshot) {
		*snap = Snapshot{}
	})
}

// mutate applies fn and notifies under the lock: releasing it first would
// let two racing mutations deliver their notifications out of order.
func (s *StateStore) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.snap)
	if s.persist != nil {
		_ = s.persist.Save(s.snap.AccessToken, s.snap.RefreshToken)
	}
	if s.observer != nil {
		s.observer(s.snap)
	}
}
