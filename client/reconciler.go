package client

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the reconciler's view of the (address, connected, token) triple.
type State int

const (
	// Uninitialized means no snapshot has been observed yet. The first
	// observation only establishes a baseline and never triggers actions.
	Uninitialized State = iota
	Disconnected
	ConnectedNoSession
	Authenticated
	// StaleSession means a token is present but the wallet is gone; a
	// logout is in flight or pending.
	StaleSession
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Disconnected:
		return "disconnected"
	case ConnectedNoSession:
		return "connected-no-session"
	case Authenticated:
		return "authenticated"
	case StaleSession:
		return "stale-session"
	}
	return "unknown"
}

// LoginResult carries the tokens obtained by a completed login attempt.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
}

// Actions performs the network side effects the reconciler decides on. Both
// calls are asynchronous from the reconciler's point of view; results are
// applied only if no newer snapshot has been observed meanwhile.
type Actions interface {
	Login(ctx context.Context, address string) (*LoginResult, error)
	Logout(ctx context.Context) error
}

// Reconciler converges wallet connection state and session tokens. It reacts
// to discrete snapshot observations, comparing each against the previous one
// so only genuine transitions fire side effects.
//
// There is no network-level cancellation: an in-flight call superseded by a
// newer observation is "cancelled" by discarding its result, which is what
// the generation counter implements.
type Reconciler struct {
	store   *StateStore
	actions Actions
	log     logrus.FieldLogger
	timeout time.Duration

	mu         sync.Mutex
	state      State
	prev       Snapshot
	generation uint64
	wg         sync.WaitGroup
}

// NewReconciler creates a reconciler and registers it as the store's
// observer, so every store mutation is observed in order.
func NewReconciler(store *StateStore, actions Actions, log logrus.FieldLogger) *Reconciler {
	r := &Reconciler{
		store:   store,
		actions: actions,
		log:     log,
		timeout: 30 * time.Second,
		state:   Uninitialized,
	}
	store.SetObserver(r.Observe)
	return r
}

// Start observes the store's current snapshot as the baseline. Call once
// after wiring, before wallet provider events start flowing.
func (r *Reconciler) Start() {
	r.Observe(r.store.Snapshot())
}

// State returns the current reconciler state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Wait blocks until all in-flight actions have completed. Intended for
// shutdown and tests.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

// Observe processes one snapshot. The two triggers are mutually exclusive by
// construction: login requires token absence, logout requires presence.
func (r *Reconciler) Observe(snap Snapshot) {
	r.mu.Lock()
	if r.state == Uninitialized {
		r.state = classify(snap)
		r.prev = snap
		r.mu.Unlock()
		return
	}

	// Repeated equal observations are benign: wallet providers re-emit
	// connect events. They must not invalidate in-flight work, so the
	// generation only advances when the snapshot actually changes.
	if snap == r.prev {
		r.mu.Unlock()
		return
	}

	prev := r.prev
	r.prev = snap
	r.state = classify(snap)
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	// Login only on a genuine transition into connected-without-token:
	// either wallet state just appeared, or the token was just lost while
	// staying connected.
	loginNeeded := snap.Address != "" && snap.Connected && snap.AccessToken == "" &&
		(prev.Address == "" || !prev.Connected || prev.AccessToken != "")

	// Logout only on a genuine loss of address or connection while a token
	// is held.
	logoutNeeded := (snap.Address == "" || !snap.Connected) && snap.AccessToken != "" &&
		((prev.Address != "" && snap.Address == "") || (prev.Connected && !snap.Connected))

	switch {
	case loginNeeded:
		r.wg.Add(1)
		go r.runLogin(gen, snap.Address)
	case logoutNeeded:
		r.wg.Add(1)
		go r.runLogout(gen)
	}
}

func classify(s Snapshot) State {
	hasWallet := s.Address != "" && s.Connected
	switch {
	case s.AccessToken == "" && !hasWallet:
		return Disconnected
	case s.AccessToken == "":
		return ConnectedNoSession
	case hasWallet:
		return Authenticated
	default:
		return StaleSession
	}
}

func (r *Reconciler) runLogin(gen uint64, address string) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	result, err := r.actions.Login(ctx, address)
	if err != nil {
		// Stay in ConnectedNoSession; a later state change may re-trigger.
		r.log.WithError(err).Warn("Login attempt failed")
		return
	}

	if r.stale(gen) {
		r.log.Debug("Discarding stale login result")
		return
	}
	r.store.SetTokens(result.AccessToken, result.RefreshToken)
}

func (r *Reconciler) runLogout(gen uint64) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.actions.Logout(ctx); err != nil {
		r.log.WithError(err).Warn("Logout call failed; clearing local session anyway")
	}

	if r.stale(gen) {
		r.log.Debug("Discarding stale logout result")
		return
	}
	r.store.ClearTokens()
}

func (r *Reconciler) stale(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen != r.generation
}
