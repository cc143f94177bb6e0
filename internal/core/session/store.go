package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/telemetry/logger"
	"github.com/yndnr/hostdeck-go/pkg/token"
)

// Store is the single source of truth for the session.
//
// Store is safe for concurrent use. Persisting mutations are serialized so
// the stored record always reflects the latest committed mutation.
type Store struct {
	mu    sync.RWMutex
	state State

	// saveMu orders mutate+save pairs.
	saveMu    sync.Mutex
	persister Persister

	listenMu  sync.Mutex
	listeners map[int]func(State)
	nextID    int

	logger logger.Logger
}

// NewStore creates an empty, signed-out store.
// A nil persister keeps the session in memory only.
func NewStore(p Persister, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		persister: p,
		listeners: make(map[int]func(State)),
		logger:    log.With("component", "session"),
	}
}

// Open creates a store and rehydrates it from p before returning.
func Open(ctx context.Context, p Persister, log logger.Logger) (*Store, error) {
	s := NewStore(p, log)
	if err := s.Rehydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Rehydrate replaces the in-memory state with the persisted record.
//
// The persisted authenticated flag is trusted without contacting the
// backend; a stale credential is discovered on the first 401. A record
// that cannot be decoded is discarded and the store starts signed out.
func (s *Store) Rehydrate(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	rec, err := s.persister.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			s.logger.Warn("discarding unreadable session record", "error", err)
			return nil
		}
		return fmt.Errorf("session: rehydrate: %w", err)
	}
	if rec == nil {
		return nil
	}

	next := rec.state()
	if rec.IsAuthenticated && !next.IsAuthenticated {
		s.logger.Warn("persisted session flagged authenticated without access credential")
	}

	s.mu.Lock()
	s.state = next
	snap := s.state.Clone()
	s.mu.Unlock()

	s.logger.Debug("session rehydrated",
		"authenticated", snap.IsAuthenticated,
		"fingerprint", fingerprint(snap.Credentials))
	s.notify(snap)
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// AccessCredential returns the current access credential, or "".
func (s *Store) AccessCredential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Credentials == nil {
		return ""
	}
	return s.state.Credentials.Access
}

// RenewalCredential returns the current renewal credential, or "".
func (s *Store) RenewalCredential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Credentials == nil {
		return ""
	}
	return s.state.Credentials.Renewal
}

// CommitSession records a successful sign-in: identity and credentials are
// set together, the error is cleared and the session becomes authenticated.
// Both credentials must be present.
func (s *Store) CommitSession(ctx context.Context, id *domain.Identity, pair domain.CredentialPair) error {
	if pair.Access == "" {
		return domain.ErrInvalidArgument.WithDetails("access credential is empty")
	}
	if pair.Renewal == "" {
		return domain.ErrInvalidArgument.WithDetails("renewal credential is empty")
	}
	return s.commit(ctx, "commit", func(st *State) error {
		st.Identity = id.Clone()
		st.Credentials = pair.Clone()
		st.IsAuthenticated = true
		st.LastError = ""
		return nil
	})
}

// SetIdentity replaces the identity without touching credentials.
func (s *Store) SetIdentity(ctx context.Context, id *domain.Identity) error {
	return s.commit(ctx, "identity", func(st *State) error {
		st.Identity = id.Clone()
		return nil
	})
}

// SetCredentials replaces the credential pair of a signed-in session.
// The authenticated flag follows the access credential, so an empty
// access credential signs the session out.
func (s *Store) SetCredentials(ctx context.Context, pair domain.CredentialPair) error {
	return s.commit(ctx, "credentials", func(st *State) error {
		if !st.IsAuthenticated {
			return domain.ErrNotSignedIn
		}
		st.Credentials = pair.Clone()
		st.IsAuthenticated = !st.Credentials.IsZero()
		return nil
	})
}

// Clear signs the session out and persists the empty record.
func (s *Store) Clear(ctx context.Context) error {
	return s.commit(ctx, "clear", func(st *State) error {
		*st = State{}
		return nil
	})
}

// BeginLoading raises the loading flag.
func (s *Store) BeginLoading() {
	s.update(func(st *State) { st.Loading = true })
}

// EndLoading lowers the loading flag.
func (s *Store) EndLoading() {
	s.update(func(st *State) { st.Loading = false })
}

// SetError records a user-facing error message.
func (s *Store) SetError(msg string) {
	s.update(func(st *State) { st.LastError = msg })
}

// ClearError removes the error message. Clearing twice is a no-op.
func (s *Store) ClearError() {
	s.update(func(st *State) { st.LastError = "" })
}

// Subscribe registers fn to receive the state after every mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.listenMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenMu.Unlock()

	return func() {
		s.listenMu.Lock()
		delete(s.listeners, id)
		s.listenMu.Unlock()
	}
}

// update applies a non-persisting mutation.
func (s *Store) update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snap := s.state.Clone()
	s.mu.Unlock()

	s.notify(snap)
}

// commit applies a persisting mutation and saves the resulting record.
// The in-memory state keeps the mutation even when saving fails.
func (s *Store) commit(ctx context.Context, op string, mutate func(*State) error) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if err := mutate(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	rec := s.state.record()
	snap := s.state.Clone()
	s.mu.Unlock()

	s.notify(snap)

	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, rec); err != nil {
		s.logger.Error("failed to persist session", "op", op, "error", err)
		return fmt.Errorf("session: persist %s: %w", op, err)
	}
	s.logger.Debug("session persisted",
		"op", op,
		"authenticated", rec.IsAuthenticated,
		"fingerprint", token.Fingerprint(rec.Access))
	return nil
}

func (s *Store) notify(st State) {
	s.listenMu.Lock()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenMu.Unlock()

	for _, fn := range fns {
		fn(st.Clone())
	}
}

func fingerprint(p *domain.CredentialPair) string {
	if p == nil {
		return ""
	}
	return token.Fingerprint(p.Access)
}
