// Package auth holds the local auth store: the customer session, its
// persistence and the login, signup and logout actions.
//
// A Store is created processing and stays so until Initialize completes;
// every action fails fast with serviceerr.ErrStillProcessing meanwhile.
// Persisted storage follows the in-memory session on every change once the
// store is initialized.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/guard"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
	"github.com/openkcm/storefront-sync/internal/storage"
)

// Remote is the part of the Commerce API the auth store depends on.
type Remote interface {
	CreateAccessToken(ctx context.Context, email, password string) (commerce.CustomerAccessToken, error)
	RenewAccessToken(ctx context.Context, accessToken string) (commerce.CustomerAccessToken, error)
	DeleteAccessToken(ctx context.Context, accessToken string) (string, error)
	CreateCustomer(ctx context.Context, in commerce.SignupInput) (string, error)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Store struct {
	remote  Remote
	storage storage.Storage
	guard   *guard.Guard

	initOnce    sync.Once
	initRelease func()

	mu          sync.RWMutex
	session     *Session
	initialized bool
}

func NewStore(remote Remote, st storage.Storage) *Store {
	g := guard.New()
	// A fresh guard is idle, so entering cannot fail.
	release, _ := g.Enter()

	return &Store{
		remote:      remote,
		storage:     st,
		guard:       g,
		initRelease: release,
	}
}

// Initialize restores the persisted session and renews it remotely. Any
// failure leaves the store without a session and clears storage; there is no
// retry. Only the first call has an effect.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		defer s.initRelease()

		session := s.restore(ctx)

		s.mu.Lock()
		s.session = session
		s.initialized = true
		s.mu.Unlock()

		s.persist(ctx)
		slogctx.Debug(ctx, "Auth store initialized", "loggedIn", session != nil)
	})
}

func (s *Store) restore(ctx context.Context) *Session {
	raw, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if errors.Is(err, serviceerr.ErrNotFound) {
		return nil
	}
	if err != nil {
		slogctx.Error(ctx, "Failed to read persisted session", "error", err)
		return nil
	}

	stored, err := decodeSession(raw)
	if err != nil {
		slogctx.Warn(ctx, "Discarding persisted session", "error", err)
		return nil
	}

	renewed, err := s.remote.RenewAccessToken(ctx, stored.Token)
	if err != nil {
		slogctx.Warn(ctx, "Failed to renew persisted session", "error", err)
		return nil
	}
	if renewed.AccessToken == "" {
		slogctx.Warn(ctx, "Renewal returned no access token")
		return nil
	}

	session := sessionFrom(renewed)
	return &session
}

// Login authenticates a customer and replaces the session.
func (s *Store) Login(ctx context.Context, creds Credentials) (Session, error) {
	release, err := s.guard.Enter()
	if err != nil {
		return Session{}, err
	}
	defer release()

	tok, err := s.remote.CreateAccessToken(ctx, creds.Email, creds.Password)
	if err != nil {
		slogctx.Info(ctx, "Login failed", "error", err)
		return Session{}, fmt.Errorf("login: %w", err)
	}

	session := sessionFrom(tok)
	s.setSession(ctx, &session)

	return session, nil
}

// Signup registers a customer. It does not log the customer in.
func (s *Store) Signup(ctx context.Context, in commerce.SignupInput) (string, error) {
	release, err := s.guard.Enter()
	if err != nil {
		return "", err
	}
	defer release()

	id, err := s.remote.CreateCustomer(ctx, in)
	if err != nil {
		slogctx.Info(ctx, "Signup failed", "error", err)
		return "", fmt.Errorf("signup: %w", err)
	}

	return id, nil
}

// Logout invalidates the session remotely, then clears it locally. It fails
// with serviceerr.ErrNotLoggedIn when there is no session.
func (s *Store) Logout(ctx context.Context) error {
	release, err := s.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	session, ok := s.Session()
	if !ok {
		return serviceerr.ErrNotLoggedIn
	}

	if _, err := s.remote.DeleteAccessToken(ctx, session.Token); err != nil {
		slogctx.Error(ctx, "Logout failed", "error", err)
		return fmt.Errorf("logout: %w", err)
	}

	s.setSession(ctx, nil)

	return nil
}

// Session returns the current session, if any.
func (s *Store) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *Store) Processing() bool {
	return s.guard.Processing()
}

func (s *Store) setSession(ctx context.Context, session *Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.persist(ctx)
}

// persist writes the session to storage, or deletes it when absent. It is a
// no-op until the store is initialized.
func (s *Store) persist(ctx context.Context) {
	s.mu.RLock()
	session, initialized := s.session, s.initialized
	s.mu.RUnlock()

	if !initialized {
		return
	}

	if session == nil {
		if err := s.storage.Delete(ctx, storage.KeyAccessToken); err != nil {
			slogctx.Error(ctx, "Failed to delete persisted session", "error", err)
		}
		return
	}

	raw, err := session.encode()
	if err == nil {
		err = s.storage.Set(ctx, storage.KeyAccessToken, raw)
	}
	if err != nil {
		slogctx.Error(ctx, "Failed to persist session", "error", err)
	}
}
