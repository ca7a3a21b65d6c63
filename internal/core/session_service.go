package core

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"desafioconcurso-go/internal/auth"
	"desafioconcurso-go/internal/db"
	"desafioconcurso-go/internal/models"
)

const minPasswordLength = 6

// SessionStore is the single source of truth for who is signed in and what
// their profile looks like. It owns the identity-change stream and, while an
// identity is present, a live subscription on that identity's profile
// document. Observers register and remove their callbacks explicitly; nothing
// relies on garbage collection of listeners.
type SessionStore struct {
	provider auth.Provider
	profiles db.ProfileRepository
	logger   *zap.Logger

	mu                sync.Mutex
	identity          *auth.Identity
	profile           *models.Profile
	resolving         bool
	closed            bool
	identityObservers map[int]func(*auth.Identity)
	profileObservers  map[int]func(*models.Profile)
	nextObserverID    int

	listenCtx  context.Context
	profileSub *db.Subscription
}

// NewSessionStore creates a SessionStore. Resolving stays true until Start
// has completed the first auth-state resolution.
func NewSessionStore(provider auth.Provider, profiles db.ProfileRepository, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		provider:          provider,
		profiles:          profiles,
		logger:            logger,
		resolving:         true,
		identityObservers: make(map[int]func(*auth.Identity)),
		profileObservers:  make(map[int]func(*models.Profile)),
	}
}

// Start performs the initial auth-state resolution. This client holds no
// persisted session, so the initial identity is always signed-out; Start
// exists so the resolving flag has a defined lifetime and so the store owns a
// context for its profile subscriptions.
func (s *SessionStore) Start(ctx context.Context) {
	s.mu.Lock()
	s.listenCtx = ctx
	s.resolving = false
	observers := s.snapshotIdentityObservers()
	identity := s.identity
	s.mu.Unlock()

	for _, fn := range observers {
		fn(identity)
	}
}

// Identity returns the current authenticated identity, or nil when signed out.
func (s *SessionStore) Identity() *auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Profile returns the latest live profile snapshot, or nil when signed out or
// when provisioning failed ("no profile yet").
func (s *SessionStore) Profile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Resolving reports whether the initial auth state is still unresolved.
func (s *SessionStore) Resolving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolving
}

// OnIdentityChange registers an observer on the identity stream. The observer
// fires immediately with the current value, then on every transition. The
// returned function removes the registration.
func (s *SessionStore) OnIdentityChange(fn func(*auth.Identity)) (remove func()) {
	s.mu.Lock()
	id := s.nextObserverID
	s.nextObserverID++
	s.identityObservers[id] = fn
	identity := s.identity
	s.mu.Unlock()

	fn(identity)
	return func() {
		s.mu.Lock()
		delete(s.identityObservers, id)
		s.mu.Unlock()
	}
}

// OnProfileChange registers an observer on the live profile record. Fires
// immediately with the current snapshot, then on every remote change.
func (s *SessionStore) OnProfileChange(fn func(*models.Profile)) (remove func()) {
	s.mu.Lock()
	id := s.nextObserverID
	s.nextObserverID++
	s.profileObservers[id] = fn
	profile := s.profile
	s.mu.Unlock()

	fn(profile)
	return func() {
		s.mu.Lock()
		delete(s.profileObservers, id)
		s.mu.Unlock()
	}
}

// SignIn authenticates an email/password pair and transitions the store to
// the signed-in identity.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return validationErr("Fill in all fields.")
	}

	identity, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return authErr(err)
	}

	s.setIdentity(ctx, identity)
	return nil
}

// SignUp creates an account, seeds its profile document and transitions the
// store to the new identity.
func (s *SessionStore) SignUp(ctx context.Context, displayName, email, password, passwordConfirmation string) error {
	switch {
	case displayName == "" || email == "" || password == "" || passwordConfirmation == "":
		return validationErr("Fill in all fields.")
	case password != passwordConfirmation:
		return validationErr("Passwords do not match.")
	case len(password) < minPasswordLength:
		return validationErr("Password must be at least 6 characters.")
	}

	identity, err := s.provider.SignUp(ctx, displayName, email, password)
	if err != nil {
		return authErr(err)
	}

	profile := &models.Profile{
		ID:          identity.UID,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		PhotoURL:    identity.PhotoURL,
		Bio:         "",
		Active:      true,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// The account exists; provisioning on the identity transition below
		// will try again. Sign-up itself is not blocked.
		s.logger.Warn("failed to seed profile document after sign-up",
			zap.String("uid", identity.UID), zap.Error(err))
	}

	s.setIdentity(ctx, identity)
	return nil
}

// SignOut clears the identity. The profile subscription is stopped and the
// cached profile dropped before observers are notified.
func (s *SessionStore) SignOut() {
	s.setIdentity(context.Background(), nil)
}

// Close tears the store down: identity observers are dropped first, then any
// open profile subscription is stopped, unconditionally.
func (s *SessionStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.identityObservers = make(map[int]func(*auth.Identity))
	s.profileObservers = make(map[int]func(*models.Profile))
	sub := s.profileSub
	s.profileSub = nil
	s.mu.Unlock()

	sub.Stop()
}

// setIdentity applies an identity transition: provisioning + profile
// subscription on sign-in, subscription teardown on sign-out.
func (s *SessionStore) setIdentity(ctx context.Context, identity *auth.Identity) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	previousSub := s.profileSub
	s.profileSub = nil
	s.identity = identity
	s.profile = nil
	s.resolving = false
	listenCtx := s.listenCtx
	observers := s.snapshotIdentityObservers()
	profileObservers := s.snapshotProfileObservers()
	s.mu.Unlock()

	// Any subscription for the previous identity closes before a new one
	// opens.
	previousSub.Stop()

	for _, fn := range observers {
		fn(identity)
	}
	for _, fn := range profileObservers {
		fn(nil)
	}

	if identity == nil {
		return
	}

	if err := s.provisionProfile(ctx, identity); err != nil {
		// Treated as "no profile yet"; sign-in itself is not blocked.
		s.logger.Warn("failed to provision profile on sign-in",
			zap.String("uid", identity.UID), zap.Error(err))
		return
	}

	if listenCtx == nil {
		listenCtx = context.Background()
	}
	sub, err := s.profiles.Listen(listenCtx, identity.UID, s.onProfileSnapshot)
	if err != nil {
		s.logger.Warn("failed to open profile subscription",
			zap.String("uid", identity.UID), zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.closed || s.identity == nil || s.identity.UID != identity.UID {
		// Identity moved on while the subscription was opening.
		s.mu.Unlock()
		sub.Stop()
		return
	}
	s.profileSub = sub
	s.mu.Unlock()
}

// provisionProfile merge-upserts the profile document for a freshly signed-in
// identity. Provider-supplied fields only fill in when the document is new or
// the field is absent; user-edited fields like the bio are never overwritten.
func (s *SessionStore) provisionProfile(ctx context.Context, identity *auth.Identity) error {
	existing, err := s.profiles.GetByID(ctx, identity.UID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}

	if errors.Is(err, db.ErrNotFound) {
		return s.profiles.Create(ctx, &models.Profile{
			ID:          identity.UID,
			DisplayName: identity.DisplayName,
			Email:       identity.Email,
			PhotoURL:    identity.PhotoURL,
			Bio:         "",
			Active:      true,
		})
	}

	fields := map[string]interface{}{
		"active":    true,
		"lastLogin": db.ServerTimestamp,
		"updatedAt": db.ServerTimestamp,
	}
	if existing.DisplayName == "" && identity.DisplayName != "" {
		fields["displayName"] = identity.DisplayName
	}
	if existing.Email == "" && identity.Email != "" {
		fields["email"] = identity.Email
	}
	if existing.PhotoURL == nil && identity.PhotoURL != nil {
		fields["photoURL"] = *identity.PhotoURL
	}
	return s.profiles.MergeFields(ctx, identity.UID, fields)
}

func (s *SessionStore) onProfileSnapshot(profile *models.Profile) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.profile = profile
	observers := s.snapshotProfileObservers()
	s.mu.Unlock()

	for _, fn := range observers {
		fn(profile)
	}
}

func (s *SessionStore) snapshotIdentityObservers() []func(*auth.Identity) {
	observers := make([]func(*auth.Identity), 0, len(s.identityObservers))
	for _, fn := range s.identityObservers {
		observers = append(observers, fn)
	}
	return observers
}

func (s *SessionStore) snapshotProfileObservers() []func(*models.Profile) {
	observers := make([]func(*models.Profile), 0, len(s.profileObservers))
	for _, fn := range s.profileObservers {
		observers = append(observers, fn)
	}
	return observers
}
