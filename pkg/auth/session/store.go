package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/coffeemarket/pkg/auth"
	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/kv"
	"github.com/angelmondragon/coffeemarket/pkg/logger"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

const guestPrefix = "guest"

// State is the authentication state of the device.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Session is a snapshot of the persisted client identity.
type Session struct {
	AccessToken        string      `json:"accessToken,omitempty"`
	RefreshToken       string      `json:"refreshToken,omitempty"`
	User               *types.User `json:"user,omitempty"`
	AnonymousSessionID string      `json:"sessionId,omitempty"`
}

// State derives the authentication state from the snapshot.
func (s Session) State() State {
	if s.AccessToken != "" {
		return LoggedIn
	}
	return LoggedOut
}

// TokenExpiry reports the access token's exp claim, when it has one.
func (s Session) TokenExpiry() (time.Time, bool) {
	if s.AccessToken == "" {
		return time.Time{}, false
	}
	return auth.ExpiresAt(s.AccessToken)
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Authenticator exchanges credentials with the backend. The storefront client
// implements it.
type Authenticator interface {
	Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*types.LoginResponse, error)
}

// Store is the single source of truth for the device identity. All writes
// hold mu across the persistence call so no reader sees tokens without the
// matching profile.
type Store struct {
	mu        sync.RWMutex
	kv        kv.Store
	auth      Authenticator
	logg      *logger.Logger
	now       func() time.Time
	newSuffix func() string

	session   Session
	listeners []func(State)
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for guest ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) {
		if logg != nil {
			s.logg = logg
		}
	}
}

// Open restores the persisted session. A persisted access token makes the
// store start LoggedIn without contacting the backend.
func Open(ctx context.Context, store kv.Store, authenticator Authenticator, opts ...Option) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	s := &Store{
		kv:        store,
		auth:      authenticator,
		logg:      logger.Nop(),
		now:       time.Now,
		newSuffix: randomSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}

	var errs error
	read := func(key string) string {
		v, err := store.Get(ctx, key)
		if err != nil && !errors.Is(err, kv.ErrNotFound) {
			errs = multierr.Append(errs, err)
		}
		return v
	}

	s.session.AccessToken = read(kv.KeyAccessToken)
	s.session.RefreshToken = read(kv.KeyRefreshToken)
	s.session.AnonymousSessionID = read(kv.KeySessionID)
	rawUser := read(kv.KeyUser)
	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "restoring session")
	}

	if rawUser != "" {
		var user types.User
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			s.logg.Warn(ctx, "discarding unreadable cached profile")
		} else {
			s.session.User = &user
		}
	}

	if s.session.AccessToken != "" {
		ctx = s.logg.WithUserID(ctx, s.userID())
		s.logg.Debug(ctx, "restored persisted session")
	}
	return s, nil
}

// OnChange registers fn to be called after every LoggedIn/LoggedOut transition.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AccessToken returns the bearer token, if any. It has no side effects.
func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken, s.session.AccessToken != ""
}

// Current returns a copy of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.clone()
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.State()
}

// User returns a copy of the cached profile.
func (s *Store) User() (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.User == nil {
		return types.User{}, false
	}
	return *s.session.User, true
}

// Login exchanges a provider token for backend credentials and persists the
// token pair and profile in one write. On failure nothing is changed.
func (s *Store) Login(ctx context.Context, provider types.Provider, providerAccessToken string) (Session, error) {
	if !provider.IsValid() {
		return Session{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported login provider %q", provider))
	}
	if strings.TrimSpace(providerAccessToken) == "" {
		return Session{}, pkgerrors.New(pkgerrors.CodeValidation, "provider access token is required")
	}
	authenticator := s.authenticator()
	if authenticator == nil {
		return Session{}, pkgerrors.New(pkgerrors.CodeInternal, "session store has no authenticator")
	}

	resp, err := authenticator.Login(ctx, types.LoginRequest{Provider: provider, AccessToken: providerAccessToken})
	if err != nil {
		return Session{}, asAuthFailed(err)
	}
	if resp == nil || resp.AccessToken == "" || resp.User == nil {
		return Session{}, pkgerrors.New(pkgerrors.CodeAuthFailed, "login response missing token or user")
	}

	s.mu.Lock()
	if err := s.persistLocked(ctx, resp.AccessToken, resp.RefreshToken, resp.User); err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	snapshot := s.session.clone()
	listeners := s.listeners
	s.mu.Unlock()

	s.logg.Info(s.logg.WithUserID(ctx, resp.User.ID), "logged in")
	notify(listeners, LoggedIn)
	return snapshot, nil
}

// Refresh trades the refresh token for a new pair. A rejected refresh is an
// expiry; transport failures leave the session untouched. A response that
// arrives after the session changed (logout, expiry or a new login) is
// discarded.
func (s *Store) Refresh(ctx context.Context) (Session, error) {
	s.mu.RLock()
	refreshToken := s.session.RefreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		s.expireIfCurrent(ctx, refreshToken)
		return Session{}, pkgerrors.New(pkgerrors.CodeAuthExpired, "no refresh token")
	}
	authenticator := s.authenticator()
	if authenticator == nil {
		return Session{}, pkgerrors.New(pkgerrors.CodeInternal, "session store has no authenticator")
	}

	resp, err := authenticator.Refresh(ctx, refreshToken)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNetwork {
			return Session{}, err
		}
		s.expireIfCurrent(ctx, refreshToken)
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeAuthExpired, err, "refresh rejected")
	}
	if resp == nil || resp.AccessToken == "" {
		s.expireIfCurrent(ctx, refreshToken)
		return Session{}, pkgerrors.New(pkgerrors.CodeAuthExpired, "refresh response missing token")
	}

	s.mu.Lock()
	if s.session.RefreshToken != refreshToken || s.session.State() != LoggedIn {
		s.mu.Unlock()
		s.logg.Warn(ctx, "discarding refresh response for a replaced session")
		return Session{}, errStaleRefresh
	}
	user := resp.User
	if user == nil {
		user = s.session.User
	}
	nextRefresh := resp.RefreshToken
	if nextRefresh == "" {
		nextRefresh = refreshToken
	}
	if err := s.persistLocked(ctx, resp.AccessToken, nextRefresh, user); err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	snapshot := s.session.clone()
	s.mu.Unlock()

	s.logg.Debug(ctx, "access token refreshed")
	return snapshot, nil
}

var errStaleRefresh = pkgerrors.New(pkgerrors.CodeAuthExpired, "session changed during refresh")

// expireIfCurrent expires the session only while it still holds refreshToken.
func (s *Store) expireIfCurrent(ctx context.Context, refreshToken string) {
	changed, err := s.clearIf(ctx, func(cur Session) bool { return cur.RefreshToken == refreshToken })
	if changed {
		s.logg.Warn(ctx, "session expired; credentials cleared")
	}
	if err != nil {
		s.logg.Error(ctx, "failed to clear expired session", err)
	}
}

// Logout clears the token pair and profile. The anonymous session id stays.
func (s *Store) Logout(ctx context.Context) error {
	changed, err := s.clear(ctx)
	if changed {
		s.logg.Info(ctx, "logged out")
	}
	return err
}

// Expire is the transition taken when the backend rejects a bearer token. It
// has the same effect as Logout.
func (s *Store) Expire(ctx context.Context) error {
	changed, err := s.clear(ctx)
	if changed {
		s.logg.Warn(ctx, "session expired; credentials cleared")
	}
	return err
}

// AnonymousSessionID returns the guest cart id, creating and persisting one
// on first use.
func (s *Store) AnonymousSessionID(ctx context.Context) (string, error) {
	s.mu.RLock()
	id := s.session.AnonymousSessionID
	s.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.AnonymousSessionID != "" {
		return s.session.AnonymousSessionID, nil
	}
	id = fmt.Sprintf("%s-%d-%s", guestPrefix, s.now().UnixMilli(), s.newSuffix())
	if err := s.kv.SetMany(ctx, map[string]string{kv.KeySessionID: id}); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting anonymous session id")
	}
	s.session.AnonymousSessionID = id
	s.logg.Debug(s.logg.WithSessionID(ctx, id), "created anonymous session id")
	return id, nil
}

// UpdateProfile replaces the cached profile, for example after /api/auth/me.
// It is a no-op while logged out.
func (s *Store) UpdateProfile(ctx context.Context, user types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.State() != LoggedIn {
		return nil
	}
	return s.writeUserLocked(ctx, user)
}

// DeductPoint lowers the cached point balance after a successful order. The
// balance never goes below zero.
func (s *Store) DeductPoint(ctx context.Context, amount int) error {
	if amount <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.User == nil {
		return nil
	}
	user := *s.session.User
	user.Point = max(0, user.Point-amount)
	return s.writeUserLocked(ctx, user)
}

func (s *Store) writeUserLocked(ctx context.Context, user types.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding profile")
	}
	if err := s.kv.SetMany(ctx, map[string]string{kv.KeyUser: string(raw)}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting profile")
	}
	s.session.User = &user
	return nil
}

func (s *Store) persistLocked(ctx context.Context, accessToken, refreshToken string, user *types.User) error {
	values := map[string]string{
		kv.KeyAccessToken:  accessToken,
		kv.KeyRefreshToken: refreshToken,
	}
	var cached *types.User
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding profile")
		}
		values[kv.KeyUser] = string(raw)
		u := *user
		cached = &u
	}
	if err := s.kv.SetMany(ctx, values); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting session")
	}
	s.session.AccessToken = accessToken
	s.session.RefreshToken = refreshToken
	s.session.User = cached
	return nil
}

// clear drops the credentials in memory even when the persistent delete fails,
// so a rejected token is never sent again by this process.
func (s *Store) clear(ctx context.Context) (bool, error) {
	return s.clearIf(ctx, nil)
}

// clearIf clears the session when match is nil or accepts the current one.
func (s *Store) clearIf(ctx context.Context, match func(Session) bool) (bool, error) {
	s.mu.Lock()
	if match != nil && !match(s.session) {
		s.mu.Unlock()
		return false, nil
	}
	wasLoggedIn := s.session.State() == LoggedIn
	s.session.AccessToken = ""
	s.session.RefreshToken = ""
	s.session.User = nil
	err := s.kv.Delete(ctx, kv.KeyAccessToken, kv.KeyRefreshToken, kv.KeyUser)
	listeners := s.listeners
	s.mu.Unlock()

	if wasLoggedIn {
		notify(listeners, LoggedOut)
	}
	if err != nil {
		return wasLoggedIn, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing session")
	}
	return wasLoggedIn, nil
}

func (s *Store) authenticator() Authenticator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

func (s *Store) userID() int64 {
	if s.session.User != nil {
		return s.session.User.ID
	}
	claims, err := auth.InspectAccessToken(s.session.AccessToken)
	if err != nil {
		return 0
	}
	id, _ := claims.UserID()
	return id
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}

func asAuthFailed(err error) error {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeNetwork, pkgerrors.CodeValidation:
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeAuthFailed, err, "backend login rejected")
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// ParseGuestID splits a guest id into its creation time and suffix.
func ParseGuestID(id string) (time.Time, string, bool) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 || parts[0] != guestPrefix || parts[2] == "" {
		return time.Time{}, "", false
	}
	millis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, "", false
	}
	return time.UnixMilli(millis), parts[2], true
}
