// Package auth owns the donor session lifecycle: login, signup, logout,
// token refresh scheduling, and the persisted credential record. It is the
// single writer of the session state; UI surfaces only read.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/matrixvert/donorcli/auth/refresh"
	"github.com/matrixvert/donorcli/credstore"
	"github.com/matrixvert/donorcli/donation"
	"github.com/matrixvert/donorcli/session"
)

// State is the auth lifecycle position of the running app.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	}
	return "unknown"
}

// API is the slice of the platform client the auth service drives.
type API interface {
	Login(ctx context.Context, email, password string) (donation.TokenPair, error)
	Register(ctx context.Context, name, email, password string) (donation.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (donation.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

// Service orchestrates the auth endpoints, the credential store, the
// in-memory session and the refresh coordinator. On success tokens land in
// the store and the session together; a failed refresh tears both down.
type Service struct {
	api      API
	store    credstore.Store
	sess     *session.Session
	coord    *refresh.Coordinator
	cooldown *Cooldown
	log      zerolog.Logger
	nowTime  func() time.Time

	mu           sync.Mutex
	state        State
	userErr      string
	onSessionEnd func()

	cooldownTick time.Duration
	coordOptions []refresh.CoordinatorOption
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithSessionEndHook registers the navigation callback fired when the
// session ends, by logout or by a failed refresh. The UI collaborator
// redirects to its login screen here.
func WithSessionEndHook(hook func()) ServiceOption {
	return func(s *Service) {
		s.onSessionEnd = hook
	}
}

// WithCooldownTick overrides the one-second cooldown decrement (testing).
func WithCooldownTick(tick time.Duration) ServiceOption {
	return func(s *Service) {
		s.cooldownTick = tick
	}
}

// WithCoordinatorOptions forwards options to the refresh coordinator
// (testing).
func WithCoordinatorOptions(options ...refresh.CoordinatorOption) ServiceOption {
	return func(s *Service) {
		s.coordOptions = options
	}
}

// NewService wires an auth service from its dependencies.
func NewService(api API, store credstore.Store, sess *session.Session, log zerolog.Logger, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("[NewService] api is required")
	}
	if store == nil {
		return nil, fmt.Errorf("[NewService] store is required")
	}
	if sess == nil {
		return nil, fmt.Errorf("[NewService] session is required")
	}

	s := &Service{
		api:          api,
		store:        store,
		sess:         sess,
		log:          log.With().Str("component", "auth").Logger(),
		nowTime:      time.Now,
		state:        StateUnauthenticated,
		cooldownTick: time.Second,
	}
	for _, opt := range options {
		opt(s)
	}
	s.cooldown = NewCooldown(s.cooldownTick)
	s.coord = refresh.NewCoordinator(s.doRefresh, log, s.coordOptions...)
	return s, nil
}

// Login authenticates with email and password. While a rate-limit cooldown
// is running, the attempt is rejected locally without a network call.
func (s *Service) Login(ctx context.Context, email, password string) error {
	if remaining := s.cooldown.Remaining(); remaining > 0 {
		err := &RateLimitedError{RetryAfter: time.Duration(remaining) * time.Second}
		s.setUserErr(err.Error())
		return err
	}

	if err := validateLogin(email, password); err != nil {
		s.setUserErr("Please fill in all fields.")
		return err
	}

	s.setState(StateAuthenticating)
	pair, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.setState(StateUnauthenticated)
		return s.mapLoginError(err)
	}

	if err := s.adopt(pair); err != nil {
		s.setState(StateUnauthenticated)
		return fmt.Errorf("[Service.Login] %w", err)
	}
	s.setState(StateAuthenticated)
	s.ResetError()
	s.log.Info().Str("email", email).Msg("login succeeded")
	return nil
}

// Signup registers a new donor account. termsAccepted mirrors the signup
// form's terms-of-use checkbox.
func (s *Service) Signup(ctx context.Context, name, email, password string, termsAccepted bool) error {
	if err := validateSignup(name, email, password, termsAccepted); err != nil {
		s.setUserErr(err.Error())
		return err
	}

	s.setState(StateAuthenticating)
	pair, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		s.setState(StateUnauthenticated)
		return s.mapSignupError(err)
	}

	if err := s.adopt(pair); err != nil {
		s.setState(StateUnauthenticated)
		return fmt.Errorf("[Service.Signup] %w", err)
	}
	s.setState(StateAuthenticated)
	s.ResetError()
	s.log.Info().Str("email", email).Msg("signup succeeded")
	return nil
}

// Refresh requests a token refresh through the coordinator. A concurrent
// refresh already in flight absorbs the call.
func (s *Service) Refresh(ctx context.Context) {
	s.coord.Trigger(ctx)
}

// Logout ends the session. The remote call is best effort: its failure is
// logged and local state is cleared regardless. Safe to call repeatedly.
func (s *Service) Logout(ctx context.Context) {
	if accessToken := s.sess.Snapshot().AccessToken; accessToken != "" {
		if err := s.api.Logout(ctx, accessToken); err != nil {
			s.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
		}
	}
	s.endSession("logout")
}

// Restore adopts credentials persisted by a previous run. Absent credentials
// leave the service unauthenticated without error.
func (s *Service) Restore(ctx context.Context) error {
	accessToken, err := s.store.Load(credstore.KeyAccessToken)
	if errors.Is(err, credstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("[Service.Restore] load access token: %w", err)
	}

	refreshToken, err := s.store.Load(credstore.KeyRefreshToken)
	if errors.Is(err, credstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("[Service.Restore] load refresh token: %w", err)
	}

	lifetime := remainingLifetime(accessToken, s.nowTime())
	if lifetime == 0 {
		if stored, err := s.store.Load(credstore.KeyExpiresIn); err == nil {
			lifetime, _ = strconv.Atoi(stored)
		}
	}

	s.sess.Set(accessToken, refreshToken, lifetime)
	s.setState(StateAuthenticated)

	if lifetime > 0 {
		s.coord.Arm(time.Duration(lifetime) * time.Second)
	} else {
		// Stored token may already be stale; refresh now rather than wait
		// for a 401.
		s.coord.Trigger(ctx)
	}
	s.log.Debug().Int("lifetime_s", lifetime).Msg("session restored from credential store")
	return nil
}

// doRefresh is the coordinator's refresh function. Any failure is
// unrecoverable: the refresh token is no longer good, so the session and the
// credential store are cleared and the session-end hook fires.
func (s *Service) doRefresh(ctx context.Context) error {
	refreshToken := s.sess.Snapshot().RefreshToken
	if refreshToken == "" {
		stored, err := s.store.Load(credstore.KeyRefreshToken)
		if err != nil {
			return ErrNotAuthenticated
		}
		refreshToken = stored
	}

	s.setState(StateRefreshing)
	pair, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("token refresh failed, ending session")
		s.endSession("refresh failed")
		return fmt.Errorf("[Service.Refresh] %w: %v", ErrRefreshFailed, err)
	}

	if err := s.adopt(pair); err != nil {
		// The store and the session may no longer agree; end the session
		// rather than run on diverged credentials.
		s.log.Error().Err(err).Msg("persisting refreshed tokens failed, ending session")
		s.endSession("refresh persistence failed")
		return fmt.Errorf("[Service.Refresh] %w: %v", ErrRefreshFailed, err)
	}
	s.setState(StateAuthenticated)
	s.log.Debug().Msg("token refreshed")
	return nil
}

// adopt persists a token pair and makes it the live session, then re-arms
// the refresh timer. Store and session converge before adopt returns.
func (s *Service) adopt(pair donation.TokenPair) error {
	lifetime := tokenLifetime(pair.AccessToken, pair.ExpiresIn, s.nowTime())

	if err := s.store.Save(credstore.KeyAccessToken, pair.AccessToken); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	if err := s.store.Save(credstore.KeyRefreshToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	if err := s.store.Save(credstore.KeyExpiresIn, strconv.Itoa(lifetime)); err != nil {
		return fmt.Errorf("persist expiry: %w", err)
	}

	s.sess.Set(pair.AccessToken, pair.RefreshToken, lifetime)

	if lifetime > 0 {
		s.coord.Arm(time.Duration(lifetime) * time.Second)
	} else {
		s.log.Warn().Msg("token has no known lifetime, relying on reactive refresh")
	}
	return nil
}

// endSession clears every trace of the session: timer, credential store,
// in-memory state. Fires the session-end hook so the UI can navigate to its
// login surface.
func (s *Service) endSession(reason string) {
	s.coord.Disarm()
	for _, key := range []string{credstore.KeyAccessToken, credstore.KeyRefreshToken, credstore.KeyExpiresIn} {
		if err := s.store.Delete(key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("clearing credential failed")
		}
	}
	s.sess.Clear()
	s.setState(StateUnauthenticated)
	s.log.Info().Str("reason", reason).Msg("session ended")

	s.mu.Lock()
	hook := s.onSessionEnd
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (s *Service) mapLoginError(err error) error {
	var apiErr *donation.APIError
	if !errors.As(err, &apiErr) {
		s.setUserErr("Network unavailable. Check your connection.")
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	switch apiErr.StatusCode {
	case 401:
		s.setUserErr("Invalid email or password.")
		return ErrInvalidCredentials
	case 429:
		retryAfter := apiErr.RetryAfter
		if retryAfter <= 0 {
			retryAfter = DefaultCooldownSeconds
		}
		s.cooldown.Start(retryAfter)
		rateErr := &RateLimitedError{RetryAfter: time.Duration(retryAfter) * time.Second}
		s.setUserErr(rateErr.Error())
		return rateErr
	default:
		s.setUserErr(serverOr(apiErr, "Something went wrong. Try again later."))
		return fmt.Errorf("%w: %v", ErrServer, apiErr)
	}
}

func (s *Service) mapSignupError(err error) error {
	var apiErr *donation.APIError
	if !errors.As(err, &apiErr) {
		s.setUserErr("Network unavailable. Check your connection.")
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	s.setUserErr(serverOr(apiErr, "Invalid email."))
	return fmt.Errorf("%w: %v", ErrServer, apiErr)
}

func serverOr(apiErr *donation.APIError, fallback string) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsAuthenticated reports whether the session holds an access token.
func (s *Service) IsAuthenticated() bool {
	return s.sess.IsAuthenticated()
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CanSubmit reports whether a login attempt may be submitted; false while
// the rate-limit cooldown is counting down.
func (s *Service) CanSubmit() bool {
	return !s.cooldown.Active()
}

// CooldownRemaining returns the seconds left of the rate-limit cooldown.
func (s *Service) CooldownRemaining() int {
	return s.cooldown.Remaining()
}

// Err returns the held user-facing error string, empty when none.
func (s *Service) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userErr
}

// ResetError clears the held user-facing error string.
func (s *Service) ResetError() {
	s.setUserErr("")
}

// Token implements donation.Authenticator: the bearer token for protected
// calls.
func (s *Service) Token() string {
	return s.sess.Snapshot().AccessToken
}

// Invalidated implements donation.Authenticator: a protected call saw a 401,
// so run a guarded refresh before the transport retries.
func (s *Service) Invalidated(ctx context.Context) {
	s.coord.Trigger(ctx)
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != state {
		s.log.Debug().Stringer("from", s.state).Stringer("to", state).Msg("state change")
		s.state = state
	}
}

func (s *Service) setUserErr(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userErr = message
}
