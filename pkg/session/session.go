// Package session tracks the validity of a client-held session token and
// forces a logout when its expiry claim lapses, independent of any server
// interaction.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// State is the session lifecycle state.
type State int

const (
	Uninitialized State = iota
	Authenticated
	LoggedOut
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case LoggedOut:
		return "logged_out"
	default:
		return "uninitialized"
	}
}

// Reason explains why a logout happened.
type Reason string

const (
	ReasonExpired  Reason = "expired"
	ReasonExplicit Reason = "logout"
	ReasonInvalid  Reason = "invalid-token"
)

var ErrInvalidToken = errors.New("session: token has no usable expiry claim")

// DefaultMaxChunk mirrors the largest single delay 32-bit timer primitives
// accept (~24.8 days); longer waits are split into successive bounded waits.
const DefaultMaxChunk = 2147483647 * time.Millisecond

// Claims are the identity fields decoded from the held token. The signature
// is not verified client-side; the server remains the authority.
type Claims struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxChunk caps the longest single wait the expiry timer performs.
func WithMaxChunk(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.maxChunk = d
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// Manager owns the client session: it loads a previously stored token,
// watches its expiry, and transitions Uninitialized → Authenticated →
// Expired/LoggedOut. At most one expiry timer is pending at a time;
// re-arming cancels the previous one so a token change cannot produce
// duplicate forced logouts.
type Manager struct {
	mu        sync.Mutex
	store     Store
	state     State
	token     string
	claims    *Claims
	maxChunk  time.Duration
	now       func() time.Time
	cancel    chan struct{}
	listeners []func(Reason)
	log       zerolog.Logger
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		state:    Uninitialized,
		maxChunk: DefaultMaxChunk,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnLogout registers an observer invoked on every logout, explicit or forced.
// Observers run outside the manager lock.
func (m *Manager) OnLogout(fn func(Reason)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Init loads the stored token. An already-expired or undecodable token is
// discarded and the session starts logged out; otherwise the session is
// authenticated and a single expiry timer is armed.
func (m *Manager) Init() (State, error) {
	token, err := m.store.Load()
	if err != nil {
		return Uninitialized, err
	}
	if token == "" {
		m.mu.Lock()
		m.state = LoggedOut
		m.mu.Unlock()
		return LoggedOut, nil
	}

	claims, err := decodeClaims(token)
	if err != nil || !claims.ExpiresAt.After(m.now()) {
		_ = m.store.Clear()
		m.mu.Lock()
		m.state = LoggedOut
		m.mu.Unlock()
		m.log.Debug().Msg("stored token discarded at init")
		return LoggedOut, nil
	}

	m.mu.Lock()
	m.token = token
	m.claims = claims
	m.state = Authenticated
	m.arm(claims.ExpiresAt)
	m.mu.Unlock()
	return Authenticated, nil
}

// SetToken installs a freshly issued token (login or register), persists it,
// and re-arms the expiry timer, cancelling any pending one first.
func (m *Manager) SetToken(token string) error {
	claims, err := decodeClaims(token)
	if err != nil {
		return err
	}
	if !claims.ExpiresAt.After(m.now()) {
		return ErrInvalidToken
	}
	if err := m.store.Save(token); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = token
	m.claims = claims
	m.state = Authenticated
	m.arm(claims.ExpiresAt)
	m.mu.Unlock()
	return nil
}

// Logout ends the session explicitly: the pending timer is cancelled, the
// stored token discarded, and observers notified.
func (m *Manager) Logout() {
	m.logout(ReasonExplicit)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token returns the held token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Claims returns the decoded identity, or nil when logged out.
func (m *Manager) Claims() *Claims {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims
}

// IsAdmin reports whether the held token carries the admin role.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims != nil && m.claims.Role == "admin"
}

// arm starts the expiry wait. Callers must hold m.mu. The wait for a distant
// expiry is split into chunks no longer than maxChunk; only the goroutine
// holding the current cancel channel may force the logout, so a superseded
// timer can never fire.
func (m *Manager) arm(expiry time.Time) {
	if m.cancel != nil {
		close(m.cancel)
	}
	cancel := make(chan struct{})
	m.cancel = cancel
	go m.wait(expiry, cancel)
}

func (m *Manager) wait(expiry time.Time, cancel chan struct{}) {
	for {
		remaining := expiry.Sub(m.now())
		if remaining <= 0 {
			m.expire(cancel)
			return
		}
		chunk := remaining
		if chunk > m.maxChunk {
			chunk = m.maxChunk
		}

		timer := time.NewTimer(chunk)
		select {
		case <-cancel:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// expire forces the logout, unless this timer has been superseded. The
// supersession check and the teardown happen under one lock acquisition so a
// concurrent SetToken cannot slip a fresh session in between.
func (m *Manager) expire(cancel chan struct{}) {
	m.mu.Lock()
	if m.cancel != cancel {
		m.mu.Unlock()
		return
	}
	listeners := m.clearLocked()
	m.mu.Unlock()

	m.log.Info().Msg("session token expired, forcing logout")
	m.notify(listeners, ReasonExpired)
}

func (m *Manager) logout(reason Reason) {
	m.mu.Lock()
	listeners := m.clearLocked()
	m.mu.Unlock()
	m.notify(listeners, reason)
}

// clearLocked tears the session down. Callers must hold m.mu.
func (m *Manager) clearLocked() []func(Reason) {
	if m.cancel != nil {
		close(m.cancel)
		m.cancel = nil
	}
	m.token = ""
	m.claims = nil
	m.state = LoggedOut
	listeners := make([]func(Reason), len(m.listeners))
	copy(listeners, m.listeners)
	return listeners
}

func (m *Manager) notify(listeners []func(Reason), reason Reason) {
	_ = m.store.Clear()
	for _, fn := range listeners {
		fn(reason)
	}
}

// decodeClaims parses the token without verifying the signature and extracts
// the identity fields plus the expiry instant.
func decodeClaims(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	out := &Claims{ExpiresAt: exp.Time}
	if sub, err := claims.GetSubject(); err == nil {
		out.UserID = sub
	}
	if v, ok := claims["email"].(string); ok {
		out.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		out.Name = v
	}
	if v, ok := claims["role"].(string); ok {
		out.Role = v
	}
	return out, nil
}
