package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/mmcdole/reel/internal/domain"
)

// MaxHistory bounds the watch history
const MaxHistory = 50

// Login failure messages used when the server gave no detail
const (
	MsgLoginFailed       = "Login failed. Please check your credentials."
	MsgServerUnreachable = "Login failed. Could not reach the server."
)

// Authenticator performs the credential exchange and identity lookup for Login
// (consumer-defined interface, implemented by mediacms.Authenticator)
type Authenticator interface {
	Login(ctx context.Context, baseURL, username, password string) (string, error)
	WhoAmI(ctx context.Context, baseURL, token string) (*domain.User, error)
}

// Option customizes a Service
type Option func(*Service)

// WithIDGenerator replaces the connection ID generator (uuid by default)
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Service is the single source of truth for known connections, the active
// connection, the logged-in user and the watch history. Every mutation is
// persisted to the key-value store before it becomes visible in memory.
type Service struct {
	kv     domain.KeyValueStore
	auth   Authenticator
	logger *slog.Logger
	newID  func() string

	mu       sync.Mutex
	state    State
	inflight int // Logins in progress
}

// NewService creates a session service over kv. auth may be nil when Login is never used.
func NewService(kv domain.KeyValueStore, auth Authenticator, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		kv:     kv,
		auth:   auth,
		logger: logger,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadConnections reads the persisted connections and active pointer.
// Failures are logged and leave the defaults in place; startup never blocks on them.
func (s *Service) LoadConnections() {
	conns, _, err := loadJSON[[]domain.Connection](s.kv, KeyConnections)
	if err != nil {
		s.logger.Error("failed to load connections", "error", err)
		return
	}
	active, _, err := loadJSON[*domain.Connection](s.kv, KeyActive)
	if err != nil {
		s.logger.Error("failed to load active connection", "error", err)
		return
	}

	s.mu.Lock()
	s.state.Connections = conns
	s.state.Active = active
	s.mu.Unlock()

	s.logger.Debug("loaded connections", "count", len(conns), "active", active != nil)
}

// LoadWatchHistory reads the persisted watch history. Failures are logged and leave it empty.
func (s *Service) LoadWatchHistory() {
	history, _, err := loadJSON[[]domain.Video](s.kv, KeyHistory)
	if err != nil {
		s.logger.Error("failed to load watch history", "error", err)
		return
	}
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}

	s.mu.Lock()
	s.state.History = history
	s.mu.Unlock()
}

// AddConnection appends conn and persists the full list. No de-duplication happens here.
func (s *Service) AddConnection(conn domain.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns := append(cloneSlice(s.state.Connections), conn)
	if err := s.saveConnections(conns); err != nil {
		return err
	}
	s.state.Connections = conns
	s.logger.Info("added connection", "id", conn.ID, "url", conn.URL)
	return nil
}

// NewConnection builds a connection record for baseURL with a fresh ID.
// The URL is normalized the same way Login does.
func (s *Service) NewConnection(rawURL, username, token string) domain.Connection {
	baseURL := NormalizeURL(rawURL)
	return domain.Connection{
		ID:       s.newID(),
		Name:     domain.HostName(baseURL),
		URL:      baseURL,
		Username: username,
		Token:    token,
	}
}

// RemoveConnection deletes the connection with id. Removing the active
// connection also clears the active pointer and the session user.
// Unknown ids are a no-op.
func (s *Service) RemoveConnection(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns := make([]domain.Connection, 0, len(s.state.Connections))
	for _, c := range s.state.Connections {
		if c.ID != id {
			conns = append(conns, c)
		}
	}
	if len(conns) == len(s.state.Connections) {
		return nil
	}

	if err := s.saveConnections(conns); err != nil {
		return err
	}
	s.state.Connections = conns

	if s.state.Active != nil && s.state.Active.ID == id {
		if err := s.saveActive(nil); err != nil {
			return err
		}
		s.state.Active = nil
		s.state.User = nil
	}

	s.logger.Info("removed connection", "id", id)
	return nil
}

// SetActiveConnection selects conn, or clears the selection when conn is nil.
// It does not fetch the user; switching to a different connection drops the session user.
func (s *Service) SetActiveConnection(conn *domain.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setActiveLocked(clonePtr(conn))
}

func (s *Service) setActiveLocked(conn *domain.Connection) error {
	if err := s.saveActive(conn); err != nil {
		return err
	}
	if conn == nil || s.state.Active == nil || s.state.Active.ID != conn.ID {
		s.state.User = nil
	}
	s.state.Active = conn
	return nil
}

// Login authenticates against rawURL, stores or updates the matching connection,
// makes it active and records the user. Failures are *domain.AuthenticationError
// and leave no partial state behind.
func (s *Service) Login(ctx context.Context, rawURL, username, password string) (domain.Connection, error) {
	s.setBusy(true)
	defer s.setBusy(false)

	if s.auth == nil {
		return domain.Connection{}, &domain.AuthenticationError{Message: MsgLoginFailed, Err: errors.New("no authenticator configured")}
	}

	baseURL := NormalizeURL(rawURL)
	s.logger.Info("logging in", "url", baseURL, "username", username)

	token, err := s.auth.Login(ctx, baseURL, username, password)
	if err != nil {
		s.logger.Error("login failed", "url", baseURL, "error", err)
		return domain.Connection{}, loginError(err)
	}

	user, err := s.auth.WhoAmI(ctx, baseURL, token)
	if err != nil {
		s.logger.Error("failed to fetch user after login", "url", baseURL, "error", err)
		return domain.Connection{}, loginError(err)
	}

	return s.commitLogin(baseURL, username, token, user)
}

func (s *Service) commitLogin(baseURL, username, token string, user *domain.User) (domain.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns := cloneSlice(s.state.Connections)
	var (
		conn  domain.Connection
		found bool
	)
	for i := range conns {
		if conns[i].URL == baseURL && conns[i].Username == username {
			conns[i].Token = token
			if !found {
				conn = conns[i]
				found = true
			}
		}
	}
	if !found {
		conn = domain.Connection{
			ID:       s.newID(),
			Name:     domain.HostName(baseURL),
			URL:      baseURL,
			Username: username,
			Token:    token,
		}
		conns = append(conns, conn)
	}

	prev := s.state.Connections
	if err := s.saveConnections(conns); err != nil {
		return domain.Connection{}, err
	}
	s.state.Connections = conns

	if err := s.setActiveLocked(clonePtr(&conn)); err != nil {
		if rbErr := s.saveConnections(prev); rbErr != nil {
			s.logger.Error("failed to roll back connections after login", "error", rbErr)
		}
		s.state.Connections = prev
		return domain.Connection{}, err
	}
	s.state.User = clonePtr(user)

	s.logger.Info("logged in", "id", conn.ID, "url", conn.URL, "updated", found)
	return conn, nil
}

// loginError converts any login failure into a single user-facing message:
// the server's detail when present, otherwise a generic message that
// distinguishes unreachable servers from rejected credentials.
func loginError(err error) error {
	var statusErr *domain.HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.Detail != "" {
		return &domain.AuthenticationError{Message: statusErr.Detail, Err: err}
	}
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) {
		return &domain.AuthenticationError{Message: MsgServerUnreachable, Err: err}
	}
	return &domain.AuthenticationError{Message: MsgLoginFailed, Err: err}
}

// Logout clears the active connection and user. The connection and its token
// stay in the known list; nothing is revoked on the server.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveActive(nil); err != nil {
		return err
	}
	s.state.Active = nil
	s.state.User = nil
	s.logger.Info("logged out")
	return nil
}

// SetUser replaces the session user (e.g. after refreshing it from the server)
func (s *Service) SetUser(user *domain.User) {
	s.mu.Lock()
	s.state.User = clonePtr(user)
	s.mu.Unlock()
}

// RecordWatch moves video to the front of the history, dropping any older
// entry with the same token and anything beyond MaxHistory.
func (s *Service) RecordWatch(video domain.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Video, 0, min(len(s.state.History)+1, MaxHistory))
	next = append(next, video)
	for _, v := range s.state.History {
		if len(next) == MaxHistory {
			break
		}
		if v.Token != video.Token {
			next = append(next, v)
		}
	}

	if err := s.saveHistory(next); err != nil {
		return err
	}
	s.state.History = next
	return nil
}

func (s *Service) setBusy(busy bool) {
	s.mu.Lock()
	if busy {
		s.inflight++
	} else if s.inflight > 0 {
		s.inflight--
	}
	s.state.Busy = s.inflight > 0
	s.mu.Unlock()
}

// Snapshot returns a copy of the full state
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Connections returns a copy of the known connections
func (s *Service) Connections() []domain.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSlice(s.state.Connections)
}

// ActiveConnection returns the active connection, or nil
func (s *Service) ActiveConnection() *domain.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePtr(s.state.Active)
}

// CurrentUser returns the session user, or nil
func (s *Service) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePtr(s.state.User)
}

// WatchHistory returns a copy of the history, most recent first
func (s *Service) WatchHistory() []domain.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSlice(s.state.History)
}

// Busy reports whether a login is in flight
func (s *Service) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Busy
}

// FindConnection looks a connection up by ID, then by name or URL
func (s *Service) FindConnection(ref string) (domain.Connection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.Connections {
		if c.ID == ref {
			return c, true
		}
	}
	for _, c := range s.state.Connections {
		if c.Name == ref || c.URL == ref || c.URL == NormalizeURL(ref) {
			return c, true
		}
	}
	return domain.Connection{}, false
}
