package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmcdole/reel/internal/domain"
)

// SessionService manages the user side of the active connection
type SessionService struct {
	sources  sourceResolver
	sessions sessionStore
	logger   *slog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(sessions sessionStore, factory domain.SourceFactory, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		sources:  sourceResolver{sessions: sessions, factory: factory},
		sessions: sessions,
		logger:   logger,
	}
}

// RefreshUser refetches the user behind the active connection's token and
// stores it in the session. A rejected token clears the session user.
func (s *SessionService) RefreshUser(ctx context.Context) (*domain.User, error) {
	src, err := s.sources.source()
	if err != nil {
		return nil, err
	}

	user, err := src.GetCurrentUser(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthFailed) {
			s.sessions.SetUser(nil)
		}
		s.logger.Warn("failed to refresh user", "error", err)
		return nil, err
	}

	s.sessions.SetUser(user)
	return user, nil
}

// Logout deactivates the current connection. Tokens stay stored and nothing is revoked server-side.
func (s *SessionService) Logout() error {
	return s.sessions.Logout()
}
