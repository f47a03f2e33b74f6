package service

import (
	"github.com/mmcdole/reel/internal/domain"
)

// sessionStore is the part of session.Service the services read and write
// (consumer-defined interface)
type sessionStore interface {
	ActiveConnection() *domain.Connection
	RecordWatch(video domain.Video) error
	WatchHistory() []domain.Video
	SetUser(user *domain.User)
	Logout() error
}

// sourceResolver builds a client for whatever connection is active at call time
type sourceResolver struct {
	sessions sessionStore
	factory  domain.SourceFactory
}

func (r sourceResolver) source() (domain.MediaSource, error) {
	conn := r.sessions.ActiveConnection()
	if conn == nil {
		return nil, domain.ErrNoActiveConnection
	}
	return r.factory(*conn), nil
}
