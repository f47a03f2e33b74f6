package session

import "github.com/mmcdole/reel/internal/domain"

// Status is the connection-session state of the client
type Status int

const (
	StatusNoConnection Status = iota
	StatusConnecting
	StatusAuthenticated
	StatusGuest
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusAuthenticated:
		return "authenticated"
	case StatusGuest:
		return "guest"
	default:
		return "no connection"
	}
}

// State is a point-in-time copy of everything the session service holds
type State struct {
	Connections []domain.Connection
	Active      *domain.Connection
	User        *domain.User
	History     []domain.Video
	Busy        bool
}

// Status derives the state machine position from the snapshot
func (s State) Status() Status {
	switch {
	case s.Busy:
		return StatusConnecting
	case s.Active == nil:
		return StatusNoConnection
	case s.Active.Authenticated():
		return StatusAuthenticated
	default:
		return StatusGuest
	}
}

func (s State) clone() State {
	return State{
		Connections: cloneSlice(s.Connections),
		Active:      clonePtr(s.Active),
		User:        clonePtr(s.User),
		History:     cloneSlice(s.History),
		Busy:        s.Busy,
	}
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](in *T) *T {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
