package session

import (
	"encoding/json"
	"fmt"

	"github.com/mmcdole/reel/internal/domain"
)

// Persisted keys
const (
	KeyConnections = "mediacms_instances"
	KeyActive      = "current_instance"
	KeyHistory     = "watch_history"
)

// loadJSON reads and decodes key. A missing key returns the zero value and found=false.
func loadJSON[T any](kv domain.KeyValueStore, key string) (T, bool, error) {
	var v T
	raw, ok, err := kv.Get(key)
	if err != nil {
		return v, false, err
	}
	if !ok || raw == "" {
		return v, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, false, &domain.PersistenceParseError{Key: key, Err: err}
	}
	return v, true, nil
}

func saveJSON(kv domain.KeyValueStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

func (s *Service) saveConnections(conns []domain.Connection) error {
	if conns == nil {
		conns = []domain.Connection{}
	}
	return saveJSON(s.kv, KeyConnections, conns)
}

func (s *Service) saveActive(conn *domain.Connection) error {
	if conn == nil {
		if err := s.kv.Remove(KeyActive); err != nil {
			return fmt.Errorf("persist %s: %w", KeyActive, err)
		}
		return nil
	}
	return saveJSON(s.kv, KeyActive, conn)
}

func (s *Service) saveHistory(history []domain.Video) error {
	if history == nil {
		history = []domain.Video{}
	}
	return saveJSON(s.kv, KeyHistory, history)
}
