package session

import (
	"encoding/json"
	"maps"
	"math"
	"time"
)

// Session is the unit of session state persisted under a single token.
type Session struct {
	Token     string         `json:"token"`
	UserID    string         `json:"user_id,omitempty"`
	Created   time.Time      `json:"created"`
	Updated   time.Time      `json:"updated"`
	Idle      time.Duration  `json:"idle"`
	Data      map[string]any `json:"data,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
}

// NewSession creates an anonymous session. Timestamps are kept at second
// precision, the same precision the store persists.
func NewSession(token string, idle time.Duration, ipAddress, userAgent string) *Session {
	now := unixNow()
	return &Session{
		Token:     token,
		Created:   now,
		Updated:   now,
		Idle:      idle,
		Data:      make(map[string]any),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// IsAuthenticated returns true if the session is bound to a user.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != ""
}

// IsExpired reports whether the session has been idle for longer than its
// idle timeout at the given moment.
func (s *Session) IsExpired(now time.Time) bool {
	if s == nil {
		return true
	}
	return s.Updated.Add(s.Idle).Before(now.Truncate(time.Second))
}

// ExpiresAt returns the moment the session becomes idle-expired.
func (s *Session) ExpiresAt() time.Time {
	return s.Updated.Add(s.Idle)
}

// SetUserID binds the session to an authenticated principal.
// An empty id turns it back into an anonymous session.
func (s *Session) SetUserID(id string) {
	if s == nil {
		return
	}
	s.UserID = id
}

func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	val, ok := s.Data[key]
	return val, ok
}

func (s *Session) GetString(key string) (string, bool) {
	val, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetInt returns an integer value. Values loaded from the store arrive as
// json.Number.
func (s *Session) GetInt(key string) (int, bool) {
	n, ok := s.GetInt64(key)
	return int(n), ok
}

// GetInt64 works like GetInt without narrowing to int.
func (s *Session) GetInt64(key string) (int64, bool) {
	val, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func (s *Session) GetBool(key string) (bool, bool) {
	val, ok := s.Get(key)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

func (s *Session) Set(key string, value any) {
	if s == nil {
		return
	}
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
}

func (s *Session) Delete(key string) {
	if s == nil || s.Data == nil {
		return
	}
	delete(s.Data, key)
}

// Clear drops all application data, keeping token and metadata.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.Data = make(map[string]any)
}

// touch moves Updated forward to now. Updated never goes backwards.
func (s *Session) touch(now time.Time) {
	now = now.Truncate(time.Second)
	if now.After(s.Updated) {
		s.Updated = now
	}
}

// clone returns a copy whose data map can be mutated independently.
func (s *Session) clone() *Session {
	c := *s
	if s.Data != nil {
		c.Data = maps.Clone(s.Data)
	}
	return &c
}

func unixNow() time.Time {
	return time.Unix(time.Now().Unix(), 0)
}
