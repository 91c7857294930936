package logger

import "log/slog"

// tokenPrefixLen is how much of a session token may appear in logs.
const tokenPrefixLen = 6

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// Empty ids produce an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Token records a session token under the key "token", truncated so that a
// log reader cannot replay it.
func Token(token string) slog.Attr {
	if len(token) > tokenPrefixLen {
		token = token[:tokenPrefixLen] + "…"
	}
	return slog.String("token", token)
}

// State records the session request state under the key "state".
func State(state string) slog.Attr {
	return slog.String("state", state)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Count records a number of affected items under the key "count".
func Count(n int64) slog.Attr {
	return slog.Int64("count", n)
}
