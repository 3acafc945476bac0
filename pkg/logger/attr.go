package logger

import "log/slog"

// tokenPrefixLen bounds how much of a session token ever reaches a log line.
const tokenPrefixLen = 8

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// SchoolID records the school identifier under the key "school_id".
func SchoolID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("school_id", id)
}

// Role records a role name under the key "role".
func Role(role string) slog.Attr {
	if role == "" {
		return slog.Attr{}
	}
	return slog.String("role", role)
}

// Token records a redacted session token under the key "token_prefix".
// Only the first few characters are ever logged.
func Token(token string) slog.Attr {
	if token == "" {
		return slog.Attr{}
	}
	if len(token) > tokenPrefixLen {
		token = token[:tokenPrefixLen]
	}
	return slog.String("token_prefix", token)
}
