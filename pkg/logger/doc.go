// Package logger builds configured log/slog loggers for the session
// platform.
//
// The factory reads its defaults from an env-tagged Config (JSON handler at
// INFO level unless overridden) and exposes functional options for output,
// level and static attributes. The attr helpers keep attribute keys
// consistent across packages; logger.Token never emits more than a short
// prefix of a session token.
package logger
