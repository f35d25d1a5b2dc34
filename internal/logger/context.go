package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging identity: who is calling, which
// procedure, under which credentials. Handlers receive it through the
// request's context.Context and attach it to log lines via Fields.
type LogContext struct {
	XID        uint32    // RPC transaction id
	Procedure  string    // procedure name (READ, WRITE, MNT, GETPORT, ...)
	ClientIP   string    // client address
	UID        uint32    // effective user id, when AUTH_SYS was presented
	GID        uint32    // effective group id
	AuthFlavor uint32    // RPC auth flavor
	StartTime  time.Time // for duration calculation
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for a request arriving from clientIP.
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Fields renders lc as alternating key/value pairs ready to pass to
// Debug/Info/Warn/Error.
func (lc *LogContext) Fields() []any {
	if lc == nil {
		return nil
	}
	fields := []any{
		KeyXID, lc.XID,
		KeyProcedure, lc.Procedure,
		KeyClientIP, lc.ClientIP,
		KeyAuth, lc.AuthFlavor,
	}
	if lc.AuthFlavor == 1 { // AUTH_SYS carries a real identity
		fields = append(fields, KeyUID, lc.UID, KeyGID, lc.GID)
	}
	if !lc.StartTime.IsZero() {
		fields = append(fields, KeyDurationMS, Duration(lc.StartTime))
	}
	return fields
}

// DurationMs returns the elapsed milliseconds since the request started.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}
