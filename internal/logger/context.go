package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var requestContextKey = contextKey{}

// RequestContext holds request-scoped fields threaded through an RPC
// handler or a peer connection handler so every log line it emits carries
// the same correlation data without re-stating it at each call site.
type RequestContext struct {
	RequestID string // correlation ID, one per tracker RPC or peer connection
	Operation string // RPC name (connectToServer, searchFile, ...) or "peer.send"/"peer.download"
	PeerName  string // the authenticated peer's user name, once known
	ClientIP  string
	StartTime time.Time
}

// WithContext attaches rc to ctx.
func WithContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// FromContext retrieves the RequestContext previously attached to ctx, or
// nil if none is present.
func FromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	rc, _ := ctx.Value(requestContextKey).(*RequestContext)
	return rc
}

// NewRequestContext starts a RequestContext for a newly accepted request.
func NewRequestContext(requestID, clientIP string) *RequestContext {
	return &RequestContext{
		RequestID: requestID,
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// WithOperation returns a copy of rc with Operation set.
func (rc *RequestContext) WithOperation(op string) *RequestContext {
	if rc == nil {
		return nil
	}
	clone := *rc
	clone.Operation = op
	return &clone
}

// WithPeer returns a copy of rc with PeerName set, once authentication
// resolves which peer issued the request.
func (rc *RequestContext) WithPeer(name string) *RequestContext {
	if rc == nil {
		return nil
	}
	clone := *rc
	clone.PeerName = name
	return &clone
}

// DurationMs returns the time elapsed since StartTime in milliseconds.
func (rc *RequestContext) DurationMs() float64 {
	if rc == nil || rc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(rc.StartTime).Microseconds()) / 1000.0
}
