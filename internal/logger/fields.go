package logger

import "log/slog"

// Structured log field keys. Kept as constants so a grep across the
// codebase finds every call site that logs a given piece of data.
const (
	KeyRequestID  = "request_id"
	KeyOperation  = "operation"
	KeyPeerName   = "peer_name"
	KeyClientIP   = "client_ip"
	KeyClientPort = "client_port"

	KeyFileID   = "file_id"
	KeyFilename = "filename"
	KeySize     = "size"

	KeySessionToken = "session_token" // always logged redacted, never the raw value
	KeyHostAddress  = "host_address"

	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyDurationMs = "duration_ms"

	KeyEvictedCount = "evicted_count"
	KeyActiveCount  = "active_count"
)

func RequestID(id string) slog.Attr  { return slog.String(KeyRequestID, id) }
func Operation(op string) slog.Attr  { return slog.String(KeyOperation, op) }
func PeerName(name string) slog.Attr { return slog.String(KeyPeerName, name) }
func ClientIP(ip string) slog.Attr   { return slog.String(KeyClientIP, ip) }
func ClientPort(port int) slog.Attr  { return slog.Int(KeyClientPort, port) }

func FileID(id uint64) slog.Attr     { return slog.Uint64(KeyFileID, id) }
func Filename(name string) slog.Attr { return slog.String(KeyFilename, name) }
func Size(bytes int64) slog.Attr     { return slog.Int64(KeySize, bytes) }

// RedactedToken logs that a token was present without leaking its value.
func RedactedToken() slog.Attr { return slog.String(KeySessionToken, "[redacted]") }

func HostAddress(addr string) slog.Attr { return slog.String(KeyHostAddress, addr) }

func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }

func DurationMsAttr(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

func EvictedCount(n int) slog.Attr { return slog.Int(KeyEvictedCount, n) }
func ActiveCount(n int) slog.Attr  { return slog.Int(KeyActiveCount, n) }
