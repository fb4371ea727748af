package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogger(t *testing.T, buf *bytes.Buffer, level, format string) {
	t.Helper()
	InitWithWriter(buf, level, format, false)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf, "WARN", "text")

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf, "ERROR", "text")

	Info("should be filtered")
	assert.Empty(t, buf.String())

	SetLevel("DEBUG")
	buf.Reset()
	Debug("should appear now")
	assert.Contains(t, buf.String(), "should appear now")

	SetLevel("bogus")
	buf.Reset()
	Debug("still debug")
	assert.Contains(t, buf.String(), "still debug")
}

func TestMessageFormatting(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf, "DEBUG", "text")

	Info("file registered", KeyFileID, uint64(42), KeyFilename, "report.pdf")
	out := buf.String()
	assert.Contains(t, out, "file registered")
	assert.Contains(t, out, "report.pdf")
}

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
		Level(99):  "UNKNOWN",
	}
	for lvl, want := range cases {
		assert.Equal(t, want, lvl.String())
	}
}

func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf, "DEBUG", "json")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Info("concurrent", "n", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 50)
}

func TestDefaultBehavior(t *testing.T) {
	assert.Equal(t, LevelDebug, Level(0))
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf, "DEBUG", "json")

	Info("session started", KeyPeerName, "alice")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "session started", decoded["msg"])
	assert.Equal(t, "alice", decoded[KeyPeerName])
}

func TestFormatSwitching(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf, "DEBUG", "text")

	Info("text line")
	assert.False(t, json.Valid(buf.Bytes()))

	buf.Reset()
	SetFormat("json")
	Info("json line")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))

	buf.Reset()
	SetFormat("invalid")
	Info("still json")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestContextLogging(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf, "DEBUG", "json")

	rc := NewRequestContext("req-123", "10.0.0.5")
	rc = rc.WithOperation("searchFile").WithPeer("bob")
	ctx := WithContext(context.Background(), rc)

	InfoCtx(ctx, "handled rpc")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "req-123", decoded[KeyRequestID])
	assert.Equal(t, "searchFile", decoded[KeyOperation])
	assert.Equal(t, "bob", decoded[KeyPeerName])
	assert.Equal(t, "10.0.0.5", decoded[KeyClientIP])
}

func TestContextLoggingNoContext(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf, "DEBUG", "text")

	InfoCtx(context.Background(), "no request context attached")
	assert.Contains(t, buf.String(), "no request context attached")
}

func TestRequestContext(t *testing.T) {
	rc := NewRequestContext("req-1", "127.0.0.1")
	assert.Equal(t, "req-1", rc.RequestID)
	assert.Equal(t, "127.0.0.1", rc.ClientIP)
	assert.Empty(t, rc.Operation)
	assert.Empty(t, rc.PeerName)

	withOp := rc.WithOperation("connectToServer")
	assert.Equal(t, "connectToServer", withOp.Operation)
	assert.Empty(t, rc.Operation, "original must not mutate")

	withPeer := withOp.WithPeer("carol")
	assert.Equal(t, "carol", withPeer.PeerName)
	assert.Empty(t, withOp.PeerName, "original must not mutate")

	time.Sleep(time.Millisecond)
	assert.Greater(t, rc.DurationMs(), float64(0))

	var nilRC *RequestContext
	assert.Nil(t, nilRC.WithOperation("x"))
	assert.Nil(t, nilRC.WithPeer("x"))
	assert.Equal(t, float64(0), nilRC.DurationMs())
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, "", Err(nil).Key)
	assert.True(t, Err(nil).Equal(slog.Attr{}))

	assert.Equal(t, KeyFileID, FileID(7).Key)
	assert.Equal(t, KeySessionToken, RedactedToken().Key)
	assert.Equal(t, "[redacted]", RedactedToken().Value.String())
}

func TestEdgeCases(t *testing.T) {
	var buf bytes.Buffer
	resetLogger(t, &buf, "DEBUG", "text")

	Info("")
	assert.NotEmpty(t, buf.String())

	buf.Reset()
	Info("odd args", "unpaired")
	assert.Contains(t, buf.String(), "odd args")
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "", "", false)

	err := Init(Config{Level: "WARN", Format: "json"})
	require.NoError(t, err)

	buf.Reset()
	Info("filtered")
	assert.Empty(t, buf.String())

	Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func BenchmarkLogDisabled(b *testing.B) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "ERROR", "text", false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Debug("benchmark disabled")
	}
}

func BenchmarkLogText(b *testing.B) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "DEBUG", "text", false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		Info("benchmark text")
	}
}

func BenchmarkLogJSON(b *testing.B) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "DEBUG", "json", false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		Info("benchmark json")
	}
}

func BenchmarkLogCtx(b *testing.B) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "DEBUG", "json", false)
	ctx := WithContext(context.Background(), NewRequestContext("req-bench", "127.0.0.1"))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		InfoCtx(ctx, "benchmark ctx")
	}
}
