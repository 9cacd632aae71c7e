package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestRedactsSecrets(t *testing.T) {
	l, logs := observed()
	l.Info("backend ready", "provider", "anthropic", "api_key", "sk-123", "redis_dsn", "redis://u:p@h")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["provider"] != "anthropic" {
		t.Errorf("provider = %v, want anthropic", fields["provider"])
	}
	for _, k := range []string{"api_key", "redis_dsn"} {
		if fields[k] != "[REDACTED]" {
			t.Errorf("%s = %v, want [REDACTED]", k, fields[k])
		}
	}
}

func TestHashesStudent(t *testing.T) {
	l, logs := observed()
	l.With("student", "s-42").Debug("plan created")

	got, _ := logs.All()[0].ContextMap()["student"].(string)
	if !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Errorf("student = %q, want hash:<12 hex>", got)
	}
	if got != hashValue("s-42") {
		t.Errorf("student hash not stable: %q vs %q", got, hashValue("s-42"))
	}
}

func TestOddKeyValues(t *testing.T) {
	got := sanitizeKVs([]any{"a", 1, "dangling"})
	if len(got) != 3 || got[2] != "dangling" {
		t.Errorf("sanitizeKVs = %v", got)
	}
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "production"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) = %v", mode, err)
		}
		l.Debug("hello")
	}
	Nop().Error("discarded", "k", "v")
}
