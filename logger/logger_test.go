package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"opecbrain/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", slog.String("object", "CAIXA 1"))

	out := buf.String()
	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`object="CAIXA 1"`)) {
		t.Fatalf("missing attribute: %s", out)
	}
}

func TestNew_RotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "opecbrain.log")
	l, closer := New(config.LogConfig{Level: "info"}, path)

	rot, ok := closer.(*lj.Logger)
	if !ok {
		t.Fatalf("closer is %T, want *lumberjack.Logger", closer)
	}
	if rot.MaxSize != DefaultMaxSizeMB || rot.MaxBackups != DefaultMaxBackups || rot.MaxAge != DefaultMaxAgeDays {
		t.Fatalf("defaults not applied: %+v", rot)
	}

	l.Info("storage ready")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !bytes.Contains(data, []byte("storage ready")) {
		t.Fatalf("log file content: %s", data)
	}
}

func TestNew_Stderr(t *testing.T) {
	l, closer := New(config.LogConfig{Level: "error"}, "")
	if l == nil {
		t.Fatal("nil logger")
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
