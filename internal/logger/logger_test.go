package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReleaseModeWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	log := New("release", Options{Dir: dir, Filename: "mara.log"})
	log.Info("cart_persist_failed", zap.String("op", "add_item"))
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "mara.log"))
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"message":"cart_persist_failed"`) || !strings.Contains(text, `"service":"mara-shop"`) {
		t.Fatalf("unexpected log content: %s", text)
	}
}

func TestDebugModeSkipsFile(t *testing.T) {
	dir := t.TempDir()
	log := New("debug", Options{Dir: dir, Filename: "debug.log"})
	log.Info("debug-only")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(dir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create a log file")
	}
}

func TestReleaseModeDefaultsToLogsDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	New("release", Options{})
	if _, err := os.Stat(filepath.Join(tmp, "logs", "app.log")); err != nil {
		t.Fatalf("default log file should be created: %v", err)
	}
}

func TestResolveLevel(t *testing.T) {
	cases := []struct {
		raw   string
		debug bool
		want  zapcore.Level
	}{
		{"", true, zapcore.DebugLevel},
		{"", false, zapcore.InfoLevel},
		{"warn", true, zapcore.WarnLevel},
		{"bogus", false, zapcore.InfoLevel},
	}
	for _, tc := range cases {
		if got := resolveLevel(tc.raw, tc.debug); got != tc.want {
			t.Fatalf("level(%q, %v) want %s got %s", tc.raw, tc.debug, tc.want, got)
		}
	}
}

func TestHelpersUseGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := L
	L = zap.New(core)
	t.Cleanup(func() { L = prev })

	SW("session_id", "s-1").Infow("cart_session_reissued")
	Warnw("cart_load_failed", "error", "boom")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("want 2 entries got %d", len(entries))
	}
	if entries[0].ContextMap()["session_id"] != "s-1" {
		t.Fatalf("context field missing: %+v", entries[0].ContextMap())
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].Message != "cart_load_failed" {
		t.Fatalf("unexpected entry %+v", entries[1])
	}
}
