package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/mrcoldpotato/talentflow-v2/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"nonsense", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestInitWritesPerLevelFiles(t *testing.T) {
	root := t.TempDir()
	log, level, err := Init(root, config.LoggingConfig{Directory: "logs", Level: "warn", MaxSize: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level.Level() != zapcore.WarnLevel {
		t.Errorf("expected warn console level, got %s", level.Level())
	}

	log.Error("boom")
	_ = log.Sync()

	matches, err := filepath.Glob(filepath.Join(root, "logs", "*-error.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one error log file, got %v", matches)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Errorf("expected error entry in %s", matches[0])
	}
}
