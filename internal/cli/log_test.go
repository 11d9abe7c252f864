package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("loaded layer") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("stage complete") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("stage complete") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("context layer not found") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggerTimestampFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("filtered layer", "layer", "reservoirs", "kept", 4)

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("line %q does not start with an HH:MM:SS.cc timestamp", buf.String())
	}
	if !strings.Contains(buf.String(), "layer=reservoirs") {
		t.Errorf("line %q lacks structured fields", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered belton")

	if !regexp.MustCompile(`Rendered belton \(\d+(\.\d+)?[µnm]?s\)`).MatchString(buf.String()) {
		t.Errorf("progress line = %q", buf.String())
	}
}

func TestQuieterKeepsParentLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := newLogger(&buf, log.DebugLevel)
	q := quieter(parent)

	q.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("quieter logger wrote info: %q", buf.String())
	}
	q.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("quieter logger should pass warnings")
	}
	if parent.GetLevel() != log.DebugLevel {
		t.Errorf("parent level changed to %v", parent.GetLevel())
	}
}
