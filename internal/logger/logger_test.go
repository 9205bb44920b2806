package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogWritesMemoryAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "giftbox.txt")
	l := NewAt(path)
	l.now = func() time.Time { return time.Date(2024, 12, 24, 18, 0, 0, 0, time.Local) }

	l.Log("[GiftBox] split")
	l.Logf("[GiftBox] clicks=%d", 3)

	lines := l.Lines()
	if len(lines) != 2 {
		t.Fatalf("Lines() len = %d, want 2", len(lines))
	}
	if lines[0] != "[2024-12-24 18:00:00] [GiftBox] split" {
		t.Errorf("lines[0] = %q", lines[0])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "[GiftBox] clicks=3\n") {
		t.Errorf("log file missing formatted line: %q", data)
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Log("ignored")
	l.Logf("ignored %d", 1)
	if got := l.Lines(); got != nil {
		t.Errorf("Lines() = %v, want nil", got)
	}
}

func TestTailAndCap(t *testing.T) {
	l := NewAt("")
	for i := 0; i < maxLines+10; i++ {
		l.Log("line")
	}
	if got := len(l.Lines()); got != maxLines {
		t.Errorf("Lines() len = %d, want %d", got, maxLines)
	}
	if got := len(l.Tail(3)); got != 3 {
		t.Errorf("Tail(3) len = %d, want 3", got)
	}
}
