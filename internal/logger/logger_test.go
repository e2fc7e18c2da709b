package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWritersLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriters(false, &buf)
	log.Debug("hidden")
	log.Info("shown")
	log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "INFO") {
		t.Errorf("info line missing: %s", out)
	}
}

func TestNewWithWritersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriters(true, &buf)
	log.Debug("details")
	log.Sync()

	if !strings.Contains(buf.String(), "details") {
		t.Errorf("debug line missing: %s", buf.String())
	}
}

func TestNewWithWritersFanOut(t *testing.T) {
	var a, b bytes.Buffer
	log := NewWithWriters(false, &a, &b)
	log.Info("both")
	log.Sync()

	if !strings.Contains(a.String(), "both") || !strings.Contains(b.String(), "both") {
		t.Errorf("expected line in both writers: %q %q", a.String(), b.String())
	}
}
