package logging

import (
	"bytes"
	"testing"
)

func captureDebug(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := DebugOutput
	DebugOutput = &buf
	t.Cleanup(func() { DebugOutput = previous })
	return &buf
}

func TestDebugEnabled(t *testing.T) {
	t.Setenv("TK_DEBUG", "")
	if DebugEnabled() {
		t.Error("DebugEnabled() should return false when TK_DEBUG is empty")
	}

	t.Setenv("TK_DEBUG", "1")
	if !DebugEnabled() {
		t.Error("DebugEnabled() should return true when TK_DEBUG is set")
	}

	t.Setenv("TK_DEBUG", "true")
	if !DebugEnabled() {
		t.Error("DebugEnabled() should return true when TK_DEBUG is 'true'")
	}
}

func TestDebugf(t *testing.T) {
	buf := captureDebug(t)

	t.Setenv("TK_DEBUG", "")
	Debugf("hidden %d\n", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output with debug disabled, got %q", buf.String())
	}

	t.Setenv("TK_DEBUG", "1")
	Debugf("shown %d\n", 2)
	if buf.String() != "shown 2\n" {
		t.Errorf("unexpected debug output %q", buf.String())
	}
}

func TestDebugln(t *testing.T) {
	buf := captureDebug(t)

	t.Setenv("TK_DEBUG", "1")
	Debugln("opening", "store")
	if buf.String() != "opening store\n" {
		t.Errorf("unexpected debug output %q", buf.String())
	}
}
