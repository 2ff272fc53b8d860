package util

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetColors(false)
	SetLogLevel(LevelInfo)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLogLevel(LevelInfo)
	})
	return &buf
}

func TestLogLevels(t *testing.T) {
	buf := captureLogs(t)

	DebugLog("hidden %d", 1)
	InfoLog("shown %d", 2)
	WarnLog("careful")
	ErrorLog("broken")
	SuccessLog("done")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message printed at info level")
	}
	for _, want := range []string{"[INFO]  shown 2", "[WARN]  careful", "[ERROR] broken", "[OK]    done"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("colors disabled but escape codes written")
	}
}

func TestSetVerbose(t *testing.T) {
	buf := captureLogs(t)

	SetVerbose(true)
	DebugLog("details")
	if !strings.Contains(buf.String(), "[DEBUG] details") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}

func TestSetQuiet(t *testing.T) {
	buf := captureLogs(t)

	SetQuiet(true)
	if !IsQuiet() {
		t.Error("IsQuiet should report quiet mode")
	}
	InfoLog("noise")
	WarnLog("noise")
	ErrorLog("signal")

	out := buf.String()
	if strings.Contains(out, "noise") {
		t.Errorf("quiet mode printed non-errors: %q", out)
	}
	if !strings.Contains(out, "signal") {
		t.Errorf("quiet mode dropped errors: %q", out)
	}
}
