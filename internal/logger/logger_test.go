package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func resetLogger() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestVerboseToggle(t *testing.T) {
	defer resetLogger()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose off by default")
	}
	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose on after SetVerbose(true)")
	}
}

func TestDebugRespectsVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	SetVerbose(false)
	Debug("hidden %d", 1)
	if buf.Len() > 0 {
		t.Errorf("expected no debug output when verbose is off, got %q", buf.String())
	}

	SetVerbose(true)
	Debug("shown %d", 2)
	if got := buf.String(); got != "[DEBUG] shown 2\n" {
		t.Errorf("unexpected debug output: %q", got)
	}
}

func TestSectionAndInfo(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Retrieval")
	Info("candidates: %d", 12)

	want := "\n=== Retrieval ===\n[INFO] candidates: 12\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output: %q, want %q", got, want)
	}
}

func TestWarnAlwaysPrints(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("skipping chunk %d", 3)
	if got := buf.String(); got != "[WARN] skipping chunk 3\n" {
		t.Errorf("expected warning even without verbose, got %q", got)
	}
}

func TestTimingRespectsVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	SetVerbose(false)
	Timing("retrieve", time.Now())
	if buf.Len() > 0 {
		t.Errorf("expected no timing output when verbose is off, got %q", buf.String())
	}

	SetVerbose(true)
	Timing("retrieve", time.Now())
	if got := buf.String(); !strings.HasPrefix(got, "[TIME] retrieve: ") {
		t.Errorf("unexpected timing output: %q", got)
	}
}

func TestConcurrentUse(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			SetVerbose(true)
			Debug("worker %d", n)
			IsVerbose()
			SetVerbose(false)
		}(i)
	}
	wg.Wait()
}
