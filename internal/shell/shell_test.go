package shell

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"simplesched/internal/config"
	"simplesched/internal/sched"
)

func testLogger() *log.Logger {
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(log.ErrorLevel)
	return l
}

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	cfg := config.Shell{
		NCPU:        1,
		TSliceUs:    1000,
		MaxJobs:     4,
		MaxPriority: 4,
		LogLevel:    "error",
		Policy:      sched.PolicyFIFO,
	}
	sh, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		sh.segment.Detach()
		sh.segment.Destroy()
	})
	return sh
}

func TestRunSimpleForeground(t *testing.T) {
	sh := newTestShell(t)
	var out bytes.Buffer
	sh.runSimple("echo hello", false, &out)
	if !strings.Contains(out.String(), "hello") {
		t.Fatalf("expected output to contain hello, got %q", out.String())
	}
	if len(sh.history.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(sh.history.entries))
	}
	if sh.history.entries[0].endTime.IsZero() {
		t.Fatalf("expected foreground command to be marked finished")
	}
}

func TestRunSimpleBackground(t *testing.T) {
	sh := newTestShell(t)
	var out bytes.Buffer
	sh.runSimple("sleep 0.05", true, &out)
	if !strings.Contains(out.String(), "[") {
		t.Fatalf("expected background job announcement, got %q", out.String())
	}
	// Give the background goroutine a chance to reap and mark finished.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sh.history.mu.Lock()
		done := len(sh.history.entries) == 1 && !sh.history.entries[0].endTime.IsZero()
		sh.history.mu.Unlock()
		if done {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background job was never marked finished")
}

func TestRunPipeline(t *testing.T) {
	sh := newTestShell(t)
	var out bytes.Buffer
	sh.runPipeline("echo hello world | wc -w", &out)
	if !strings.Contains(out.String(), "2") {
		t.Fatalf("expected word count 2, got %q", out.String())
	}
}

func TestRunRedirectedOutput(t *testing.T) {
	sh := newTestShell(t)
	dir := t.TempDir()
	path := dir + "/out.txt"
	var out bytes.Buffer
	sh.runRedirected("echo redirected > "+path, &out)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading redirected file: %v", err)
	}
	if !strings.Contains(string(data), "redirected") {
		t.Fatalf("expected file to contain redirected, got %q", data)
	}
}

func TestRunRedirectedInput(t *testing.T) {
	sh := newTestShell(t)
	dir := t.TempDir()
	path := dir + "/in.txt"
	if err := os.WriteFile(path, []byte("line-one\nline-two\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	var out bytes.Buffer
	sh.runRedirected("wc -l < "+path, &out)
	if !strings.Contains(out.String(), "2") {
		t.Fatalf("expected line count 2, got %q", out.String())
	}
}

func TestDispatchHistoryBuiltin(t *testing.T) {
	sh := newTestShell(t)
	sh.history.Record("submit foo", 123, false)
	var out bytes.Buffer
	if exit := sh.dispatch("history", &out); exit {
		t.Fatal("history should never request exit")
	}
	if !strings.Contains(out.String(), "submit foo") {
		t.Fatalf("expected history output to list prior command, got %q", out.String())
	}
}

func TestDispatchExit(t *testing.T) {
	sh := newTestShell(t)
	var out bytes.Buffer
	if exit := sh.dispatch("exit", &out); !exit {
		t.Fatal("expected exit to request shutdown")
	}
}
