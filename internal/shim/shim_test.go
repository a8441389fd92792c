package shim

import (
	"os"
	"testing"
	"time"
)

// TestStartupGateOrdering is a direct check of testable property 7: user
// code (here, reading CanRun/FirstResumeTime) must never observe a ready
// state before the first Resume is delivered.
func TestStartupGateOrdering(t *testing.T) {
	if CanRun() {
		t.Fatal("CanRun should be false before any Resume is sent")
	}

	done := make(chan struct{})
	var observedBeforeResume time.Time
	go func() {
		WaitForFirstResume()
		observedBeforeResume = FirstResumeTime()
		close(done)
	}()

	// Give the waiter a moment to start spinning before the signal lands.
	time.Sleep(5 * time.Millisecond)

	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess: %v", err)
	}
	sentAt := time.Now()
	if err := proc.Signal(Resume); err != nil {
		t.Fatalf("Signal(Resume): %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForFirstResume never returned after Resume")
	}

	if observedBeforeResume.Before(sentAt.Add(-time.Second)) {
		t.Errorf("FirstResumeTime() = %v, should be close to send time %v", observedBeforeResume, sentAt)
	}
}

func TestPauseClearsCanRun(t *testing.T) {
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess: %v", err)
	}
	if err := proc.Signal(Resume); err != nil {
		t.Fatalf("Signal(Resume): %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if !CanRun() {
		t.Fatal("expected CanRun after Resume")
	}

	if err := proc.Signal(Pause); err != nil {
		t.Fatalf("Signal(Pause): %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if CanRun() {
		t.Fatal("expected !CanRun after Pause")
	}
}
