package shell

import (
	"bytes"
	"strings"
	"testing"
)

func TestSubmitSuccess(t *testing.T) {
	sh := newTestShell(t)
	var out bytes.Buffer
	if err := sh.Submit("sleep", "2", &out); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !strings.Contains(out.String(), "Submitted job: sleep") {
		t.Fatalf("expected submission banner, got %q", out.String())
	}
	if sh.table.JobCount() != 1 {
		t.Fatalf("expected 1 job recorded, got %d", sh.table.JobCount())
	}
	rec, err := sh.table.Job(0)
	if err != nil {
		t.Fatalf("Job(0): %v", err)
	}
	if rec.Priority != 2 {
		t.Fatalf("expected priority 2, got %d", rec.Priority)
	}
	if !rec.IsNew || rec.Completed {
		t.Fatalf("expected a fresh, incomplete record, got %+v", rec)
	}

	sh.mu.Lock()
	n := len(sh.jobs)
	pid := sh.jobs[0].pid
	sh.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected 1 tracked job, got %d", n)
	}
	if pid != rec.PID {
		t.Fatalf("tracked pid %d does not match record pid %d", pid, rec.PID)
	}
	_ = sh.jobs[0].cmd.Process.Kill()
	sh.jobs[0].cmd.Wait()
}

func TestSubmitInvalidArgs(t *testing.T) {
	sh := newTestShell(t)
	var out bytes.Buffer
	if err := sh.Submit("", "", &out); err != ErrInvalidArgs {
		t.Fatalf("expected ErrInvalidArgs, got %v", err)
	}
}

func TestSubmitNotFound(t *testing.T) {
	sh := newTestShell(t)
	var out bytes.Buffer
	err := sh.Submit("/no/such/program-ever", "", &out)
	if err == nil {
		t.Fatal("expected an error for a nonexistent program")
	}
}

func TestSubmitTableFull(t *testing.T) {
	sh := newTestShell(t)
	sh.cfg.MaxJobs = 1
	var out bytes.Buffer
	if err := sh.Submit("sleep", "1", &out); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	defer func() {
		sh.jobs[0].cmd.Process.Kill()
		sh.jobs[0].cmd.Wait()
	}()

	err := sh.Submit("sleep", "1", &out)
	if err != ErrFull {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}

func TestSubmitInvalidPriorityFallsBackToDefault(t *testing.T) {
	sh := newTestShell(t)
	var out bytes.Buffer
	if err := sh.Submit("sleep", "99", &out); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	defer func() {
		sh.jobs[0].cmd.Process.Kill()
		sh.jobs[0].cmd.Wait()
	}()
	if !strings.Contains(out.String(), "Using default priority") {
		t.Fatalf("expected a fallback warning, got %q", out.String())
	}
	rec, _ := sh.table.Job(0)
	if rec.Priority != 1 {
		t.Fatalf("expected default priority 1, got %d", rec.Priority)
	}
}
