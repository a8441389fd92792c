package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"

	"simplesched/internal/jobs"
	"simplesched/internal/procutil"
	"simplesched/internal/shmtable"
)

// Submission error taxonomy (spec §7): these are user-facing, non-fatal.
var (
	ErrInvalidArgs   = errors.New("InvalidArgs: usage: submit <path> [priority]")
	ErrNotExecutable = errors.New("NotExecutable: program is not executable")
	ErrFull          = errors.New("Full: job table is full")
)

// Submit resolves, forks (gated), and publishes a submitted program, per
// spec §4.1. Any returned error is meant to be printed inline by the
// caller; none of them are fatal to the shell.
func (s *Shell) Submit(program, priorityArg string, out io.Writer) error {
	if program == "" {
		return ErrInvalidArgs
	}

	priority := jobs.DefaultPriority
	if priorityArg != "" {
		p, err := parsePriority(priorityArg)
		if err != nil || !jobs.ValidPriority(p) {
			fmt.Fprintf(out, "Invalid priority value. Using default priority %d\n", jobs.DefaultPriority)
		} else {
			priority = p
		}
	}

	if s.table.JobCount() >= s.cfg.MaxJobs {
		return ErrFull
	}

	path, err := procutil.Resolve(program)
	if err != nil {
		if errors.Is(err, procutil.ErrNotExecutable) {
			return ErrNotExecutable
		}
		return fmt.Errorf("%w: %s", ErrInvalidArgs, program)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("shell: creating output pipe: %w", err)
	}

	cmd := exec.Command(path)
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return fmt.Errorf("shell: fork failed: %w", err)
	}
	pw.Close() // parent's copy; the child keeps its own via dup

	name := procutil.Basename(program)
	rec := jobs.Record{
		PID:       cmd.Process.Pid,
		Name:      name,
		Priority:  priority,
		StartTime: time.Now(),
	}
	idx, err := s.table.Append(rec)
	if err != nil {
		_ = cmd.Process.Kill()
		pr.Close()
		if errors.Is(err, shmtable.ErrFull) {
			return ErrFull
		}
		return err
	}

	tj := &trackedJob{
		recordIndex: idx,
		pid:         cmd.Process.Pid,
		name:        name,
		priority:    priority,
		cmd:         cmd,
	}
	s.mu.Lock()
	s.jobs = append(s.jobs, tj)
	s.mu.Unlock()

	s.history.Record(fmt.Sprintf("submit %s", program), cmd.Process.Pid, false)

	go pumpOutput(pr, out, s.log)

	fmt.Fprintf(out, "Submitted job: %s with PID: %d, Priority: %d\n", name, cmd.Process.Pid, priority)
	s.log.WithFields(log.Fields{"pid": cmd.Process.Pid, "name": name, "priority": priority}).Info("job submitted")
	return nil
}

func parsePriority(s string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, err
	}
	return v, nil
}
