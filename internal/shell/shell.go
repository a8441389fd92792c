// Package shell implements the Shell/Submitter side of the workbench
// (spec §4.1): it owns the shared-memory segment, spawns and supervises the
// scheduler child, accepts `submit` lines, forks submitted programs onto a
// startup gate, and reaps them via SIGCHLD. Generic external-command
// execution (exec.go) and command history (history.go) are the orthogonal,
// out-of-core-scope features spec §1 calls out, supplemented here per
// SPEC_FULL.md so the shell is actually usable as a teaching tool.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"simplesched/internal/config"
	"simplesched/internal/daemonready"
	"simplesched/internal/shmtable"
	"simplesched/internal/sysvshm"
)

// Prompt is printed before each line of input, per spec §6.
const Prompt = "SimpleShell> "

// trackedJob is the shell's private mirror of a submitted job: the pieces
// it needs to reap and report on that the shared table doesn't carry
// (slices_run is scheduler-private, per spec §3).
type trackedJob struct {
	recordIndex int
	pid         int
	name        string
	priority    int
	cmd         *exec.Cmd
	reaped      bool
}

// Shell is the submitter process's runtime state.
type Shell struct {
	cfg     config.Shell
	log     *log.Logger
	segment *sysvshm.Segment
	table   *shmtable.Table

	schedulerCmd *exec.Cmd

	mu   sync.Mutex
	jobs []*trackedJob

	history *History

	sigint  chan os.Signal
	sigchld chan os.Signal
}

// New creates the shared-memory segment, zero-initializes it (spec §6), and
// returns a Shell ready to Run.
func New(cfg config.Shell, logger *log.Logger) (*Shell, error) {
	size := shmtable.Size(cfg.MaxJobs)
	seg, err := sysvshm.Create(size)
	if err != nil {
		return nil, fmt.Errorf("shell: creating shared memory: %w", err)
	}
	for i := range seg.Data {
		seg.Data[i] = 0
	}
	table, err := shmtable.New(seg.Data, cfg.MaxJobs)
	if err != nil {
		seg.Detach()
		seg.Destroy()
		return nil, fmt.Errorf("shell: wrapping shared memory: %w", err)
	}

	return &Shell{
		cfg:     cfg,
		log:     logger,
		segment: seg,
		table:   table,
		history: NewHistory(),
		sigint:  make(chan os.Signal, 1),
		sigchld: make(chan os.Signal, 1),
	}, nil
}

// LaunchScheduler forks the scheduler binary against this shell's segment,
// per spec §6's `scheduler <NCPU> <TSLICE_us> <SHMID>` contract.
func (s *Shell) LaunchScheduler() error {
	bin := s.cfg.SchedulerBin
	if bin == "" {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("shell: resolving own path to find scheduler: %w", err)
		}
		bin = filepath.Join(filepath.Dir(self), "scheduler")
	}

	cmd := exec.Command(bin,
		fmt.Sprintf("%d", s.cfg.NCPU),
		fmt.Sprintf("%d", s.cfg.TSliceUs),
		fmt.Sprintf("%d", s.segment.ID),
		"--policy", s.cfg.Policy.String(),
		"--log-level", s.cfg.LogLevel,
		"--max-jobs", fmt.Sprintf("%d", s.cfg.MaxJobs),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("shell: failed to launch scheduler: %w", err)
	}
	s.schedulerCmd = cmd
	s.log.WithField("pid", cmd.Process.Pid).Info("scheduler launched")
	return nil
}

// Run drives the interactive loop: install signal handlers, read lines
// until exit/EOF/SIGINT, then perform the graceful shutdown in spec §4.1.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) int {
	signal.Notify(s.sigint, os.Interrupt)
	signal.Notify(s.sigchld, syscall.SIGCHLD)
	defer signal.Stop(s.sigint)
	defer signal.Stop(s.sigchld)

	go s.reapLoop(ctx)

	if _, err := daemonready.Ready(); err != nil {
		s.log.WithError(err).Debug("sd_notify READY failed (not running under systemd)")
	}

	scanner := bufio.NewScanner(in)
	lineCh := make(chan string)
	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		for scanner.Scan() {
			lineCh <- scanner.Text()
		}
	}()

	for {
		fmt.Fprint(out, Prompt)
		select {
		case <-s.sigint:
			s.log.Info("received SIGINT, shutting down")
			s.shutdown(out)
			return 0
		case <-scanDone:
			fmt.Fprintln(out, "\nExiting shell.")
			s.shutdown(out)
			return 0
		case line := <-lineCh:
			if s.dispatch(line, out) {
				s.shutdown(out)
				return 0
			}
		}
	}
}

// dispatch handles one input line; it returns true if the shell should
// exit.
func (s *Shell) dispatch(line string, out io.Writer) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if trimmed == "exit" {
		return true
	}
	if trimmed == "history" {
		s.history.Print(out)
		return false
	}

	fields := strings.Fields(trimmed)
	if len(fields) >= 1 && fields[0] == "submit" {
		program := ""
		priorityArg := ""
		if len(fields) >= 2 {
			program = fields[1]
		}
		if len(fields) >= 3 {
			priorityArg = fields[2]
		}
		s.history.Record(trimmed, 0, false)
		if err := s.Submit(program, priorityArg, out); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return false
	}

	s.runExternal(trimmed, out)
	return false
}

// reapLoop drains SIGCHLD notifications and reaps every exited child in
// WNOHANG mode, marking the matching job record completed (spec §4.1's
// "Installs SIGCHLD handler that reaps any child"). This runs independently
// of the scheduler's own pidfd-based reap (sched.Scheduler.reap); spec §2's
// data flow has both sides mark completion, and shmtable.SetCompleted is
// idempotent so there is no conflict over who "wins".
func (s *Shell) reapLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.sigchld:
			s.reapExited()
		case <-time.After(50 * time.Millisecond):
			// Also poll periodically: signal coalescing means a burst of
			// child exits can collapse into a single SIGCHLD delivery.
			s.reapExited()
		}
	}
}

func (s *Shell) reapExited() {
	for {
		var status syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &status, syscall.WNOHANG, nil)
		if err != nil || pid <= 0 {
			return
		}
		s.markReaped(pid)
	}
}

func (s *Shell) markReaped(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.pid == pid && !j.reaped {
			j.reaped = true
			if err := s.table.SetCompleted(j.recordIndex, time.Now()); err != nil {
				s.log.WithError(err).Warn("shell: failed to mark job completed")
			}
			s.history.MarkFinished(pid)
			s.log.WithFields(log.Fields{"pid": pid, "name": j.name}).Info("job reaped by shell")
			return
		}
	}
}

// shutdown performs spec §4.1's termination sequence: SIGTERM the
// scheduler and wait, SIGTERM any still-incomplete submitted jobs and wait,
// print the execution summary, then detach and destroy the shared segment.
func (s *Shell) shutdown(out io.Writer) {
	daemonready.Stopping()

	if s.schedulerCmd != nil && s.schedulerCmd.Process != nil {
		_ = s.schedulerCmd.Process.Signal(syscall.SIGTERM)
		_ = s.schedulerCmd.Wait()
	}

	s.mu.Lock()
	pending := make([]*trackedJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		if !j.reaped {
			pending = append(pending, j)
		}
	}
	s.mu.Unlock()

	for _, j := range pending {
		if j.cmd.Process != nil {
			_ = j.cmd.Process.Signal(syscall.SIGTERM)
		}
	}
	for _, j := range pending {
		_ = j.cmd.Wait()
		s.markReaped(j.pid)
	}

	s.printExecutionSummary(out)

	if err := s.segment.Detach(); err != nil {
		s.log.WithError(err).Warn("shell: detach failed")
	}
	if err := s.segment.Destroy(); err != nil {
		s.log.WithError(err).Warn("shell: destroy failed")
	}
}

