// Package sched implements the multi-level preemptive round-robin policy
// described in spec §4.2: a ticker-driven schedule step (reap, preempt,
// intake, dispatch) operating over a fixed-capacity ready queue and an
// array of running slots, quantizing submitted processes with the
// resume/pause signal protocol from internal/shim.
package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"simplesched/internal/jobs"
	"simplesched/internal/shim"
	"simplesched/internal/shmtable"
)

// Policy selects how the ready queue orders and dispatches jobs. The
// baseline is FIFO (spec §4.2); PolicyPriority is the documented
// conformance variant where priority becomes an ordering key (spec §9's
// call to expose which variant is in use).
type Policy int

const (
	PolicyFIFO Policy = iota
	PolicyPriority
)

func (p Policy) String() string {
	if p == PolicyPriority {
		return "strict-priority"
	}
	return "fifo"
}

// Scheduler drives the schedule step against a shared job table it has
// attached (never created — that's the shell's job, per spec §6).
type Scheduler struct {
	table  *shmtable.Table
	ncpu   int
	tslice time.Duration
	policy Policy
	log    *log.Logger

	queue *readyQueue
	slots []runningSlot

	// pidfds lets the reap step detect exit of a process this scheduler
	// never forked (it isn't the OS parent — the shell is). A pidfd
	// becomes readable once the kernel has reaped the process into a
	// zombie, independent of which process actually calls wait() on it,
	// which is exactly the race spec §4.2's reap step needs to be
	// resolvable without relying on OS parent/child wait() semantics.
	pidfds map[int]int // pid -> fd

	stats    []CompletionStats
	statDone map[int]bool // recordIndex -> already accounted
	mu       sync.Mutex   // guards stats/statDone for concurrent Stats() reads
}

// New constructs a Scheduler attached to table, with ncpu running slots and
// the given quantum. policy selects FIFO or strict-priority dispatch.
func New(table *shmtable.Table, ncpu int, tslice time.Duration, policy Policy, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Scheduler{
		table:    table,
		ncpu:     ncpu,
		tslice:   tslice,
		policy:   policy,
		log:      logger,
		queue:    newReadyQueue(table.Capacity()),
		slots:    make([]runningSlot, ncpu),
		pidfds:   make(map[int]int),
		statDone: make(map[int]bool),
	}
}

// Run drives the ticker loop until the schedule step reports termination
// (spec §4.2 step e) or ctx is cancelled (SIGTERM from the shell). It
// returns nil on clean termination either way.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tslice)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler received shutdown signal")
			s.shutdownRunningSlots()
			return nil
		case <-ticker.C:
			done := s.Step()
			if done {
				s.log.Info("scheduler: no active, ready, or running jobs remain; exiting")
				return nil
			}
		}
	}
}

// Step executes exactly one schedule step, in the strict order spec §4.2
// requires: reap, preempt, intake, dispatch, termination check. It returns
// true once the termination condition holds.
func (s *Scheduler) Step() bool {
	s.reap()
	s.preempt()
	s.intake()
	s.dispatch()
	return s.allDone()
}

// reap polls every tracked pidfd for exit and marks the corresponding
// record completed.
func (s *Scheduler) reap() {
	if len(s.pidfds) == 0 {
		return
	}
	pollFds := make([]unix.PollFd, 0, len(s.pidfds))
	pids := make([]int, 0, len(s.pidfds))
	for pid, fd := range s.pidfds {
		pollFds = append(pollFds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		pids = append(pids, pid)
	}
	n, err := unix.Poll(pollFds, 0)
	if err != nil || n == 0 {
		return
	}
	for i, pf := range pollFds {
		if pf.Revents&unix.POLLIN == 0 {
			continue
		}
		s.reapPID(pids[i])
	}
}

func (s *Scheduler) reapPID(pid int) {
	fd, ok := s.pidfds[pid]
	if !ok {
		return
	}
	unix.Close(fd)
	delete(s.pidfds, pid)

	idx, rec, ok := s.findByPID(pid)
	if !ok {
		return
	}
	if !rec.Completed {
		if err := s.table.SetCompleted(idx, time.Now()); err != nil {
			s.log.WithError(err).Warn("sched: failed to mark record completed")
		}
	}

	slicesRun := 0
	inSlot := false
	for i := range s.slots {
		if s.slots[i].pid == pid {
			slicesRun = s.slots[i].slicesRun
			s.slots[i].clear()
			inSlot = true
		}
	}
	if !inSlot {
		// A job that exits while waiting in the ready queue keeps the
		// slice count it had accumulated.
		for i := 0; i < s.queue.size; i++ {
			if e := s.queue.buf[(s.queue.front+i)%len(s.queue.buf)]; e.pid == pid {
				slicesRun = e.slicesRun
			}
		}
	}
	s.finalizeStats(idx, rec, slicesRun)
	s.log.WithFields(log.Fields{"pid": pid, "name": rec.Name}).Info("job completed")
}

// markGone marks recordIndex completed and finalizes its statistics when a
// signal delivery fails with ESRCH: the process is confirmed gone, so there
// is no need to wait for the pidfd poll to notice on a later tick (this is
// what keeps a missing/failed pidfd from wedging allDone() forever).
func (s *Scheduler) markGone(recordIndex, pid, slicesRun int) {
	if fd, ok := s.pidfds[pid]; ok {
		unix.Close(fd)
		delete(s.pidfds, pid)
	}
	rec, err := s.table.Job(recordIndex)
	if err != nil {
		return
	}
	if !rec.Completed {
		if err := s.table.SetCompleted(recordIndex, time.Now()); err != nil {
			s.log.WithError(err).Warn("sched: failed to mark gone record completed")
		}
	}
	s.finalizeStats(recordIndex, rec, slicesRun)
}

func (s *Scheduler) findByPID(pid int) (int, jobs.Record, bool) {
	for i := 0; i < s.table.JobCount(); i++ {
		rec, err := s.table.Job(i)
		if err != nil {
			continue
		}
		if rec.PID == pid {
			return i, rec, true
		}
	}
	return 0, jobs.Record{}, false
}

func (s *Scheduler) finalizeStats(recordIndex int, rec jobs.Record, slicesRun int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statDone[recordIndex] {
		return
	}
	s.statDone[recordIndex] = true
	s.stats = append(s.stats, newCompletionStats(rec.Name, rec.PID, rec.Priority, slicesRun, s.tslice))
}

// preempt pauses every non-empty running slot, bumps its slice count, and
// re-enqueues it unless its backing record is already completed.
func (s *Scheduler) preempt() {
	for i := range s.slots {
		slot := &s.slots[i]
		if slot.empty() {
			continue
		}
		if err := syscall.Kill(slot.pid, shim.Pause); err != nil {
			s.log.WithFields(log.Fields{"pid": slot.pid, "error": err}).Debug("pause delivery failed, pid likely gone")
			if errors.Is(err, syscall.ESRCH) {
				// Confirmed gone: mark completed now rather than waiting on
				// the pidfd poll, which may never have been opened (spec
				// §7's dispatch failure semantics).
				s.markGone(slot.recordIndex, slot.pid, slot.slicesRun)
			}
			slot.clear()
			continue
		}
		slot.slicesRun++

		rec, err := s.table.Job(slot.recordIndex)
		completed := err == nil && rec.Completed
		if !completed {
			s.queue.Enqueue(entry{
				recordIndex: slot.recordIndex,
				pid:         slot.pid,
				name:        slot.name,
				priority:    slot.priority,
				slicesRun:   slot.slicesRun,
			})
		}
		slot.clear()
	}
}

// intake scans the job table for newly published, not-yet-completed
// records, enqueues them, and clears their is_new flag.
func (s *Scheduler) intake() {
	n := s.table.JobCount()
	for i := 0; i < n; i++ {
		rec, err := s.table.Job(i)
		if err != nil {
			continue
		}
		if !rec.IsNew || rec.Completed {
			continue
		}
		if err := s.queue.Enqueue(entry{recordIndex: i, pid: rec.PID, name: rec.Name, priority: rec.Priority}); err != nil {
			s.log.WithError(err).Warn("sched: ready queue full on intake, dropping job")
			continue
		}
		if err := s.table.ClearIsNew(i); err != nil {
			s.log.WithError(err).Warn("sched: failed to clear is_new")
		}
		if err := s.openPidfd(rec.PID); err != nil {
			s.log.WithFields(log.Fields{"pid": rec.PID, "error": err}).Warn("sched: could not open pidfd, falling back to signal-probe reap")
		}
		s.log.WithFields(log.Fields{"pid": rec.PID, "name": rec.Name, "priority": rec.Priority}).Info("job enqueued")
	}
}

func (s *Scheduler) openPidfd(pid int) error {
	if _, ok := s.pidfds[pid]; ok {
		return nil
	}
	fd, err := unix.PidfdOpen(pid, 0)
	if err != nil {
		return err
	}
	s.pidfds[pid] = fd
	return nil
}

// dispatch fills every empty slot from the ready queue, in policy order,
// and sends Resume to each newly dispatched pid.
func (s *Scheduler) dispatch() {
	for i := range s.slots {
		if !s.slots[i].empty() {
			continue
		}
		if s.queue.Len() == 0 {
			break
		}
		var e entry
		var err error
		if s.policy == PolicyPriority {
			e, err = s.queue.DequeueBestPriority()
		} else {
			e, err = s.queue.Dequeue()
		}
		if err != nil {
			break
		}
		s.slots[i] = runningSlot{
			pid:         e.pid,
			name:        e.name,
			priority:    e.priority,
			slicesRun:   e.slicesRun,
			recordIndex: e.recordIndex,
		}
		if err := syscall.Kill(e.pid, shim.Resume); err != nil {
			s.log.WithFields(log.Fields{"pid": e.pid, "error": err}).Debug("resume delivery failed, pid likely gone")
			if errors.Is(err, syscall.ESRCH) {
				s.markGone(e.recordIndex, e.pid, e.slicesRun)
			}
			s.slots[i].clear()
			continue
		}
		s.log.WithFields(log.Fields{"pid": e.pid, "name": e.name, "slot": i}).Info("job dispatched")
	}
}

// allDone is the termination check (spec §4.2 step e): no incomplete
// record, an empty ready queue, and every slot empty.
func (s *Scheduler) allDone() bool {
	if s.queue.Len() != 0 {
		return false
	}
	for i := range s.slots {
		if !s.slots[i].empty() {
			return false
		}
	}
	n := s.table.JobCount()
	if n == 0 {
		// Nothing has ever been submitted yet; keep waiting.
		return false
	}
	for i := 0; i < n; i++ {
		rec, err := s.table.Job(i)
		if err != nil {
			continue
		}
		if !rec.Completed {
			return false
		}
	}
	return true
}

func (s *Scheduler) shutdownRunningSlots() {
	for i := range s.slots {
		if s.slots[i].empty() {
			continue
		}
		_ = syscall.Kill(s.slots[i].pid, shim.Pause)
		s.slots[i].clear()
	}
	for pid, fd := range s.pidfds {
		unix.Close(fd)
		delete(s.pidfds, pid)
	}
}

// Policy returns the dispatch policy this scheduler was configured with,
// satisfying spec §9's call for implementations to document which variant
// they provide.
func (s *Scheduler) Policy() Policy { return s.policy }

func (s *Scheduler) String() string {
	return fmt.Sprintf("scheduler(ncpu=%d tslice=%s policy=%s)", s.ncpu, s.tslice, s.policy)
}
