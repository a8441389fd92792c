package sched

import (
	"time"

	"simplesched/internal/jobs"
)

// CompletionStats is the pedagogical per-job report computed at shutdown
// (spec §4.2). These are illustrative metrics derived purely from
// slicesRun and TSLICE, not real elapsed wall-clock time (spec §9).
type CompletionStats struct {
	PID            int
	Name           string
	Priority       int
	SlicesRun      int
	CompletionTime time.Duration
	WaitTime       time.Duration
}

func newCompletionStats(name string, pid, priority, slicesRun int, tslice time.Duration) CompletionStats {
	return CompletionStats{
		PID:            pid,
		Name:           name,
		Priority:       priority,
		SlicesRun:      slicesRun,
		CompletionTime: jobs.CompletionTime(slicesRun, tslice, priority),
		WaitTime:       jobs.WaitTime(slicesRun, tslice, priority),
	}
}

// Stats returns a stable-ordered snapshot of every job that has completed
// so far, in the order completion was observed.
func (s *Scheduler) Stats() []CompletionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CompletionStats, len(s.stats))
	copy(out, s.stats)
	return out
}
