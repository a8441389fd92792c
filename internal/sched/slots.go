package sched

// runningSlot is one of NCPU positions tracking the currently-resumed job
// (spec §3's RunningSlot). A PID of 0 marks an empty slot.
//
// State machine (spec §4.2): Empty -> Dispatched (resume sent) ->
// Preempted (pause sent, re-enqueued) -> Empty, or Dispatched -> Completed
// (reaped) -> Empty. Completed is terminal; this type doesn't track the
// state label explicitly, it's implied by whether the slot still holds a
// pid and whether the backing record is Completed.
type runningSlot struct {
	pid         int
	name        string
	priority    int
	slicesRun   int
	recordIndex int
}

func (s *runningSlot) empty() bool { return s.pid == 0 }

func (s *runningSlot) clear() { *s = runningSlot{} }
