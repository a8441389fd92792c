package shell

import (
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
)

// historyEntry mirrors the original simple-shell.c's CommandLog: every
// line the shell executed, with enough bookkeeping to report on it later.
// Supplemented from original_source/group-77/simple-shell.c per
// SPEC_FULL.md §4; history display itself is out of spec.md's core scope,
// but the `history` built-in and the execution summary both need it.
type historyEntry struct {
	command      string
	pid          int
	startTime    time.Time
	endTime      time.Time
	isBackground bool
}

// History records every executed line in order.
type History struct {
	mu      sync.Mutex
	entries []*historyEntry
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{}
}

// Record appends a new entry; pid is 0 for lines with no associated
// process. dispatch records every submit line this way before Submit runs,
// and a successful Submit records a separate entry carrying the job's pid.
func (h *History) Record(command string, pid int, background bool) *historyEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := &historyEntry{command: command, pid: pid, startTime: time.Now(), isBackground: background}
	h.entries = append(h.entries, e)
	return e
}

// MarkFinished sets the end time of the most recent unfinished entry for
// pid, mirroring the original's markCommandAsFinished (which scans from the
// most recent entry backward).
func (h *History) MarkFinished(pid int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		if e.pid == pid && e.endTime.IsZero() {
			e.endTime = time.Now()
			return
		}
	}
}

// Print renders the `history` built-in: a 1-indexed list of commands.
func (h *History) Print(out io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.entries {
		io.WriteString(out, strconv.Itoa(i+1)+": "+e.command+"\n")
	}
}

// PrintSummary renders the full execution summary table at shell shutdown
// (spec §4.1), covering every recorded command's timing.
func (h *History) PrintSummary(out io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Command", "PID", "Start", "End", "Duration", "Background"})
	for _, e := range h.entries {
		duration := "-"
		end := "(running or terminated)"
		if !e.endTime.IsZero() {
			end = e.endTime.Format(time.TimeOnly)
			duration = e.endTime.Sub(e.startTime).String()
		}
		background := "No"
		if e.isBackground {
			background = "Yes"
		}
		table.Append([]string{
			e.command,
			strconv.Itoa(e.pid),
			e.startTime.Format(time.TimeOnly),
			end,
			duration,
			background,
		})
	}
	table.Render()
}

