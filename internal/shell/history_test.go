package shell

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistoryMarkFinishedMostRecentMatch(t *testing.T) {
	h := NewHistory()
	h.Record("submit a", 100, false)
	h.Record("submit b", 100, false) // pid reused by a later submission
	h.MarkFinished(100)

	if h.entries[1].endTime.IsZero() {
		t.Fatal("MarkFinished should have marked the most recent matching unfinished entry")
	}
	if !h.entries[0].endTime.IsZero() {
		t.Fatal("MarkFinished should not touch an older entry once the newest match is marked")
	}
}

func TestHistoryPrintNumbersFromOne(t *testing.T) {
	h := NewHistory()
	h.Record("ls", 0, false)
	h.Record("pwd", 0, false)
	var out bytes.Buffer
	h.Print(&out)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "1: ls") || !strings.HasPrefix(lines[1], "2: pwd") {
		t.Fatalf("unexpected history output: %v", lines)
	}
}

func TestHistoryPrintSummaryIncludesBackgroundColumn(t *testing.T) {
	h := NewHistory()
	e := h.Record("sleep 5 &", 42, true)
	e.endTime = e.startTime
	var out bytes.Buffer
	h.PrintSummary(&out)
	if !strings.Contains(out.String(), "Yes") {
		t.Fatalf("expected background marker in summary, got %q", out.String())
	}
}
