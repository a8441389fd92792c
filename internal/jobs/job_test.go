package jobs

import (
	"testing"
	"time"
)

func TestClampPriority(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, DefaultPriority},
		{1, 1},
		{4, 4},
		{5, DefaultPriority},
		{-3, DefaultPriority},
	}
	for _, c := range cases {
		if got := ClampPriority(c.in); got != c.want {
			t.Errorf("ClampPriority(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

// TestStatisticsLaw mirrors spec scenario S4: NCPU=1, TSLICE=10000us,
// priority 1, 10 slices run.
func TestStatisticsLaw(t *testing.T) {
	tslice := 10000 * time.Microsecond
	ct := CompletionTime(10, tslice, 1)
	wt := WaitTime(10, tslice, 1)

	if got := ct.Microseconds(); got != 400000 {
		t.Errorf("CompletionTime = %d us, want 400000", got)
	}
	if got := wt.Microseconds(); got != 300000 {
		t.Errorf("WaitTime = %d us, want 300000", got)
	}
}

func TestValidPriority(t *testing.T) {
	for p := -1; p <= MaxPriority+2; p++ {
		want := p >= 1 && p <= MaxPriority
		if got := ValidPriority(p); got != want {
			t.Errorf("ValidPriority(%d) = %v, want %v", p, got, want)
		}
	}
}
