package shell

import (
	"fmt"
	"io"
)

// printExecutionSummary prints the command-history table at shutdown
// (spec §4.1). The scheduler's own pedagogical slices-based statistics
// (spec §4.2) are reported by the scheduler process itself at its shutdown
// — slices_run is scheduler-private (spec §3's RunningSlot, never
// published to shared memory), so the shell cannot truthfully reconstruct
// it here; see DESIGN.md for why this replaces the original C's approach
// of faking a second copy of those counters in the shell process.
func (s *Shell) printExecutionSummary(out io.Writer) {
	fmt.Fprintln(out, "\nCommand Execution Summary:")
	s.history.PrintSummary(out)
}
