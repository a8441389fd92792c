// Package shim is the boilerplate preamble every submittable program links
// in (spec §4.3, §6). It installs the resume/pause handlers as early as
// possible — in this package's init(), which Go guarantees runs before the
// importing program's main() — and exposes the startup gate the real entry
// point must call before doing anything else.
//
// This replaces the original C dummy_main.h's "#define main dummy_main"
// trick: Go has no preprocessor, so the contract is an explicit function
// call (WaitForFirstResume, or the Run convenience wrapper) rather than a
// macro-rewritten main symbol. Installing the signal handlers in init()
// gives the same "atomically ready before any scheduler signal can arrive"
// guarantee the C code gets from blocking the signals in the child between
// fork and exec: by the time this program's main() begins, every package's
// init() including this one has already run.
package shim

import (
	"os"
	"os/signal"
	"sync/atomic"
	"time"
)

var (
	canRun              atomic.Bool
	firstResumeUnixNano atomic.Int64
	sigCh               = make(chan os.Signal, 2)
)

func init() {
	signal.Notify(sigCh, Resume, Pause)
	go dispatch()
}

func dispatch() {
	for sig := range sigCh {
		switch sig {
		case Resume:
			if canRun.CompareAndSwap(false, true) {
				firstResumeUnixNano.CompareAndSwap(0, time.Now().UnixNano())
			} else {
				canRun.Store(true)
			}
		case Pause:
			canRun.Store(false)
		}
	}
}

// CanRun reports whether the most recent signal received was Resume.
func CanRun() bool {
	return canRun.Load()
}

// FirstResumeTime returns the wall-clock time of the first Resume signal
// ever received, or the zero Value if none has arrived yet. Submittable
// programs may use this to verify testable property 7 (spec §8): the
// startup gate must never let user code run before the first resume.
func FirstResumeTime() time.Time {
	n := firstResumeUnixNano.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// WaitForFirstResume busy-waits, yielding briefly between checks, until the
// scheduler has sent the first Resume signal. This is steps 4-5 of the
// shim's five-step contract; call it as the very first statement of the
// submittable program's real entry point.
func WaitForFirstResume() {
	for !canRun.Load() {
		time.Sleep(time.Microsecond)
	}
}

// Run busy-waits for the first Resume, then calls userMain. It is the
// one-line form of the shim contract for programs with no other startup
// work to interleave.
func Run(userMain func()) {
	WaitForFirstResume()
	userMain()
}
