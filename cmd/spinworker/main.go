// Command spinworker is a demo submittable workload (spec §6): it links
// internal/shim, waits for the scheduler's startup gate, then does
// fake CPU-bound work in small increments, cooperatively yielding whenever
// shim.CanRun() goes false so the scheduler's Pause signal actually stops
// it from burning CPU between slices.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"simplesched/internal/shim"
)

func main() {
	iterations := 50
	if len(os.Args) > 1 {
		if n, err := strconv.Atoi(os.Args[1]); err == nil && n > 0 {
			iterations = n
		}
	}
	shim.Run(func() { spin(iterations) })
}

func spin(iterations int) {
	fmt.Printf("spinworker: pid %d starting, first resume at %s\n", os.Getpid(), shim.FirstResumeTime().Format(time.RFC3339Nano))
	total := 0
	for i := 0; i < iterations; i++ {
		for !shim.CanRun() {
			time.Sleep(time.Millisecond)
		}
		total += work()
		fmt.Printf("spinworker: pid %d step %d/%d (acc=%d)\n", os.Getpid(), i+1, iterations, total)
	}
	fmt.Printf("spinworker: pid %d done\n", os.Getpid())
}

// work simulates a small unit of CPU-bound computation.
func work() int {
	acc := 0
	for i := 0; i < 20_000_000; i++ {
		acc += i % 7
	}
	return acc
}
