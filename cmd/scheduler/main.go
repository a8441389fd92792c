// Command scheduler is the priority round-robin scheduler process (spec
// §4.2, §6): `scheduler <NCPU> <TSLICE_us> <SHMID>`. It attaches to a job
// table the shell already created, drives the schedule step on a TSLICE
// ticker, and reports its own pedagogical completion statistics at
// shutdown (spec §9) since slices_run never leaves this process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"

	"simplesched/internal/config"
	"simplesched/internal/logging"
	"simplesched/internal/sched"
	"simplesched/internal/shmtable"
	"simplesched/internal/sysvshm"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseScheduler(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := logging.New(cfg.LogLevel)

	seg, err := sysvshm.Attach(cfg.ShmID)
	if err != nil {
		logger.WithError(err).Error("failed to attach shared memory")
		return 1
	}
	defer seg.Detach()

	table, err := shmtable.New(seg.Data, cfg.MaxJobs)
	if err != nil {
		logger.WithError(err).Error("failed to wrap shared memory")
		return 1
	}
	table.SetSchedulerReady(true)

	policy := cfg.Policy
	s := sched.New(table, cfg.NCPU, time.Duration(cfg.TSliceUs)*time.Microsecond, policy, logger)
	logger.WithField("scheduler", s.String()).Info("scheduler starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		logger.WithError(err).Error("scheduler exited with error")
		return 1
	}

	printStats(s.Stats())
	return 0
}

func printStats(stats []sched.CompletionStats) {
	if len(stats) == 0 {
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"PID", "Name", "Priority", "Slices", "Completion Time", "Wait Time"})
	for _, st := range stats {
		table.Append([]string{
			fmt.Sprintf("%d", st.PID),
			st.Name,
			fmt.Sprintf("%d", st.Priority),
			fmt.Sprintf("%d", st.SlicesRun),
			st.CompletionTime.String(),
			st.WaitTime.String(),
		})
	}
	fmt.Println("\nScheduler Completion Statistics:")
	table.Render()
}
