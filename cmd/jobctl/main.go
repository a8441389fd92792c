// Command jobctl is a read-only inspector for a running workbench's shared
// job table (spec §3): it attaches to the same System V segment the shell
// created and prints a snapshot, without participating in the shell/
// scheduler protocol in any way.
package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"simplesched/internal/jobs"
	"simplesched/internal/shmtable"
	"simplesched/internal/sysvshm"
)

var maxJobs int

func main() {
	root := &cobra.Command{
		Use:   "jobctl",
		Short: "Inspect a running SimpleShell workbench's shared job table",
	}
	root.PersistentFlags().IntVar(&maxJobs, "max-jobs", jobs.MaxJobs, "job table capacity, must match the shell's")

	root.AddCommand(psCmd())
	root.AddCommand(statsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func attach(shmidArg string) (*shmtable.Table, *sysvshm.Segment, error) {
	var shmid int
	if _, err := fmt.Sscanf(shmidArg, "%d", &shmid); err != nil {
		return nil, nil, fmt.Errorf("invalid SHMID %q: %w", shmidArg, err)
	}
	seg, err := sysvshm.Attach(shmid)
	if err != nil {
		return nil, nil, err
	}
	table, err := shmtable.New(seg.Data, maxJobs)
	if err != nil {
		seg.Detach()
		return nil, nil, err
	}
	return table, seg, nil
}

func psCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ps <SHMID>",
		Short: "List every job currently recorded in the shared table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, seg, err := attach(args[0])
			if err != nil {
				return err
			}
			defer seg.Detach()

			out := tablewriter.NewWriter(cmd.OutOrStdout())
			out.SetHeader([]string{"Index", "PID", "Name", "Priority", "New", "Completed", "Start"})
			n := table.JobCount()
			for i := 0; i < n; i++ {
				rec, err := table.Job(i)
				if err != nil {
					continue
				}
				out.Append([]string{
					fmt.Sprintf("%d", i),
					fmt.Sprintf("%d", rec.PID),
					rec.Name,
					fmt.Sprintf("%d", rec.Priority),
					fmt.Sprintf("%t", rec.IsNew),
					fmt.Sprintf("%t", rec.Completed),
					rec.StartTime.Format("15:04:05"),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scheduler ready: %t, jobs: %d/%d\n", table.SchedulerReady(), n, table.Capacity())
			out.Render()
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <SHMID>",
		Short: "Summarize completed vs. pending jobs in the shared table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, seg, err := attach(args[0])
			if err != nil {
				return err
			}
			defer seg.Detach()

			n := table.JobCount()
			completed, pending := 0, 0
			for i := 0; i < n; i++ {
				rec, err := table.Job(i)
				if err != nil {
					continue
				}
				if rec.Completed {
					completed++
				} else {
					pending++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d  completed: %d  pending: %d  capacity: %d\n",
				n, completed, pending, table.Capacity())
			return nil
		},
	}
}
