// Command simpleshell is the Shell/Submitter process of the workbench
// (spec §4.1, §6): `SimpleShell <NCPU> <TSLICE_us>`. It owns the shared
// job table, launches the scheduler against it, and accepts `submit` lines
// until exit/EOF/SIGINT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"simplesched/internal/config"
	"simplesched/internal/logging"
	"simplesched/internal/shell"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseShell(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := logging.New(cfg.LogLevel)

	sh, err := shell.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize shell")
		return 1
	}

	if err := sh.LaunchScheduler(); err != nil {
		logger.WithError(err).Error("failed to launch scheduler")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return sh.Run(ctx, os.Stdin, os.Stdout)
}
