// Package config resolves the mandatory positional CLI arguments spec §6
// requires (NCPU, TSLICE, and the scheduler's SHMID) via spf13/pflag, the
// way ferryd/main.go parses its own flags, with an optional YAML defaults
// file (gopkg.in/yaml.v3, the pattern carried from the snmp_collector
// example's config loader) for everything CLI positionals don't cover.
// Positional arguments always win over the file.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"simplesched/internal/jobs"
	"simplesched/internal/sched"
)

// FileDefaults is the optional YAML configuration file shape.
type FileDefaults struct {
	MaxJobs     int    `yaml:"max_jobs"`
	MaxPriority int    `yaml:"max_priority"`
	LogLevel    string `yaml:"log_level"`
	Policy      string `yaml:"policy"`
}

// LoadFile reads and parses a YAML defaults file. An empty path is not an
// error: it simply yields zero-value defaults, so callers can always call
// this unconditionally. A non-empty path that cannot be read is an error.
func LoadFile(path string) (FileDefaults, error) {
	var fd FileDefaults
	if path == "" {
		return fd, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fd, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return fd, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return fd, nil
}

func parsePolicy(s string) sched.Policy {
	if s == "priority" || s == "strict-priority" {
		return sched.PolicyPriority
	}
	return sched.PolicyFIFO
}

// Shell is the resolved configuration for cmd/simpleshell.
type Shell struct {
	NCPU         int
	TSliceUs     int
	MaxJobs      int
	MaxPriority  int
	LogLevel     string
	Policy       sched.Policy
	SchedulerBin string
}

// ParseShell reads `NCPU TSLICE_us` positionals plus --config/--log-level/
// --policy/--scheduler-bin flags, exactly mirroring spec §6's
// `SimpleShell <NCPU> <TSLICE_us>` contract.
func ParseShell(args []string) (Shell, error) {
	fs := pflag.NewFlagSet("simpleshell", pflag.ContinueOnError)
	configPath := fs.String("config", "", "optional YAML defaults file")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	policy := fs.String("policy", "", "dispatch policy: fifo or priority")
	schedulerBin := fs.String("scheduler-bin", "", "path to the scheduler binary (default: alongside this executable)")
	if err := fs.Parse(args); err != nil {
		return Shell{}, err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return Shell{}, fmt.Errorf("usage: SimpleShell <NCPU> <TSLICE_us>")
	}
	ncpu, tslice, err := parsePositionals(rest)
	if err != nil {
		return Shell{}, err
	}

	fd, err := LoadFile(*configPath)
	if err != nil {
		return Shell{}, err
	}

	cfg := Shell{
		NCPU:         ncpu,
		TSliceUs:     tslice,
		MaxJobs:      fd.MaxJobs,
		MaxPriority:  fd.MaxPriority,
		LogLevel:     fd.LogLevel,
		Policy:       parsePolicy(fd.Policy),
		SchedulerBin: *schedulerBin,
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = jobs.MaxJobs
	}
	if cfg.MaxPriority <= 0 {
		cfg.MaxPriority = jobs.MaxPriority
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if *policy != "" {
		cfg.Policy = parsePolicy(*policy)
	}
	return cfg, nil
}

// Scheduler is the resolved configuration for cmd/scheduler.
type Scheduler struct {
	NCPU     int
	TSliceUs int
	ShmID    int
	MaxJobs  int
	LogLevel string
	Policy   sched.Policy
}

// ParseScheduler reads `NCPU TSLICE_us SHMID` positionals plus
// --log-level/--policy, mirroring spec §6's internal scheduler contract.
func ParseScheduler(args []string) (Scheduler, error) {
	fs := pflag.NewFlagSet("scheduler", pflag.ContinueOnError)
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	policy := fs.String("policy", "fifo", "dispatch policy: fifo or priority")
	maxJobs := fs.Int("max-jobs", jobs.MaxJobs, "job table capacity, must match the shell's")
	if err := fs.Parse(args); err != nil {
		return Scheduler{}, err
	}

	rest := fs.Args()
	if len(rest) != 3 {
		return Scheduler{}, fmt.Errorf("usage: scheduler <NCPU> <TSLICE_us> <SHMID>")
	}
	ncpu, tslice, err := parsePositionals(rest[:2])
	if err != nil {
		return Scheduler{}, err
	}
	shmid, err := parseInt(rest[2], "SHMID")
	if err != nil {
		return Scheduler{}, err
	}

	return Scheduler{
		NCPU:     ncpu,
		TSliceUs: tslice,
		ShmID:    shmid,
		MaxJobs:  *maxJobs,
		LogLevel: *logLevel,
		Policy:   parsePolicy(*policy),
	}, nil
}

func parsePositionals(rest []string) (ncpu, tslice int, err error) {
	ncpu, err = parseInt(rest[0], "NCPU")
	if err != nil {
		return
	}
	tslice, err = parseInt(rest[1], "TSLICE_us")
	if err != nil {
		return
	}
	if ncpu <= 0 {
		err = fmt.Errorf("NCPU must be positive, got %d", ncpu)
		return
	}
	if tslice <= 0 {
		err = fmt.Errorf("TSLICE_us must be positive, got %d", tslice)
		return
	}
	return
}

func parseInt(s, label string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", label, s, err)
	}
	return v, nil
}
