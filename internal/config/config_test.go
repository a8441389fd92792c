package config

import (
	"os"
	"path/filepath"
	"testing"

	"simplesched/internal/sched"
)

func TestParseShellPositionals(t *testing.T) {
	cfg, err := ParseShell([]string{"4", "100000"})
	if err != nil {
		t.Fatalf("ParseShell: %v", err)
	}
	if cfg.NCPU != 4 || cfg.TSliceUs != 100000 {
		t.Errorf("cfg = %+v, want NCPU=4 TSliceUs=100000", cfg)
	}
	if cfg.Policy != sched.PolicyFIFO {
		t.Errorf("default policy = %v, want FIFO", cfg.Policy)
	}
}

func TestParseShellRejectsBadArgs(t *testing.T) {
	cases := [][]string{
		{"4"},
		{"0", "1000"},
		{"4", "0"},
		{"notanumber", "1000"},
	}
	for _, c := range cases {
		if _, err := ParseShell(c); err == nil {
			t.Errorf("ParseShell(%v) should have failed", c)
		}
	}
}

func TestParseSchedulerPositionals(t *testing.T) {
	cfg, err := ParseScheduler([]string{"2", "50000", "12345"})
	if err != nil {
		t.Fatalf("ParseScheduler: %v", err)
	}
	if cfg.NCPU != 2 || cfg.TSliceUs != 50000 || cfg.ShmID != 12345 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseShellWithConfigFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simplesched.yaml")
	contents := "max_jobs: 50\nmax_priority: 8\nlog_level: debug\npolicy: priority\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := ParseShell([]string{"--config", path, "2", "100000"})
	if err != nil {
		t.Fatalf("ParseShell: %v", err)
	}
	if cfg.MaxJobs != 50 || cfg.MaxPriority != 8 || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v, want file defaults applied", cfg)
	}
	if cfg.Policy != sched.PolicyPriority {
		t.Errorf("cfg.Policy = %v, want PolicyPriority", cfg.Policy)
	}

	// CLI flag should override the file's log level.
	cfg2, err := ParseShell([]string{"--config", path, "--log-level", "warn", "2", "100000"})
	if err != nil {
		t.Fatalf("ParseShell: %v", err)
	}
	if cfg2.LogLevel != "warn" {
		t.Errorf("cfg2.LogLevel = %q, want warn (CLI override)", cfg2.LogLevel)
	}
}
