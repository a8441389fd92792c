package procutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDirectExecutable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != path {
		t.Errorf("Resolve = %q, want %q", got, path)
	}
}

func TestResolveNotExecutable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog")
	if err := os.WriteFile(path, []byte("not executable"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Resolve(path); err != ErrNotExecutable {
		t.Errorf("Resolve = %v, want ErrNotExecutable", err)
	}
}

func TestResolveNotFound(t *testing.T) {
	if _, err := Resolve("/no/such/program/anywhere"); err != ErrNotFound {
		t.Errorf("Resolve = %v, want ErrNotFound", err)
	}
}

func TestResolveViaPATH(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myprog")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	oldPath := os.Getenv("PATH")
	defer os.Setenv("PATH", oldPath)
	os.Setenv("PATH", dir)

	got, err := Resolve("myprog")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != path {
		t.Errorf("Resolve = %q, want %q", got, path)
	}
}

func TestBasename(t *testing.T) {
	if got := Basename("/usr/local/bin/worker"); got != "worker" {
		t.Errorf("Basename = %q, want worker", got)
	}
}
