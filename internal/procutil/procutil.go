// Package procutil resolves a submit path against PATH with a "./" fallback
// and checks executability, the way the original simple-shell.c's
// handle_submit and is_executable did, and exposes a basename helper for
// the shell's display name field.
package procutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when path resolves to nothing on PATH or "./".
var ErrNotFound = errors.New("procutil: program not found")

// ErrNotExecutable is returned when the resolved path exists but lacks the
// executable bit.
var ErrNotExecutable = errors.New("procutil: program is not executable")

// Resolve finds the program to execute for a submit argument: first a PATH
// search, then a "./<path>" fallback, matching spec §4.1's contract.
func Resolve(program string) (string, error) {
	if program == "" {
		return "", ErrNotFound
	}

	if strings.ContainsRune(program, os.PathSeparator) || strings.HasPrefix(program, ".") {
		return resolveDirect(program)
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, program)
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}

	return resolveDirect("./" + program)
}

func resolveDirect(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", ErrNotFound
	}
	if info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return "", ErrNotExecutable
	}
	return path, nil
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}

// Basename returns the display name for a submitted program: argv[0]'s
// basename, per spec §3's JobRecord.name definition.
func Basename(path string) string {
	return filepath.Base(path)
}
