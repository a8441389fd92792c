package shim

import "syscall"

// Resume and Pause are the two protocol-level signals the scheduler sends to
// cooperatively start/stop a submitted process at quantum boundaries (spec
// §6). They map directly onto SIGUSR1/SIGUSR2, as the original source does.
const (
	Resume = syscall.SIGUSR1
	Pause  = syscall.SIGUSR2
)
