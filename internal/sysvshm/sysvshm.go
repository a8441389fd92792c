// Package sysvshm wraps the raw POSIX System V shared-memory syscalls the
// shell and scheduler use as their one communication channel (spec §3, §6).
// It is the one place this module reaches below Go's usual abstractions:
// the contract requires two independent OS processes to observe the same
// physical page, which a Go channel or even an mmap'd file cannot give us
// the same guarantees for across a fork+exec boundary.
package sysvshm

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Segment is an attached System V shared-memory region.
type Segment struct {
	ID   int
	Data []byte
}

// Create allocates a brand-new private segment of the given size, attaches
// it read-write, and returns its ID (to be handed to the scheduler as a CLI
// argument, per spec §6) along with the attached byte slice. The shell is
// the sole owner of segment creation.
func Create(size int) (*Segment, error) {
	id, err := unix.SysvShmGet(unix.IPC_PRIVATE, size, unix.IPC_CREAT|0600)
	if err != nil {
		return nil, fmt.Errorf("sysvshm: shmget failed: %w", err)
	}
	return attach(id)
}

// Attach attaches an already-created segment by ID; this is how the
// scheduler (and any read-only inspector) joins the shell's segment.
func Attach(id int) (*Segment, error) {
	return attach(id)
}

func attach(id int) (*Segment, error) {
	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("sysvshm: shmat failed for id %d: %w", id, err)
	}
	return &Segment{ID: id, Data: data}, nil
}

// Detach unmaps the segment from this process's address space. It does not
// destroy the segment; call Destroy from the owning process for that.
func (s *Segment) Detach() error {
	if s == nil || s.Data == nil {
		return nil
	}
	if err := unix.SysvShmDetach(s.Data); err != nil {
		return fmt.Errorf("sysvshm: shmdt failed for id %d: %w", s.ID, err)
	}
	s.Data = nil
	return nil
}

// Destroy marks the segment for removal once the last process detaches. The
// shell calls this during its own shutdown (spec §4.1's "detach and destroy
// the shared segment").
func (s *Segment) Destroy() error {
	if s == nil {
		return nil
	}
	_, err := unix.SysvShmCtl(s.ID, unix.IPC_RMID, nil)
	if err != nil {
		return fmt.Errorf("sysvshm: shmctl(IPC_RMID) failed for id %d: %w", s.ID, err)
	}
	return nil
}
