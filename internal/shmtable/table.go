// Package shmtable exposes the shared-memory job table (spec §3, §6) as a
// typed view over a raw byte buffer, with accessors that enforce the
// writer-ownership discipline described in spec §5: the shell owns append
// and the is_new set; the scheduler owns is_new clear. completed/end_time
// are set by the scheduler and also by the shell's own reap, through the
// idempotent SetCompleted. No mutex guards the buffer.
package shmtable

import (
	"encoding/binary"
	"errors"
	"time"

	"simplesched/internal/jobs"
)

const (
	nameFieldLen = jobs.NameMaxLen

	// recordSize is the bit-exact on-the-wire layout of one JobRecord:
	// pid(int32) + name([256]byte) + priority(int32) + is_new(int32) +
	// completed(int32) + start_time(int64) + end_time(int64).
	recordSize = 4 + nameFieldLen + 4 + 4 + 4 + 8 + 8

	// headerSize is job_count(int32) + scheduler_ready(int32).
	headerSize = 4 + 4
)

var (
	// ErrFull is returned by Append when the table has reached its capacity.
	ErrFull = errors.New("shmtable: job table is full")
	// ErrIndexOOB is returned by accessors given an out-of-range index.
	ErrIndexOOB = errors.New("shmtable: index out of bounds")
)

// Size returns the exact byte size of a table holding capacity records; this
// is what the shell must request from sysvshm.Create.
func Size(capacity int) int {
	return headerSize + capacity*recordSize
}

// Table is a typed view over a shared-memory buffer of Size(capacity) bytes.
type Table struct {
	buf      []byte
	capacity int
}

// New wraps buf, which must be at least Size(capacity) bytes (the shell
// zero-initializes it before forking the scheduler, per spec §6).
func New(buf []byte, capacity int) (*Table, error) {
	if len(buf) < Size(capacity) {
		return nil, errors.New("shmtable: buffer too small for requested capacity")
	}
	return &Table{buf: buf, capacity: capacity}, nil
}

// Capacity returns jobs.MaxJobs-equivalent for this table.
func (t *Table) Capacity() int { return t.capacity }

// JobCount returns the monotone count of published records.
func (t *Table) JobCount() int {
	return int(int32(binary.LittleEndian.Uint32(t.buf[0:4])))
}

func (t *Table) setJobCount(n int) {
	binary.LittleEndian.PutUint32(t.buf[0:4], uint32(int32(n)))
}

// SchedulerReady reports the scheduler-ready flag (spec §3's SharedMemory).
func (t *Table) SchedulerReady() bool {
	return int32(binary.LittleEndian.Uint32(t.buf[4:8])) != 0
}

// SetSchedulerReady is called once by the scheduler after it has attached
// the segment, before its ticker starts.
func (t *Table) SetSchedulerReady(v bool) {
	var x uint32
	if v {
		x = 1
	}
	binary.LittleEndian.PutUint32(t.buf[4:8], x)
}

func (t *Table) recordOffset(i int) int {
	return headerSize + i*recordSize
}

// Append writes a new record and bumps job_count last, per spec §5's
// ordering guarantee ("shell writes a new record's fields first, then
// increments job_count last"). It is the shell's sole write path for new
// jobs; is_new is always set to true here.
func (t *Table) Append(rec jobs.Record) (int, error) {
	n := t.JobCount()
	if n >= t.capacity {
		return 0, ErrFull
	}
	off := t.recordOffset(n)
	writeInt32(t.buf, off, int32(rec.PID))
	writeName(t.buf, off+4, rec.Name)
	writeInt32(t.buf, off+4+nameFieldLen, int32(rec.Priority))
	writeInt32(t.buf, off+4+nameFieldLen+4, 1) // is_new
	writeInt32(t.buf, off+4+nameFieldLen+8, 0) // completed
	writeInt64(t.buf, off+4+nameFieldLen+12, rec.StartTime.Unix())
	writeInt64(t.buf, off+4+nameFieldLen+20, 0)

	t.setJobCount(n + 1)
	return n, nil
}

// Job reads a full snapshot of record i.
func (t *Table) Job(i int) (jobs.Record, error) {
	if i < 0 || i >= t.JobCount() {
		return jobs.Record{}, ErrIndexOOB
	}
	off := t.recordOffset(i)
	var rec jobs.Record
	rec.PID = int(readInt32(t.buf, off))
	rec.Name = readName(t.buf, off+4)
	rec.Priority = int(readInt32(t.buf, off+4+nameFieldLen))
	rec.IsNew = readInt32(t.buf, off+4+nameFieldLen+4) != 0
	rec.Completed = readInt32(t.buf, off+4+nameFieldLen+8) != 0
	rec.StartTime = time.Unix(readInt64(t.buf, off+4+nameFieldLen+12), 0)
	if et := readInt64(t.buf, off+4+nameFieldLen+20); et != 0 {
		rec.EndTime = time.Unix(et, 0)
	}
	return rec, nil
}

// ClearIsNew is the scheduler's single write to the is_new edge flag,
// transitioning it 1->0 (never the reverse, per spec §5).
func (t *Table) ClearIsNew(i int) error {
	if i < 0 || i >= t.JobCount() {
		return ErrIndexOOB
	}
	off := t.recordOffset(i)
	writeInt32(t.buf, off+4+nameFieldLen+4, 0)
	return nil
}

// SetCompleted marks record i completed with the given end time. Per spec
// §3's invariant ("a record with completed=1 is never reopened"), this is
// idempotent: once set, later calls are no-ops, so the first observer to
// notice the job exit wins the end_time it recorded. Both the scheduler
// (via pidfd polling) and the shell (via its own SIGCHLD reap) may call
// this independently, per spec §2's data-flow note.
func (t *Table) SetCompleted(i int, end time.Time) error {
	if i < 0 || i >= t.JobCount() {
		return ErrIndexOOB
	}
	off := t.recordOffset(i)
	if readInt32(t.buf, off+4+nameFieldLen+8) != 0 {
		return nil
	}
	writeInt32(t.buf, off+4+nameFieldLen+8, 1)
	writeInt64(t.buf, off+4+nameFieldLen+20, end.Unix())
	return nil
}

func writeInt32(buf []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v))
}

func readInt32(buf []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func writeInt64(buf []byte, off int, v int64) {
	binary.LittleEndian.PutUint64(buf[off:off+8], uint64(v))
}

func readInt64(buf []byte, off int) int64 {
	return int64(binary.LittleEndian.Uint64(buf[off : off+8]))
}

func writeName(buf []byte, off int, name string) {
	field := buf[off : off+nameFieldLen]
	for i := range field {
		field[i] = 0
	}
	n := copy(field[:nameFieldLen-1], name)
	field[n] = 0
}

func readName(buf []byte, off int) string {
	field := buf[off : off+nameFieldLen]
	end := 0
	for end < len(field) && field[end] != 0 {
		end++
	}
	return string(field[:end])
}
