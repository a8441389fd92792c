package shell

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// pumpOutput is the one concurrent task per submitted job spec §5/§9
// describe: it only performs blocking reads on the captured pipe and
// synchronous writes to the shell's terminal, and never touches the job
// table. A read error (including EOF) closes the pipe and ends the task
// silently (spec §7's "I/O pump" error kind) — it never affects scheduling.
func pumpOutput(r *os.File, out io.Writer, logger *log.Logger) {
	defer r.Close()
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				logger.WithError(werr).Debug("shell: io pump write failed, stopping")
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				logger.WithError(err).Debug("shell: io pump read failed, stopping")
			}
			return
		}
	}
}
