// Package logging configures the shared logrus setup both binaries use,
// following ferryd/main.go's mainLoop: a TextFormatter with full timestamps,
// writing to stderr by default so a submitted job's captured stdout stays
// clean on the terminal.
package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// New returns a configured logger at the given level ("debug", "info",
// "warn", "error"; empty defaults to "info").
func New(level string) *log.Logger {
	l := log.New()
	form := &log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	}
	l.SetFormatter(form)
	l.SetOutput(os.Stderr)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}
