package logger

import (
	"log"
	"os"
)

// Logger narrates each publish step to stdout so a failed run shows exactly
// where it stopped. Errors go to stderr.
type Logger struct {
	verbose bool
	out     *log.Logger
	errOut  *log.Logger
}

func New(verbose bool) *Logger {
	return &Logger{
		verbose: verbose,
		out:     log.New(os.Stdout, "", log.LstdFlags),
		errOut:  log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.out.Printf("[INFO] "+format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbose {
		l.out.Printf("[DEBUG] "+format, args...)
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.errOut.Printf("[ERROR] "+format, args...)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.errOut.Printf("[FATAL] "+format, args...)
	os.Exit(1)
}
