// Package logger provides levelled logging for the app runners.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger writes info/warn lines to one writer and errors to another.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// New creates a logger writing every level to w.
func New(w io.Writer) *Logger {
	return newLogger(w, w)
}

// Default logs info and warnings to stdout and errors to stderr.
func Default() *Logger {
	return newLogger(os.Stdout, os.Stderr)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return newLogger(io.Discard, io.Discard)
}

func newLogger(out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds
	return &Logger{
		infoLogger:  log.New(out, "[pointfall] INFO  ", flags),
		warnLogger:  log.New(out, "[pointfall] WARN  ", flags),
		errorLogger: log.New(errOut, "[pointfall] ERROR ", flags),
	}
}

func (l *Logger) Info(msg string) {
	if l == nil {
		return
	}
	l.infoLogger.Println(msg)
}

func (l *Logger) Warn(msg string) {
	if l == nil {
		return
	}
	l.warnLogger.Println(msg)
}

func (l *Logger) Error(msg string) {
	if l == nil {
		return
	}
	l.errorLogger.Println(msg)
}

func (l *Logger) Infof(format string, args ...any)  { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.Error(fmt.Sprintf(format, args...)) }
