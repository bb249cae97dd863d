// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger provides leveled logging for the paper-qa CLI.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu           sync.RWMutex
	debugEnabled = false

	debugLogger = log.New(os.Stderr, "DEBUG: ", log.Ltime|log.Lshortfile)
	infoLogger  = log.New(os.Stderr, "INFO: ", log.Ltime)
	warnLogger  = log.New(os.Stderr, "WARN: ", log.Ltime)
	errorLogger = log.New(os.Stderr, "ERROR: ", log.Ltime)
)

// Init configures the loggers to write to w. Debug messages are emitted only
// when debug is true.
func Init(w io.Writer, debug bool) {
	mu.Lock()
	debugEnabled = debug
	debugLogger = log.New(w, "DEBUG: ", log.Ltime|log.Lshortfile)
	infoLogger = log.New(w, "INFO: ", log.Ltime)
	warnLogger = log.New(w, "WARN: ", log.Ltime)
	errorLogger = log.New(w, "ERROR: ", log.Ltime)
	mu.Unlock()

	if debug {
		Debug("debug logging enabled")
	}
}

// Debug logs a debug message if debug mode is enabled.
func Debug(format string, v ...any) {
	mu.RLock()
	l, on := debugLogger, debugEnabled
	mu.RUnlock()
	if on {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// Info logs an info message.
func Info(format string, v ...any) {
	current(&infoLogger).Output(2, fmt.Sprintf(format, v...))
}

// Warn logs a recoverable problem.
func Warn(format string, v ...any) {
	current(&warnLogger).Output(2, fmt.Sprintf(format, v...))
}

// Error logs an error message.
func Error(format string, v ...any) {
	current(&errorLogger).Output(2, fmt.Sprintf(format, v...))
}

// current reads a logger under the lock Init writes it under.
func current(l **log.Logger) *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return *l
}
