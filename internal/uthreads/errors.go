package uthreads

import (
	"fmt"

	"github.com/nullframe/corekit/internal/xlog"
)

// libraryError is a recoverable, caller-fault error. Every recovered
// library call writes "thread library error: <msg>" to stderr before
// returning -1, per the library's failure semantics.
type libraryError struct {
	msg string
}

func (e *libraryError) Error() string { return e.msg }

func libErr(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	xlog.LibraryError(msg)
	return &libraryError{msg: msg}
}

// systemError is fatal: constructing one doesn't itself exit, but every
// caller that builds one passes it straight to Scheduler.fatal, which
// logs it and calls os.Exit(1) directly.
type systemError struct {
	msg string
}

func (e *systemError) Error() string { return e.msg }

func sysErr(format string, args ...any) error {
	return &systemError{msg: fmt.Sprintf(format, args...)}
}
