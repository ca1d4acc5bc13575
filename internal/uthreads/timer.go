package uthreads

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// armTimer programs a virtual-time interval timer via setitimer(2) the way
// the original's init arms ITIMER_VIRTUAL, and starts a goroutine that
// receives SIGVTALRM off an os/signal channel and drives tick(false). The
// timer itself is real; only the signal-masked critical section around
// each public call is emulated (with Scheduler.mu), since Go's runtime
// doesn't expose process-wide signal masking to user code the way sigprocmask
// does.
func (s *Scheduler) armTimer(quantumUsecs int) error {
	dur := time.Duration(quantumUsecs) * time.Microsecond
	tv := unix.NsecToTimeval(dur.Nanoseconds())
	it := unix.Itimerval{Interval: tv, Value: tv}
	if _, err := unix.Setitimer(unix.ITIMER_VIRTUAL, it); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGVTALRM)
	s.sigCh = sigCh

	go s.signalLoop(sigCh)
	return nil
}

func (s *Scheduler) signalLoop(sigCh chan os.Signal) {
	for {
		select {
		case <-sigCh:
			s.tick(false)
		case <-s.stopCh:
			return
		}
	}
}

// disarmTimer stops delivering SIGVTALRM and zeroes the interval timer.
func (s *Scheduler) disarmTimer() {
	if s.sigCh != nil {
		signal.Stop(s.sigCh)
	}
	_, _ = unix.Setitimer(unix.ITIMER_VIRTUAL, unix.Itimerval{})
}
