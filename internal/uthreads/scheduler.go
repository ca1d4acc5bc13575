package uthreads

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/nullframe/corekit/internal/xlog"
)

// Scheduler owns every piece of mutable state: the thread table, ready
// queue, sleep table and total-quantum counter, collapsed into one struct
// instead of package-level vars since nothing here needs more than one
// scheduler per process.
type Scheduler struct {
	mu sync.Mutex

	threads map[int]*record
	ready   []int
	sleep   map[int]int // tid -> remaining quanta; absence == sentinel -1

	current       int
	totalQuantums int
	maxThreadNum  int
	stackSize     int

	pendingSwitch bool
	toReap        int // tid pending teardown from a predecessor's self-termination, or -1

	quantumUsecs int
	stopCh       chan struct{}
	stopped      bool
	sigCh        chan os.Signal

	log *slog.Logger
}

// New validates quantum_usecs and builds a Scheduler bound to the calling
// goroutine as tid 0. It does not arm the virtual timer; call Start for
// that, a two-phase construct/start split so tests can build a Scheduler
// without racing a real timer.
func New(quantumUsecs, maxThreadNum, stackSize int, log *slog.Logger) (*Scheduler, error) {
	if quantumUsecs <= 0 {
		return nil, libErr("quantum_usecs must be positive, got %d", quantumUsecs)
	}
	if log == nil {
		log = xlog.New("info", "uthreads")
	}
	if maxThreadNum <= 0 {
		maxThreadNum = 128
	}

	s := &Scheduler{
		threads:      make(map[int]*record),
		sleep:        make(map[int]int),
		maxThreadNum: maxThreadNum,
		stackSize:    stackSize,
		quantumUsecs: quantumUsecs,
		toReap:       -1,
		stopCh:       make(chan struct{}),
		log:          log,
	}

	main := newRecord(MainTid, StateRunning)
	s.threads[MainTid] = main
	s.current = MainTid
	main.quantumsRun = 1
	s.totalQuantums = 1

	return s, nil
}

// Start arms the virtual-time interval timer and begins delivering ticks.
// Separated from New so tests can drive Scheduler.Tick synchronously
// without a real timer racing them.
func (s *Scheduler) Start() error {
	if err := s.armTimer(s.quantumUsecs); err != nil {
		s.fatal("arming virtual timer: %v", err)
		return err
	}
	return nil
}

// Stop disarms the timer and releases the signal channel. It does not
// terminate any thread; callers that want a clean process exit should call
// Terminate(0) instead, which calls Stop itself.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	close(s.stopCh)
	s.disarmTimer()
}

// fatal reports a system error and exits the process, per the library's
// fatal-error taxonomy: release resources, print "system error: <msg>",
// exit nonzero.
func (s *Scheduler) fatal(format string, args ...any) {
	err := sysErr(format, args...)
	xlog.SystemError(err.Error())
	s.Stop()
	os.Exit(1)
}

// Checkpoint is the library's sole preemption point for fiber bodies that
// don't otherwise call into the scheduler: spawned fibers expected to run
// for more than one quantum must call it periodically (in a loop body, for
// instance). It is a no-op unless a tick arrived while this fiber was
// running and deferred the switch until now, the emulation this library
// uses for hosts without asynchronous interruption of arbitrary code.
func (s *Scheduler) Checkpoint() {
	s.mu.Lock()
	if !s.pendingSwitch {
		s.mu.Unlock()
		return
	}
	s.pendingSwitch = false
	s.dispatchLocked(false)
}

// Tick synchronously drives one quantum boundary, exactly as if
// SIGVTALRM had just been delivered and the current fiber had called
// Checkpoint immediately. Tests use this in place of arming a real timer
// and racing a goroutine against assertions.
func (s *Scheduler) Tick() {
	s.tick(true)
}

// tick is the quantum-tick handler. synthetic is true when driven by Tick
// (tests) rather than a real SIGVTALRM delivery — the switch happens
// immediately instead of being deferred to the next Checkpoint.
func (s *Scheduler) tick(synthetic bool) {
	s.mu.Lock()
	s.advanceSleepLocked()
	s.totalQuantums++

	if len(s.ready) == 0 {
		cur := s.threads[s.current]
		cur.quantumsRun++
		s.mu.Unlock()
		return
	}

	if !synthetic {
		s.pendingSwitch = true
		s.mu.Unlock()
		return
	}

	s.dispatchLocked(false)
}

// advanceSleepLocked decrements every sleeping thread's counter and wakes
// the ones that reach zero. Must be called with mu held.
func (s *Scheduler) advanceSleepLocked() {
	for tid, remaining := range s.sleep {
		remaining--
		rec, ok := s.threads[tid]
		if !ok {
			delete(s.sleep, tid)
			continue
		}
		if remaining > 0 {
			s.sleep[tid] = remaining
			continue
		}
		delete(s.sleep, tid)
		switch rec.state {
		case StateSleeping:
			rec.state = StateReady
			s.ready = append(s.ready, tid)
		case StateSleepingAndBlocked:
			rec.state = StateBlocked
		}
	}
}

// dispatchLocked performs the actual handoff: it reaps whatever thread a
// prior self-termination left pending, requeues the current fiber (unless
// it is terminating or no longer eligible), pops the next ready tid,
// installs it as current, and hands it the baton. Must be called with mu
// held; it releases mu itself and, unless selfTerminating, parks the
// caller on its own resume channel until redispatched, also selecting on
// its kill channel so a Terminate from another tid while parked here
// unwinds the goroutine instead of leaking it.
//
// Freeing a self-terminated record is deferred to the dispatch that
// follows it rather than done inline: the running thread's own record
// can't be torn down while it is still executing on it, so the "to-reap"
// slot is cleared by the next thread that gets scheduled.
func (s *Scheduler) dispatchLocked(selfTerminating bool) {
	if s.toReap >= 0 {
		delete(s.threads, s.toReap)
		delete(s.sleep, s.toReap)
		s.toReap = -1
	}

	prevTid := s.current
	prev := s.threads[prevTid]

	if selfTerminating {
		s.toReap = prevTid
	} else {
		switch prev.state {
		case StateBlocked, StateSleeping, StateSleepingAndBlocked:
			// not re-queued
		default:
			prev.state = StateReady
			s.ready = append(s.ready, prevTid)
		}
	}

	nextTid := s.ready[0]
	s.ready = s.ready[1:]
	next := s.threads[nextTid]
	next.state = StateRunning
	next.quantumsRun++
	s.current = nextTid

	s.mu.Unlock()

	next.resume <- struct{}{}
	if selfTerminating {
		return
	}
	select {
	case <-prev.resume:
	case <-prev.kill:
		runtime.Goexit()
	}
}

// synthesizeTickLocked runs the bookkeeping half of a quantum tick
// (advance the sleep table, bump total_quantums) and then dispatches away
// from the current fiber, exactly as if a real tick had landed right here.
// Sleep, Block(self) and Terminate(self) all go through this. Must be
// called with mu held; like dispatchLocked, it unlocks internally.
func (s *Scheduler) synthesizeTickLocked(selfTerminating bool) {
	s.advanceSleepLocked()
	s.totalQuantums++

	if len(s.ready) == 0 {
		if selfTerminating {
			s.mu.Unlock()
			s.fatal("no runnable thread left to dispatch for terminate(self)")
			return
		}
		cur := s.threads[s.current]
		cur.quantumsRun++
		s.mu.Unlock()
		return
	}

	s.dispatchLocked(selfTerminating)
}

// Snapshot returns a read-only view of scheduler state for introspection.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		CurrentTid:    s.current,
		ReadyQueue:    append([]int(nil), s.ready...),
		SleepTable:    make(map[int]int, len(s.sleep)),
		Quantums:      make(map[int]int, len(s.threads)),
		States:        make(map[int]State, len(s.threads)),
		TotalQuantums: s.totalQuantums,
	}
	for tid, remaining := range s.sleep {
		snap.SleepTable[tid] = remaining
	}
	for tid, rec := range s.threads {
		snap.Quantums[tid] = rec.quantumsRun
		snap.States[tid] = rec.state
	}
	return snap
}

// QuantumDuration is used by the demo binaries to size their run loops.
func (s *Scheduler) QuantumDuration() time.Duration {
	return time.Duration(s.quantumUsecs) * time.Microsecond
}
