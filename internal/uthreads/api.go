package uthreads

import (
	"os"
	"runtime"
)

// Entry is a fiber's body: a nullary procedure with no return value.
// Entries that intend to run longer than one quantum must call
// Scheduler.Checkpoint periodically — see the doc comment there.
type Entry func()

// Spawn allocates the smallest unused tid >= 1, gives it a fresh goroutine
// parked on its own resume channel, and appends it to the ready queue.
func (s *Scheduler) Spawn(entry Entry) (int, error) {
	if entry == nil {
		return -1, libErr("spawn: entry must not be nil")
	}

	s.mu.Lock()
	tid := -1
	for candidate := 1; candidate < s.maxThreadNum; candidate++ {
		if _, taken := s.threads[candidate]; !taken {
			tid = candidate
			break
		}
	}
	if tid == -1 {
		s.mu.Unlock()
		return -1, libErr("spawn: thread table full (max %d)", s.maxThreadNum)
	}

	rec := newRecord(tid, StateReady)
	s.threads[tid] = rec
	s.ready = append(s.ready, tid)
	s.mu.Unlock()

	go s.runFiber(rec, entry)
	return tid, nil
}

// runFiber is the goroutine body for every spawned fiber: wait to be
// dispatched for the first time, run the entry, then self-terminate if the
// entry returns instead of calling Terminate explicitly (mirroring thread
// exit-on-return semantics).
func (s *Scheduler) runFiber(rec *record, entry Entry) {
	select {
	case <-rec.resume:
	case <-rec.kill:
		return
	}
	entry()
	_ = s.Terminate(rec.tid)
}

// Terminate destroys a thread record. tid 0 tears down every record and
// exits the process successfully; tid == self never returns; any other tid
// is removed from the ready queue and sleep table and its goroutine is
// released via its kill channel.
func (s *Scheduler) Terminate(tid int) error {
	s.mu.Lock()

	if tid == MainTid {
		s.mu.Unlock()
		s.Stop()
		os.Exit(0)
		return nil // unreachable
	}

	rec, ok := s.threads[tid]
	if !ok {
		s.mu.Unlock()
		return libErr("terminate: unknown tid %d", tid)
	}

	if tid == s.current {
		s.synthesizeTickLocked(true)
		runtime.Goexit()
	}

	s.removeFromReadyLocked(tid)
	delete(s.sleep, tid)
	delete(s.threads, tid)
	s.mu.Unlock()

	close(rec.kill)
	return nil
}

// Block marks tid as blocked: READY/RUNNING -> BLOCKED, SLEEPING ->
// SLEEPING_AND_BLOCKED, and a no-op if already blocked in some form.
// tid 0 may never be blocked.
func (s *Scheduler) Block(tid int) error {
	s.mu.Lock()

	if tid == MainTid {
		s.mu.Unlock()
		return libErr("block: tid 0 cannot be blocked")
	}
	rec, ok := s.threads[tid]
	if !ok {
		s.mu.Unlock()
		return libErr("block: unknown tid %d", tid)
	}

	switch rec.state {
	case StateBlocked, StateSleepingAndBlocked:
		s.mu.Unlock()
		return nil
	case StateSleeping:
		rec.state = StateSleepingAndBlocked
		s.mu.Unlock()
		return nil
	default:
		s.removeFromReadyLocked(tid)
		rec.state = StateBlocked
		if tid == s.current {
			s.synthesizeTickLocked(false)
			return nil
		}
		s.mu.Unlock()
		return nil
	}
}

// Resume wakes a blocked thread: BLOCKED -> READY (re-enqueued),
// SLEEPING_AND_BLOCKED -> SLEEPING (not enqueued). Other states are a
// no-op.
func (s *Scheduler) Resume(tid int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.threads[tid]
	if !ok {
		return libErr("resume: unknown tid %d", tid)
	}

	switch rec.state {
	case StateBlocked:
		rec.state = StateReady
		s.ready = append(s.ready, tid)
	case StateSleepingAndBlocked:
		rec.state = StateSleeping
	}
	return nil
}

// Sleep puts the calling fiber to sleep for n further quanta. It is
// forbidden for tid 0. The calling fiber's own quantum does not count
// toward n: it synthesizes a tick immediately, then wakes after n more
// ticks have advanced the sleep table.
func (s *Scheduler) Sleep(n int) error {
	s.mu.Lock()

	if s.current == MainTid {
		s.mu.Unlock()
		return libErr("sleep: tid 0 cannot sleep")
	}

	// Advance everyone else's sleep counters for this tick before
	// registering our own, so the quantum that sleep() itself consumes is
	// not also charged against the n we're about to set.
	s.advanceSleepLocked()
	s.totalQuantums++

	rec := s.threads[s.current]
	rec.state = StateSleeping
	s.sleep[s.current] = n

	if len(s.ready) == 0 {
		rec.quantumsRun++
		s.mu.Unlock()
		return nil
	}
	s.dispatchLocked(false)
	return nil
}

// CurrentTid returns the tid of the calling fiber.
func (s *Scheduler) CurrentTid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// TotalQuantums returns the process-wide tick counter.
func (s *Scheduler) TotalQuantums() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalQuantums
}

// Quantums returns how many quanta tid has spent RUNNING.
func (s *Scheduler) Quantums(tid int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.threads[tid]
	if !ok {
		return -1, libErr("get_quantums: unknown tid %d", tid)
	}
	return rec.quantumsRun, nil
}

// removeFromReadyLocked deletes tid from the ready queue if present. Must
// be called with mu held.
func (s *Scheduler) removeFromReadyLocked(tid int) {
	for i, t := range s.ready {
		if t == tid {
			s.ready = append(s.ready[:i], s.ready[i+1:]...)
			return
		}
	}
}
