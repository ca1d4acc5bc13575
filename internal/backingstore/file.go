package backingstore

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/nullframe/corekit/internal/delay"
	"github.com/nullframe/corekit/internal/xlog"
	"github.com/nullframe/corekit/internal/xsync"
)

const wordBytes = 8

// swapEntry records where one page's snapshot lives in the swap file.
type swapEntry struct {
	offset int64
	inUse  bool
}

// File is a BackingStore that keeps live physical memory in process
// memory but persists evicted pages to a swap file on disk, keyed by
// page id. Concurrent Evict/Restore calls are bounded by a counting
// semaphore limiting concurrent swap-file I/O.
type File struct {
	mu       sync.Mutex
	mem      []int64
	pageSize int64

	path       string
	entries    map[int64]swapEntry
	nextOffset int64

	sem     *xsync.Semaphore
	delayMs int
	log     *slog.Logger
}

// NewFile opens (creating if absent) a swap file at path. swapDelayMs
// simulates configurable per-operation swap latency; maxConcurrentIO
// bounds how many Evict/Restore calls may be in flight against the file
// at once.
func NewFile(numFrames, pageSize int64, path string, swapDelayMs, maxConcurrentIO int, log *slog.Logger) (*File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("backingstore: opening swap file %s: %w", path, err)
	}
	f.Close()

	if log == nil {
		log = xlog.New("info", "backingstore")
	}
	return &File{
		mem:      make([]int64, numFrames*pageSize),
		pageSize: pageSize,
		path:     path,
		entries:  make(map[int64]swapEntry),
		sem:      xsync.NewSemaphore(maxConcurrentIO),
		delayMs:  swapDelayMs,
		log:      log,
	}, nil
}

func (f *File) Read(physAddr int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if physAddr < 0 || physAddr >= int64(len(f.mem)) {
		return 0, fmt.Errorf("backingstore: read out of range: %d", physAddr)
	}
	return f.mem[physAddr], nil
}

func (f *File) Write(physAddr int64, value int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if physAddr < 0 || physAddr >= int64(len(f.mem)) {
		return fmt.Errorf("backingstore: write out of range: %d", physAddr)
	}
	f.mem[physAddr] = value
	return nil
}

// Evict snapshots frame's contents to pageID's slot in the swap file,
// reusing the page's existing offset if it was evicted before.
func (f *File) Evict(frame int64, pageID int64) error {
	f.sem.Acquire()
	defer f.sem.Release()
	delay.Apply(f.log, "swap-evict", f.delayMs)

	f.mu.Lock()
	defer f.mu.Unlock()

	base := frame * f.pageSize
	if base < 0 || base+f.pageSize > int64(len(f.mem)) {
		return fmt.Errorf("backingstore: evict frame out of range: %d", frame)
	}

	entry, exists := f.entries[pageID]
	offset := entry.offset
	if !exists {
		offset = f.nextOffset
		f.nextOffset += f.pageSize * wordBytes
	}

	buf := make([]byte, f.pageSize*wordBytes)
	for i := int64(0); i < f.pageSize; i++ {
		binary.LittleEndian.PutUint64(buf[i*wordBytes:], uint64(f.mem[base+i]))
	}

	swapFile, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("backingstore: opening swap file for write: %w", err)
	}
	defer swapFile.Close()
	if _, err := swapFile.WriteAt(buf, offset); err != nil {
		return fmt.Errorf("backingstore: writing swap file: %w", err)
	}

	f.entries[pageID] = swapEntry{offset: offset, inUse: true}
	f.log.Info("page evicted to swap", "page_id", pageID, "frame", frame, "offset", offset)
	return nil
}

// Restore loads pageID's swap slot into frame. A page that was never
// evicted before has no slot yet; its frame is simply zeroed, matching a
// freshly faulted-in page.
func (f *File) Restore(frame int64, pageID int64) error {
	f.sem.Acquire()
	defer f.sem.Release()
	delay.Apply(f.log, "swap-restore", f.delayMs)

	f.mu.Lock()
	defer f.mu.Unlock()

	base := frame * f.pageSize
	if base < 0 || base+f.pageSize > int64(len(f.mem)) {
		return fmt.Errorf("backingstore: restore frame out of range: %d", frame)
	}

	entry, exists := f.entries[pageID]
	if !exists || !entry.inUse {
		for i := int64(0); i < f.pageSize; i++ {
			f.mem[base+i] = 0
		}
		return nil
	}

	buf := make([]byte, f.pageSize*wordBytes)
	swapFile, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("backingstore: opening swap file for read: %w", err)
	}
	defer swapFile.Close()
	if _, err := swapFile.ReadAt(buf, entry.offset); err != nil {
		return fmt.Errorf("backingstore: reading swap file: %w", err)
	}

	for i := int64(0); i < f.pageSize; i++ {
		f.mem[base+i] = int64(binary.LittleEndian.Uint64(buf[i*wordBytes:]))
	}
	f.log.Info("page restored from swap", "page_id", pageID, "frame", frame, "offset", entry.offset)
	return nil
}
