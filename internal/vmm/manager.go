package vmm

import (
	"fmt"
	"log/slog"

	"github.com/nullframe/corekit/internal/xlog"
)

// Manager is a hierarchical virtual-memory manager bound to one
// BackingStore. It holds no physical memory of its own — every word,
// table or data, lives behind the store — and it is not safe for
// concurrent use: callers must serialize their own access.
type Manager struct {
	cfg     Config
	store   BackingStore
	touched *touchedFrames
	log     *slog.Logger
}

// New validates cfg and binds a Manager to store. It does not touch the
// store; call Initialize before the first Read/Write.
func New(cfg Config, store BackingStore, log *slog.Logger) (*Manager, error) {
	if !cfg.Valid() {
		return nil, fmt.Errorf("vmm: invalid configuration %+v", cfg)
	}
	if store == nil {
		return nil, fmt.Errorf("vmm: backing store must not be nil")
	}
	if log == nil {
		log = xlog.New("info", "vmm")
	}
	return &Manager{
		cfg:     cfg,
		store:   store,
		touched: newTouchedFrames(cfg.NumFrames),
		log:     log,
	}, nil
}

// Initialize zeroes the root table frame's entries, leaving an empty
// tree with only frame 0 allocated.
func (m *Manager) Initialize() error {
	for i := int64(0); i < m.cfg.PageSize(); i++ {
		if err := m.store.Write(i, 0); err != nil {
			return err
		}
	}
	return nil
}

// Read loads the word at virtual address addr. It returns ok=false
// without touching the store when addr is outside VirtualMemorySize.
func (m *Manager) Read(addr int64) (value int64, ok bool, err error) {
	if addr < 0 || addr >= m.cfg.VirtualMemorySize() {
		return 0, false, nil
	}
	frame, err := m.resolveLeafFrame(addr)
	if err != nil {
		m.log.Error("resolving leaf frame for read", "addr", addr, "error", err)
		return 0, false, err
	}
	offset := m.cfg.Offset(m.cfg.TablesDepth(), addr)
	v, err := m.store.Read(frame*m.cfg.PageSize() + offset)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// Write stores value at virtual address addr. It returns ok=false
// without touching the store when addr is outside VirtualMemorySize.
func (m *Manager) Write(addr int64, value int64) (ok bool, err error) {
	if addr < 0 || addr >= m.cfg.VirtualMemorySize() {
		return false, nil
	}
	frame, err := m.resolveLeafFrame(addr)
	if err != nil {
		m.log.Error("resolving leaf frame for write", "addr", addr, "error", err)
		return false, err
	}
	offset := m.cfg.Offset(m.cfg.TablesDepth(), addr)
	if err := m.store.Write(frame*m.cfg.PageSize()+offset, value); err != nil {
		return false, err
	}
	return true, nil
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Snapshot is a point-in-time, read-only view of frame occupancy for
// introspection. It is never consulted by Read/Write.
type Snapshot struct {
	NumFrames      int64 `json:"num_frames"`
	FreeFrameCount int64 `json:"free_frame_count"`
}

func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		NumFrames:      m.cfg.NumFrames,
		FreeFrameCount: m.touched.freeCount(),
	}
}
