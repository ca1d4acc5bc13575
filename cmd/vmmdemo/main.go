// Command vmmdemo drives internal/vmm through a short scripted sequence
// of writes and reads large enough to force eviction, against a
// configurable backing store, while exposing a live snapshot over
// internal/inspect.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nullframe/corekit/internal/backingstore"
	"github.com/nullframe/corekit/internal/inspect"
	"github.com/nullframe/corekit/internal/netbus"
	"github.com/nullframe/corekit/internal/vmm"
	"github.com/nullframe/corekit/internal/xconfig"
	"github.com/nullframe/corekit/internal/xlog"
)

func main() {
	configPath := "configs/vmmdemo-config.json"
	if len(os.Args) >= 2 {
		configPath = os.Args[1]
	}

	cfg, err := xconfig.Load[Config](configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vmmdemo: loading config: %v\n", err)
		os.Exit(1)
	}

	log := xlog.New(cfg.LogLevel, "vmmdemo")

	vmmCfg := vmm.Config{
		VirtualAddressWidth: cfg.VirtualAddressWidth,
		OffsetWidth:         cfg.OffsetWidth,
		NumFrames:           cfg.NumFrames,
	}

	store, err := newStore(cfg, vmmCfg, log)
	if err != nil {
		log.Error("creating backing store", "error", err)
		os.Exit(1)
	}

	manager, err := vmm.New(vmmCfg, store, log)
	if err != nil {
		log.Error("creating VMM", "error", err)
		os.Exit(1)
	}
	if err := manager.Initialize(); err != nil {
		log.Error("initializing VMM", "error", err)
		os.Exit(1)
	}

	if cfg.InspectAddr != "" {
		srv := netbus.NewServer(cfg.InspectAddr, "vmmdemo", log)
		inspect.Mount(srv, nil, manager, log)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error("inspect server stopped", "error", err)
			}
		}()
	}

	runScript(manager, vmmCfg, log)

	snap := manager.Snapshot()
	log.Info("final VMM snapshot", "num_frames", snap.NumFrames, "free_frame_count", snap.FreeFrameCount)
}

func newStore(cfg *Config, vmmCfg vmm.Config, log *slog.Logger) (vmm.BackingStore, error) {
	switch cfg.BackingStore {
	case "file":
		path := cfg.SwapFilePath
		if path == "" {
			path = "vmmdemo.swap"
		}
		return backingstore.NewFile(vmmCfg.NumFrames, vmmCfg.PageSize(), path, cfg.SwapDelayMs, cfg.MaxConcurrentIO, nil)
	default:
		return backingstore.NewMemory(vmmCfg.NumFrames, vmmCfg.PageSize()), nil
	}
}

// runScript writes one word to every page in turn, then reads every page
// back in a second pass, walking well past NumFrames so eviction and
// restore are both exercised before the program exits.
func runScript(manager *vmm.Manager, cfg vmm.Config, log *slog.Logger) {
	numPages := cfg.NumFrames * 3
	if numPages > cfg.NumPages() {
		numPages = cfg.NumPages()
	}

	for page := int64(0); page < numPages; page++ {
		addr := page << uint(cfg.OffsetWidth)
		ok, err := manager.Write(addr, page*10+1)
		if err != nil {
			log.Error("write failed", "addr", addr, "error", err)
			continue
		}
		if !ok {
			log.Error("write rejected out of range", "addr", addr)
		}
	}

	for page := int64(0); page < numPages; page++ {
		addr := page << uint(cfg.OffsetWidth)
		v, ok, err := manager.Read(addr)
		if err != nil {
			log.Error("read failed", "addr", addr, "error", err)
			continue
		}
		log.Info("read back", "page", page, "value", v, "ok", ok)
	}
}
