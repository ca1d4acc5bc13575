// Command fiberdemo spawns a handful of fibers on internal/uthreads and
// lets the real virtual-timer scheduler run them for a configured number
// of quanta, exposing a live snapshot over internal/inspect the whole
// time.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nullframe/corekit/internal/inspect"
	"github.com/nullframe/corekit/internal/netbus"
	"github.com/nullframe/corekit/internal/uthreads"
	"github.com/nullframe/corekit/internal/xconfig"
	"github.com/nullframe/corekit/internal/xlog"
)

func main() {
	configPath := "configs/fiberdemo-config.json"
	if len(os.Args) >= 2 {
		configPath = os.Args[1]
	}

	cfg, err := xconfig.Load[Config](configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fiberdemo: loading config: %v\n", err)
		os.Exit(1)
	}

	log := xlog.New(cfg.LogLevel, "fiberdemo")

	sched, err := uthreads.New(cfg.QuantumUsecs, cfg.MaxThreadNum, cfg.StackSize, log)
	if err != nil {
		log.Error("creating scheduler", "error", err)
		os.Exit(1)
	}

	if cfg.InspectAddr != "" {
		srv := netbus.NewServer(cfg.InspectAddr, "fiberdemo", log)
		inspect.Mount(srv, sched, nil, log)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error("inspect server stopped", "error", err)
			}
		}()
	}

	spawnWorkers(sched, log)

	if err := sched.Start(); err != nil {
		log.Error("starting scheduler", "error", err)
		os.Exit(1)
	}

	runQuanta := cfg.RunQuanta
	if runQuanta <= 0 {
		runQuanta = 20
	}
	// tid 0 must checkpoint like any other fiber: dispatchLocked only ever
	// runs from Checkpoint, a synthetic Tick, or a self-directed
	// Sleep/Block/Terminate, so a bare time.Sleep here would let the timer
	// keep setting pendingSwitch without anything ever consuming it, and
	// the spawned workers would never receive their first dispatch.
	ticker := time.NewTicker(sched.QuantumDuration())
	defer ticker.Stop()
	for i := 0; i < runQuanta; i++ {
		<-ticker.C
		sched.Checkpoint()
	}

	snap := sched.Snapshot()
	log.Info("final scheduler snapshot",
		"current_tid", snap.CurrentTid,
		"ready_queue", snap.ReadyQueue,
		"total_quantums", snap.TotalQuantums,
		"quantums", snap.Quantums,
	)

	sched.Stop()
}

// spawnWorkers plays back the round-robin scenario from the library's
// design notes: three fibers that each loop 50 times, checkpointing so the
// scheduler can preempt them; the second fiber then sleeps for 2 quanta,
// and every fiber returns (self-terminating) after that.
func spawnWorkers(sched *uthreads.Scheduler, log *slog.Logger) {
	for i := 0; i < 3; i++ {
		id := i
		tid, err := sched.Spawn(func() {
			for iter := 0; iter < 50; iter++ {
				sched.Checkpoint()
			}
			if id == 1 {
				_ = sched.Sleep(2)
			}
		})
		if err != nil {
			log.Error("spawning fiber", "index", id, "error", err)
			continue
		}
		log.Info("fiber spawned", "tid", tid)
	}
}
