// Package inspect mounts read-only JSON snapshots of scheduler and VMM
// state over internal/netbus, for a demo binary to expose alongside its
// real work. It never drives scheduling or VMM decisions; every handler
// here is a pure reader.
package inspect

import (
	"log/slog"

	"github.com/nullframe/corekit/internal/netbus"
	"github.com/nullframe/corekit/internal/uthreads"
	"github.com/nullframe/corekit/internal/vmm"
)

const (
	KindUthreadsSnapshot = "uthreads.snapshot"
	KindVMMSnapshot      = "vmm.snapshot"
)

// Mount registers the snapshot handlers on srv. Either scheduler or
// manager may be nil when a demo binary only runs one subsystem; the
// corresponding kind then answers with an error instead of panicking.
func Mount(srv *netbus.Server, scheduler *uthreads.Scheduler, manager *vmm.Manager, log *slog.Logger) {
	srv.Handle(KindUthreadsSnapshot, func(*netbus.Envelope) (any, error) {
		if scheduler == nil {
			return nil, errNotMounted("uthreads")
		}
		return scheduler.Snapshot(), nil
	})

	srv.Handle(KindVMMSnapshot, func(*netbus.Envelope) (any, error) {
		if manager == nil {
			return nil, errNotMounted("vmm")
		}
		return manager.Snapshot(), nil
	})

	if log != nil {
		log.Info("inspect handlers mounted", "uthreads", scheduler != nil, "vmm", manager != nil)
	}
}
