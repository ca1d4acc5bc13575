package inspect

import (
	"net"
	"testing"
	"time"

	"github.com/nullframe/corekit/internal/backingstore"
	"github.com/nullframe/corekit/internal/netbus"
	"github.com/nullframe/corekit/internal/uthreads"
	"github.com/nullframe/corekit/internal/vmm"
)

func startMountedServer(t *testing.T) (*uthreads.Scheduler, *vmm.Manager, string) {
	t.Helper()

	sched, err := uthreads.New(1000, 8, 4096, nil)
	if err != nil {
		t.Fatalf("uthreads.New: %v", err)
	}

	cfg := vmm.Config{VirtualAddressWidth: 8, OffsetWidth: 2, NumFrames: 8}
	store := backingstore.NewMemory(cfg.NumFrames, cfg.PageSize())
	manager, err := vmm.New(cfg, store, nil)
	if err != nil {
		t.Fatalf("vmm.New: %v", err)
	}
	if err := manager.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	srv := netbus.NewServer(addr, "inspect-test", nil)
	Mount(srv, sched, manager, nil)

	go func() { _ = srv.Start() }()
	t.Cleanup(func() { _ = srv.Stop() })

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("tcp", addr); err == nil {
			conn.Close()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	return sched, manager, addr
}

func TestFetchUthreadsSnapshot(t *testing.T) {
	sched, _, addr := startMountedServer(t)
	c := netbus.NewClient("http://"+addr, "client", nil)

	snap, err := FetchUthreadsSnapshot(c)
	if err != nil {
		t.Fatalf("FetchUthreadsSnapshot: %v", err)
	}
	if snap.CurrentTid != sched.CurrentTid() {
		t.Fatalf("CurrentTid = %d, want %d", snap.CurrentTid, sched.CurrentTid())
	}
}

func TestFetchVMMSnapshot(t *testing.T) {
	_, manager, addr := startMountedServer(t)
	c := netbus.NewClient("http://"+addr, "client", nil)

	snap, err := FetchVMMSnapshot(c)
	if err != nil {
		t.Fatalf("FetchVMMSnapshot: %v", err)
	}
	if snap.NumFrames != manager.Config().NumFrames {
		t.Fatalf("NumFrames = %d, want %d", snap.NumFrames, manager.Config().NumFrames)
	}
}
