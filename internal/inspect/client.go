package inspect

import (
	"github.com/nullframe/corekit/internal/netbus"
	"github.com/nullframe/corekit/internal/uthreads"
	"github.com/nullframe/corekit/internal/vmm"
)

// FetchUthreadsSnapshot asks a mounted server for its scheduler snapshot.
func FetchUthreadsSnapshot(c *netbus.Client) (uthreads.Snapshot, error) {
	var snap uthreads.Snapshot
	err := c.Send(KindUthreadsSnapshot, nil, &snap)
	return snap, err
}

// FetchVMMSnapshot asks a mounted server for its VMM snapshot.
func FetchVMMSnapshot(c *netbus.Client) (vmm.Snapshot, error) {
	var snap vmm.Snapshot
	err := c.Send(KindVMMSnapshot, nil, &snap)
	return snap, err
}
