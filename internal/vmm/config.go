// Package vmm implements a hierarchical virtual-memory manager: virtual
// addresses resolve through a multi-level page-table tree rooted at
// physical frame 0, over a finite pool of physical frames. Pages that
// don't fit are evicted to a pluggable backing store and restored on
// demand. The manager is strictly single-threaded; a Manager is not safe
// for concurrent use and does no locking of its own.
package vmm

// Config holds the compile-time constants of a VMM instance. All of
// PageSize, NumPages, VirtualMemorySize and TablesDepth are derived from
// VirtualAddressWidth and OffsetWidth.
type Config struct {
	VirtualAddressWidth int
	OffsetWidth         int
	NumFrames           int64
}

// PageSize is the number of words per frame and the number of entries
// per table frame: 1 << OffsetWidth.
func (c Config) PageSize() int64 {
	return int64(1) << uint(c.OffsetWidth)
}

// NumPages is the number of distinct virtual pages: 1 << (VAW - OW).
func (c Config) NumPages() int64 {
	return int64(1) << uint(c.VirtualAddressWidth-c.OffsetWidth)
}

// VirtualMemorySize is 1 << VirtualAddressWidth.
func (c Config) VirtualMemorySize() int64 {
	return int64(1) << uint(c.VirtualAddressWidth)
}

// TablesDepth is the number of indirection levels in the page-table tree.
// For example, VAW=20 and OW=4 yields a top group of 4 bits and a tree
// of depth 4, covering 4*4+4=20 bits total. The closed form is
// ceil(VAW/OW) - 1: VAW bits split into one top group of topWidth() bits
// plus TablesDepth groups of OffsetWidth bits, and the arithmetic only
// closes with the "-1" term included.
func (c Config) TablesDepth() int {
	return ceilDiv(c.VirtualAddressWidth, c.OffsetWidth) - 1
}

// topWidth is the width in bits of the most significant address group —
// VAW mod OW, or OW itself when that remainder is zero.
func (c Config) topWidth() int {
	r := c.VirtualAddressWidth % c.OffsetWidth
	if r == 0 {
		return c.OffsetWidth
	}
	return r
}

// Offset extracts the table-index bits for depth d in [0, TablesDepth]
// out of virtual address addr: depth 0 is the top topWidth()-bit group,
// depths 1..TablesDepth-1 are successive OffsetWidth-bit groups, and
// depth TablesDepth is the low OffsetWidth bits (the intra-page offset).
func (c Config) Offset(d int, addr int64) int64 {
	shift := c.VirtualAddressWidth - c.topWidth() - c.OffsetWidth*d
	return (addr >> uint(shift)) & (c.PageSize() - 1)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Valid reports whether the configuration describes a usable tree: at
// least one level of indirection and room for the root plus at least one
// data frame.
func (c Config) Valid() bool {
	return c.VirtualAddressWidth > 0 &&
		c.OffsetWidth > 0 &&
		c.OffsetWidth <= c.VirtualAddressWidth &&
		c.TablesDepth() >= 1 &&
		c.NumFrames >= 2
}
