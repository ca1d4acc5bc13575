package main

// Config is vmmdemo's tunable set, loaded via internal/xconfig.Load. The
// names mirror the VMM's exported configuration constants directly.
type Config struct {
	VirtualAddressWidth int    `json:"VIRTUAL_ADDRESS_WIDTH"`
	OffsetWidth         int    `json:"OFFSET_WIDTH"`
	NumFrames           int64  `json:"NUM_FRAMES"`
	LogLevel            string `json:"LOG_LEVEL"`
	InspectAddr         string `json:"INSPECT_ADDR"`

	BackingStore    string `json:"BACKING_STORE"` // "memory" or "file"
	SwapFilePath    string `json:"SWAPFILE_PATH"`
	SwapDelayMs     int    `json:"SWAP_DELAY_MS"`
	MaxConcurrentIO int    `json:"MAX_CONCURRENT_IO"`
}
