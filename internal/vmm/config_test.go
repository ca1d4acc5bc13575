package vmm

import "testing"

func TestConfigDerivedValues(t *testing.T) {
	c := Config{VirtualAddressWidth: 20, OffsetWidth: 4, NumFrames: 16}

	if got := c.PageSize(); got != 16 {
		t.Errorf("PageSize = %d, want 16", got)
	}
	if got := c.NumPages(); got != 1<<16 {
		t.Errorf("NumPages = %d, want %d", got, 1<<16)
	}
	if got := c.VirtualMemorySize(); got != 1<<20 {
		t.Errorf("VirtualMemorySize = %d, want %d", got, 1<<20)
	}
	if got := c.TablesDepth(); got != 4 {
		t.Errorf("TablesDepth = %d, want 4", got)
	}
	if !c.Valid() {
		t.Error("Valid() = false, want true")
	}
}

func TestConfigTablesDepthNonDivisible(t *testing.T) {
	c := Config{VirtualAddressWidth: 22, OffsetWidth: 4, NumFrames: 16}
	if got := c.TablesDepth(); got != 5 {
		t.Errorf("TablesDepth = %d, want 5", got)
	}
}

func TestConfigOffsetGroupsCoverWholeAddress(t *testing.T) {
	c := Config{VirtualAddressWidth: 8, OffsetWidth: 2, NumFrames: 8}
	addr := int64(0xAB)
	var rebuilt int64
	for d := 0; d <= c.TablesDepth(); d++ {
		group := c.Offset(d, addr)
		width := c.OffsetWidth
		if d == 0 {
			width = c.topWidth()
		}
		rebuilt = (rebuilt << uint(width)) | group
	}
	if rebuilt != addr {
		t.Errorf("rebuilt address = %#x, want %#x", rebuilt, addr)
	}
}

func TestConfigInvalid(t *testing.T) {
	cases := []Config{
		{VirtualAddressWidth: 0, OffsetWidth: 4, NumFrames: 16},
		{VirtualAddressWidth: 20, OffsetWidth: 0, NumFrames: 16},
		{VirtualAddressWidth: 4, OffsetWidth: 8, NumFrames: 16},
		{VirtualAddressWidth: 4, OffsetWidth: 4, NumFrames: 16},
		{VirtualAddressWidth: 20, OffsetWidth: 4, NumFrames: 1},
	}
	for i, c := range cases {
		if c.Valid() {
			t.Errorf("case %d: Valid() = true, want false for %+v", i, c)
		}
	}
}
