package backingstore

import "testing"

func TestMemoryReadWriteRoundTrip(t *testing.T) {
	m := NewMemory(4, 8)
	if err := m.Write(13, 3); err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, err := m.Read(13)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != 3 {
		t.Fatalf("Read = %d, want 3", v)
	}
}

func TestMemoryReadWriteOutOfRange(t *testing.T) {
	m := NewMemory(2, 4)
	if _, err := m.Read(-1); err == nil {
		t.Fatal("Read(-1) should error")
	}
	if _, err := m.Read(8); err == nil {
		t.Fatal("Read(8) should error, len is 8")
	}
	if err := m.Write(100, 1); err == nil {
		t.Fatal("Write(100, ...) should error")
	}
}

func TestMemoryEvictRestoreRoundTrip(t *testing.T) {
	m := NewMemory(2, 4)
	for i := int64(0); i < 4; i++ {
		if err := m.Write(i, i+10); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := m.Evict(0, 99); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	for i := int64(0); i < 4; i++ {
		if err := m.Write(i, 0); err != nil {
			t.Fatalf("Write zero: %v", err)
		}
	}
	if err := m.Restore(0, 99); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for i := int64(0); i < 4; i++ {
		v, err := m.Read(i)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if v != i+10 {
			t.Fatalf("word %d = %d, want %d", i, v, i+10)
		}
	}
}

func TestMemoryRestoreNeverEvictedZeroesFrame(t *testing.T) {
	m := NewMemory(2, 4)
	for i := int64(0); i < 4; i++ {
		if err := m.Write(i, 77); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := m.Restore(0, 1234); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for i := int64(0); i < 4; i++ {
		v, err := m.Read(i)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if v != 0 {
			t.Fatalf("word %d = %d, want 0", i, v)
		}
	}
}
