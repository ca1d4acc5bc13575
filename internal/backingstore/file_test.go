package backingstore

import (
	"path/filepath"
	"testing"
)

func newTestFile(t *testing.T) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swap.img")
	f, err := NewFile(4, 4, path, 0, 2, nil)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f
}

func TestFileReadWriteRoundTrip(t *testing.T) {
	f := newTestFile(t)
	if err := f.Write(5, 42); err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, err := f.Read(5)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != 42 {
		t.Fatalf("Read = %d, want 42", v)
	}
}

func TestFileEvictRestoreRoundTrip(t *testing.T) {
	f := newTestFile(t)
	for i := int64(0); i < 4; i++ {
		if err := f.Write(i, i+100); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := f.Evict(0, 7); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	for i := int64(0); i < 4; i++ {
		if err := f.Write(i, 0); err != nil {
			t.Fatalf("Write zero: %v", err)
		}
	}
	if err := f.Restore(0, 7); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for i := int64(0); i < 4; i++ {
		v, err := f.Read(i)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if v != i+100 {
			t.Fatalf("word %d = %d, want %d", i, v, i+100)
		}
	}
}

func TestFileEvictTwiceReusesOffset(t *testing.T) {
	f := newTestFile(t)
	if err := f.Write(0, 1); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Evict(0, 9); err != nil {
		t.Fatalf("first Evict: %v", err)
	}
	firstOffset := f.entries[9].offset

	if err := f.Write(0, 2); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Evict(0, 9); err != nil {
		t.Fatalf("second Evict: %v", err)
	}
	if f.entries[9].offset != firstOffset {
		t.Fatalf("offset changed across re-evict of the same page: %d != %d", f.entries[9].offset, firstOffset)
	}

	for i := int64(0); i < 4; i++ {
		if err := f.Write(i, 0); err != nil {
			t.Fatalf("Write zero: %v", err)
		}
	}
	if err := f.Restore(0, 9); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	v, err := f.Read(0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != 2 {
		t.Fatalf("Read = %d, want 2 (the most recent evict)", v)
	}
}

func TestFileRestoreNeverEvictedZeroesFrame(t *testing.T) {
	f := newTestFile(t)
	for i := int64(0); i < 4; i++ {
		if err := f.Write(i, 55); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := f.Restore(0, 404); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for i := int64(0); i < 4; i++ {
		v, err := f.Read(i)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if v != 0 {
			t.Fatalf("word %d = %d, want 0", i, v)
		}
	}
}

func TestFileReadWriteOutOfRange(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.Read(-1); err == nil {
		t.Fatal("Read(-1) should error")
	}
	if _, err := f.Read(999); err == nil {
		t.Fatal("Read(999) should error")
	}
	if err := f.Write(999, 1); err == nil {
		t.Fatal("Write(999, ...) should error")
	}
}
