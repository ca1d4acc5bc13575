package vmm

import "github.com/Workiva/go-datastructures/bitarray"

// touchedFrames tracks which frames have ever been linked into the tree.
// The frame finder consults it once per allocation to tell whether a
// never-touched frame remains below NumFrames, instead of re-deriving
// that from a second walk of the tree it just traversed. It also backs
// Snapshot's free-frame count for internal/inspect.
type touchedFrames struct {
	bits bitarray.BitArray
	n    int64
}

func newTouchedFrames(numFrames int64) *touchedFrames {
	return &touchedFrames{bits: bitarray.NewBitArray(uint64(numFrames)), n: numFrames}
}

func (t *touchedFrames) markTouched(frame int64) {
	if frame <= 0 || frame >= t.n {
		return
	}
	t.bits.SetBit(uint64(frame))
}

// freeCount returns how many frames (excluding the permanent root, frame
// 0) have never been marked touched.
func (t *touchedFrames) freeCount() int64 {
	free := t.n - 1 // exclude frame 0
	for i := int64(1); i < t.n; i++ {
		if ok, _ := t.bits.GetBit(uint64(i)); ok {
			free--
		}
	}
	return free
}

// hasNeverTouched reports whether any frame below NumFrames has never
// been linked into the tree.
func (t *touchedFrames) hasNeverTouched() bool {
	return t.freeCount() > 0
}
