package vmm

import "errors"

// errNoFreeFrame signals total frame exhaustion: the tree can never
// legitimately occupy every frame without leaving at least one leaf free
// to evict, so reaching this means the caller configured too few frames
// for the address space it asked for.
var errNoFreeFrame = errors.New("vmm: no free frame available")
