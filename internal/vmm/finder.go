package vmm

// frameSearch accumulates the three quantities a single depth-first
// traversal of the page-table tree must track at once: a reusable empty
// table frame, the highest frame index observed anywhere in the tree,
// and the resident page farthest (by cyclic distance) from the page
// about to be faulted in.
type frameSearch struct {
	wantedPage  int64
	originFrame int64
	numPages    int64
	pageSize    int64
	tablesDepth int

	emptyTableFrame int64 // 0 means none found
	maxUsedFrame    int64
	victimFound     bool
	victimPage      int64
	victimDist      int64
	victimLeafFrame int64
}

// searchTree visits every reachable frame, stopping early the instant an
// empty table frame is found and unlinking it from its parent in the
// same pass.
func (m *Manager) searchTree(wantedPage, originFrame int64) (*frameSearch, error) {
	s := &frameSearch{
		wantedPage:  wantedPage,
		originFrame: originFrame,
		numPages:    m.cfg.NumPages(),
		pageSize:    m.cfg.PageSize(),
		tablesDepth: m.cfg.TablesDepth(),
	}
	if err := m.searchNode(0, 0, 0, s); err != nil {
		return nil, err
	}
	return s, nil
}

// searchNode visits the table or leaf frame at the given tree depth.
// route accumulates the page-id bits fixed by the path taken so far.
// Once s.emptyTableFrame is set, every frame on the path back to the
// root stops examining further siblings — only the direct parent of the
// winning frame unlinks it; frames above that just stop.
func (m *Manager) searchNode(frame, route int64, depth int, s *frameSearch) error {
	if depth == s.tablesDepth {
		dist := cyclicPageDistance(s.wantedPage, route, s.numPages)
		if !s.victimFound || dist > s.victimDist {
			s.victimFound = true
			s.victimDist = dist
			s.victimPage = route
			s.victimLeafFrame = frame
		}
		return nil
	}

	anyChild := false
	for i := int64(0); i < s.pageSize; i++ {
		slot := frame*s.pageSize + i
		child, err := m.store.Read(slot)
		if err != nil {
			return err
		}
		if child == 0 {
			continue
		}
		if child > s.maxUsedFrame {
			s.maxUsedFrame = child
		}

		if err := m.searchNode(child, (route<<uint(m.cfg.OffsetWidth))+i, depth+1, s); err != nil {
			return err
		}

		if s.emptyTableFrame == child {
			if err := m.store.Write(slot, 0); err != nil {
				return err
			}
		} else {
			anyChild = true
		}
		if s.emptyTableFrame != 0 {
			return nil
		}
	}

	if !anyChild && frame != 0 && frame != s.originFrame {
		s.emptyTableFrame = frame
	}
	return nil
}

// cyclicPageDistance is min(|p-q|, numPages-|p-q|). The difference is
// always taken as larger minus smaller, so no intermediate is negative.
func cyclicPageDistance(p, q, numPages int64) int64 {
	var diff int64
	if p > q {
		diff = p - q
	} else {
		diff = q - p
	}
	other := numPages - diff
	if other < diff {
		return other
	}
	return diff
}

// allocate runs the finder's selection rule over a fresh traversal and
// returns a frame ready to host either a new table level (isLeaf=false,
// zeroed) or a restored page (isLeaf=true, left untouched). originFrame
// is the parent frame the caller is about to link the new frame from; it
// is never itself selected, preventing a cycle.
func (m *Manager) allocate(wantedPage, originFrame int64, isLeaf bool) (int64, error) {
	s, err := m.searchTree(wantedPage, originFrame)
	if err != nil {
		return 0, err
	}

	if s.emptyTableFrame != 0 {
		if !isLeaf {
			if err := m.zeroFrame(s.emptyTableFrame); err != nil {
				return 0, err
			}
		}
		return s.emptyTableFrame, nil
	}

	if m.touched.hasNeverTouched() && s.maxUsedFrame+1 < m.cfg.NumFrames {
		frame := s.maxUsedFrame + 1
		if !isLeaf {
			if err := m.zeroFrame(frame); err != nil {
				return 0, err
			}
		}
		m.touched.markTouched(frame)
		return frame, nil
	}

	if !s.victimFound {
		return 0, errNoFreeFrame
	}

	slot, err := m.parentSlotForPage(s.victimPage)
	if err != nil {
		return 0, err
	}
	if err := m.store.Evict(s.victimLeafFrame, s.victimPage); err != nil {
		return 0, err
	}
	if err := m.store.Write(slot, 0); err != nil {
		return 0, err
	}
	if !isLeaf {
		if err := m.zeroFrame(s.victimLeafFrame); err != nil {
			return 0, err
		}
	}
	return s.victimLeafFrame, nil
}

func (m *Manager) zeroFrame(frame int64) error {
	base := frame * m.cfg.PageSize()
	for i := int64(0); i < m.cfg.PageSize(); i++ {
		if err := m.store.Write(base+i, 0); err != nil {
			return err
		}
	}
	return nil
}

// parentSlotForPage descends from the root exactly like a normal page
// walk but stops one level short, returning the physical address of the
// table slot that (still) points at pageID's resident leaf frame — the
// entry the eviction path needs to zero.
func (m *Manager) parentSlotForPage(pageID int64) (int64, error) {
	addr := pageID << uint(m.cfg.OffsetWidth)
	cur := int64(0)
	for d := 0; d < m.cfg.TablesDepth(); d++ {
		slot := cur*m.cfg.PageSize() + m.cfg.Offset(d, addr)
		if d == m.cfg.TablesDepth()-1 {
			return slot, nil
		}
		next, err := m.store.Read(slot)
		if err != nil {
			return 0, err
		}
		cur = next
	}
	return 0, errNoFreeFrame // unreachable for TablesDepth >= 1
}
