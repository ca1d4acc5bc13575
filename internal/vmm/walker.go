package vmm

// resolveLeafFrame descends the page-table tree for addr, allocating
// table levels and finally a restored leaf frame along the way wherever
// a slot reads as unmapped, and returns the leaf frame that holds addr's
// page. Every access — read or write — goes through this one walk.
func (m *Manager) resolveLeafFrame(addr int64) (int64, error) {
	pageID := addr >> uint(m.cfg.OffsetWidth)
	tablesDepth := m.cfg.TablesDepth()

	cur := int64(0)
	for depth := 0; depth < tablesDepth; depth++ {
		slot := cur*m.cfg.PageSize() + m.cfg.Offset(depth, addr)
		parent := cur

		child, err := m.store.Read(slot)
		if err != nil {
			return 0, err
		}

		if child == 0 {
			isLeafLevel := depth == tablesDepth-1
			frame, err := m.allocate(pageID, parent, isLeafLevel)
			if err != nil {
				return 0, err
			}
			if err := m.store.Write(slot, frame); err != nil {
				return 0, err
			}
			if isLeafLevel {
				if err := m.store.Restore(frame, pageID); err != nil {
					return 0, err
				}
			}
			child = frame
		}
		cur = child
	}
	return cur, nil
}
