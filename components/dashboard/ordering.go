package dashboard

// placement is the result of computing an order index for a moved item.
type placement struct {
	index float64
	// ok is false when the neighbours leave no representable gap and the
	// category has to be renumbered.
	ok bool
}

// midpointAt computes the order index for the item at position pos of
// ordered (which already contains the moved item at pos).
func midpointAt(ordered []Item, pos int) placement {
	n := len(ordered)
	switch {
	case n <= 1:
		return placement{index: 0, ok: true}
	case pos == 0:
		next := ordered[1].OrderIndex
		idx := next - 1
		return placement{index: idx, ok: idx < next}
	case pos == n-1:
		prev := ordered[n-2].OrderIndex
		idx := prev + 1
		return placement{index: idx, ok: idx > prev}
	default:
		prev := ordered[pos-1].OrderIndex
		next := ordered[pos+1].OrderIndex
		idx := (prev + next) / 2
		return placement{index: idx, ok: prev < idx && idx < next}
	}
}

// moveWithin removes the item at from and reinserts it at to.
func moveWithin(items []Item, from, to int) []Item {
	out := make([]Item, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	if to > len(out) {
		to = len(out)
	}
	out = append(out[:to], append([]Item{items[from]}, out[to:]...)...)
	return out
}

// renumber assigns 0..n-1 in the given order and returns the patches for the
// items whose index changed.
func renumber(ordered []Item) []PatchTarget {
	patches := make([]PatchTarget, 0, len(ordered))
	for i, item := range ordered {
		idx := float64(i)
		if item.OrderIndex == idx {
			continue
		}
		patches = append(patches, PatchTarget{ID: item.ID, Patch: ItemPatch{OrderIndex: &idx}})
	}
	return patches
}

func maxOrderIndex(items []Item) (float64, bool) {
	if len(items) == 0 {
		return 0, false
	}
	highest := items[0].OrderIndex
	for _, item := range items[1:] {
		if item.OrderIndex > highest {
			highest = item.OrderIndex
		}
	}
	return highest, true
}

func indexOf(items []Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
