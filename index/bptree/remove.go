package bptree

// removeFromNode removes key from n, propagating separator and minimum
// updates, rebalancing n if it drops below the fill limit, and collapsing the
// root when it is left with a single child. Returns false if key is not in n.
//
// Merges call back into this function to drop a separator from the parent, so
// the cascade is bounded by tree height.
func (t *Tree) removeFromNode(n *node, key int64) bool {
	idx := n.indexOfKey(key)
	if idx == -1 {
		return false
	}

	n.shiftEntries(idx, idx+1, n.count-idx-1)
	n.count--
	n.entries[n.count] = entry{}

	if n.parent != nil {
		if idx == 0 {
			propagateMinKey(n.parent, n.smallestKey())
		}
		if idx == n.count {
			// Removed n's maximum: every separator equal to it up the chain
			// shrinks to the new maximum, stopping at the first ancestor
			// where the separator is not the rightmost.
			newKey := n.largestKey()
			for parent := n.parent; parent != nil; parent = parent.parent {
				sepIdx := parent.indexOfKey(key)
				if sepIdx == -1 {
					break
				}
				parent.entries[sepIdx].key = newKey
				if sepIdx != parent.count-1 {
					break
				}
			}
		}
	}

	if n != t.root && n.count < t.order/2 {
		t.rebalance(n)
	}

	if n == t.root && n.internal() && n.count == 1 {
		// The root is down to one child; the child becomes the new root.
		t.root = n.childAt(0)
		t.root.parent = nil
	}

	return true
}

// rebalance restores the minimum fill of n by borrowing an entry from a
// same-parent sibling, or merging with one when neither can spare an entry.
// The level list crosses parent boundaries but rebalancing never does: only
// siblings under the same parent are eligible, left first.
func (t *Tree) rebalance(n *node) {
	switch {
	case n.prev != nil && n.prev.parent == n.parent:
		left := n.prev
		oldSeparator := left.largestKey()
		if left.count > t.order/2 {
			// Steal left's last entry into slot 0.
			n.shiftEntries(1, 0, n.count)
			n.takeEntry(0, left, left.count-1)
			left.entries[left.count] = entry{}
			updateParentSeparator(left, oldSeparator, left.largestKey())
			if n.internal() {
				propagateMinKey(n, n.childAt(0).smallestKey())
			}
			return
		}
		// Fold n into left. The separator that pointed at n keeps its key (it
		// is still the merged node's maximum) but now points at left; left's
		// old separator is dropped from the parent, which may cascade.
		left.copyEntriesFrom(left.count, n, 0, n.count)
		left.count += n.count
		sepIdx := n.parent.indexOfKey(n.largestKey())
		n.parent.entries[sepIdx].child = left
		t.removeFromNode(n.parent, oldSeparator)
		n.unlink()

	case n.next != nil && n.next.parent == n.parent:
		right := n.next
		oldSeparator := n.largestKey()
		if right.count > t.order/2 {
			// Steal right's first entry onto the end of n.
			n.takeEntry(n.count, right, 0)
			right.shiftEntries(0, 1, right.count)
			right.entries[right.count] = entry{}
			updateParentSeparator(n, oldSeparator, n.largestKey())
			return
		}
		// Fold right into n; symmetric to the merge above.
		n.copyEntriesFrom(n.count, right, 0, right.count)
		n.count += right.count
		sepIdx := n.parent.indexOfKey(right.largestKey())
		n.parent.entries[sepIdx].child = n
		t.removeFromNode(n.parent, oldSeparator)
		right.unlink()

	default:
		// Every valid split leaves a parent with at least two children, so a
		// non-root underfull node always has a same-parent sibling.
		panic("bptree: underfull node has no same-parent sibling")
	}
}
