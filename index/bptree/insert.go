package bptree

// updateParentSeparator rewrites the separator for n in its parent from oldKey
// to newKey. When the rewritten separator is the parent's last entry the
// parent's own maximum changed too, so the walk continues toward the root; it
// stops at the first ancestor where the separator is not the rightmost.
func updateParentSeparator(n *node, oldKey, newKey int64) {
	for parent := n.parent; parent != nil; parent = parent.parent {
		idx := parent.indexOfKey(oldKey)
		parent.entries[idx].key = newKey
		if idx != parent.count-1 {
			break
		}
	}
}

// propagateMinKey walks from n toward the root lowering cached minimums to
// key, stopping at the first ancestor whose minimum is already small enough.
// Minimums are only ever lowered, so after removals they are a lower bound on
// the true subtree minimum rather than equal to it.
func propagateMinKey(n *node, key int64) {
	for ; n != nil; n = n.parent {
		if key >= n.minKey {
			break
		}
		n.minKey = key
	}
}

// insertInNode inserts (key, value) into leaf n, or (key, child) into
// internal n when a split is being propagated upward. Splits n first if it is
// full. Returns false if key is already present, in which case nothing
// changes.
func (t *Tree) insertInNode(n *node, key int64, value []byte, child *node) bool {
	i := 0
	for ; i < n.count; i++ {
		if n.entries[i].key < key {
			continue
		}
		if n.entries[i].key == key {
			return false
		}
		break
	}

	if n.count == t.order {
		n, i = t.splitForInsert(n, i)
		if child != nil {
			// The slot for the pending child link may have landed in either
			// half; re-point the child at whichever node now receives it.
			child.parent = n
		}
	}

	if i == n.count && n.parent != nil {
		// Appending at the end: n's maximum grows, and so does the separator
		// chain above it.
		updateParentSeparator(n, n.largestKey(), key)
	}

	if i == 0 {
		// New smallest entry: lower the cached minimums up the chain.
		minKey := key
		if child != nil {
			minKey = child.smallestKey()
		}
		if n.internal() {
			n.minKey = minKey
		}
		propagateMinKey(n.parent, minKey)
	}

	n.shiftEntries(i+1, i, n.count-i)
	n.entries[i] = entry{key: key, value: value, child: child}
	n.count++
	return true
}

// splitForInsert splits the full node n to make room for an insertion at slot
// valueIdx. Entries [0, splitIdx] stay in n, the rest move to a new right
// sibling, and the split is wired into the parent — growing a new root when n
// was the root. Returns the half that should take the pending insertion and
// the slot index adjusted into it.
func (t *Tree) splitForInsert(n *node, valueIdx int) (*node, int) {
	splitIdx := t.order / 2
	// Bias the split point so the halves come out even once the pending entry
	// lands.
	if valueIdx <= splitIdx {
		splitIdx--
	}

	right := newNode(t.order, n.leaf, n.parent)
	right.count = t.order - splitIdx - 1
	n.count = splitIdx + 1
	right.copyEntriesFrom(0, n, splitIdx+1, right.count)
	n.clearEntries(n.count, t.order)
	n.connectSibling(right)

	if right.internal() {
		right.minKey = right.childAt(0).smallestKey()
	}

	if n.parent == nil {
		// n was the root; grow the tree by one level.
		root := newNode(t.order, false, nil)
		root.entries[0] = entry{key: n.largestKey(), child: n}
		root.entries[1] = entry{key: right.largestKey(), child: right}
		root.count = 2
		root.minKey = n.smallestKey()
		n.parent = root
		right.parent = root
		t.root = root
	} else {
		// The parent's separator for n still holds the pre-split maximum,
		// which is now right's maximum. Shrink it to n's new maximum, then
		// insert right under the old separator.
		oldSeparator := right.largestKey()
		updateParentSeparator(n, oldSeparator, n.largestKey())
		t.insertInNode(n.parent, oldSeparator, nil, right)
	}

	if valueIdx > splitIdx {
		return right, valueIdx - (splitIdx + 1)
	}
	return n, valueIdx
}
