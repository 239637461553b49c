// Package bptree implements an in-memory B+ tree keyed by int64, augmented in
// three ways over the textbook structure: every node keeps a pointer to its
// parent, every level is threaded into a doubly-linked sibling list, and every
// internal node caches the smallest key of its subtree. Separator keys stored
// in internal nodes are the largest key of the child they point at, so the
// cached minimum is what lets a descent reject a key below the left edge
// without walking to a leaf.
//
// The augmentations make structural fix-ups cheap and local but rule out
// concurrent mutation; callers must serialize all access externally.
package bptree

import "github.com/btree-query-bench/treeidx/index"

// minOrder keeps order/2 at 2 or more, so a node emptied to just below the
// fill limit still has an entry for the rebalance bookkeeping to read.
const minOrder = 4

// Tree is the B+ tree. The zero value is not usable; use NewTree.
type Tree struct {
	order int
	root  *node
	size  int64

	autoVerify bool
}

var _ index.Index = (*Tree)(nil)

// NewTree returns an empty tree whose nodes hold up to order entries. Orders
// below 4 are raised to 4. An empty tree is a single empty leaf, never a nil
// root.
func NewTree(order int) *Tree {
	if order < minOrder {
		order = minOrder
	}
	return &Tree{order: order, root: newNode(order, true, nil)}
}

// SetAutoVerify enables a full integrity check after every mutation, panicking
// on the first violated invariant. Intended for tests; it makes every insert
// and remove O(n).
func (t *Tree) SetAutoVerify(on bool) { t.autoVerify = on }

func (t *Tree) maybeVerify() {
	if !t.autoVerify {
		return
	}
	if err := t.Verify(); err != nil {
		panic(err)
	}
}

// Find returns a handle to the value stored under key, or the end handle.
func (t *Tree) Find(key int64) index.Iterator {
	leaf := t.findLeaf(key, false)
	if leaf == nil {
		return index.End()
	}
	idx := leaf.indexOfKey(key)
	if idx == -1 {
		return index.End()
	}
	return index.Found(leaf.entries[idx].value)
}

// Update overwrites the value for key if it is present and reports whether it
// was.
func (t *Tree) Update(key int64, value []byte) bool {
	leaf := t.findLeaf(key, false)
	if leaf == nil {
		return false
	}
	idx := leaf.indexOfKey(key)
	if idx == -1 {
		return false
	}
	leaf.entries[idx].value = value
	return true
}

// Insert stores value under key and returns a handle to it. If the key is
// already present nothing is written and the end handle is returned.
func (t *Tree) Insert(key int64, value []byte) index.Iterator {
	leaf := t.findLeaf(key, true)
	if !t.insertInNode(leaf, key, value, nil) {
		return index.End()
	}
	t.size++
	t.maybeVerify()
	return index.Found(value)
}

// Upsert stores value under key, overwriting any previous value, and returns
// a handle to it.
func (t *Tree) Upsert(key int64, value []byte) index.Iterator {
	leaf := t.findLeaf(key, true)
	if idx := leaf.indexOfKey(key); idx != -1 {
		leaf.entries[idx].value = value
		return index.Found(value)
	}
	t.insertInNode(leaf, key, value, nil)
	t.size++
	t.maybeVerify()
	return index.Found(value)
}

// Remove deletes key if it is present and reports whether it was.
func (t *Tree) Remove(key int64) bool {
	leaf := t.findLeaf(key, false)
	if leaf == nil {
		return false
	}
	if !t.removeFromNode(leaf, key) {
		return false
	}
	t.size--
	t.maybeVerify()
	return true
}

// Size returns the number of stored entries.
func (t *Tree) Size() int64 { return t.size }

// End returns the end handle.
func (t *Tree) End() index.Iterator { return index.End() }

// CollectKeys appends every key to dst in ascending order, or descending when
// backwards is set, and returns the extended slice. It descends to the edge
// leaf and walks the leaf-level sibling list.
func (t *Tree) CollectKeys(dst []int64, backwards bool) []int64 {
	n := t.root
	for n.internal() {
		if backwards {
			n = n.childAt(n.count - 1)
		} else {
			n = n.childAt(0)
		}
	}
	for n != nil {
		for i := 0; i < n.count; i++ {
			idx := i
			if backwards {
				idx = n.count - i - 1
			}
			dst = append(dst, n.entries[idx].key)
		}
		if backwards {
			n = n.prev
		} else {
			n = n.next
		}
	}
	return dst
}

// findInInternal picks the child of n that can contain key. In insert mode the
// descent never fails: keys below the subtree minimum go to child 0 and keys
// above every separator go to the last child. Outside insert mode those cases
// mean the key cannot be anywhere in the subtree.
func findInInternal(n *node, key int64, insert bool) *node {
	if key < n.minKey {
		if insert {
			return n.childAt(0)
		}
		return nil
	}
	for i := 0; i < n.count; i++ {
		if key <= n.entries[i].key {
			return n.childAt(i)
		}
	}
	if insert {
		return n.childAt(n.count - 1)
	}
	return nil
}

// findLeaf descends from the root to the leaf that holds key, or would hold it
// in insert mode. Returns nil only when insert is false and the key cannot be
// present.
func (t *Tree) findLeaf(key int64, insert bool) *node {
	n := t.root
	for n.internal() {
		n = findInInternal(n, key, insert)
		if n == nil {
			return nil
		}
	}
	return n
}
