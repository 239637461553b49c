// Package btree is a classic in-memory B-tree of minimum degree t (max keys
// per node 2t-1), with keys and values stored at every level. It is the
// conventional structure the B+ tree is benchmarked against.
package btree

import (
	"slices"

	"github.com/btree-query-bench/treeidx/index"
)

var _ index.Index = (*BTree)(nil)

type node struct {
	leaf     bool
	keys     []int64
	values   [][]byte
	children []*node
}

type BTree struct {
	t    int
	root *node
	size int64
}

// New returns an empty B-tree with minimum degree t (raised to 2 if lower).
func New(t int) *BTree {
	if t < 2 {
		t = 2
	}
	return &BTree{t: t, root: &node{leaf: true}}
}

// search returns the node and slot holding key, or nil.
func (bt *BTree) search(x *node, key int64) (*node, int) {
	i, found := slices.BinarySearch(x.keys, key)
	if found {
		return x, i
	}
	if x.leaf {
		return nil, 0
	}
	return bt.search(x.children[i], key)
}

func (bt *BTree) Find(key int64) index.Iterator {
	x, i := bt.search(bt.root, key)
	if x == nil {
		return index.End()
	}
	return index.Found(x.values[i])
}

func (bt *BTree) Update(key int64, value []byte) bool {
	x, i := bt.search(bt.root, key)
	if x == nil {
		return false
	}
	x.values[i] = value
	return true
}

func (bt *BTree) Insert(key int64, value []byte) index.Iterator {
	if x, _ := bt.search(bt.root, key); x != nil {
		return index.End()
	}
	bt.insert(key, value)
	return index.Found(value)
}

func (bt *BTree) Upsert(key int64, value []byte) index.Iterator {
	if x, i := bt.search(bt.root, key); x != nil {
		x.values[i] = value
		return index.Found(value)
	}
	bt.insert(key, value)
	return index.Found(value)
}

func (bt *BTree) insert(key int64, value []byte) {
	root := bt.root
	if len(root.keys) == (2*bt.t - 1) {
		newRoot := &node{children: []*node{root}}
		bt.splitChild(newRoot, 0)
		bt.root = newRoot
	}
	bt.insertNonFull(bt.root, key, value)
	bt.size++
}

func (bt *BTree) insertNonFull(x *node, k int64, v []byte) {
	if x.leaf {
		idx, found := slices.BinarySearch(x.keys, k)
		if found {
			x.values[idx] = v
			return
		}
		x.keys = slices.Insert(x.keys, idx, k)
		x.values = slices.Insert(x.values, idx, v)
	} else {
		i := 0
		for i < len(x.keys) && k > x.keys[i] {
			i++
		}
		if len(x.children[i].keys) == (2*bt.t - 1) {
			bt.splitChild(x, i)
			if k > x.keys[i] {
				i++
			}
		}
		bt.insertNonFull(x.children[i], k, v)
	}
}

func (bt *BTree) splitChild(x *node, i int) {
	t := bt.t
	y := x.children[i]
	z := &node{leaf: y.leaf}
	z.keys = append(z.keys, y.keys[t:]...)
	z.values = append(z.values, y.values[t:]...)
	if !y.leaf {
		z.children = append(z.children, y.children[t:]...)
	}

	midKey, midVal := y.keys[t-1], y.values[t-1]
	y.keys, y.values = y.keys[:t-1], y.values[:t-1]
	if !y.leaf {
		y.children = y.children[:t]
	}

	x.keys = slices.Insert(x.keys, i, midKey)
	x.values = slices.Insert(x.values, i, midVal)
	x.children = slices.Insert(x.children, i+1, z)
}

func (bt *BTree) Remove(key int64) bool {
	if x, _ := bt.search(bt.root, key); x == nil {
		return false
	}
	bt.delete(bt.root, key)
	if len(bt.root.keys) == 0 && !bt.root.leaf {
		bt.root = bt.root.children[0]
	}
	bt.size--
	return true
}

func (bt *BTree) delete(x *node, k int64) {
	idx, found := slices.BinarySearch(x.keys, k)
	if found {
		if x.leaf {
			x.keys = slices.Delete(x.keys, idx, idx+1)
			x.values = slices.Delete(x.values, idx, idx+1)
		} else {
			bt.deleteInternal(x, idx)
		}
	} else if !x.leaf {
		child := x.children[idx]
		if len(child.keys) < bt.t {
			bt.fill(x, idx)
		}
		if idx > len(x.keys) {
			bt.delete(x.children[idx-1], k)
		} else {
			bt.delete(x.children[idx], k)
		}
	}
}

func (bt *BTree) deleteInternal(x *node, i int) {
	k, y, z := x.keys[i], x.children[i], x.children[i+1]
	if len(y.keys) >= bt.t {
		pk, pv := bt.getPred(y)
		x.keys[i], x.values[i] = pk, pv
		bt.delete(y, pk)
	} else if len(z.keys) >= bt.t {
		sk, sv := bt.getSucc(z)
		x.keys[i], x.values[i] = sk, sv
		bt.delete(z, sk)
	} else {
		bt.merge(x, i)
		bt.delete(y, k)
	}
}

func (bt *BTree) getPred(x *node) (int64, []byte) {
	for !x.leaf {
		x = x.children[len(x.keys)]
	}
	return x.keys[len(x.keys)-1], x.values[len(x.values)-1]
}

func (bt *BTree) getSucc(x *node) (int64, []byte) {
	for !x.leaf {
		x = x.children[0]
	}
	return x.keys[0], x.values[0]
}

func (bt *BTree) fill(x *node, i int) {
	if i != 0 && len(x.children[i-1].keys) >= bt.t {
		bt.borrowPrev(x, i)
	} else if i != len(x.keys) && len(x.children[i+1].keys) >= bt.t {
		bt.borrowNext(x, i)
	} else {
		if i != len(x.keys) {
			bt.merge(x, i)
		} else {
			bt.merge(x, i-1)
		}
	}
}

func (bt *BTree) borrowPrev(x *node, i int) {
	c, s := x.children[i], x.children[i-1]
	c.keys = slices.Insert(c.keys, 0, x.keys[i-1])
	c.values = slices.Insert(c.values, 0, x.values[i-1])
	if !c.leaf {
		c.children = slices.Insert(c.children, 0, s.children[len(s.keys)])
		s.children = s.children[:len(s.keys)]
	}
	x.keys[i-1], x.values[i-1] = s.keys[len(s.keys)-1], s.values[len(s.keys)-1]
	s.keys, s.values = s.keys[:len(s.keys)-1], s.values[:len(s.values)-1]
}

func (bt *BTree) borrowNext(x *node, i int) {
	c, s := x.children[i], x.children[i+1]
	c.keys, c.values = append(c.keys, x.keys[i]), append(c.values, x.values[i])
	if !c.leaf {
		c.children = append(c.children, s.children[0])
		s.children = slices.Delete(s.children, 0, 1)
	}
	x.keys[i], x.values[i] = s.keys[0], s.values[0]
	s.keys, s.values = s.keys[1:], s.values[1:]
}

func (bt *BTree) merge(x *node, i int) {
	y, z := x.children[i], x.children[i+1]
	y.keys, y.values = append(y.keys, x.keys[i]), append(y.values, x.values[i])
	y.keys, y.values = append(y.keys, z.keys...), append(y.values, z.values...)
	if !y.leaf {
		y.children = append(y.children, z.children...)
	}
	x.keys, x.values = slices.Delete(x.keys, i, i+1), slices.Delete(x.values, i, i+1)
	x.children = slices.Delete(x.children, i+1, i+2)
}

func (bt *BTree) Size() int64 { return bt.size }

func (bt *BTree) CollectKeys(dst []int64, backwards bool) []int64 {
	start := len(dst)
	dst = bt.collect(bt.root, dst)
	if backwards {
		slices.Reverse(dst[start:])
	}
	return dst
}

func (bt *BTree) collect(x *node, dst []int64) []int64 {
	for i := 0; i < len(x.keys); i++ {
		if !x.leaf {
			dst = bt.collect(x.children[i], dst)
		}
		dst = append(dst, x.keys[i])
	}
	if !x.leaf {
		dst = bt.collect(x.children[len(x.keys)], dst)
	}
	return dst
}
