// Package listindex is the naive baseline: an unsorted slice scanned
// linearly. It exists to anchor the benchmark results, not to be used.
package listindex

import (
	"slices"

	"github.com/btree-query-bench/treeidx/index"
)

var _ index.Index = (*ListIndex)(nil)

type data struct {
	key int64
	val []byte
}

type ListIndex struct {
	data []data
}

func New() *ListIndex {
	return &ListIndex{data: make([]data, 0)}
}

func (l *ListIndex) find(key int64) int {
	for i := range l.data {
		if l.data[i].key == key {
			return i
		}
	}
	return -1
}

func (l *ListIndex) Find(key int64) index.Iterator {
	i := l.find(key)
	if i == -1 {
		return index.End()
	}
	return index.Found(l.data[i].val)
}

func (l *ListIndex) Update(key int64, value []byte) bool {
	i := l.find(key)
	if i == -1 {
		return false
	}
	l.data[i].val = value
	return true
}

func (l *ListIndex) Insert(key int64, value []byte) index.Iterator {
	if l.find(key) != -1 {
		return index.End()
	}
	l.data = append(l.data, data{key: key, val: value})
	return index.Found(value)
}

func (l *ListIndex) Upsert(key int64, value []byte) index.Iterator {
	if i := l.find(key); i != -1 {
		l.data[i].val = value
		return index.Found(value)
	}
	l.data = append(l.data, data{key: key, val: value})
	return index.Found(value)
}

func (l *ListIndex) Remove(key int64) bool {
	i := l.find(key)
	if i == -1 {
		return false
	}
	l.data = slices.Delete(l.data, i, i+1)
	return true
}

func (l *ListIndex) Size() int64 { return int64(len(l.data)) }

func (l *ListIndex) CollectKeys(dst []int64, backwards bool) []int64 {
	keys := make([]int64, 0, len(l.data))
	for i := range l.data {
		keys = append(keys, l.data[i].key)
	}
	slices.Sort(keys)
	if backwards {
		slices.Reverse(keys)
	}
	return append(dst, keys...)
}
