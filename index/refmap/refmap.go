// Package refmap implements the index surface on a plain Go map. It is the
// reference oracle the tree structures are cross-checked against, and the
// baseline map entrant in throughput runs. Enumeration sorts on demand.
package refmap

import (
	"slices"

	"github.com/btree-query-bench/treeidx/index"
)

var _ index.Index = (*Map)(nil)

// Map is the reference ordered index.
type Map struct {
	m map[int64][]byte
}

func New() *Map {
	return &Map{m: make(map[int64][]byte)}
}

func (r *Map) Find(key int64) index.Iterator {
	v, ok := r.m[key]
	if !ok {
		return index.End()
	}
	return index.Found(v)
}

func (r *Map) Update(key int64, value []byte) bool {
	if _, ok := r.m[key]; !ok {
		return false
	}
	r.m[key] = value
	return true
}

func (r *Map) Insert(key int64, value []byte) index.Iterator {
	if _, ok := r.m[key]; ok {
		return index.End()
	}
	r.m[key] = value
	return index.Found(value)
}

func (r *Map) Upsert(key int64, value []byte) index.Iterator {
	r.m[key] = value
	return index.Found(value)
}

func (r *Map) Remove(key int64) bool {
	if _, ok := r.m[key]; !ok {
		return false
	}
	delete(r.m, key)
	return true
}

func (r *Map) Size() int64 { return int64(len(r.m)) }

func (r *Map) CollectKeys(dst []int64, backwards bool) []int64 {
	keys := make([]int64, 0, len(r.m))
	for k := range r.m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if backwards {
		slices.Reverse(keys)
	}
	return append(dst, keys...)
}
