// Package lsm wraps Pebble (CockroachDB's LSM storage engine) behind the
// common Index interface so it can be benchmarked alongside the in-memory
// tree structures.
package lsm

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/btree-query-bench/treeidx/index"
)

var _ index.Index = (*LSM)(nil)

type LSM struct {
	db   *pebble.DB
	size int64
}

// Open opens (or creates) a Pebble database at the given directory path.
func Open(dir string) (*LSM, error) {
	return open(dir, &pebble.Options{
		MemTableSize: 16 << 20,
		// Keep several memtables so one can flush while another is active.
		MemTableStopWritesThreshold: 4,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
	})
}

// OpenMem opens a Pebble database on an in-memory filesystem. Used by the
// benchmark harness and tests so runs leave nothing on disk.
func OpenMem() (*LSM, error) {
	return open("", &pebble.Options{FS: vfs.NewMem()})
}

func open(dir string, opts *pebble.Options) (*LSM, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("lsm: open: %w", err)
	}
	return &LSM{db: db}, nil
}

// Close cleanly shuts down Pebble, flushing any in-memory state.
func (l *LSM) Close() error {
	return l.db.Close()
}

// get returns the stored value and whether key is present. The returned slice
// is a copy; Pebble's is only valid until the closer is closed.
func (l *LSM) get(key int64) ([]byte, bool) {
	val, closer, err := l.db.Get(encodeKey(key))
	if err != nil {
		return nil, false
	}
	result := make([]byte, len(val))
	copy(result, val)
	closer.Close()
	return result, true
}

func (l *LSM) Find(key int64) index.Iterator {
	v, ok := l.get(key)
	if !ok {
		return index.End()
	}
	return index.Found(v)
}

func (l *LSM) Update(key int64, value []byte) bool {
	if _, ok := l.get(key); !ok {
		return false
	}
	return l.db.Set(encodeKey(key), value, pebble.NoSync) == nil
}

func (l *LSM) Insert(key int64, value []byte) index.Iterator {
	if _, ok := l.get(key); ok {
		return index.End()
	}
	if err := l.db.Set(encodeKey(key), value, pebble.NoSync); err != nil {
		return index.End()
	}
	l.size++
	return index.Found(value)
}

func (l *LSM) Upsert(key int64, value []byte) index.Iterator {
	if _, ok := l.get(key); !ok {
		l.size++
	}
	if err := l.db.Set(encodeKey(key), value, pebble.NoSync); err != nil {
		return index.End()
	}
	return index.Found(value)
}

func (l *LSM) Remove(key int64) bool {
	if _, ok := l.get(key); !ok {
		return false
	}
	if err := l.db.Delete(encodeKey(key), pebble.NoSync); err != nil {
		return false
	}
	l.size--
	return true
}

func (l *LSM) Size() int64 { return l.size }

func (l *LSM) CollectKeys(dst []int64, backwards bool) []int64 {
	iter, err := l.db.NewIter(nil)
	if err != nil {
		return dst
	}
	defer iter.Close()

	if backwards {
		for valid := iter.Last(); valid; valid = iter.Prev() {
			dst = append(dst, decodeKey(iter.Key()))
		}
	} else {
		for valid := iter.First(); valid; valid = iter.Next() {
			dst = append(dst, decodeKey(iter.Key()))
		}
	}
	return dst
}

// encodeKey encodes an int64 as a big-endian 8-byte slice with the sign bit
// flipped, so byte order matches signed key order. Pebble (like every LSM)
// sorts by the encoded bytes.
func encodeKey(k int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(k)^(1<<63))
	return b
}

func decodeKey(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}
