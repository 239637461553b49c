package bptree

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/btree-query-bench/treeidx/index/refmap"
)

var testValue = []byte("v")

// newTestTree returns a tree that re-verifies every invariant after each
// mutation.
func newTestTree(order int) *Tree {
	tree := NewTree(order)
	tree.SetAutoVerify(true)
	return tree
}

func collect(t *testing.T, tree *Tree) (forward, backward []int64) {
	t.Helper()
	return tree.CollectKeys(nil, false), tree.CollectKeys(nil, true)
}

func TestEmptyTree(t *testing.T) {
	tree := newTestTree(4)

	require.True(t, tree.Find(1).AtEnd())
	require.False(t, tree.Update(1, testValue))
	require.False(t, tree.Remove(1))
	require.EqualValues(t, 0, tree.Size())
	require.True(t, tree.End().AtEnd())
	require.NoError(t, tree.Verify())

	forward, backward := collect(t, tree)
	require.Empty(t, forward)
	require.Empty(t, backward)
}

func TestSequentialInsertCollect(t *testing.T) {
	tree := newTestTree(4)
	for k := int64(1); k <= 7; k++ {
		require.False(t, tree.Insert(k, testValue).AtEnd())
	}

	forward, backward := collect(t, tree)
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7}, forward)
	require.Equal(t, []int64{7, 6, 5, 4, 3, 2, 1}, backward)
	require.EqualValues(t, 7, tree.Size())
}

func TestShuffledInsertFind(t *testing.T) {
	const numKeys = 1000
	rng := rand.New(rand.NewSource(0))
	keys := rng.Perm(numKeys)

	tree := newTestTree(4)
	for i, k := range keys {
		require.False(t, tree.Insert(int64(k), testValue).AtEnd())
		for _, seen := range keys[:i+1] {
			require.False(t, tree.Find(int64(seen)).AtEnd(), "key %d missing", seen)
		}
	}
	require.EqualValues(t, numKeys, tree.Size())

	for k := int64(numKeys); k < numKeys+10; k++ {
		require.True(t, tree.Find(k).AtEnd(), "key %d should not exist", k)
	}

	forward, backward := collect(t, tree)
	require.Len(t, forward, numKeys)
	for i := range forward {
		require.EqualValues(t, i, forward[i])
		require.EqualValues(t, numKeys-1-i, backward[i])
	}
}

func TestShuffledRemove(t *testing.T) {
	const numKeys = 1000
	rng := rand.New(rand.NewSource(0))

	tree := newTestTree(4)
	for _, k := range rng.Perm(numKeys) {
		tree.Insert(int64(k), testValue)
	}

	order := rng.Perm(numKeys)
	for i, k := range order {
		require.True(t, tree.Remove(int64(k)))
		require.EqualValues(t, numKeys-i-1, tree.Size())
		for _, gone := range order[:i+1] {
			require.True(t, tree.Find(int64(gone)).AtEnd(), "key %d should be gone", gone)
		}
		for _, left := range order[i+1:] {
			require.False(t, tree.Find(int64(left)).AtEnd(), "key %d should remain", left)
		}
	}

	require.EqualValues(t, 0, tree.Size())
	require.True(t, tree.root.leaf)
	require.Zero(t, tree.root.count)
	for k := int64(0); k < numKeys; k++ {
		require.False(t, tree.Remove(k))
	}
}

// TestDenseSweep runs the shuffled insert/remove cycle over a spread of tree
// sizes so splits, borrows, merges and root collapses all occur at several
// depths. Per-step membership checks are limited to the small sizes.
func TestDenseSweep(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 5, 10, 17, 50, 100, 500, 1000}
	if testing.Short() {
		sizes = sizes[:8]
	}
	for _, size := range sizes {
		for _, order := range []int{4, 8, 32} {
			t.Run(fmt.Sprintf("size=%d/order=%d", size, order), func(t *testing.T) {
				rng := rand.New(rand.NewSource(int64(size)))
				tree := newTestTree(order)
				stepChecks := size <= 100

				keys := rng.Perm(size)
				for i, k := range keys {
					require.False(t, tree.Insert(int64(k), testValue).AtEnd())
					if stepChecks {
						for _, seen := range keys[:i+1] {
							require.False(t, tree.Find(int64(seen)).AtEnd())
						}
					}
				}
				require.EqualValues(t, size, tree.Size())

				forward, backward := collect(t, tree)
				require.Len(t, forward, size)
				for i := range forward {
					require.EqualValues(t, i, forward[i])
					require.EqualValues(t, size-1-i, backward[i])
				}
				for k := int64(size); k < int64(size)+10; k++ {
					require.True(t, tree.Find(k).AtEnd())
				}

				removeOrder := rng.Perm(size)
				for i, k := range removeOrder {
					require.True(t, tree.Remove(int64(k)))
					if stepChecks {
						for _, gone := range removeOrder[:i+1] {
							require.True(t, tree.Find(int64(gone)).AtEnd())
						}
						for _, left := range removeOrder[i+1:] {
							require.False(t, tree.Find(int64(left)).AtEnd())
						}
					}
				}
				require.EqualValues(t, 0, tree.Size())
			})
		}
	}
}

func TestUpdate(t *testing.T) {
	tree := newTestTree(4)
	for _, k := range []int64{10, 20, 30} {
		tree.Insert(k, testValue)
	}

	updated := []byte("updated")
	require.True(t, tree.Update(20, updated))
	require.Equal(t, updated, tree.Find(20).Value())
	require.False(t, tree.Update(25, updated))
	require.EqualValues(t, 3, tree.Size())
}

func TestUpsert(t *testing.T) {
	tree := newTestTree(4)
	tree.Insert(5, testValue)
	tree.Insert(15, testValue)

	v2 := []byte("v2")
	require.False(t, tree.Upsert(15, v2).AtEnd())
	require.EqualValues(t, 2, tree.Size())
	require.Equal(t, v2, tree.Find(15).Value())

	v3 := []byte("v3")
	require.False(t, tree.Upsert(25, v3).AtEnd())
	require.EqualValues(t, 3, tree.Size())
	require.Equal(t, v3, tree.Find(25).Value())
}

func TestInsertDuplicate(t *testing.T) {
	tree := newTestTree(4)

	first := []byte("first")
	require.False(t, tree.Insert(7, first).AtEnd())
	require.True(t, tree.Insert(7, []byte("second")).AtEnd())
	require.EqualValues(t, 1, tree.Size())
	require.Equal(t, first, tree.Find(7).Value())
}

func TestRemoveIdempotent(t *testing.T) {
	tree := newTestTree(4)
	tree.Insert(3, testValue)

	require.True(t, tree.Remove(3))
	require.False(t, tree.Remove(3))
	require.EqualValues(t, 0, tree.Size())
}

func TestFindBelowMinimum(t *testing.T) {
	tree := newTestTree(4)
	for k := int64(100); k < 200; k++ {
		tree.Insert(k, testValue)
	}

	// Keys below the cached subtree minimum are rejected during descent.
	require.True(t, tree.Find(5).AtEnd())
	require.False(t, tree.Update(5, testValue))
	require.False(t, tree.Remove(5))

	// Insert mode descends to the left edge instead.
	require.False(t, tree.Insert(5, testValue).AtEnd())
	require.False(t, tree.Find(5).AtEnd())
}

func TestNegativeKeys(t *testing.T) {
	tree := newTestTree(4)
	rng := rand.New(rand.NewSource(7))
	for _, k := range rng.Perm(101) {
		tree.Insert(int64(k)-50, testValue)
	}

	forward, _ := collect(t, tree)
	require.Len(t, forward, 101)
	for i := range forward {
		require.EqualValues(t, i-50, forward[i])
	}
}

func TestOrderClamp(t *testing.T) {
	// Degenerate orders are raised to the minimum instead of failing.
	tree := NewTree(0)
	tree.SetAutoVerify(true)
	for k := int64(0); k < 100; k++ {
		tree.Insert(k, testValue)
	}
	require.EqualValues(t, 100, tree.Size())
}

func TestDebugString(t *testing.T) {
	tree := newTestTree(4)
	for k := int64(1); k <= 10; k++ {
		tree.Insert(k, testValue)
	}

	dump := tree.DebugString()
	require.Contains(t, dump, "<")
	require.Contains(t, dump, "[")
	require.Contains(t, dump, "10")
}

// TestOracle replays a long uniform stream of all five operations against the
// reference map, comparing every return value and the running size.
func TestOracle(t *testing.T) {
	numOps := 100000
	if testing.Short() {
		numOps = 10000
	}
	const maxKey = 100000

	rng := rand.New(rand.NewSource(0))
	tree := NewTree(16)
	oracle := refmap.New()

	for i := 0; i < numOps; i++ {
		key := rng.Int63n(maxKey)
		switch rng.Intn(5) {
		case 0:
			require.Equal(t, oracle.Find(key).AtEnd(), tree.Find(key).AtEnd(), "op %d: find %d", i, key)
		case 1:
			require.Equal(t, oracle.Insert(key, testValue).AtEnd(), tree.Insert(key, testValue).AtEnd(), "op %d: insert %d", i, key)
		case 2:
			require.Equal(t, oracle.Update(key, testValue), tree.Update(key, testValue), "op %d: update %d", i, key)
		case 3:
			require.Equal(t, oracle.Upsert(key, testValue).AtEnd(), tree.Upsert(key, testValue).AtEnd(), "op %d: upsert %d", i, key)
		case 4:
			require.Equal(t, oracle.Remove(key), tree.Remove(key), "op %d: remove %d", i, key)
		}
		require.Equal(t, oracle.Size(), tree.Size(), "op %d: size", i)
		if i%10000 == 0 {
			require.NoError(t, tree.Verify())
		}
	}

	require.NoError(t, tree.Verify())
	require.Equal(t, oracle.CollectKeys(nil, false), tree.CollectKeys(nil, false))

	backward := tree.CollectKeys(nil, true)
	slices.Reverse(backward)
	require.Equal(t, tree.CollectKeys(nil, false), backward)
}
