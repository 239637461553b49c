package lsm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLSM(t *testing.T) *LSM {
	t.Helper()
	l, err := OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, l.Close()) })
	return l
}

func TestOperationSurface(t *testing.T) {
	l := newTestLSM(t)

	require.True(t, l.Find(1).AtEnd())
	require.False(t, l.Update(1, []byte("x")))
	require.False(t, l.Remove(1))

	require.False(t, l.Insert(1, []byte("a")).AtEnd())
	require.True(t, l.Insert(1, []byte("b")).AtEnd())
	require.Equal(t, []byte("a"), l.Find(1).Value())
	require.EqualValues(t, 1, l.Size())

	require.True(t, l.Update(1, []byte("c")))
	require.Equal(t, []byte("c"), l.Find(1).Value())

	require.False(t, l.Upsert(2, []byte("d")).AtEnd())
	require.EqualValues(t, 2, l.Size())

	require.True(t, l.Remove(1))
	require.False(t, l.Remove(1))
	require.EqualValues(t, 1, l.Size())
}

// Signed keys must enumerate in key order, not in encoded-byte order.
func TestCollectKeysSignedOrder(t *testing.T) {
	l := newTestLSM(t)
	rng := rand.New(rand.NewSource(0))
	for _, k := range rng.Perm(200) {
		l.Insert(int64(k)-100, nil)
	}

	forward := l.CollectKeys(nil, false)
	require.Len(t, forward, 200)
	for i := range forward {
		require.EqualValues(t, i-100, forward[i])
	}

	backward := l.CollectKeys(nil, true)
	for i := range backward {
		require.EqualValues(t, 99-i, backward[i])
	}
}

func TestKeyEncodingRoundTrip(t *testing.T) {
	for _, k := range []int64{-1 << 62, -100, -1, 0, 1, 100, 1 << 62} {
		require.Equal(t, k, decodeKey(encodeKey(k)))
	}
}
