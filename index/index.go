package index

// Index is the common operation surface for every ordered index structure in
// this repository. Keys are signed 64-bit integers; values are opaque byte
// slices that no implementation interprets. The in-memory implementations
// store the caller's slice as is; the Pebble-backed lsm stores and returns
// copies.
//
// Soft failures are signalled through the return value: Find and Insert
// return the end handle when the key is absent (respectively, already
// present), Update and Remove return false. Upsert always succeeds.
type Index interface {
	// Find returns a handle to the value stored under key, or the end handle.
	Find(key int64) Iterator

	// Update overwrites the value for key if it is present.
	Update(key int64, value []byte) bool

	// Insert stores value under key. If the key is already present nothing is
	// written and the end handle is returned.
	Insert(key int64, value []byte) Iterator

	// Upsert stores value under key, overwriting any previous value.
	Upsert(key int64, value []byte) Iterator

	// Remove deletes key if it is present.
	Remove(key int64) bool

	// Size returns the number of stored entries.
	Size() int64

	// CollectKeys appends every key to dst in ascending order, or descending
	// when backwards is set, and returns the extended slice.
	CollectKeys(dst []int64, backwards bool) []int64
}
