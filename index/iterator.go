package index

// Iterator is the lightweight handle returned by point operations. It captures
// the stored value at the time of the call; it is not a cursor and does not
// remain valid across mutations.
type Iterator interface {
	// AtEnd reports whether the handle is the end sentinel.
	AtEnd() bool

	// Value returns the value captured by the handle, or nil at end.
	Value() []byte
}

type found struct{ value []byte }

func (found) AtEnd() bool     { return false }
func (h found) Value() []byte { return h.value }

type end struct{}

func (end) AtEnd() bool   { return true }
func (end) Value() []byte { return nil }

// Found returns a handle carrying value.
func Found(value []byte) Iterator { return found{value: value} }

// End returns the shared end sentinel.
func End() Iterator { return end{} }
