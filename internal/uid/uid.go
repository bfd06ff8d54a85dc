// Package uid issues unique, namespaced, monotonically increasing
// identifiers for type descriptors.
package uid

// ID identifies one type descriptor within an extraction pass.
// IDs are never reused.
type ID int64

// None is the zero ID, used where a reference is absent.
const None ID = 0

// Namespace separates pre-assigned system descriptors from user-discovered ones.
type Namespace int

const (
	// NamespaceSystem is reserved for shared pre-allocated descriptors
	// (primitives and well-known composite shapes). Counter starts at 1.
	NamespaceSystem Namespace = iota
	// NamespaceUser is for types discovered during traversal.
	// Counter starts at UserFloor so the two ranges never overlap.
	NamespaceUser
)

// UserFloor is the first ID handed out in the user namespace.
const UserFloor ID = 1000

// Allocator hands out fresh IDs in one namespace. It is not safe for
// concurrent use; traversal is single-threaded by design.
type Allocator struct {
	next ID
}

// NewAllocator creates an allocator for the given namespace.
func NewAllocator(ns Namespace) *Allocator {
	a := &Allocator{next: 1}
	if ns == NamespaceUser {
		a.next = UserFloor
	}
	return a
}

// Next returns a fresh ID and advances the counter.
func (a *Allocator) Next() ID {
	id := a.next
	a.next++
	return id
}

// RaiseFloor advances the counter past an externally known minimum, so
// that allocators merged across passes cannot collide. A floor at or
// below the current counter is a no-op.
func (a *Allocator) RaiseFloor(n ID) {
	if n >= a.next {
		a.next = n + 1
	}
}

// Peek returns the ID the next call to Next would return.
func (a *Allocator) Peek() ID {
	return a.next
}
