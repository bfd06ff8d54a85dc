package uid

import "testing"

func TestNextIsMonotonic(t *testing.T) {
	a := NewAllocator(NamespaceUser)
	prev := a.Next()
	for i := 0; i < 100; i++ {
		id := a.Next()
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestNamespacesDoNotOverlap(t *testing.T) {
	sys := NewAllocator(NamespaceSystem)
	user := NewAllocator(NamespaceUser)

	if got := sys.Next(); got != 1 {
		t.Errorf("first system id = %d, want 1", got)
	}
	if got := user.Next(); got != UserFloor {
		t.Errorf("first user id = %d, want %d", got, UserFloor)
	}
}

func TestRaiseFloor(t *testing.T) {
	a := NewAllocator(NamespaceUser)
	a.RaiseFloor(5000)
	if got := a.Next(); got != 5001 {
		t.Errorf("after RaiseFloor(5000), Next() = %d, want 5001", got)
	}

	// A floor below the current counter must not rewind it.
	a.RaiseFloor(10)
	if got := a.Next(); got != 5002 {
		t.Errorf("after stale RaiseFloor, Next() = %d, want 5002", got)
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	a := NewAllocator(NamespaceUser)
	if a.Peek() != a.Peek() {
		t.Fatal("Peek advanced the counter")
	}
	want := a.Peek()
	if got := a.Next(); got != want {
		t.Errorf("Next() = %d, want peeked %d", got, want)
	}
}
