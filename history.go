package pallet

// DefaultHistoryCapacity is the deletion history size used when a Scene is
// configured without one.
const DefaultHistoryCapacity = 256

// DeletionHistory is a fixed-capacity FIFO of recently removed objects.
// It is a trace for inspection, not an undo log: nothing is restored from it.
type DeletionHistory struct {
	buf  []*Object
	head int // index of the oldest entry
	n    int
}

// NewDeletionHistory creates a history holding at most capacity objects.
func NewDeletionHistory(capacity int) (*DeletionHistory, error) {
	if capacity <= 0 {
		return nil, errorf(ErrInvalidConfiguration, "history capacity %d", capacity)
	}
	return &DeletionHistory{buf: make([]*Object, capacity)}, nil
}

// Push appends o. When the history was already full, the oldest entry is
// evicted and returned with ok set.
func (h *DeletionHistory) Push(o *Object) (evicted *Object, ok bool) {
	if h.n < len(h.buf) {
		h.buf[(h.head+h.n)%len(h.buf)] = o
		h.n++
		return nil, false
	}
	evicted = h.buf[h.head]
	h.buf[h.head] = o
	h.head = (h.head + 1) % len(h.buf)
	return evicted, true
}

// Items returns the retained objects, oldest first. The slice is a copy.
func (h *DeletionHistory) Items() []*Object {
	out := make([]*Object, h.n)
	for i := range out {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Clear drops every entry.
func (h *DeletionHistory) Clear() {
	clear(h.buf)
	h.head = 0
	h.n = 0
}

// Len returns the number of retained objects.
func (h *DeletionHistory) Len() int { return h.n }

// Cap returns the capacity fixed at construction.
func (h *DeletionHistory) Cap() int { return len(h.buf) }
