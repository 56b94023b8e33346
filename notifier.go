package pallet

// ChangeType identifies what a ChangeEvent reports.
type ChangeType uint8

const (
	ChangeAdded   ChangeType = iota // Scene.AddObject ran
	ChangeRemoved                   // Scene.RemoveObject ran (see OK)
	ChangeTweens                    // an object's tween list changed
)

var changeNames = [...]string{"added", "removed", "tweens"}

func (c ChangeType) String() string {
	if int(c) < len(changeNames) {
		return changeNames[c]
	}
	return "unknown"
}

// ChangeEvent carries a structural or tween-list change to listeners.
type ChangeEvent struct {
	Type   ChangeType
	Scene  *Scene  // nil for tween-list changes
	Object *Object // the object added, removed or whose tweens changed
	OK     bool    // false when a removal did not find a live object
}

type listener struct {
	id uint64
	fn func(ChangeEvent)
}

// ChangeNotifier is an explicitly constructed publish/subscribe channel
// shared by a Scene, a TweenManager and their UI consumers. It is
// single-threaded like the rest of the package.
type ChangeNotifier struct {
	listeners []listener
	nextID    uint64
}

// NewChangeNotifier creates a notifier with no listeners.
func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{}
}

// Subscribe registers fn and returns a function that removes it. Calling
// the returned function more than once is harmless.
func (n *ChangeNotifier) Subscribe(fn func(ChangeEvent)) (cancel func()) {
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, listener{id: id, fn: fn})
	return func() { n.unsubscribe(id) }
}

func (n *ChangeNotifier) unsubscribe(id uint64) {
	for i, l := range n.listeners {
		if l.id == id {
			// Copy instead of shifting in place: a Publish in progress keeps
			// iterating its own view of the old slice.
			next := make([]listener, 0, len(n.listeners)-1)
			next = append(next, n.listeners[:i]...)
			n.listeners = append(next, n.listeners[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every listener registered when Publish was called.
// Listeners added during delivery receive only later events.
func (n *ChangeNotifier) Publish(ev ChangeEvent) {
	if n == nil {
		return
	}
	for _, l := range n.listeners {
		l.fn(ev)
	}
}

// Len returns the number of registered listeners.
func (n *ChangeNotifier) Len() int {
	return len(n.listeners)
}
