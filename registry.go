package pallet

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

type registryEntry struct {
	obj *Object
	seq uint64
}

// Registry indexes live objects by UUID and by Kind. It holds strong
// references only to registered objects; Unregister drops every reference
// so detached subtrees can be collected.
//
// Registry is not safe for concurrent use.
type Registry struct {
	byID   map[uuid.UUID]registryEntry
	byKind map[Kind]map[uuid.UUID]*Object
	seq    uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[uuid.UUID]registryEntry),
		byKind: make(map[Kind]map[uuid.UUID]*Object),
	}
}

// Register adds o to the identity and kind indexes. Registering an object
// that is already present is a no-op.
func (r *Registry) Register(o *Object) {
	if o == nil {
		return
	}
	if e, ok := r.byID[o.UUID]; ok {
		if e.obj == o {
			return
		}
		r.Unregister(e.obj)
	}
	r.seq++
	r.byID[o.UUID] = registryEntry{obj: o, seq: r.seq}
	bucket := r.byKind[o.Kind]
	if bucket == nil {
		bucket = make(map[uuid.UUID]*Object)
		r.byKind[o.Kind] = bucket
	}
	bucket[o.UUID] = o
}

// registerTree registers o and every descendant.
func (r *Registry) registerTree(o *Object) {
	o.Walk(func(n *Object) bool {
		r.Register(n)
		return true
	})
}

// Unregister removes o from both indexes. Unknown objects are ignored so
// teardown paths may call it more than once.
func (r *Registry) Unregister(o *Object) {
	if o == nil {
		return
	}
	e, ok := r.byID[o.UUID]
	if !ok || e.obj != o {
		return
	}
	delete(r.byID, o.UUID)
	for kind, bucket := range r.byKind {
		if _, ok := bucket[o.UUID]; !ok {
			continue
		}
		delete(bucket, o.UUID)
		if len(bucket) == 0 {
			delete(r.byKind, kind)
		}
	}
}

// Exists reports whether o is registered.
func (r *Registry) Exists(o *Object) bool {
	if o == nil {
		return false
	}
	e, ok := r.byID[o.UUID]
	return ok && e.obj == o
}

// Get returns the object registered under id.
func (r *Registry) Get(id uuid.UUID) (*Object, bool) {
	e, ok := r.byID[id]
	return e.obj, ok
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	return len(r.byID)
}

// ByKind returns the registered objects of kind k in registration order.
func (r *Registry) ByKind(k Kind) []*Object {
	bucket := r.byKind[k]
	out := make([]*Object, 0, len(bucket))
	for _, o := range bucket {
		out = append(out, o)
	}
	r.sortBySeq(out)
	return out
}

// Find returns every registered object matching pred, in registration
// order. The candidate set is captured before pred runs, so pred observes a
// single snapshot; pred must not add or remove scene objects itself, as the
// result of such a call is undefined.
func (r *Registry) Find(pred func(*Object) bool) []*Object {
	entries := make([]registryEntry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b registryEntry) int {
		return cmp.Compare(a.seq, b.seq)
	})
	var out []*Object
	for _, e := range entries {
		if pred == nil || pred(e.obj) {
			out = append(out, e.obj)
		}
	}
	return out
}

// Reset drops every entry.
func (r *Registry) Reset() {
	clear(r.byID)
	clear(r.byKind)
}

func (r *Registry) sortBySeq(objs []*Object) {
	slices.SortFunc(objs, func(a, b *Object) int {
		return cmp.Compare(r.byID[a.UUID].seq, r.byID[b.UUID].seq)
	})
}
