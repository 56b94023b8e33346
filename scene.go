package pallet

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RemovalObserver is notified synchronously when Scene.RemoveObject detaches
// a live object. TweenManager implements it to purge tweens of removed
// objects.
type RemovalObserver interface {
	ObjectRemoved(o *Object)
}

// Placement describes where and how AddObject inserts an object.
type Placement struct {
	Category    Category
	Searchable  Override
	Raycastable Override
	Browsable   Override

	// Attach re-parents an object that already has a parent. Without it,
	// inserting an object parented outside the destination subtree root
	// fails with ErrMultipleParents.
	Attach bool
}

// SceneConfig configures NewScene. The zero value is usable.
type SceneConfig struct {
	// HistoryCapacity bounds the deletion history. Zero selects
	// DefaultHistoryCapacity; negative values are rejected.
	HistoryCapacity int

	// Defaults overrides the built-in flag defaults of a subtree.
	Defaults map[Category]Flags

	Notifier *ChangeNotifier
	Logger   *zap.Logger

	// Debug enables tree depth and child count warnings.
	Debug bool
}

var builtinDefaults = map[Category]Flags{
	CategorySystem:    {},
	CategoryDecorator: {Raycastable: true},
	CategoryUser:      {Searchable: true, Raycastable: true, Browsable: true},
}

// DefaultFlags returns the built-in flag defaults of the subtree for c.
func DefaultFlags(c Category) Flags {
	return builtinDefaults[resolveCategory(c)]
}

// Scene owns the object tree. The root holds three subtree roots, one per
// Category, and every inserted object lives under exactly one of them.
type Scene struct {
	root     *Object
	subtrees [len(categoryNames)]*Object

	registry  *Registry
	history   *DeletionHistory
	notifier  *ChangeNotifier
	observers []RemovalObserver
	log       *zap.Logger
	debug     bool
}

// NewScene creates a scene with empty system, decorator and user subtrees.
func NewScene(cfg SceneConfig) (*Scene, error) {
	capacity := cfg.HistoryCapacity
	if capacity == 0 {
		capacity = DefaultHistoryCapacity
	}
	history, err := NewDeletionHistory(capacity)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Scene{
		root:     NewGroup("root"),
		registry: NewRegistry(),
		history:  history,
		notifier: cfg.Notifier,
		log:      log.Named("scene"),
		debug:    cfg.Debug,
	}
	s.root.Category = CategorySystem
	for i := range s.subtrees {
		c := Category(i)
		sub := NewGroup(c.String())
		sub.Category = c
		flags := builtinDefaults[c]
		if f, ok := cfg.Defaults[c]; ok {
			flags = f
		}
		setFlags(sub, flags)
		s.root.AddChild(sub)
		s.subtrees[i] = sub
	}
	s.UpdateMaps()
	return s, nil
}

// Root returns the scene root. Callers should mutate the tree through
// AddObject and RemoveObject so the indexes stay in sync.
func (s *Scene) Root() *Object {
	return s.root
}

// Subtree returns the root of the subtree that receives objects of category c.
func (s *Scene) Subtree(c Category) *Object {
	return s.subtrees[resolveCategory(c)]
}

// Defaults returns the current flag defaults of the subtree for c.
func (s *Scene) Defaults(c Category) Flags {
	sub := s.Subtree(c)
	return Flags{Searchable: sub.Searchable, Raycastable: sub.Raycastable, Browsable: sub.Browsable}
}

// SetDefaults changes the flags inherited by objects inserted into the
// subtree for c from now on. Objects already inserted keep their flags.
func (s *Scene) SetDefaults(c Category, f Flags) {
	setFlags(s.Subtree(c), f)
}

// Registry returns the scene's object indexes.
func (s *Scene) Registry() *Registry {
	return s.registry
}

// History returns the deletion history.
func (s *Scene) History() *DeletionHistory {
	return s.history
}

// Notifier returns the change notifier, which may be nil.
func (s *Scene) Notifier() *ChangeNotifier {
	return s.notifier
}

// AddRemovalObserver registers obs for RemoveObject callbacks.
func (s *Scene) AddRemovalObserver(obs RemovalObserver) {
	s.observers = append(s.observers, obs)
}

// AddObject inserts o into the subtree selected by p.Category, assigns its
// discoverability flags and re-indexes the scene.
//
// Flags set in p win; unset flags inherit the destination subtree's current
// defaults, never the object's previous flags. Flags and category are applied
// to every descendant of o as well.
//
// A change notification is published for every successful call, including
// when o was already a child of the destination.
func (s *Scene) AddObject(o *Object, p Placement) error {
	if o == nil {
		return ErrNilObject
	}
	if s.isSubtreeRoot(o) {
		return errorf(ErrSubtreeRoot, "%q", o.Name)
	}
	cat := resolveCategory(p.Category)
	dest := s.subtrees[cat]

	if isAncestor(o, dest) {
		return errorf(ErrCycle, "object %q contains subtree %q", o.Name, dest.Name)
	}
	switch {
	case o.Parent == dest:
		// Idempotent insert.
	case o.Parent != nil && !p.Attach:
		return errorf(ErrMultipleParents, "object %q is parented to %q", o.Name, o.Parent.Name)
	default:
		dest.AddChild(o)
	}

	def := s.Defaults(cat)
	flags := Flags{
		Searchable:  p.Searchable.apply(def.Searchable),
		Raycastable: p.Raycastable.apply(def.Raycastable),
		Browsable:   p.Browsable.apply(def.Browsable),
	}
	o.Walk(func(n *Object) bool {
		setFlags(n, flags)
		n.Category = cat
		return true
	})

	s.UpdateMaps()
	if s.debug {
		debugCheckTreeDepth(s.log, o)
		debugCheckChildCount(s.log, dest)
	}
	s.log.Debug("object added",
		zap.String("name", o.Name),
		zap.Stringer("uuid", o.UUID),
		zap.Stringer("category", cat))
	s.notifier.Publish(ChangeEvent{Type: ChangeAdded, Scene: s, Object: o, OK: true})
	return nil
}

// AddObjects calls AddObject for every element with the same placement and
// returns objs unchanged. Failures do not stop the loop; they are joined
// into the returned error.
func (s *Scene) AddObjects(objs []*Object, p Placement) ([]*Object, error) {
	var errs []error
	for _, o := range objs {
		if err := s.AddObject(o, p); err != nil {
			errs = append(errs, err)
		}
	}
	return objs, errors.Join(errs...)
}

// RemoveObject detaches o from the tree and records it in the deletion
// history. It reports whether o was a registered object reachable from the
// root.
//
// The registry is not purged here: the removed object and its descendants
// stay in the indexes until the next AddObject or UpdateMaps. A change
// notification is published whether or not the removal succeeded.
func (s *Scene) RemoveObject(o *Object) bool {
	ok := o != nil && s.registry.Exists(o) && o != s.root && s.reachable(o) && !s.isSubtreeRoot(o)
	if ok {
		o.RemoveFromParent()
		s.history.Push(o)
		for _, obs := range s.observers {
			obs.ObjectRemoved(o)
		}
		s.log.Debug("object removed", zap.String("name", o.Name), zap.Stringer("uuid", o.UUID))
	}
	s.notifier.Publish(ChangeEvent{Type: ChangeRemoved, Scene: s, Object: o, OK: ok})
	return ok
}

// UpdateMaps rebuilds the registry from the live tree, dropping entries for
// objects that are no longer reachable.
func (s *Scene) UpdateMaps() {
	s.registry.Reset()
	s.registry.registerTree(s.root)
}

// Exists reports whether o is registered. After RemoveObject this stays
// true until the next re-index.
func (s *Scene) Exists(o *Object) bool {
	return s.registry.Exists(o)
}

// Get returns the registered object with the given UUID.
func (s *Scene) Get(id uuid.UUID) (*Object, bool) {
	return s.registry.Get(id)
}

// FindObjects returns the searchable registered objects matching pred in
// registration order. See Registry.Find for the snapshot contract.
func (s *Scene) FindObjects(pred func(*Object) bool) []*Object {
	return s.registry.Find(func(o *Object) bool {
		return o.Searchable && (pred == nil || pred(o))
	})
}

// FindByName returns the first searchable object with the given name.
func (s *Scene) FindByName(name string) (*Object, bool) {
	found := s.FindObjects(func(o *Object) bool { return o.Name == name })
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// Browsable lists the browsable objects of the user subtree in tree order.
func (s *Scene) Browsable() []*Object {
	return s.collect(s.subtrees[CategoryUser], func(o *Object) bool { return o.Browsable })
}

// Raycastable lists every raycastable object of all subtrees in tree order.
// Subtree roots are never included.
func (s *Scene) Raycastable() []*Object {
	var out []*Object
	for _, sub := range s.subtrees {
		out = append(out, s.collect(sub, func(o *Object) bool { return o.Raycastable })...)
	}
	return out
}

func (s *Scene) collect(from *Object, pred func(*Object) bool) []*Object {
	var out []*Object
	for _, child := range from.children {
		child.Walk(func(o *Object) bool {
			if pred(o) {
				out = append(out, o)
			}
			return true
		})
	}
	return out
}

func (s *Scene) reachable(o *Object) bool {
	return o.Root() == s.root
}

func (s *Scene) isSubtreeRoot(o *Object) bool {
	for _, sub := range s.subtrees {
		if sub == o {
			return true
		}
	}
	return false
}

func setFlags(o *Object, f Flags) {
	o.Searchable = f.Searchable
	o.Raycastable = f.Raycastable
	o.Browsable = f.Browsable
}
