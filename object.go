package pallet

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Object is the scene graph element. A single flat struct is used for every
// kind of object; Kind only selects the registry bucket and editor behavior.
type Object struct {
	// Identity
	UUID uuid.UUID
	Name string
	Kind Kind

	// Hierarchy
	Parent   *Object
	children []*Object

	// Transform (local)
	Position mgl64.Vec3
	Rotation mgl64.Vec3 // Euler XYZ, radians
	Scale    mgl64.Vec3

	// Discoverability, assigned by Scene.AddObject
	Searchable  bool
	Raycastable bool
	Browsable   bool
	Category    Category

	// Metadata
	UserData any

	disposed bool
}

// NewObject creates a detached object of the given kind with a fresh UUID
// and unit scale.
func NewObject(name string, kind Kind) *Object {
	return &Object{
		UUID:  uuid.New(),
		Name:  name,
		Kind:  kind,
		Scale: mgl64.Vec3{1, 1, 1},
	}
}

// NewGroup creates a container object.
func NewGroup(name string) *Object {
	return NewObject(name, KindGroup)
}

// NewMesh creates a mesh object.
func NewMesh(name string) *Object {
	return NewObject(name, KindMesh)
}

// --- Tree manipulation ---

// AddChild appends child to this object's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this object (cycle).
func (o *Object) AddChild(child *Object) {
	if child == nil {
		panic("pallet: cannot add nil child")
	}
	if isAncestor(child, o) {
		panic("pallet: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = o
	o.children = append(o.children, child)
}

// RemoveChild detaches child from this object.
// Panics if child.Parent != o.
func (o *Object) RemoveChild(child *Object) {
	if child.Parent != o {
		panic("pallet: child's parent is not this object")
	}
	o.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this object from its parent.
// No-op if this object has no parent.
func (o *Object) RemoveFromParent() {
	if o.Parent == nil {
		return
	}
	o.Parent.RemoveChild(o)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (o *Object) Children() []*Object {
	return o.children
}

// NumChildren returns the number of children.
func (o *Object) NumChildren() int {
	return len(o.children)
}

// ChildAt returns the child at the given index.
func (o *Object) ChildAt(index int) *Object {
	return o.children[index]
}

// Walk visits o and its descendants depth-first, parents before children.
// Returning false from fn skips that object's descendants. fn must not
// restructure the subtree being walked.
func (o *Object) Walk(fn func(*Object) bool) {
	if !fn(o) {
		return
	}
	for _, child := range o.children {
		child.Walk(fn)
	}
}

// Root returns the topmost ancestor of o (o itself when detached).
func (o *Object) Root() *Object {
	r := o
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// --- Transform access ---

// Transform returns a copy of the object's local transform.
func (o *Object) Transform() Transform {
	return Transform{Position: o.Position, Rotation: o.Rotation, Scale: o.Scale}
}

// SetTransform overwrites the object's local transform.
func (o *Object) SetTransform(t Transform) {
	o.Position = t.Position
	o.Rotation = t.Rotation
	o.Scale = t.Scale
}

// property returns the current value of p.
func (o *Object) property(p Property) mgl64.Vec3 {
	switch p {
	case PropertyRotation:
		return o.Rotation
	case PropertyScale:
		return o.Scale
	default:
		return o.Position
	}
}

func (o *Object) setProperty(p Property, v mgl64.Vec3) {
	switch p {
	case PropertyRotation:
		o.Rotation = v
	case PropertyScale:
		o.Scale = v
	default:
		o.Position = v
	}
}

// --- Disposal ---

// Dispose removes this object from its parent, marks it disposed, and
// recursively disposes all descendants. Tweens targeting a disposed object
// stop on their next update.
func (o *Object) Dispose() {
	if o.disposed {
		return
	}
	o.RemoveFromParent()
	o.dispose()
}

func (o *Object) dispose() {
	o.disposed = true
	for _, child := range o.children {
		child.Parent = nil
		child.dispose()
	}
	o.children = nil
	o.Parent = nil
	o.UserData = nil
}

// IsDisposed returns true if this object has been disposed.
func (o *Object) IsDisposed() bool {
	return o.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node *Object) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from o.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (o *Object) removeChildByPtr(child *Object) {
	for i, c := range o.children {
		if c == child {
			copy(o.children[i:], o.children[i+1:])
			o.children[len(o.children)-1] = nil
			o.children = o.children[:len(o.children)-1]
			return
		}
	}
}
