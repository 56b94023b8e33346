package pallet

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is the local position, Euler rotation (radians) and scale of an
// Object. Values are compared and restored bit-for-bit.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3
}

// IdentityTransform has zero translation and rotation and unit scale.
var IdentityTransform = Transform{Scale: mgl64.Vec3{1, 1, 1}}

// Kind distinguishes objects for the registry's per-kind index.
type Kind uint8

const (
	KindGroup    Kind = iota // container with no visual output
	KindMesh                 // imported or primitive geometry
	KindLight                // light source
	KindCamera               // camera rig
	KindHelper               // gizmo, grid or other editor decoration
	KindTweenSet             // exported tween data attached to the tree
)

var kindNames = [...]string{"group", "mesh", "light", "camera", "helper", "tweenset"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Category selects the subtree an object is inserted into. The zero value
// is CategoryUser.
type Category uint8

const (
	CategoryUser      Category = iota // objects authored by the user
	CategorySystem                    // cameras, lights and other fixed rigs
	CategoryDecorator                 // editor-only decorations
)

var categoryNames = [...]string{"user", "system", "decorator"}

func (c Category) String() string {
	return categoryNames[resolveCategory(c)]
}

// ParseCategory maps a category name to a Category. Unrecognized names
// resolve to CategoryUser.
func ParseCategory(name string) Category {
	for i, n := range categoryNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Category(i)
		}
	}
	return CategoryUser
}

// resolveCategory is the single place where loosely typed categories are
// normalized. Out-of-range values fall back to CategoryUser.
func resolveCategory(c Category) Category {
	if int(c) >= len(categoryNames) {
		return CategoryUser
	}
	return c
}

// Flags is the per-object bag of discoverability switches.
type Flags struct {
	Searchable  bool // found by FindObjects
	Raycastable bool // participates in pointer hit testing
	Browsable   bool // listed in outliner views
}

// Override is a tri-state used by Placement. The zero value inherits the
// destination subtree's default.
type Override uint8

const (
	Inherit Override = iota
	On
	Off
)

func (o Override) apply(def bool) bool {
	switch o {
	case On:
		return true
	case Off:
		return false
	default:
		return def
	}
}

// Property is an animatable transform component of an Object.
type Property uint8

const (
	PropertyPosition Property = iota
	PropertyRotation
	PropertyScale
)

var propertyNames = [...]string{"position", "rotation", "scale"}

func (p Property) String() string {
	if int(p) < len(propertyNames) {
		return propertyNames[p]
	}
	return "unknown"
}

func (p Property) valid() bool {
	return int(p) < len(propertyNames)
}

// ParseProperty maps a property path to a Property.
func ParseProperty(path string) (Property, error) {
	for i, n := range propertyNames {
		if n == path {
			return Property(i), nil
		}
	}
	return 0, errorf(ErrUnknownProperty, "%q", path)
}
