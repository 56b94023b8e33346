package pallet

import "github.com/go-gl/mathgl/mgl64"

// LocalMatrix computes the object's local 4x4 matrix from its transform
// properties.
//
// Composition order:
//
//	Scale -> Rotate(Z) -> Rotate(Y) -> Rotate(X) -> Translate
//
// which matches an intrinsic XYZ Euler order.
func (o *Object) LocalMatrix() mgl64.Mat4 {
	return composeMatrix(o.Position, o.Rotation, o.Scale)
}

func composeMatrix(pos, rot, scale mgl64.Vec3) mgl64.Mat4 {
	r := mgl64.HomogRotate3DX(rot[0]).
		Mul4(mgl64.HomogRotate3DY(rot[1])).
		Mul4(mgl64.HomogRotate3DZ(rot[2]))
	return mgl64.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(r).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// WorldMatrix multiplies local matrices from the root down to o.
// World matrices are not cached; the editor core only needs them for
// occasional queries such as viewport projection.
func (o *Object) WorldMatrix() mgl64.Mat4 {
	m := o.LocalMatrix()
	for p := o.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the object's origin in world space.
func (o *Object) WorldPosition() mgl64.Vec3 {
	return mgl64.TransformCoordinate(mgl64.Vec3{}, o.WorldMatrix())
}

// LocalToWorld converts a local-space point to world space.
func (o *Object) LocalToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, o.WorldMatrix())
}

// WorldToLocal converts a world-space point to this object's local space.
// Returns p unchanged if the world matrix is singular (zero scale).
func (o *Object) WorldToLocal(p mgl64.Vec3) mgl64.Vec3 {
	m := o.WorldMatrix()
	if det := m.Det(); det > -1e-12 && det < 1e-12 {
		return p
	}
	return mgl64.TransformCoordinate(p, m.Inv())
}

// --- Transform property setters ---

// SetPosition sets the object's local position.
func (o *Object) SetPosition(x, y, z float64) {
	o.Position = mgl64.Vec3{x, y, z}
}

// SetRotation sets the object's Euler rotation in radians.
func (o *Object) SetRotation(x, y, z float64) {
	o.Rotation = mgl64.Vec3{x, y, z}
}

// SetScale sets the object's local scale.
func (o *Object) SetScale(x, y, z float64) {
	o.Scale = mgl64.Vec3{x, y, z}
}
