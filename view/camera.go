package view

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active focus tweens for camera X and Z.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenZ *gween.Tween
	doneX  bool
	doneZ  bool
}

// Camera is a top-down view onto the scene's XZ plane. Screen Y grows with
// world Z.
type Camera struct {
	// X and Z are the world-space point the camera centers on.
	X, Z float64
	// Zoom is pixels per world unit.
	Zoom float64
	// Width and Height are the viewport size in pixels.
	Width, Height float64

	scroll *scrollAnim
}

// NewCamera creates a camera centered on the origin.
func NewCamera(width, height int) *Camera {
	return &Camera{
		Zoom:   40,
		Width:  float64(width),
		Height: float64(height),
	}
}

// Project maps a world position to screen coordinates.
func (c *Camera) Project(p mgl64.Vec3) (sx, sy float64) {
	sx = (p[0]-c.X)*c.Zoom + c.Width/2
	sy = (p[2]-c.Z)*c.Zoom + c.Height/2
	return sx, sy
}

// Unproject maps screen coordinates to a point on the ground plane (Y = 0).
func (c *Camera) Unproject(sx, sy float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(sx-c.Width/2)/c.Zoom + c.X,
		0,
		(sy-c.Height/2)/c.Zoom + c.Z,
	}
}

// ZoomBy multiplies the zoom, clamped to a usable range.
func (c *Camera) ZoomBy(factor float64) {
	c.Zoom = min(max(c.Zoom*factor, 2), 400)
}

// Pan moves the camera by a screen-space offset in pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Z += dy / c.Zoom
	c.scroll = nil
}

// ScrollTo animates the camera to the given world point over duration seconds.
func (c *Camera) ScrollTo(p mgl64.Vec3, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	c.scroll = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(p[0]), duration, easeFn),
		tweenZ: gween.New(float32(c.Z), float32(p[2]), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scroll != nil
}

func (c *Camera) update(dt float32) {
	s := c.scroll
	if s == nil {
		return
	}
	if !s.doneX {
		x, done := s.tweenX.Update(dt)
		c.X = float64(x)
		s.doneX = done
	}
	if !s.doneZ {
		z, done := s.tweenZ.Update(dt)
		c.Z = float64(z)
		s.doneZ = done
	}
	if s.doneX && s.doneZ {
		c.scroll = nil
	}
}
