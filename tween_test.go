package pallet

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func addTween(t *testing.T, m *TweenManager, o *Object, to mgl64.Vec3, seconds float64) *TweenElement {
	t.Helper()
	list, err := m.Add(TweenParams{Object: o, Property: PropertyPosition, To: to, DurationSeconds: seconds})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return list[len(list)-1]
}

func TestTweenLinearMidpoint(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	e := addTween(t, m, o, mgl64.Vec3{10, 0, 0}, 1)

	e.Start()
	m.Advance(500 * time.Millisecond)
	if o.Position != (mgl64.Vec3{5, 0, 0}) {
		t.Errorf("Position = %v, want (5, 0, 0)", o.Position)
	}
	if !e.IsRunning() {
		t.Error("element should still be running")
	}
}

func TestTweenWritesExactEndValue(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	to := mgl64.Vec3{1.0 / 3, math.Pi, -7.25}
	e := addTween(t, m, o, to, 0.3)

	e.Start()
	for range 7 {
		m.Advance(47 * time.Millisecond)
	}
	if o.Position != to {
		t.Errorf("Position = %v, want exactly %v", o.Position, to)
	}
	if e.IsRunning() {
		t.Error("element should have completed")
	}
	if e.Elapsed() != e.Duration() {
		t.Errorf("Elapsed = %f, want %f", e.Elapsed(), e.Duration())
	}
}

func TestTweenZeroDuration(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	e := addTween(t, m, o, mgl64.Vec3{3, 3, 3}, 0)
	done := 0
	e.OnComplete(func() { done++ })

	e.Start()
	m.Advance(0)
	if o.Position != (mgl64.Vec3{3, 3, 3}) || done != 1 {
		t.Errorf("Position = %v, completions = %d", o.Position, done)
	}
}

func TestTweenOnCompleteOnceAndRearm(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	e := addTween(t, m, o, mgl64.Vec3{1, 0, 0}, 0.1)
	calls := 0
	e.OnComplete(func() { calls++ })

	e.Start()
	m.Advance(time.Second)
	m.Advance(time.Second)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	o.Position = mgl64.Vec3{}
	e.Start()
	m.Advance(time.Second)
	if calls != 2 {
		t.Errorf("calls after restart = %d, want 2", calls)
	}
}

func TestTweenOnCompleteReplaces(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	e := addTween(t, m, NewMesh("m"), mgl64.Vec3{1, 0, 0}, 0)
	first, second := 0, 0
	e.OnComplete(func() { first++ })
	e.OnComplete(func() { second++ })
	e.Start()
	m.Advance(0)
	if first != 0 || second != 1 {
		t.Errorf("first = %d, second = %d, want 0 and 1", first, second)
	}
}

func TestTweenRestartRecapturesStart(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	e := addTween(t, m, o, mgl64.Vec3{10, 0, 0}, 1)

	e.Start()
	m.Advance(500 * time.Millisecond)
	e.Start()
	if e.StartValues() != (mgl64.Vec3{5, 0, 0}) {
		t.Errorf("StartValues = %v, want (5, 0, 0)", e.StartValues())
	}
	if e.Elapsed() != 0 {
		t.Errorf("Elapsed = %f, want 0", e.Elapsed())
	}
}

func TestTweenExplicitFrom(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	from := mgl64.Vec3{2, 0, 0}
	list, err := m.Add(TweenParams{Object: o, Property: PropertyScale, From: &from, To: mgl64.Vec3{4, 0, 0}, DurationSeconds: 1})
	if err != nil {
		t.Fatal(err)
	}
	e := list[0]
	from[0] = 99 // caller's copy must not leak in

	e.Start()
	m.Advance(500 * time.Millisecond)
	if o.Scale != (mgl64.Vec3{3, 0, 0}) {
		t.Errorf("Scale = %v, want (3, 0, 0)", o.Scale)
	}
	if got, ok := e.From(); !ok || got != (mgl64.Vec3{2, 0, 0}) {
		t.Errorf("From = %v, %v", got, ok)
	}
}

func TestTweenDisableStopsWithoutCallback(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	e := addTween(t, m, o, mgl64.Vec3{10, 0, 0}, 1)
	calls := 0
	e.OnComplete(func() { calls++ })

	e.Start()
	m.Advance(100 * time.Millisecond)
	e.SetEnabled(false)
	m.Advance(2 * time.Second)

	if e.IsRunning() {
		t.Error("disabled element should stop")
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
	if !o.Position.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-6) {
		t.Errorf("Position = %v, want the partial value (1, 0, 0)", o.Position)
	}

	e.Start()
	if e.IsRunning() {
		t.Error("disabled element should not start")
	}
}

func TestTweenSetDurationRescales(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	e := addTween(t, m, NewMesh("m"), mgl64.Vec3{1, 0, 0}, 1)
	e.Start()
	m.Advance(250 * time.Millisecond)

	if err := e.SetDuration(2000); err != nil {
		t.Fatal(err)
	}
	if e.Elapsed() != 500 {
		t.Errorf("Elapsed = %f, want 500", e.Elapsed())
	}
	if e.Duration() != 2000 {
		t.Errorf("Duration = %f, want 2000", e.Duration())
	}

	for _, bad := range []float64{-1, math.NaN()} {
		if err := e.SetDuration(bad); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("SetDuration(%v) err = %v", bad, err)
		}
	}
}

func TestTweenSetDurationIdle(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	e := addTween(t, m, NewMesh("m"), mgl64.Vec3{1, 0, 0}, 1)
	e.SetDuration(300)
	if e.Elapsed() != 0 || e.Duration() != 300 {
		t.Errorf("Elapsed/Duration = %f/%f, want 0/300", e.Elapsed(), e.Duration())
	}
}

func TestTweenSetEasing(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	e := addTween(t, m, NewMesh("m"), mgl64.Vec3{1, 0, 0}, 1)
	if err := e.SetEasing("InOutCubic"); err != nil {
		t.Fatal(err)
	}
	if e.Easing() != "inoutcubic" {
		t.Errorf("Easing = %q", e.Easing())
	}
	if err := e.SetEasing("wobble"); !errors.Is(err, ErrUnknownEasing) {
		t.Errorf("err = %v, want ErrUnknownEasing", err)
	}
	if e.Easing() != "inoutcubic" {
		t.Error("failed SetEasing must not change the easing")
	}
}

func TestTweenEasedProgress(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	list, _ := m.Add(TweenParams{Object: o, To: mgl64.Vec3{100, 0, 0}, DurationSeconds: 1, Easing: "inQuad"})
	list[0].Start()
	m.Advance(500 * time.Millisecond)
	if math.Abs(o.Position[0]-25) > 1e-4 {
		t.Errorf("Position.X = %f, want ~25", o.Position[0])
	}
}

func TestTweenChainFanOut(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	a := addTween(t, m, NewMesh("a"), mgl64.Vec3{1, 0, 0}, 0.1)
	bObj, cObj := NewMesh("b"), NewMesh("c")
	b := addTween(t, m, bObj, mgl64.Vec3{1, 0, 0}, 1)
	c := addTween(t, m, cObj, mgl64.Vec3{2, 0, 0}, 1)
	a.Chain(b, c)

	a.Start()
	m.Advance(200 * time.Millisecond)
	if !b.IsRunning() || !c.IsRunning() {
		t.Fatal("both successors should start when a completes")
	}
	if b.Elapsed() != 0 || c.Elapsed() != 0 {
		t.Error("successors started during a pass first advance on the next pass")
	}
	m.Advance(500 * time.Millisecond)
	if bObj.Position != (mgl64.Vec3{0.5, 0, 0}) || cObj.Position != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("positions = %v, %v", bObj.Position, cObj.Position)
	}
}

func TestTweenStop(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	a := addTween(t, m, o, mgl64.Vec3{1, 0, 0}, 0.1)
	b := addTween(t, m, o, mgl64.Vec3{2, 0, 0}, 0.1)
	a.Chain(b)
	a.Start()
	a.Stop()
	m.Advance(time.Second)
	if b.IsRunning() || m.Running() != 0 {
		t.Error("stopped element must not start successors")
	}
	if o.Position != (mgl64.Vec3{}) {
		t.Errorf("Position = %v, want unchanged", o.Position)
	}
}

func TestTweenUnchain(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	a := addTween(t, m, o, mgl64.Vec3{1, 0, 0}, 0.1)
	b := addTween(t, m, o, mgl64.Vec3{2, 0, 0}, 0.1)
	a.Chain(b)
	a.Unchain()
	if len(a.Next()) != 0 {
		t.Errorf("Next = %v, want empty", a.Next())
	}
}

func TestTweenIDsUnique(t *testing.T) {
	m := NewTweenManager(TweenManagerConfig{})
	o := NewMesh("m")
	a := addTween(t, m, o, mgl64.Vec3{}, 1)
	b := addTween(t, m, o, mgl64.Vec3{}, 1)
	if a.ID() == b.ID() {
		t.Error("element IDs should be unique")
	}
}
