package pallet

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// tweenIDCounter is a plain counter; pallet is single-threaded.
var tweenIDCounter uint64

func nextTweenID() uint64 {
	tweenIDCounter++
	return tweenIDCounter
}

type tweenState uint8

const (
	tweenIdle tweenState = iota
	tweenRunning
	tweenDone
)

// TweenElement interpolates one transform property of an Object from its
// start value to a target value over a duration in milliseconds. Elements
// are created by TweenManager.Add and advanced by TweenManager.Update.
//
// The easing curve comes from gween; a single gween.Tween maps elapsed
// milliseconds to eased progress in [0, 1], and the property is then
// interpolated in float64 so the end value is written exactly.
type TweenElement struct {
	id   uint64
	Name string

	object   *Object
	property Property
	from     *mgl64.Vec3
	to       mgl64.Vec3
	start    mgl64.Vec3

	durationMS float64
	elapsedMS  float64
	easingName string
	easing     ease.TweenFunc
	tween      *gween.Tween

	enabled bool
	state   tweenState
	removed bool // dropped from its object's list; never starts again

	next         []*TweenElement
	onComplete   func()
	sequenceDone func() // restore hook installed by Preview

	mgr    *TweenManager
	queued bool // present in mgr.active
	fresh  bool // started during the current update pass
}

// ID returns the element's process-wide unique identifier.
func (e *TweenElement) ID() uint64 { return e.id }

// Object returns the animated object.
func (e *TweenElement) Object() *Object { return e.object }

// Property returns the animated property.
func (e *TweenElement) Property() Property { return e.property }

// From returns the explicit start value, if one was given.
func (e *TweenElement) From() (mgl64.Vec3, bool) {
	if e.from == nil {
		return mgl64.Vec3{}, false
	}
	return *e.from, true
}

// To returns the target value.
func (e *TweenElement) To() mgl64.Vec3 { return e.to }

// SetTo changes the target value. A running element continues from its
// captured start values toward the new target.
func (e *TweenElement) SetTo(v mgl64.Vec3) { e.to = v }

// StartValues returns the values captured by the most recent Start.
func (e *TweenElement) StartValues() mgl64.Vec3 { return e.start }

// Duration returns the duration in milliseconds.
func (e *TweenElement) Duration() float64 { return e.durationMS }

// Elapsed returns the milliseconds advanced since the last Start.
func (e *TweenElement) Elapsed() float64 { return e.elapsedMS }

// Easing returns the canonical easing identifier.
func (e *TweenElement) Easing() string { return e.easingName }

// Enabled reports whether the element may run.
func (e *TweenElement) Enabled() bool { return e.enabled }

// IsRunning reports whether the element is being advanced.
func (e *TweenElement) IsRunning() bool { return e.state == tweenRunning }

// Next returns the successors started when this element completes. The
// returned slice MUST NOT be mutated by the caller.
func (e *TweenElement) Next() []*TweenElement { return e.next }

// SetDuration changes the duration in milliseconds. A running element keeps
// its progress fraction: elapsed time is rescaled to the new duration. An
// element that has not started only records the new value.
func (e *TweenElement) SetDuration(ms float64) error {
	if math.IsNaN(ms) || ms < 0 {
		return errorf(ErrInvalidDuration, "%v ms", ms)
	}
	if e.state == tweenRunning && e.durationMS > 0 {
		e.elapsedMS = e.elapsedMS / e.durationMS * ms
	}
	e.durationMS = ms
	e.tween = gween.New(0, 1, float32(ms), e.easing)
	return nil
}

// SetEasing changes the easing curve.
func (e *TweenElement) SetEasing(name string) error {
	fn, key, err := lookupEasing(name)
	if err != nil {
		return err
	}
	e.easing = fn
	e.easingName = key
	e.tween = gween.New(0, 1, float32(e.durationMS), fn)
	return nil
}

// SetEnabled toggles the element. Disabling a running element stops it on
// the next update without firing its completion callback; values already
// written to the object are kept.
func (e *TweenElement) SetEnabled(enabled bool) { e.enabled = enabled }

// OnComplete sets the callback fired once when the element reaches its end
// value. It replaces any previous callback; nil clears it.
func (e *TweenElement) OnComplete(fn func()) { e.onComplete = fn }

// Chain appends successors that start when this element completes.
func (e *TweenElement) Chain(next ...*TweenElement) {
	e.next = append(e.next, next...)
}

// Unchain drops every successor.
func (e *TweenElement) Unchain() {
	clear(e.next)
	e.next = e.next[:0]
}

// Start begins interpolation from the current clock tick. Starting a
// running or completed element restarts it: start values are captured
// again, progress resets and the completion callback is re-armed.
// Removed and disabled elements do not start.
func (e *TweenElement) Start() {
	if e.removed || !e.enabled {
		return
	}
	if e.from != nil {
		e.start = *e.from
	} else {
		e.start = e.object.property(e.property)
	}
	e.elapsedMS = 0
	e.tween = gween.New(0, 1, float32(e.durationMS), e.easing)
	e.state = tweenRunning
	if e.mgr != nil {
		e.mgr.activate(e)
	}
}

// Stop halts the element without firing callbacks or starting successors.
func (e *TweenElement) Stop() {
	if e.state == tweenRunning {
		e.state = tweenIdle
	}
}

// advance moves the element forward by dt milliseconds and writes the
// interpolated value. It reports whether the end value was reached.
func (e *TweenElement) advance(dtMS float64) bool {
	e.elapsedMS += dtMS
	if e.elapsedMS >= e.durationMS {
		e.elapsedMS = e.durationMS
		e.object.setProperty(e.property, e.to)
		return true
	}
	progress, _ := e.tween.Set(float32(e.elapsedMS))
	e.object.setProperty(e.property, lerpVec3(e.start, e.to, float64(progress)))
	return false
}

// complete fires callbacks and starts successors. The restore hook and
// successor list are read before onComplete runs, so a callback that
// re-sequences the object only affects later completions.
func (e *TweenElement) complete() {
	e.state = tweenDone
	done := e.sequenceDone
	e.sequenceDone = nil
	next := slices.Clone(e.next)
	if e.onComplete != nil {
		e.onComplete()
	}
	if done != nil {
		done()
	}
	for _, n := range next {
		n.Start()
	}
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
