package pallet

import (
	"math"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// Clock supplies wall-clock time to TweenManager.Update.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// TweenParams describes a tween for TweenManager.Add.
type TweenParams struct {
	Object   *Object
	Property Property

	// From fixes the start value. When nil the element starts from the
	// property's value at the moment it is started.
	From *mgl64.Vec3
	To   mgl64.Vec3

	// DurationSeconds is authored in seconds and stored in milliseconds.
	DurationSeconds float64

	// Easing is an identifier from Easings; empty selects DefaultEasing.
	Easing string
	Name   string
}

// TweenManagerConfig configures NewTweenManager. The zero value is usable.
type TweenManagerConfig struct {
	Clock    Clock
	Notifier *ChangeNotifier
	Logger   *zap.Logger
}

// preview is an in-flight Preview: the captured transform and the
// elements chained for it.
type preview struct {
	snap  Transform
	chain []*TweenElement
}

// TweenManager owns the ordered tween list of every animated object and
// advances running elements once per frame.
//
// All methods must be called from the frame thread. Completion callbacks
// run inside Update and may call Add, Remove, ReorderingData, Preview, Play
// or Purge; the set of elements advanced by a pass is fixed when the pass
// starts, elements started during a pass first advance on the next pass,
// and stops caused by Remove or Purge take effect when the pass ends.
// Calling Update or Advance from inside a callback is ignored.
type TweenManager struct {
	data     map[*Object][]*TweenElement
	order    []*Object // objects in first-Add order
	previews map[*Object]*preview

	active   []*TweenElement
	pass     []*TweenElement
	deferred []func()
	updating bool

	clock    Clock
	last     time.Time
	ticked   bool
	notifier *ChangeNotifier
	log      *zap.Logger
}

// NewTweenManager creates an empty manager.
func NewTweenManager(cfg TweenManagerConfig) *TweenManager {
	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &TweenManager{
		data:     make(map[*Object][]*TweenElement),
		previews: make(map[*Object]*preview),
		clock:    clock,
		notifier: cfg.Notifier,
		log:      log.Named("tween"),
	}
}

// Add appends a new, unstarted element to the object's list and returns the
// updated list.
func (m *TweenManager) Add(p TweenParams) ([]*TweenElement, error) {
	if p.Object == nil {
		return nil, ErrNilObject
	}
	if !p.Property.valid() {
		return nil, errorf(ErrUnknownProperty, "property %d", p.Property)
	}
	if math.IsNaN(p.DurationSeconds) || p.DurationSeconds < 0 {
		return nil, errorf(ErrInvalidDuration, "%v s", p.DurationSeconds)
	}
	fn, easing, err := lookupEasing(p.Easing)
	if err != nil {
		return nil, err
	}

	return m.insert(p, p.DurationSeconds*1000, fn, easing), nil
}

// insert appends a validated element with a duration already in
// milliseconds. Import uses it directly so persisted durations are not
// converted twice.
func (m *TweenManager) insert(p TweenParams, durationMS float64, fn ease.TweenFunc, easing string) []*TweenElement {
	e := &TweenElement{
		id:         nextTweenID(),
		Name:       p.Name,
		object:     p.Object,
		property:   p.Property,
		to:         p.To,
		durationMS: durationMS,
		easingName: easing,
		easing:     fn,
		enabled:    true,
		mgr:        m,
	}
	if p.From != nil {
		from := *p.From
		e.from = &from
	}

	o := p.Object
	if _, ok := m.data[o]; !ok {
		m.order = append(m.order, o)
	}
	m.data[o] = append(m.data[o], e)
	m.log.Debug("tween added",
		zap.Uint64("id", e.id),
		zap.String("object", o.Name),
		zap.Stringer("property", e.property),
		zap.Float64("durationMS", e.durationMS))
	m.changed(o)
	return m.Elements(o)
}

// Elements returns a copy of the object's ordered tween list. Objects
// without tweens yield an empty list.
func (m *TweenManager) Elements(o *Object) []*TweenElement {
	list := m.data[o]
	out := make([]*TweenElement, len(list))
	copy(out, list)
	return out
}

// Objects returns every object with at least one tween, in the order their
// first tween was added.
func (m *TweenManager) Objects() []*Object {
	return slices.Clone(m.order)
}

// Len returns the number of objects with tweens.
func (m *TweenManager) Len() int {
	return len(m.order)
}

// MakeSequence chains the object's enabled elements in list order, element
// i to element i+1, and returns the chained elements. Links and restore
// hooks left by earlier sequences are cleared first, so a reordered list is
// never played with stale links.
//
// An in-flight preview of o is cancelled first: its elements stop and the
// captured transform is restored.
func (m *TweenManager) MakeSequence(o *Object) ([]*TweenElement, error) {
	m.cancelPreview(o)
	return m.sequence(o)
}

func (m *TweenManager) sequence(o *Object) ([]*TweenElement, error) {
	list := m.data[o]
	if len(list) == 0 {
		return nil, ErrNoTweensForObject
	}
	seq := make([]*TweenElement, 0, len(list))
	for _, e := range list {
		e.Unchain()
		e.sequenceDone = nil
		if e.enabled {
			seq = append(seq, e)
		}
	}
	if len(seq) == 0 {
		return nil, ErrNoTweensForObject
	}
	for i := 0; i < len(seq)-1; i++ {
		seq[i].Chain(seq[i+1])
	}
	return seq, nil
}

// Preview plays the object's sequence and restores the object's transform
// when the last element completes. Previewing again while a preview is in
// flight restarts from the transform captured by the first preview.
//
// A preview that can no longer finish, because an element of its chain was
// removed, disabled or stopped, is cancelled at the end of the next update
// pass and the captured transform is restored.
//
// Objects without tweens are left untouched and ErrNoTweensForObject is
// returned; callers driving UI buttons can ignore it.
func (m *TweenManager) Preview(o *Object) error {
	prev, inFlight := m.previews[o]
	seq, err := m.sequence(o)
	if err != nil {
		return err
	}
	m.stopObject(o)
	st := &preview{snap: o.Transform(), chain: seq}
	if inFlight {
		for _, e := range prev.chain {
			e.Stop()
		}
		st.snap = prev.snap
		o.SetTransform(st.snap)
	}
	m.previews[o] = st
	seq[len(seq)-1].sequenceDone = func() {
		// A hook from a superseded preview leaves the object alone.
		if m.previews[o] != st {
			return
		}
		o.SetTransform(st.snap)
		delete(m.previews, o)
	}
	seq[0].Start()
	m.log.Debug("preview started", zap.String("object", o.Name), zap.Int("elements", len(seq)))
	return nil
}

// Play starts the object's sequence without restoring the transform
// afterwards. An in-flight preview of the object is abandoned where it is.
func (m *TweenManager) Play(o *Object) error {
	seq, err := m.sequence(o)
	if err != nil {
		return err
	}
	m.stopObject(o)
	delete(m.previews, o)
	seq[0].Start()
	m.log.Debug("play started", zap.String("object", o.Name), zap.Int("elements", len(seq)))
	return nil
}

// Previewing reports whether a preview of o has not yet completed.
func (m *TweenManager) Previewing(o *Object) bool {
	_, ok := m.previews[o]
	return ok
}

// ReorderingData moves the element at from to index to, shifting the
// elements in between (remove then insert, not a swap). Existing chain
// links are left as they are: a sequence already playing keeps its old
// order and only the next Preview or Play uses the new one.
func (m *TweenManager) ReorderingData(o *Object, from, to int) error {
	list := m.data[o]
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return errorf(ErrIndexOutOfRange, "reorder %d -> %d of %d", from, to, len(list))
	}
	if from == to {
		return nil
	}
	e := list[from]
	list = slices.Delete(list, from, from+1)
	m.data[o] = slices.Insert(list, to, e)
	m.changed(o)
	return nil
}

// Remove deletes the element at index from the object's list and returns
// the updated list. The removed element stops and never starts again.
func (m *TweenManager) Remove(o *Object, index int) ([]*TweenElement, error) {
	list := m.data[o]
	if index < 0 || index >= len(list) {
		return m.Elements(o), errorf(ErrIndexOutOfRange, "remove %d of %d", index, len(list))
	}
	e := list[index]
	list = slices.Delete(list, index, index+1)
	if len(list) == 0 {
		m.forget(o)
	} else {
		m.data[o] = list
	}
	m.retire(e)
	if !m.updating {
		m.settlePreviews()
	}
	m.changed(o)
	return m.Elements(o), nil
}

// Purge drops the tween lists of o and all of its descendants and stops
// their elements. It is the eager cleanup path for objects leaving the
// scene.
func (m *TweenManager) Purge(o *Object) {
	if o == nil {
		return
	}
	purged := 0
	o.Walk(func(n *Object) bool {
		list, ok := m.data[n]
		if !ok {
			return true
		}
		for _, e := range list {
			m.retire(e)
		}
		m.forget(n)
		delete(m.previews, n)
		purged += len(list)
		return true
	})
	if purged > 0 {
		m.log.Debug("tweens purged", zap.String("object", o.Name), zap.Int("elements", purged))
		m.changed(o)
	}
}

// ObjectRemoved implements RemovalObserver by purging o's tweens.
func (m *TweenManager) ObjectRemoved(o *Object) {
	m.Purge(o)
}

// Update advances running elements by the wall-clock time elapsed since the
// previous call. The first call advances by zero. Call it once per frame.
func (m *TweenManager) Update() {
	if m.updating {
		m.log.Debug("reentrant update ignored")
		return
	}
	now := m.clock.Now()
	var dt time.Duration
	if m.ticked {
		dt = max(now.Sub(m.last), 0)
	}
	m.last = now
	m.ticked = true
	m.Advance(dt)
}

// Advance moves every running element forward by dt. Hosts with a fixed
// tick rate call it directly instead of Update.
func (m *TweenManager) Advance(dt time.Duration) {
	if m.updating {
		m.log.Debug("reentrant advance ignored")
		return
	}
	m.updating = true
	dtMS := float64(dt) / float64(time.Millisecond)

	m.pass = append(m.pass[:0], m.active...)
	for _, e := range m.pass {
		if e.state != tweenRunning || e.fresh {
			continue
		}
		// Lazily drop elements whose object was disposed without going
		// through Scene.RemoveObject.
		if !e.enabled || e.object.IsDisposed() {
			e.state = tweenIdle
			continue
		}
		if e.advance(dtMS) {
			e.complete()
		}
	}
	clear(m.pass)
	m.pass = m.pass[:0]
	m.updating = false

	for len(m.deferred) > 0 {
		fns := m.deferred
		m.deferred = nil
		for _, fn := range fns {
			fn()
		}
	}
	m.compact()
	m.settlePreviews()
}

// Running returns the number of elements currently being advanced.
func (m *TweenManager) Running() int {
	return debugCountRunning(m.active)
}

func (m *TweenManager) activate(e *TweenElement) {
	e.fresh = m.updating
	if !e.queued {
		e.queued = true
		m.active = append(m.active, e)
	}
}

// compact drops elements that are no longer running from the active list.
func (m *TweenManager) compact() {
	kept := m.active[:0]
	for _, e := range m.active {
		e.fresh = false
		if e.state == tweenRunning {
			kept = append(kept, e)
		} else {
			e.queued = false
		}
	}
	clear(m.active[len(kept):])
	m.active = kept
}

// retire marks e as removed and stops it. From inside a completion
// callback the stop is deferred to the end of the current pass, so e is
// still advanced exactly once in that pass.
func (m *TweenManager) retire(e *TweenElement) {
	e.removed = true
	e.sequenceDone = nil
	if m.updating {
		m.deferred = append(m.deferred, e.Stop)
		return
	}
	e.Stop()
}

// cancelPreview stops an in-flight preview of o and restores the transform
// it captured.
func (m *TweenManager) cancelPreview(o *Object) {
	st, ok := m.previews[o]
	if !ok {
		return
	}
	delete(m.previews, o)
	for _, e := range st.chain {
		e.Stop()
		e.sequenceDone = nil
	}
	o.SetTransform(st.snap)
	m.log.Debug("preview cancelled", zap.String("object", o.Name))
}

// settlePreviews cancels every preview with no element of its chain left
// running. Such a preview would otherwise never reach its restore hook.
func (m *TweenManager) settlePreviews() {
	for o, st := range m.previews {
		if !slices.ContainsFunc(st.chain, (*TweenElement).IsRunning) {
			m.cancelPreview(o)
		}
	}
}

// stopObject stops every running element of o.
func (m *TweenManager) stopObject(o *Object) {
	for _, e := range m.data[o] {
		e.Stop()
	}
}

func (m *TweenManager) forget(o *Object) {
	delete(m.data, o)
	m.order = slices.DeleteFunc(m.order, func(x *Object) bool { return x == o })
}

func (m *TweenManager) changed(o *Object) {
	m.notifier.Publish(ChangeEvent{Type: ChangeTweens, Object: o, OK: true})
}
