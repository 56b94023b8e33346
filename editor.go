package pallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Editor wires a Scene to a TweenManager and applies queued intents once
// per frame. It is the host-side glue a UI or the view package drives.
type Editor struct {
	Scene  *Scene
	Tweens *TweenManager

	// FixedStep, when positive, advances tweens by this amount per Update
	// instead of by wall-clock time.
	FixedStep time.Duration

	// DefaultEasing is used by add intents that name no easing. Empty
	// selects the package DefaultEasing.
	DefaultEasing string

	queue  []Intent
	script *Script
	log    *zap.Logger
}

// NewEditor registers tweens as a removal observer of scene so removed
// objects lose their tweens eagerly.
func NewEditor(scene *Scene, tweens *TweenManager, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	scene.AddRemovalObserver(tweens)
	return &Editor{Scene: scene, Tweens: tweens, log: log.Named("editor")}
}

// Queue schedules in for the next Update.
func (ed *Editor) Queue(in Intent) {
	ed.queue = append(ed.queue, in)
}

// Pending returns the number of queued intents.
func (ed *Editor) Pending() int {
	return len(ed.queue)
}

// SetScript attaches a script stepped at the start of every Update.
func (ed *Editor) SetScript(s *Script) {
	ed.script = s
}

// Script returns the attached script, or nil.
func (ed *Editor) Script() *Script {
	return ed.script
}

// Update steps the script, applies every queued intent and advances the
// tweens. Intent failures are logged and returned joined; they do not stop
// the frame.
func (ed *Editor) Update() error {
	if ed.script != nil {
		ed.script.step(ed)
	}
	var errs []error
	for len(ed.queue) > 0 {
		in := ed.queue[0]
		copy(ed.queue, ed.queue[1:])
		ed.queue = ed.queue[:len(ed.queue)-1]
		if err := ed.Apply(in); err != nil {
			ed.log.Warn("intent failed", zap.String("action", in.Action), zap.String("target", in.Target), zap.Error(err))
			errs = append(errs, err)
		}
	}
	if ed.FixedStep > 0 {
		ed.Tweens.Advance(ed.FixedStep)
	} else {
		ed.Tweens.Update()
	}
	return errors.Join(errs...)
}

// Apply performs in immediately. Preview and Play of an object without
// tweens succeed silently.
func (ed *Editor) Apply(in Intent) error {
	if in.Action == ActionWait {
		return nil
	}
	target, err := ed.resolve(in)
	if err != nil {
		return fmt.Errorf("%s: %w", in.Action, err)
	}
	switch in.Action {
	case ActionAdd:
		prop, err := ParseProperty(in.Property)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		easing := in.Easing
		if easing == "" {
			easing = ed.DefaultEasing
		}
		_, err = ed.Tweens.Add(TweenParams{
			Object:          target,
			Property:        prop,
			To:              mgl64.Vec3(in.To),
			DurationSeconds: in.Seconds,
			Easing:          easing,
			Name:            in.Name,
		})
		return err
	case ActionRemove:
		_, err := ed.Tweens.Remove(target, in.Index)
		return err
	case ActionReorder:
		return ed.Tweens.ReorderingData(target, in.Index, in.Dest)
	case ActionPreview:
		return ignoreNoTweens(ed.Tweens.Preview(target))
	case ActionPlay:
		return ignoreNoTweens(ed.Tweens.Play(target))
	case ActionDelete:
		if !ed.Scene.RemoveObject(target) {
			return fmt.Errorf("delete: %w", errorf(ErrUnknownTarget, "%q is not in the scene", target.Name))
		}
		return nil
	default:
		return errorf(ErrUnknownAction, "%q", in.Action)
	}
}

// resolve finds the intent's object by UUID when one is given, else by
// name among searchable objects.
func (ed *Editor) resolve(in Intent) (*Object, error) {
	if in.ID != "" {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errorf(ErrUnknownTarget, "id %q: %v", in.ID, err)
		}
		o, ok := ed.Scene.Get(id)
		if !ok {
			return nil, errorf(ErrUnknownTarget, "id %s", id)
		}
		return o, nil
	}
	o, ok := ed.Scene.FindByName(in.Target)
	if !ok {
		return nil, errorf(ErrUnknownTarget, "%q", in.Target)
	}
	return o, nil
}

func ignoreNoTweens(err error) error {
	if errors.Is(err, ErrNoTweensForObject) {
		return nil
	}
	return err
}
