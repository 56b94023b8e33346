package pallet

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is; returned errors usually
// wrap one of these with call-site detail.
var (
	// ErrInvalidConfiguration reports a component constructed with unusable
	// settings, such as a non-positive history capacity.
	ErrInvalidConfiguration = errors.New("pallet: invalid configuration")

	// ErrIndexOutOfRange reports a reorder or remove outside an object's
	// tween list. No mutation is applied.
	ErrIndexOutOfRange = errors.New("pallet: index out of range")

	// ErrNoTweensForObject reports that an object has nothing to sequence.
	// Preview and Play treat it as a benign no-op.
	ErrNoTweensForObject = errors.New("pallet: no tweens for object")

	// ErrMultipleParents reports a non-attach insert of an object that is
	// already parented elsewhere.
	ErrMultipleParents = errors.New("pallet: object already has a parent")

	// ErrSubtreeRoot reports an attempt to insert one of the scene's own
	// category subtree roots.
	ErrSubtreeRoot = errors.New("pallet: object is a scene subtree root")

	ErrNilObject       = errors.New("pallet: nil object")
	ErrCycle           = errors.New("pallet: insert would create a cycle")
	ErrUnknownProperty = errors.New("pallet: unknown property")
	ErrUnknownEasing   = errors.New("pallet: unknown easing")
	ErrInvalidDuration = errors.New("pallet: invalid duration")
	ErrUnknownTarget   = errors.New("pallet: unknown target")
	ErrUnknownAction   = errors.New("pallet: unknown action")
)

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
