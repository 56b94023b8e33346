package pallet

import (
	"maps"
	"slices"
	"strings"

	"github.com/tanema/gween/ease"
)

// DefaultEasing is used when TweenParams.Easing is empty.
const DefaultEasing = "linear"

// easings maps the persisted easing identifiers to gween curves. Keys are
// lower case; lookups are case-insensitive.
var easings = map[string]ease.TweenFunc{
	"linear": ease.Linear,

	"inquad":    ease.InQuad,
	"outquad":   ease.OutQuad,
	"inoutquad": ease.InOutQuad,

	"incubic":    ease.InCubic,
	"outcubic":   ease.OutCubic,
	"inoutcubic": ease.InOutCubic,

	"inquart":    ease.InQuart,
	"outquart":   ease.OutQuart,
	"inoutquart": ease.InOutQuart,

	"inquint":    ease.InQuint,
	"outquint":   ease.OutQuint,
	"inoutquint": ease.InOutQuint,

	"insine":    ease.InSine,
	"outsine":   ease.OutSine,
	"inoutsine": ease.InOutSine,

	"inexpo":    ease.InExpo,
	"outexpo":   ease.OutExpo,
	"inoutexpo": ease.InOutExpo,

	"incirc":    ease.InCirc,
	"outcirc":   ease.OutCirc,
	"inoutcirc": ease.InOutCirc,

	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,

	"inback":    ease.InBack,
	"outback":   ease.OutBack,
	"inoutback": ease.InOutBack,

	"inbounce":    ease.InBounce,
	"outbounce":   ease.OutBounce,
	"inoutbounce": ease.InOutBounce,
}

// lookupEasing resolves an easing identifier. The returned name is the
// canonical (lower case) identifier stored on the element and exported.
func lookupEasing(name string) (ease.TweenFunc, string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultEasing
	}
	fn, ok := easings[key]
	if !ok {
		return nil, "", errorf(ErrUnknownEasing, "%q", name)
	}
	return fn, key, nil
}

// Easings returns the supported easing identifiers, sorted.
func Easings() []string {
	return slices.Sorted(maps.Keys(easings))
}
