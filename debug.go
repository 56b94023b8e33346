package pallet

import "go.uber.org/zap"

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(log *zap.Logger, o *Object) {
	depth := 0
	for p := o; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		log.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth),
			zap.String("object", o.Name))
	}
}

// debugCheckChildCount warns if an object has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(log *zap.Logger, o *Object) {
	if len(o.children) > debugMaxChildCount {
		log.Warn("child count exceeds threshold",
			zap.String("object", o.Name),
			zap.Int("children", len(o.children)),
			zap.Int("threshold", debugMaxChildCount))
	}
}

// debugCountRunning reports how many of elems are running.
func debugCountRunning(elems []*TweenElement) int {
	n := 0
	for _, e := range elems {
		if e.state == tweenRunning {
			n++
		}
	}
	return n
}
