package pallet

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// tweenSetPrefix prefixes the name of exported tween-set nodes.
const tweenSetPrefix = "tweenset-"

// TweenRecord is the persisted form of a TweenElement. Element identifiers
// are not persisted; imported elements get fresh ones.
type TweenRecord struct {
	Name       string      `yaml:"name,omitempty"`
	Property   string      `yaml:"property"`
	From       *[3]float64 `yaml:"from,omitempty,flow"`
	To         [3]float64  `yaml:"to,flow"`
	DurationMS float64     `yaml:"durationMs"`
	Easing     string      `yaml:"easing"`
	Enabled    bool        `yaml:"enabled"`
}

// TweenSet is the persisted tween list of one object.
type TweenSet struct {
	ID         string        `yaml:"id"`
	Target     string        `yaml:"target"`
	TargetName string        `yaml:"targetName,omitempty"`
	Tweens     []TweenRecord `yaml:"tweens"`
}

type tweenDocument struct {
	Version int        `yaml:"version"`
	Sets    []TweenSet `yaml:"sets"`
}

const tweenDocumentVersion = 1

// ObjectResolver finds objects by UUID. Scene and Registry implement it.
type ObjectResolver interface {
	Get(id uuid.UUID) (*Object, bool)
}

// ExportSets snapshots every object's tween list in first-Add order.
func (m *TweenManager) ExportSets() []TweenSet {
	sets := make([]TweenSet, 0, len(m.order))
	for _, o := range m.order {
		list := m.data[o]
		set := TweenSet{
			ID:         tweenSetPrefix + o.UUID.String(),
			Target:     o.UUID.String(),
			TargetName: o.Name,
			Tweens:     make([]TweenRecord, 0, len(list)),
		}
		for _, e := range list {
			rec := TweenRecord{
				Name:       e.Name,
				Property:   e.property.String(),
				To:         e.to,
				DurationMS: e.durationMS,
				Easing:     e.easingName,
				Enabled:    e.enabled,
			}
			if e.from != nil {
				from := [3]float64(*e.from)
				rec.From = &from
			}
			set.Tweens = append(set.Tweens, rec)
		}
		sets = append(sets, set)
	}
	return sets
}

// Export returns one detached KindTweenSet object per animated object. Each
// node is named after its set ID and carries a *TweenSet in UserData, so the
// nodes can be attached to a tree and written by a scene exporter.
func (m *TweenManager) Export() []*Object {
	sets := m.ExportSets()
	nodes := make([]*Object, len(sets))
	for i := range sets {
		n := NewObject(sets[i].ID, KindTweenSet)
		n.UserData = &sets[i]
		nodes[i] = n
	}
	return nodes
}

// Import rebuilds tween lists from nodes produced by Export. Nodes that do
// not carry a TweenSet are skipped.
func (m *TweenManager) Import(nodes []*Object, resolve ObjectResolver) error {
	sets := make([]TweenSet, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.UserData.(type) {
		case *TweenSet:
			sets = append(sets, *v)
		case TweenSet:
			sets = append(sets, v)
		}
	}
	return m.ImportSets(sets, resolve)
}

// ImportSets replaces the tween list of every resolved target with the
// set's records. Unresolvable targets and invalid records are reported in
// the joined error; the remaining sets are still imported.
func (m *TweenManager) ImportSets(sets []TweenSet, resolve ObjectResolver) error {
	var errs []error
	for _, set := range sets {
		id, err := uuid.Parse(set.Target)
		if err != nil {
			errs = append(errs, errorf(ErrUnknownTarget, "set %s: %v", set.ID, err))
			continue
		}
		target, ok := resolve.Get(id)
		if !ok {
			errs = append(errs, errorf(ErrUnknownTarget, "set %s: no object %s", set.ID, id))
			continue
		}
		if err := m.importSet(target, set); err != nil {
			errs = append(errs, fmt.Errorf("set %s: %w", set.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (m *TweenManager) importSet(target *Object, set TweenSet) error {
	if list, ok := m.data[target]; ok {
		m.cancelPreview(target)
		for _, e := range list {
			m.retire(e)
		}
		m.forget(target)
	}
	var errs []error
	for i, rec := range set.Tweens {
		prop, err := ParseProperty(rec.Property)
		if err != nil {
			errs = append(errs, fmt.Errorf("tween %d: %w", i, err))
			continue
		}
		if math.IsNaN(rec.DurationMS) || rec.DurationMS < 0 {
			errs = append(errs, fmt.Errorf("tween %d: %w", i, errorf(ErrInvalidDuration, "%v ms", rec.DurationMS)))
			continue
		}
		fn, easing, err := lookupEasing(rec.Easing)
		if err != nil {
			errs = append(errs, fmt.Errorf("tween %d: %w", i, err))
			continue
		}
		p := TweenParams{
			Object:   target,
			Property: prop,
			To:       mgl64.Vec3(rec.To),
			Name:     rec.Name,
		}
		if rec.From != nil {
			from := mgl64.Vec3(*rec.From)
			p.From = &from
		}
		list := m.insert(p, rec.DurationMS, fn, easing)
		list[len(list)-1].enabled = rec.Enabled
	}
	m.log.Debug("tween set imported",
		zap.String("set", set.ID),
		zap.String("object", target.Name),
		zap.Int("elements", len(m.data[target])))
	return errors.Join(errs...)
}

// MarshalTweenSets encodes sets as a YAML document.
func MarshalTweenSets(sets []TweenSet) ([]byte, error) {
	data, err := yaml.Marshal(tweenDocument{Version: tweenDocumentVersion, Sets: sets})
	if err != nil {
		return nil, fmt.Errorf("encode tween sets: %w", err)
	}
	return data, nil
}

// UnmarshalTweenSets decodes a document written by MarshalTweenSets.
func UnmarshalTweenSets(data []byte) ([]TweenSet, error) {
	var doc tweenDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode tween sets: %w", err)
	}
	if doc.Version != tweenDocumentVersion {
		return nil, fmt.Errorf("decode tween sets: unsupported version %d", doc.Version)
	}
	return doc.Sets, nil
}
