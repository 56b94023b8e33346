package pallet

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Intent is one editor action, as issued by a UI or read from a script.
// Fields unused by an action are ignored.
type Intent struct {
	Action   string     `yaml:"action"`
	Target   string     `yaml:"target,omitempty"`   // object name
	ID       string     `yaml:"id,omitempty"`       // object UUID; wins over Target
	Property string     `yaml:"property,omitempty"` // add
	To       [3]float64 `yaml:"to,omitempty,flow"`  // add
	Seconds  float64    `yaml:"seconds,omitempty"`  // add
	Easing   string     `yaml:"easing,omitempty"`   // add
	Name     string     `yaml:"name,omitempty"`     // add
	Index    int        `yaml:"index,omitempty"`    // remove, reorder
	Dest     int        `yaml:"dest,omitempty"`     // reorder
	Frames   int        `yaml:"frames,omitempty"`   // wait
}

// Intent actions.
const (
	ActionAdd     = "add"
	ActionRemove  = "remove"
	ActionReorder = "reorder"
	ActionPreview = "preview"
	ActionPlay    = "play"
	ActionDelete  = "delete" // remove the target object from the scene
	ActionWait    = "wait"
)

// scriptDocument is the top-level structure of a script. Scripts are YAML;
// JSON documents parse as well.
type scriptDocument struct {
	Steps []Intent `yaml:"steps"`
}

// Script replays intents across frames for unattended demos and tests.
// Attach it to an Editor with SetScript.
type Script struct {
	steps     []Intent
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a script and returns it ready to be attached.
func LoadScript(data []byte) (*Script, error) {
	var doc scriptDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	return &Script{steps: doc.Steps}, nil
}

// Done reports whether all steps have been issued.
func (r *Script) Done() bool {
	return r.done
}

// step advances the script by one frame. Called from Editor.Update.
func (r *Script) step(ed *Editor) {
	if r.done {
		return
	}
	// Wait for queued intents to drain before advancing.
	if len(ed.queue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	if st.Action == ActionWait {
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	} else {
		ed.Queue(st)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
