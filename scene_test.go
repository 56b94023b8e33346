package pallet

import (
	"errors"
	"testing"
)

func newTestScene(t *testing.T) (*Scene, *[]ChangeEvent) {
	t.Helper()
	n := NewChangeNotifier()
	var events []ChangeEvent
	n.Subscribe(func(ev ChangeEvent) { events = append(events, ev) })
	s, err := NewScene(SceneConfig{Notifier: n})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	return s, &events
}

func TestNewScene(t *testing.T) {
	s, _ := newTestScene(t)
	if s.Root() == nil {
		t.Fatal("root should not be nil")
	}
	if s.Root().NumChildren() != 3 {
		t.Errorf("root children = %d, want 3", s.Root().NumChildren())
	}
	for _, c := range []Category{CategoryUser, CategorySystem, CategoryDecorator} {
		sub := s.Subtree(c)
		if sub.Parent != s.Root() {
			t.Errorf("subtree %s not parented to root", c)
		}
		if sub.Category != c {
			t.Errorf("subtree %s category = %s", c, sub.Category)
		}
	}
	if s.History().Cap() != DefaultHistoryCapacity {
		t.Errorf("history cap = %d, want %d", s.History().Cap(), DefaultHistoryCapacity)
	}
}

func TestNewSceneInvalidHistory(t *testing.T) {
	_, err := NewScene(SceneConfig{HistoryCapacity: -1})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestSceneDefaults(t *testing.T) {
	s, _ := newTestScene(t)
	tests := []struct {
		cat  Category
		want Flags
	}{
		{CategorySystem, Flags{}},
		{CategoryDecorator, Flags{Raycastable: true}},
		{CategoryUser, Flags{Searchable: true, Raycastable: true, Browsable: true}},
	}
	for _, tt := range tests {
		if got := s.Defaults(tt.cat); got != tt.want {
			t.Errorf("Defaults(%s) = %+v, want %+v", tt.cat, got, tt.want)
		}
	}
}

func TestSceneConfigDefaultsOverride(t *testing.T) {
	s, err := NewScene(SceneConfig{Defaults: map[Category]Flags{
		CategorySystem: {Searchable: true},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Defaults(CategorySystem); got != (Flags{Searchable: true}) {
		t.Errorf("Defaults(system) = %+v", got)
	}
}

func TestAddObjectInheritsDefaults(t *testing.T) {
	s, _ := newTestScene(t)

	sys := NewObject("camera", KindCamera)
	dec := NewObject("grid", KindHelper)
	usr := NewMesh("cube")
	s.AddObject(sys, Placement{Category: CategorySystem})
	s.AddObject(dec, Placement{Category: CategoryDecorator})
	s.AddObject(usr, Placement{Category: CategoryUser})

	if sys.Searchable || sys.Raycastable || sys.Browsable {
		t.Errorf("system flags = %v/%v/%v, want all false", sys.Searchable, sys.Raycastable, sys.Browsable)
	}
	if dec.Searchable || !dec.Raycastable || dec.Browsable {
		t.Errorf("decorator flags = %v/%v/%v, want only raycastable", dec.Searchable, dec.Raycastable, dec.Browsable)
	}
	if !usr.Searchable || !usr.Raycastable || !usr.Browsable {
		t.Errorf("user flags = %v/%v/%v, want all true", usr.Searchable, usr.Raycastable, usr.Browsable)
	}
	if sys.Parent != s.Subtree(CategorySystem) || dec.Parent != s.Subtree(CategoryDecorator) || usr.Parent != s.Subtree(CategoryUser) {
		t.Error("objects should be inserted under their category subtree")
	}
}

func TestAddObjectOverrides(t *testing.T) {
	s, _ := newTestScene(t)
	o := NewMesh("hidden")
	err := s.AddObject(o, Placement{Category: CategoryUser, Searchable: Off, Browsable: Off})
	if err != nil {
		t.Fatal(err)
	}
	if o.Searchable || !o.Raycastable || o.Browsable {
		t.Errorf("flags = %v/%v/%v, want false/true/false", o.Searchable, o.Raycastable, o.Browsable)
	}

	light := NewObject("sun", KindLight)
	s.AddObject(light, Placement{Category: CategorySystem, Raycastable: On})
	if !light.Raycastable || light.Searchable {
		t.Errorf("system override: raycastable=%v searchable=%v", light.Raycastable, light.Searchable)
	}
}

func TestAddObjectFlagsApplyToDescendants(t *testing.T) {
	s, _ := newTestScene(t)
	group := NewGroup("group")
	child := NewMesh("child")
	child.Category = CategoryDecorator
	group.AddChild(child)

	s.AddObject(group, Placement{Category: CategoryUser, Browsable: Off})
	if child.Browsable || !child.Searchable {
		t.Errorf("child flags = searchable %v browsable %v", child.Searchable, child.Browsable)
	}
	if child.Category != CategoryUser {
		t.Errorf("child category = %s, want user", child.Category)
	}
	if !s.Exists(child) {
		t.Error("descendants should be indexed")
	}
}

func TestAddObjectInvalidCategory(t *testing.T) {
	s, _ := newTestScene(t)
	o := NewMesh("m")
	if err := s.AddObject(o, Placement{Category: Category(42)}); err != nil {
		t.Fatal(err)
	}
	if o.Parent != s.Subtree(CategoryUser) {
		t.Error("unknown category should fall back to the user subtree")
	}
	if o.Category != CategoryUser {
		t.Errorf("category = %s, want user", o.Category)
	}
}

func TestAddObjectMultipleParents(t *testing.T) {
	s, events := newTestScene(t)
	other := NewGroup("other")
	o := NewMesh("m")
	other.AddChild(o)

	err := s.AddObject(o, Placement{Category: CategoryUser})
	if !errors.Is(err, ErrMultipleParents) {
		t.Fatalf("err = %v, want ErrMultipleParents", err)
	}
	if o.Parent != other {
		t.Error("rejected insert must not reparent")
	}
	if s.Exists(o) {
		t.Error("rejected insert must not index")
	}
	if len(*events) != 0 {
		t.Errorf("rejected insert published %d events", len(*events))
	}

	if err := s.AddObject(o, Placement{Category: CategoryUser, Attach: true}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if o.Parent != s.Subtree(CategoryUser) || other.NumChildren() != 0 {
		t.Error("attach should reparent into the user subtree")
	}
}

func TestAddObjectMoveBetweenSubtreesRequiresAttach(t *testing.T) {
	s, _ := newTestScene(t)
	o := NewMesh("m")
	s.AddObject(o, Placement{Category: CategoryUser})
	if err := s.AddObject(o, Placement{Category: CategoryDecorator}); !errors.Is(err, ErrMultipleParents) {
		t.Errorf("err = %v, want ErrMultipleParents", err)
	}
	if err := s.AddObject(o, Placement{Category: CategoryDecorator, Attach: true}); err != nil {
		t.Fatal(err)
	}
	if o.Searchable || o.Browsable || !o.Raycastable {
		t.Error("moved object should take the decorator defaults, not keep its old flags")
	}
}

func TestAddObjectIdempotent(t *testing.T) {
	s, events := newTestScene(t)
	o := NewMesh("m")
	s.AddObject(o, Placement{})
	if err := s.AddObject(o, Placement{}); err != nil {
		t.Fatal(err)
	}
	if s.Subtree(CategoryUser).NumChildren() != 1 {
		t.Errorf("user children = %d, want 1", s.Subtree(CategoryUser).NumChildren())
	}
	if len(*events) != 2 {
		t.Errorf("events = %d, want 2", len(*events))
	}
	for _, ev := range *events {
		if ev.Type != ChangeAdded || ev.Object != o || !ev.OK || ev.Scene != s {
			t.Errorf("unexpected event %+v", ev)
		}
	}
}

func TestAddObjectErrors(t *testing.T) {
	s, _ := newTestScene(t)
	if err := s.AddObject(nil, Placement{}); !errors.Is(err, ErrNilObject) {
		t.Errorf("nil: err = %v", err)
	}
	if err := s.AddObject(s.Root(), Placement{}); !errors.Is(err, ErrCycle) {
		t.Errorf("root: err = %v, want ErrCycle", err)
	}
}

func TestAddObjectRejectsSubtreeRoot(t *testing.T) {
	s, events := newTestScene(t)
	cam := NewObject("cam", KindCamera)
	s.AddObject(cam, Placement{Category: CategorySystem})
	*events = nil

	sys := s.Subtree(CategorySystem)
	if err := s.AddObject(sys, Placement{Category: CategoryUser, Attach: true}); !errors.Is(err, ErrSubtreeRoot) {
		t.Errorf("err = %v, want ErrSubtreeRoot", err)
	}
	if sys.Parent != s.Root() {
		t.Errorf("system subtree parent = %q, want root", sys.Parent.Name)
	}
	if cam.Category != CategorySystem || cam.Searchable {
		t.Errorf("cam category = %v, searchable = %v; system flags should be untouched", cam.Category, cam.Searchable)
	}
	if len(*events) != 0 {
		t.Errorf("rejected insert published %d events", len(*events))
	}
}

func TestAddObjects(t *testing.T) {
	s, _ := newTestScene(t)
	held := NewMesh("held")
	NewGroup("elsewhere").AddChild(held)
	objs := []*Object{NewMesh("a"), held, NewMesh("b")}

	got, err := s.AddObjects(objs, Placement{})
	if !errors.Is(err, ErrMultipleParents) {
		t.Errorf("err = %v, want ErrMultipleParents", err)
	}
	if len(got) != 3 {
		t.Errorf("returned %d objects, want 3", len(got))
	}
	if !s.Exists(objs[0]) || !s.Exists(objs[2]) {
		t.Error("failures should not stop the loop")
	}
}

func TestSetDefaultsAffectsLaterInserts(t *testing.T) {
	s, _ := newTestScene(t)
	before := NewMesh("before")
	s.AddObject(before, Placement{})
	s.SetDefaults(CategoryUser, Flags{Searchable: true})
	after := NewMesh("after")
	s.AddObject(after, Placement{})

	if !before.Browsable {
		t.Error("existing objects keep their flags")
	}
	if after.Browsable || after.Raycastable || !after.Searchable {
		t.Error("new objects use the changed defaults")
	}
}

func TestRemoveObject(t *testing.T) {
	s, events := newTestScene(t)
	o := NewMesh("m")
	child := NewMesh("child")
	o.AddChild(child)
	s.AddObject(o, Placement{})
	*events = nil

	if !s.RemoveObject(o) {
		t.Fatal("RemoveObject should succeed")
	}
	if o.Parent != nil {
		t.Error("removed object should be detached")
	}
	if items := s.History().Items(); len(items) != 1 || items[0] != o {
		t.Errorf("history = %v, want [o]", items)
	}
	// Lazy: still indexed until the next re-index.
	if !s.Exists(o) || !s.Exists(child) {
		t.Error("removed objects stay registered until UpdateMaps")
	}
	s.UpdateMaps()
	if s.Exists(o) || s.Exists(child) {
		t.Error("UpdateMaps should drop unreachable objects")
	}
	if len(*events) != 1 || (*events)[0].Type != ChangeRemoved || !(*events)[0].OK {
		t.Errorf("events = %+v, want one successful removal", *events)
	}
}

func TestRemoveObjectReindexOnNextAdd(t *testing.T) {
	s, _ := newTestScene(t)
	a := NewMesh("a")
	s.AddObject(a, Placement{})
	s.RemoveObject(a)
	s.AddObject(NewMesh("b"), Placement{})
	if s.Exists(a) {
		t.Error("next AddObject should re-index and drop a")
	}
}

func TestRemoveObjectFailures(t *testing.T) {
	s, events := newTestScene(t)
	stranger := NewMesh("stranger")

	cases := []*Object{nil, stranger, s.Root(), s.Subtree(CategoryUser)}
	for _, o := range cases {
		if s.RemoveObject(o) {
			t.Errorf("RemoveObject(%v) should fail", o)
		}
	}
	if len(*events) != len(cases) {
		t.Fatalf("events = %d, want %d", len(*events), len(cases))
	}
	for _, ev := range *events {
		if ev.Type != ChangeRemoved || ev.OK {
			t.Errorf("failed removal event = %+v", ev)
		}
	}
	if s.History().Len() != 0 {
		t.Error("failed removals must not be recorded")
	}
}

func TestRemoveObjectTwice(t *testing.T) {
	s, _ := newTestScene(t)
	o := NewMesh("m")
	s.AddObject(o, Placement{})
	s.RemoveObject(o)
	if s.RemoveObject(o) {
		t.Error("second removal should fail: object is no longer reachable")
	}
}

func TestReAddRemovedObject(t *testing.T) {
	s, _ := newTestScene(t)
	o := NewMesh("m")
	s.AddObject(o, Placement{})
	s.RemoveObject(o)
	if err := s.AddObject(o, Placement{Category: CategoryDecorator}); err != nil {
		t.Fatal(err)
	}
	if !s.Exists(o) || o.Parent != s.Subtree(CategoryDecorator) {
		t.Error("re-added object should be live in the decorator subtree")
	}
}

type recordingObserver struct{ removed []*Object }

func (r *recordingObserver) ObjectRemoved(o *Object) { r.removed = append(r.removed, o) }

func TestRemovalObserver(t *testing.T) {
	s, _ := newTestScene(t)
	obs := &recordingObserver{}
	s.AddRemovalObserver(obs)
	o := NewMesh("m")
	s.AddObject(o, Placement{})
	s.RemoveObject(o)
	s.RemoveObject(o)
	if len(obs.removed) != 1 || obs.removed[0] != o {
		t.Errorf("observer saw %v, want [o]", obs.removed)
	}
}

func TestRegistryConsistentWithTree(t *testing.T) {
	s, _ := newTestScene(t)
	a, b, c := NewMesh("a"), NewGroup("b"), NewMesh("c")
	b.AddChild(c)
	s.AddObject(a, Placement{})
	s.AddObject(b, Placement{Category: CategoryDecorator})
	s.RemoveObject(a)
	s.UpdateMaps()

	reachable := 0
	s.Root().Walk(func(o *Object) bool {
		reachable++
		if !s.Exists(o) {
			t.Errorf("%s reachable but not registered", o.Name)
		}
		return true
	})
	if s.Registry().Len() != reachable {
		t.Errorf("registry len = %d, reachable = %d", s.Registry().Len(), reachable)
	}
	if got, ok := s.Get(c.UUID); !ok || got != c {
		t.Error("Get(c) should resolve")
	}
}

func TestFindObjectsSearchableOnly(t *testing.T) {
	s, _ := newTestScene(t)
	visible := NewMesh("cube")
	hidden := NewMesh("cube")
	cam := NewObject("cube", KindCamera)
	s.AddObject(visible, Placement{})
	s.AddObject(hidden, Placement{Searchable: Off})
	s.AddObject(cam, Placement{Category: CategorySystem})

	got := s.FindObjects(func(o *Object) bool { return o.Name == "cube" })
	if len(got) != 1 || got[0] != visible {
		t.Errorf("FindObjects = %v, want [visible]", got)
	}
	if o, ok := s.FindByName("cube"); !ok || o != visible {
		t.Error("FindByName should return the searchable cube")
	}
	if _, ok := s.FindByName("missing"); ok {
		t.Error("FindByName(missing) should miss")
	}
}

func TestBrowsableAndRaycastable(t *testing.T) {
	s, _ := newTestScene(t)
	a := NewMesh("a")
	b := NewMesh("b")
	grid := NewObject("grid", KindHelper)
	s.AddObject(a, Placement{})
	s.AddObject(b, Placement{Browsable: Off, Raycastable: Off})
	s.AddObject(grid, Placement{Category: CategoryDecorator})

	br := s.Browsable()
	if len(br) != 1 || br[0] != a {
		t.Errorf("Browsable = %v, want [a]", br)
	}
	rc := s.Raycastable()
	if len(rc) != 2 || rc[0] != a || rc[1] != grid {
		t.Errorf("Raycastable = %v, want [a grid]", rc)
	}
}
