package ecs

import (
	"github.com/phanxgames/pallet"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// SceneChangeEventType is the Donburi event type for pallet change events.
// Events are queued; call ProcessEvents once per frame to deliver them.
var SceneChangeEventType = events.NewEventType[pallet.ChangeEvent]()

// ObjectData links an entity to the scene object it mirrors.
type ObjectData struct {
	Object *pallet.Object
}

// ObjectComponent is attached to every mirrored entity.
var ObjectComponent = donburi.NewComponentType[ObjectData]()

// Objects matches every mirrored entity.
var Objects = donburi.NewQuery(filter.Contains(ObjectComponent))

// Bridge keeps a Donburi world in step with a scene.
type Bridge struct {
	world    donburi.World
	entities map[*pallet.Object]donburi.Entity
	cancel   func()
}

// Attach subscribes a new Bridge to n. Objects already in the scene are not
// mirrored until they are added again; use Sync for that.
func Attach(n *pallet.ChangeNotifier, world donburi.World) *Bridge {
	b := &Bridge{
		world:    world,
		entities: make(map[*pallet.Object]donburi.Entity),
	}
	b.cancel = n.Subscribe(b.handle)
	return b
}

// Close unsubscribes the bridge. Mirrored entities are left in the world.
func (b *Bridge) Close() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// Sync mirrors every object of the scene's user, system and decorator
// subtrees that is not mirrored yet.
func (b *Bridge) Sync(s *pallet.Scene) {
	for _, c := range []pallet.Category{pallet.CategoryUser, pallet.CategorySystem, pallet.CategoryDecorator} {
		for _, o := range s.Subtree(c).Children() {
			b.mirror(o)
		}
	}
}

// Entity returns the entity mirroring o.
func (b *Bridge) Entity(o *pallet.Object) (donburi.Entity, bool) {
	e, ok := b.entities[o]
	if ok && !b.world.Valid(e) {
		delete(b.entities, o)
		return 0, false
	}
	return e, ok
}

// ProcessEvents delivers every queued event of the bridge's world. Hosts
// call it once per frame.
func (b *Bridge) ProcessEvents() {
	events.ProcessAllEvents(b.world)
}

// World returns the mirrored world.
func (b *Bridge) World() donburi.World {
	return b.world
}

// Len returns the number of mirrored objects.
func (b *Bridge) Len() int {
	return len(b.entities)
}

func (b *Bridge) handle(ev pallet.ChangeEvent) {
	switch ev.Type {
	case pallet.ChangeAdded:
		b.mirror(ev.Object)
	case pallet.ChangeRemoved:
		if ev.OK {
			b.unmirror(ev.Object)
		}
	}
	SceneChangeEventType.Publish(b.world, ev)
}

func (b *Bridge) mirror(o *pallet.Object) {
	o.Walk(func(n *pallet.Object) bool {
		if _, ok := b.Entity(n); ok {
			return true
		}
		e := b.world.Create(ObjectComponent)
		ObjectComponent.SetValue(b.world.Entry(e), ObjectData{Object: n})
		b.entities[n] = e
		return true
	})
}

func (b *Bridge) unmirror(o *pallet.Object) {
	o.Walk(func(n *pallet.Object) bool {
		if e, ok := b.entities[n]; ok {
			if b.world.Valid(e) {
				b.world.Remove(e)
			}
			delete(b.entities, n)
		}
		return true
	})
}
