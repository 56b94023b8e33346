// Package ecs mirrors a pallet scene into a [Donburi] world.
//
// [Attach] subscribes a [Bridge] to a scene's change notifier. Every change
// is re-published as a typed Donburi event on [SceneChangeEventType], and
// each live scene object is mirrored by an entity carrying an
// [ObjectComponent], so ECS systems can query the editor's objects without
// walking the tree.
//
// Usage:
//
//	world := donburi.NewWorld()
//	bridge := ecs.Attach(notifier, world)
//	defer bridge.Close()
//
//	ecs.SceneChangeEventType.Subscribe(world, onChange)
//	// once per frame:
//	ecs.SceneChangeEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
