// Package pallet is the scene and animation core of a 3D scene editor.
//
// It tracks the objects of an editable scene, indexes them by identity and
// kind, and drives timed property animations (tweens) that the editor can
// preview, play back, reorder and persist. Rendering, widgets and file
// formats live outside this package; a host only has to advance time once
// per frame.
//
// # Scene graph
//
// Every element is an [Object]. A [Scene] owns three subtrees, one per
// [Category]: system objects (cameras, lights), decorator objects (gizmos,
// grids) and user objects. [Scene.AddObject] routes an object into the
// right subtree and assigns its discoverability flags:
//
//	scene, _ := pallet.NewScene(pallet.SceneConfig{})
//	cube := pallet.NewMesh("cube")
//	scene.AddObject(cube, pallet.Placement{Category: pallet.CategoryUser})
//
// Removal is recorded in a bounded [DeletionHistory]. The identity index is
// refreshed lazily: a removed object stays registered until the next add or
// [Scene.UpdateMaps].
//
// # Tweens
//
// A [TweenManager] keeps an ordered list of [TweenElement] values per
// object. Elements interpolate position, rotation or scale with an easing
// curve from [gween]:
//
//	tweens := pallet.NewTweenManager(pallet.TweenManagerConfig{})
//	tweens.Add(pallet.TweenParams{
//		Object:          cube,
//		Property:        pallet.PropertyPosition,
//		To:              mgl64.Vec3{10, 0, 0},
//		DurationSeconds: 1.5,
//		Easing:          "outQuad",
//	})
//	tweens.Preview(cube) // plays the list in order, then restores the transform
//
// The host calls [TweenManager.Update] once per frame. Completion callbacks
// may add, remove or reorder tweens; such changes never disturb the pass
// that is running.
//
// # Notifications
//
// Structural and tween-list changes are published on a [ChangeNotifier]
// constructed by the host and shared with UI consumers. The ecs subpackage
// forwards them into a [Donburi] world.
//
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package pallet
