package ecs

import (
	"testing"

	"github.com/phanxgames/pallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

func newScene(t *testing.T) (*pallet.Scene, *pallet.ChangeNotifier) {
	t.Helper()
	n := pallet.NewChangeNotifier()
	s, err := pallet.NewScene(pallet.SceneConfig{Notifier: n})
	require.NoError(t, err)
	return s, n
}

func TestBridgeMirrorsAddedObjects(t *testing.T) {
	s, n := newScene(t)
	world := donburi.NewWorld()
	b := Attach(n, world)
	defer b.Close()

	group := pallet.NewGroup("group")
	child := pallet.NewMesh("child")
	group.AddChild(child)
	require.NoError(t, s.AddObject(group, pallet.Placement{}))

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 2, Objects.Count(world))

	e, ok := b.Entity(child)
	require.True(t, ok)
	data := ObjectComponent.Get(world.Entry(e))
	assert.Same(t, child, data.Object)
}

func TestBridgeRemovesEntities(t *testing.T) {
	s, n := newScene(t)
	world := donburi.NewWorld()
	b := Attach(n, world)

	cube := pallet.NewMesh("cube")
	require.NoError(t, s.AddObject(cube, pallet.Placement{}))
	e, _ := b.Entity(cube)

	assert.False(t, s.RemoveObject(pallet.NewMesh("stranger")))
	assert.Equal(t, 1, b.Len(), "failed removal keeps entities")

	assert.True(t, s.RemoveObject(cube))
	assert.Equal(t, 0, b.Len())
	assert.False(t, world.Valid(e))
}

func TestBridgePublishesEvents(t *testing.T) {
	s, n := newScene(t)
	world := donburi.NewWorld()
	b := Attach(n, world)
	defer b.Close()

	var received []pallet.ChangeEvent
	SceneChangeEventType.Subscribe(world, func(w donburi.World, ev pallet.ChangeEvent) {
		received = append(received, ev)
	})

	cube := pallet.NewMesh("cube")
	require.NoError(t, s.AddObject(cube, pallet.Placement{}))
	s.RemoveObject(cube)

	// Events are queued until processed.
	assert.Empty(t, received)
	SceneChangeEventType.ProcessEvents(world)

	require.Len(t, received, 2)
	assert.Equal(t, pallet.ChangeAdded, received[0].Type)
	assert.Equal(t, pallet.ChangeRemoved, received[1].Type)
	assert.True(t, received[1].OK)
}

func TestBridgeProcessEvents(t *testing.T) {
	s, n := newScene(t)
	b := Attach(n, donburi.NewWorld())
	defer b.Close()

	count := 0
	SceneChangeEventType.Subscribe(b.World(), func(w donburi.World, ev pallet.ChangeEvent) {
		count++
	})
	require.NoError(t, s.AddObject(pallet.NewMesh("cube"), pallet.Placement{}))
	assert.Equal(t, 0, count)
	b.ProcessEvents()
	assert.Equal(t, 1, count)
	b.ProcessEvents()
	assert.Equal(t, 1, count)
}

func TestBridgeClose(t *testing.T) {
	s, n := newScene(t)
	world := donburi.NewWorld()
	b := Attach(n, world)
	b.Close()
	b.Close()

	require.NoError(t, s.AddObject(pallet.NewMesh("cube"), pallet.Placement{}))
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, n.Len())
}

func TestBridgeSync(t *testing.T) {
	s, n := newScene(t)
	require.NoError(t, s.AddObject(pallet.NewMesh("early"), pallet.Placement{}))
	require.NoError(t, s.AddObject(pallet.NewObject("sun", pallet.KindLight), pallet.Placement{Category: pallet.CategorySystem}))

	world := donburi.NewWorld()
	b := Attach(n, world)
	defer b.Close()
	assert.Equal(t, 0, b.Len())

	b.Sync(s)
	assert.Equal(t, 2, b.Len())
	b.Sync(s)
	assert.Equal(t, 2, Objects.Count(world))
}
