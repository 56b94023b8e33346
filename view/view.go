// Package view hosts a pallet editor in an ebiten window: it runs the frame
// loop, maps keys to editor intents and draws a top-down sketch of the scene.
package view

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/phanxgames/pallet"
)

// RunConfig configures Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	TPS     int
	ShowFPS bool
	Logger  *zap.Logger

	// ScreenshotDir receives F12 captures. Empty selects "screenshots".
	ScreenshotDir string

	// OnFrame runs once per tick after the editor update.
	OnFrame func()
}

// Run opens a window and drives ed until the window is closed.
func Run(ed *pallet.Editor, cfg RunConfig) error {
	g := newGame(ed, cfg)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run view: %w", err)
	}
	return nil
}

var (
	colorBackground = color.RGBA{0x1b, 0x1d, 0x22, 0xff}
	colorGrid       = color.RGBA{0x2a, 0x2d, 0x34, 0xff}
	colorUser       = color.RGBA{0x6c, 0xb4, 0xee, 0xff}
	colorSystem     = color.RGBA{0xe5, 0xc0, 0x7b, 0xff}
	colorDecorator  = color.RGBA{0x5c, 0x63, 0x70, 0xff}
	colorSelected   = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

type game struct {
	ed       *pallet.Editor
	cam      *Camera
	fps      fpsOverlay
	selected *pallet.Object
	shots    []string
	cfg      RunConfig
	log      *zap.Logger
}

func newGame(ed *pallet.Editor, cfg RunConfig) *game {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &game{
		ed:  ed,
		cam: NewCamera(cfg.Width, cfg.Height),
		cfg: cfg,
		log: log.Named("view"),
	}
}

func (g *game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	g.handleInput()
	if err := g.ed.Update(); err != nil {
		g.log.Debug("frame intents failed", zap.Error(err))
	}
	if g.cfg.OnFrame != nil {
		g.cfg.OnFrame()
	}
	g.dropStaleSelection()
	g.cam.update(float32(dt))
	if g.cfg.ShowFPS {
		g.fps.update(dt)
	}
	return nil
}

func (g *game) handleInput() {
	browsable := g.ed.Scene.Browsable()
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		step := 1
		if shift {
			step = -1
		}
		g.selected = nextSelection(browsable, g.selected, step)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.selected = g.pick(float64(x), float64(y))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		label := "scene"
		if g.selected != nil {
			label = g.selected.Name
		}
		g.capture(label)
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.ZoomBy(1 + wy*0.1)
	}

	const panSpeed = 8
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
		g.cam.Pan(-panSpeed, 0)
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
		g.cam.Pan(panSpeed, 0)
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		g.cam.Pan(0, -panSpeed)
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		g.cam.Pan(0, panSpeed)
	}

	if g.selected == nil {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.ed.Queue(g.intent(pallet.ActionPreview))
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.ed.Queue(g.intent(pallet.ActionPlay))
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		g.ed.Queue(g.intent(pallet.ActionDelete))
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.cam.ScrollTo(g.selected.WorldPosition(), 0.4, nil)
	}
}

// dropStaleSelection clears a selection that left the scene. The registry
// is purged lazily, so reachability is checked instead of Exists.
func (g *game) dropStaleSelection() {
	if g.selected != nil && g.selected.Root() != g.ed.Scene.Root() {
		g.selected = nil
	}
}

// intent targets the selection by UUID; names need not be unique.
func (g *game) intent(action string) pallet.Intent {
	return pallet.Intent{Action: action, Target: g.selected.Name, ID: g.selected.UUID.String()}
}

// pick returns the raycastable object whose footprint contains the screen
// point, preferring the last drawn.
func (g *game) pick(sx, sy float64) *pallet.Object {
	objs := g.ed.Scene.Raycastable()
	for i := len(objs) - 1; i >= 0; i-- {
		if footprint(g.cam, objs[i]).contains(sx, sy) {
			return objs[i]
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	g.drawGrid(screen)

	s := g.ed.Scene
	for _, c := range []pallet.Category{pallet.CategoryDecorator, pallet.CategorySystem, pallet.CategoryUser} {
		for _, child := range s.Subtree(c).Children() {
			child.Walk(func(o *pallet.Object) bool {
				g.drawObject(screen, o)
				return true
			})
		}
	}

	ebitenutil.DebugPrintAt(screen, g.status(), 4, 4)
	ebitenutil.DebugPrintAt(screen, "Tab select  P preview  Enter play  Del delete  F focus  F12 capture  arrows/wheel camera", 4, screen.Bounds().Dy()-16)
	if g.cfg.ShowFPS {
		g.fps.draw(screen)
	}
	g.flushScreenshots(screen)
}

func (g *game) drawGrid(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	tl := g.cam.Unproject(0, 0)
	br := g.cam.Unproject(w, h)
	for x := float64(int(tl[0])); x <= br[0]; x++ {
		sx, _ := g.cam.Project(mgl64.Vec3{x, 0, 0})
		vector.StrokeLine(screen, float32(sx), 0, float32(sx), float32(h), 1, colorGrid, false)
	}
	for z := float64(int(tl[2])); z <= br[2]; z++ {
		_, sy := g.cam.Project(mgl64.Vec3{0, 0, z})
		vector.StrokeLine(screen, 0, float32(sy), float32(w), float32(sy), 1, colorGrid, false)
	}
}

func (g *game) drawObject(screen *ebiten.Image, o *pallet.Object) {
	r := footprint(g.cam, o)
	clr := categoryColor(o.Category)
	if o.Kind == pallet.KindGroup {
		vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1, clr, false)
	} else {
		vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), clr, false)
	}
	if o == g.selected {
		vector.StrokeRect(screen, float32(r.x-2), float32(r.y-2), float32(r.w+4), float32(r.h+4), 2, colorSelected, false)
	}
	if o.Browsable {
		ebitenutil.DebugPrintAt(screen, o.Name, int(r.x), int(r.y+r.h)+2)
	}
}

func (g *game) status() string {
	s := g.ed.Scene
	line := fmt.Sprintf("objects: %d  deleted: %d  running tweens: %d",
		s.Registry().Len(), s.History().Len(), g.ed.Tweens.Running())
	if g.selected == nil {
		return line + "\nselected: none"
	}
	o := g.selected
	state := ""
	if g.ed.Tweens.Previewing(o) {
		state = " (previewing)"
	}
	return fmt.Sprintf("%s\nselected: %s [%s] tweens: %d%s", line, o.Name, o.Kind,
		len(g.ed.Tweens.Elements(o)), state)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.cam.Width, g.cam.Height = float64(outsideWidth), float64(outsideHeight)
	return outsideWidth, outsideHeight
}

type screenRect struct{ x, y, w, h float64 }

func (r screenRect) contains(x, y float64) bool {
	return x >= r.x && x <= r.x+r.w && y >= r.y && y <= r.y+r.h
}

// footprint is the screen rectangle of o's unit square on the ground plane,
// sized by its world-space X and Z scale.
func footprint(cam *Camera, o *pallet.Object) screenRect {
	m := o.WorldMatrix()
	sizeX := m.Col(0).Vec3().Len()
	sizeZ := m.Col(2).Vec3().Len()
	cx, cy := cam.Project(o.WorldPosition())
	w := max(sizeX*cam.Zoom, 4)
	h := max(sizeZ*cam.Zoom, 4)
	return screenRect{x: cx - w/2, y: cy - h/2, w: w, h: h}
}

func categoryColor(c pallet.Category) color.RGBA {
	switch c {
	case pallet.CategorySystem:
		return colorSystem
	case pallet.CategoryDecorator:
		return colorDecorator
	default:
		return colorUser
	}
}

// nextSelection steps through objs from cur. A nil or missing cur selects
// the first (step > 0) or last (step < 0) object.
func nextSelection(objs []*pallet.Object, cur *pallet.Object, step int) *pallet.Object {
	if len(objs) == 0 {
		return nil
	}
	i := slices.Index(objs, cur)
	if i < 0 {
		if step < 0 {
			return objs[len(objs)-1]
		}
		return objs[0]
	}
	n := len(objs)
	return objs[((i+step)%n+n)%n]
}
