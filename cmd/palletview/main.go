// Command palletview opens an editor window on a small demo scene.
//
// Usage:
//
//	palletview [-config path] [-script path] [-tweens path] [-save path]
//
// The config path defaults to $PALLET_CONFIG or config/pallet.toml; a
// missing file falls back to built-in defaults.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phanxgames/pallet"
	"github.com/phanxgames/pallet/config"
	"github.com/phanxgames/pallet/ecs"
	"github.com/phanxgames/pallet/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaultPath := "config/pallet.toml"
	if p := os.Getenv("PALLET_CONFIG"); p != "" {
		defaultPath = p
	}
	cfgPath := flag.String("config", defaultPath, "TOML configuration file")
	scriptPath := flag.String("script", "", "YAML action script to replay")
	tweensPath := flag.String("tweens", "", "YAML tween sets to load into the demo scene")
	savePath := flag.String("save", "", "write tween sets here when the window closes")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log.Info("config loaded", zap.String("path", *cfgPath))

	// 3. Build the editor
	notifier := pallet.NewChangeNotifier()
	scene, err := pallet.NewScene(cfg.SceneConfig(notifier, log))
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	tweens := pallet.NewTweenManager(pallet.TweenManagerConfig{Notifier: notifier, Logger: log})
	ed := pallet.NewEditor(scene, tweens, log)
	ed.FixedStep = cfg.Tween.FixedStep
	ed.DefaultEasing = cfg.Tween.DefaultEasing

	if err := populate(scene, tweens); err != nil {
		return fmt.Errorf("build demo scene: %w", err)
	}
	if *tweensPath != "" {
		if err := loadTweens(*tweensPath, tweens, scene); err != nil {
			return err
		}
	}
	if *scriptPath != "" {
		data, err := os.ReadFile(*scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		script, err := pallet.LoadScript(data)
		if err != nil {
			return err
		}
		ed.SetScript(script)
	}
	bridge := attachWorld(notifier, scene, log)
	defer bridge.Close()
	log.Info("scene ready",
		zap.Int("objects", scene.Registry().Len()),
		zap.Int("animated", tweens.Len()),
		zap.Int("entities", bridge.Len()))

	// 4. Run
	err = view.Run(ed, view.RunConfig{
		Title:   cfg.View.Title,
		Width:   cfg.View.Width,
		Height:  cfg.View.Height,
		TPS:     cfg.View.TPS,
		ShowFPS: cfg.View.ShowFPS,
		Logger:  log,

		ScreenshotDir: cfg.View.ScreenshotDir,
		OnFrame:       bridge.ProcessEvents,
	})
	if err != nil {
		return err
	}

	if *savePath != "" {
		data, err := pallet.MarshalTweenSets(tweens.ExportSets())
		if err != nil {
			return err
		}
		if err := os.WriteFile(*savePath, data, 0o644); err != nil {
			return fmt.Errorf("save tweens: %w", err)
		}
		log.Info("tweens saved", zap.String("path", *savePath))
	}
	return nil
}

// attachWorld mirrors the scene into a fresh donburi world and logs the
// change events it delivers.
func attachWorld(n *pallet.ChangeNotifier, scene *pallet.Scene, log *zap.Logger) *ecs.Bridge {
	bridge := ecs.Attach(n, donburi.NewWorld())
	bridge.Sync(scene)
	ecs.SceneChangeEventType.Subscribe(bridge.World(), func(w donburi.World, ev pallet.ChangeEvent) {
		if ev.Object == nil {
			return
		}
		log.Debug("scene change",
			zap.Stringer("type", ev.Type),
			zap.String("object", ev.Object.Name),
			zap.Bool("ok", ev.OK),
			zap.Int("entities", ecs.Objects.Count(w)))
	})
	return bridge
}

func loadTweens(path string, tweens *pallet.TweenManager, scene *pallet.Scene) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tweens: %w", err)
	}
	sets, err := pallet.UnmarshalTweenSets(data)
	if err != nil {
		return err
	}
	if err := tweens.ImportSets(sets, scene); err != nil {
		return fmt.Errorf("import tweens: %w", err)
	}
	return nil
}

// demoObject gives demo objects stable UUIDs so saved tween sets resolve on
// the next run.
func demoObject(name string, kind pallet.Kind) *pallet.Object {
	o := pallet.NewObject(name, kind)
	o.UUID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("pallet/demo/"+name))
	return o
}

func populate(scene *pallet.Scene, tweens *pallet.TweenManager) error {
	camera := demoObject("camera", pallet.KindCamera)
	camera.SetPosition(0, 8, 8)
	sun := demoObject("sun", pallet.KindLight)
	sun.SetPosition(-6, 10, -6)
	grid := demoObject("grid", pallet.KindHelper)
	grid.SetScale(0.2, 1, 0.2)

	cube := demoObject("cube", pallet.KindMesh)
	cube.SetPosition(-3, 0, 0)
	pillar := demoObject("pillar", pallet.KindMesh)
	pillar.SetPosition(3, 0, 0)
	pillar.SetScale(1, 3, 1)
	rig := demoObject("rig", pallet.KindGroup)
	rig.SetPosition(0, 0, 3)
	rig.SetScale(4, 1, 1)
	arm := demoObject("arm", pallet.KindMesh)
	arm.SetScale(0.25, 1, 0.5)
	rig.AddChild(arm)

	_, err := scene.AddObjects([]*pallet.Object{camera, sun}, pallet.Placement{Category: pallet.CategorySystem})
	err = errors.Join(err,
		scene.AddObject(grid, pallet.Placement{Category: pallet.CategoryDecorator}),
		scene.AddObject(cube, pallet.Placement{}),
		scene.AddObject(pillar, pallet.Placement{}),
		scene.AddObject(rig, pallet.Placement{}),
	)
	if err != nil {
		return err
	}

	steps := []pallet.TweenParams{
		{Object: cube, Property: pallet.PropertyPosition, To: mgl64.Vec3{-3, 0, -3}, DurationSeconds: 0.6, Easing: "outQuad", Name: "back"},
		{Object: cube, Property: pallet.PropertyScale, To: mgl64.Vec3{2, 2, 2}, DurationSeconds: 0.4, Easing: "outBack", Name: "grow"},
		{Object: cube, Property: pallet.PropertyPosition, To: mgl64.Vec3{-3, 0, 0}, DurationSeconds: 0.8, Easing: "outBounce", Name: "return"},
		{Object: pillar, Property: pallet.PropertyRotation, To: mgl64.Vec3{0, math.Pi, 0}, DurationSeconds: 1.2, Easing: "inOutSine", Name: "turn"},
		{Object: arm, Property: pallet.PropertyPosition, To: mgl64.Vec3{0.4, 0, 0}, DurationSeconds: 1, Easing: "inOutCubic", Name: "slide"},
		{Object: arm, Property: pallet.PropertyPosition, To: mgl64.Vec3{-0.4, 0, 0}, DurationSeconds: 1, Easing: "inOutCubic", Name: "slide back"},
	}
	for _, p := range steps {
		if _, err := tweens.Add(p); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
