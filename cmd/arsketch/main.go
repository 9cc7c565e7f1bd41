package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"arsketch/internal/commands"
	"arsketch/internal/config"
	"arsketch/internal/console"
	"arsketch/internal/debug"
	"arsketch/internal/frame"
	"arsketch/internal/graphics"
	"arsketch/internal/logger"
	"arsketch/internal/xr"
	"arsketch/internal/xr/desktop"
)

const eyeHeight = 1.6

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	fullscreen := flag.Bool("fullscreen", false, "open a fullscreen window")
	flag.Parse()

	cfg, cfgErr := config.Load(*configPath)
	log, err := logger.New(logger.Options{Level: cfg.Debug.LogLevel, FilePath: cfg.Debug.LogFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	if cfgErr != nil {
		log.Warn("config unusable, running with defaults", zap.String("path", *configPath), zap.Error(cfgErr))
	}

	renderer := graphics.NewRenderer()
	renderer.GridVisible = cfg.Debug.GridVisible
	renderer.GridHeight = cfg.Floor.Height
	renderer.GridExtent = int(cfg.Floor.Size / 2)

	app, err := frame.New(cfg, renderer, log.Logger)
	if err != nil {
		log.Fatal("build app", zap.Error(err))
	}

	modes := make([]xr.Modality, cfg.Controllers.Count)
	for i := range modes {
		modes[i] = cfg.Controllers.Modality(i)
	}
	host := desktop.New(cfg.Floor.Height, eyeHeight, modes, log.Logger)

	dbg := debug.New()
	dbg.ShowFPS = cfg.Debug.ShowFPS
	dbg.ShowMemAlloc = cfg.Debug.ShowMemAlloc
	dbg.ShowStats = true

	reg := commands.NewRegistry()
	registerCommands(reg, &cfg, *configPath, app, host, dbg, renderer, log)
	con := console.New(log, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pending xr.Frame
	update := func() {
		con.Update()
		pending = host.Update(app, !con.IsOpen())
	}
	draw := func() {
		app.Frame(ctx, pending)
		host.Draw()
		con.Draw()
		dbg.Draw(app.Snapshot().Lines())
	}

	log.Info("starting", zap.String("config", *configPath), zap.Int("controllers", cfg.Controllers.Count))
	host.Start(app)
	graphics.Run(graphics.Window{
		Width:      1280,
		Height:     720,
		Title:      "arsketch",
		Fullscreen: *fullscreen,
		TargetFPS:  60,
	}, update, draw)

	host.End(app)
	renderer.Close()
	log.Info("stopped")
}

func registerCommands(reg *commands.Registry, cfg *config.Config, path string, app *frame.App, host *desktop.Host, dbg *debug.Debug, renderer *graphics.Renderer, log *logger.Logger) {
	toggle := func(name, usage string, set func(bool)) {
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		show := fs.Bool("show", false, "show")
		hide := fs.Bool("hide", false, "hide")
		reg.Register(name, usage, fs, func() error {
			switch {
			case *show && *hide:
				return fmt.Errorf("use one of --show or --hide")
			case *show:
				set(true)
			case *hide:
				set(false)
			default:
				return fmt.Errorf("use --show or --hide")
			}
			return nil
		})
	}
	toggle("fps", "--show|--hide", func(v bool) { dbg.ShowFPS, cfg.Debug.ShowFPS = v, v })
	toggle("memalloc", "--show|--hide", func(v bool) { dbg.ShowMemAlloc, cfg.Debug.ShowMemAlloc = v, v })
	toggle("grid", "--show|--hide", func(v bool) { renderer.GridVisible, cfg.Debug.GridVisible = v, v })
	toggle("stats", "--show|--hide", func(v bool) { dbg.ShowStats = v })

	gravity := flag.NewFlagSet("gravity", flag.ContinueOnError)
	gy := gravity.Float64("y", math.NaN(), "vertical gravity in m/s²")
	reg.Register("gravity", "-y <m/s²>", gravity, func() error {
		if math.IsNaN(*gy) {
			return fmt.Errorf("missing -y")
		}
		cfg.Physics.Gravity = [3]float32{0, float32(*gy), 0}
		app.World.SetGravity(mgl32.Vec3(cfg.Physics.Gravity))
		log.Info("gravity set", zap.Float64("y", *gy))
		return nil
	})

	capFS := flag.NewFlagSet("cap", flag.ContinueOnError)
	n := capFS.Int("n", -1, "maximum number of entities, 0 for unlimited")
	reg.Register("cap", "-n <N> (0 = unlimited)", capFS, func() error {
		if *n < 0 {
			return fmt.Errorf("use -n <N> with N >= 0")
		}
		cfg.Entity.Cap = *n
		app.Registry.SetCap(*n)
		log.Info("entity cap set", zap.Int("cap", *n), zap.Stringer("state", app.Registry.State()))
		return nil
	})

	reg.Register("save", "write the current settings to the config file", flag.NewFlagSet("save", flag.ContinueOnError), func() error {
		if err := config.Save(path, *cfg); err != nil {
			return err
		}
		log.Info("config saved", zap.String("path", path))
		return nil
	})

	session := flag.NewFlagSet("session", flag.ContinueOnError)
	end := session.Bool("end", false, "end the session")
	start := session.Bool("start", false, "start a new session")
	reg.Register("session", "--end|--start", session, func() error {
		switch {
		case *end && *start:
			return fmt.Errorf("use one of --end or --start")
		case *end:
			host.End(app)
		case *start:
			host.Start(app)
		default:
			return fmt.Errorf("use --end or --start")
		}
		return nil
	})

	levelFS := flag.NewFlagSet("loglevel", flag.ContinueOnError)
	level := levelFS.String("level", "", "debug, info, warn or error")
	reg.Register("loglevel", "-level <debug|info|warn|error>", levelFS, func() error {
		if *level == "" {
			return fmt.Errorf("missing -level")
		}
		lvl, err := zapcore.ParseLevel(*level)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
		cfg.Debug.LogLevel = lvl.String()
		return nil
	})
}
