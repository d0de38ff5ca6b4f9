// The following program simulates a handful of characters running a fixed
// obstacle course: steps, a vault wall, a mantle wall, a flooded area and a
// bouncing platform. It prints a combined state checksum once a second, which
// makes it usable as a quick determinism smoke test. The movement config is
// hot-reloaded when the YAML file changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride"
	"github.com/stride-cc/stride/kcc"
	"github.com/stride-cc/stride/sweep"
	"github.com/stride-cc/stride/worker"
)

const tickRate = 64

func main() {
	var (
		configPath = flag.String("config", "config.yml", "movement config file")
		characters = flag.Int("characters", 8, "number of simulated characters")
		ticks      = flag.Int("ticks", 0, "stop after this many ticks, 0 runs until interrupted")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
	}

	cfg, err := kcc.LoadConfig(*configPath)
	if err != nil {
		log.Warn("falling back to default config", "err", err)
		cfg = kcc.DefaultConfig()
	}

	w := sweep.NewWorld()
	buildFlatland(w)
	platform := w.AddBody(sweep.Body{
		Box:      cube.Box(-1.5, -0.25, -1.5, 1.5, 0, 1.5),
		Pos:      mgl32.Vec3{10, 0.25, -10},
		LinVel:   mgl32.Vec3{0, 0.5, 0},
		Friction: 1,
	})
	w.AddBody(sweep.Body{
		Box:      cube.Box(-3, -0.25, -3, 3, 0, 3),
		Pos:      mgl32.Vec3{-10, 0.25, 10},
		AngVel:   mgl32.Vec3{0, 0.8, 0},
		Friction: 1,
	})

	sim := stride.NewSimulator(w, log)

	chars := make([]*stride.Character, *characters)
	for i := range chars {
		pos := mgl32.Vec3{float32(i%4)*2 - 3, 0.5, float32(i/4)*2 - 3}
		chars[i] = stride.NewCharacter(sim, &cfg, pos)
	}

	var events chan string
	if watcher, err := newConfigWatcher(filepath.Dir(*configPath)); err != nil {
		log.Warn("config watching disabled", "err", err)
	} else {
		defer watcher.Close()
		events = watcher.Events
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	const dt = float32(1) / tickRate
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	results := make([]kcc.TickResult, len(chars))
	fns := make([]func(), len(chars))
	for n := 0; *ticks == 0 || n < *ticks; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		select {
		case path, ok := <-events:
			if !ok {
				events = nil
				break
			}
			if reloaded, err := kcc.LoadConfig(*configPath); err != nil {
				log.Error("config reload failed", "path", path, "err", err)
			} else {
				cfg = reloaded
				log.Info("config reloaded", "path", path)
			}
		default:
		}

		// Bounce the platform between the floor and 2m up.
		if pb, ok := w.Body(platform); ok {
			if pb.Pos.Y() > 2 {
				w.SetBodyMotion(platform, mgl32.Vec3{0, -0.5, 0}, mgl32.Vec3{})
			} else if pb.Pos.Y() < 0.25 {
				w.SetBodyMotion(platform, mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{})
			}
		}
		w.Advance(dt)

		tick := n
		for i, ch := range chars {
			i, ch := i, ch
			fns[i] = func() {
				drive(ch, tick)
				results[i] = ch.Tick(dt)
			}
		}
		worker.Batch(fns)

		if n%tickRate == 0 {
			var sum uint64
			var contacts int
			var impulse float32
			for _, r := range results {
				sum ^= r.Checksum()
				contacts += len(r.Touching)
				for _, c := range r.Touching {
					impulse += math32.Abs(c.CharacterVel.Dot(c.Normal))
				}
			}
			log.Info("tick", "n", n, "checksum", fmt.Sprintf("%016x", sum),
				"pos", results[0].Position, "mode", results[0].Mode,
				"contacts", contacts, "impulse", impulse)
		}
	}
}

// drive feeds a simple scripted input: run forward and periodically try
// every movement verb so the whole course gets exercised.
func drive(ch *stride.Character, tick int) {
	ch.Input.Move = mgl32.Vec2{0, 1}
	ch.Input.HasMove = true

	switch {
	case tick%256 == 128:
		ch.Input.Jump.Press()
	case tick%391 == 200:
		ch.Input.Crane.Press()
	case tick%577 == 300:
		ch.Input.Mantle.Press()
	case tick%613 == 400:
		ch.Input.Tac.Press()
	}
	if tick%1024 >= 900 {
		ch.Input.CrouchHeld = true
	}
	if _, mantling := ch.State.Mode.Mantle(); !mantling && ch.State.Pos.Y() < 0.2 {
		// Probably swimming by now, paddle up.
		ch.Input.SwimUp = true
	}
}

func buildFlatland(w *sweep.World) {
	// floor
	w.AddBox(cube.Box(-50, -1, -50, 50, 0, 50), 1)

	// two walkable risers forming a staircase
	w.AddBox(cube.Box(4, 0, -2, 8, 0.4, 2), 1)
	w.AddBox(cube.Box(6, 0, -2, 8, 0.8, 2), 1)

	// vault wall, low enough for a crane
	w.AddBox(cube.Box(-8, 0, -4, -7, 1.2, 4), 1)

	// mantle wall, reachable only by grabbing the ledge
	w.AddBox(cube.Box(-2, 0, 10, 6, 2, 12), 0.8)

	// flooded corner
	w.AddWater(cube.Box(-20, 0, -20, -12, 1.5, -12), 6)

	// slick patch
	w.AddBox(cube.Box(12, 0, 4, 18, 0.1, 10), 0.1)
}
