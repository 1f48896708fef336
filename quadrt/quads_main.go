package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/gekko3d/quads"
	"github.com/gekko3d/quads/quadrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
)

func init() {
	runtime.LockOSThread()
}

var palette = [][4]float32{
	core.LinearColor(colornames.White),
	core.LinearColor(colornames.Orangered),
	core.LinearColor(colornames.Gold),
	core.LinearColor(colornames.Mediumseagreen),
	core.LinearColor(colornames.Deepskyblue),
	core.LinearColor(colornames.Mediumorchid),
}

func main() {
	count := flag.Int("n", 1_000_000, "Number of quads")
	billboardName := flag.String("billboard", "view", "Billboard mode: none, view, worldy, fixed")
	half := flag.Float64("half", 0.01, "Quad half extent")
	seed := flag.Uint64("seed", 1, "Random seed")
	msaa := flag.Uint("msaa", 1, "MSAA sample count (1 or 4)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if flag.NArg() > 0 {
		n, err := strconv.Atoi(flag.Arg(0))
		if err != nil || n < 0 {
			fmt.Fprintf(os.Stderr, "invalid quad count %q\n", flag.Arg(0))
			os.Exit(2)
		}
		*count = n
	}
	billboard, err := core.ParseBillboard(*billboardName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	app := quads.NewAppBuilder().
		UseModule(quads.LoggingModule{Prefix: "quads", Debug: *debug}).
		UseModule(quads.TimeModule{}).
		UseModule(quads.ClientModule{
			WindowWidth:  1280,
			WindowHeight: 720,
			WindowTitle:  fmt.Sprintf("Quads (%d)", *count),
		}).
		UseModule(quads.InputModule{}).
		UseModule(quads.FlyingCameraModule{Position: mgl32.Vec3{0, 0, 50}}).
		UseModule(quads.QuadsModule{ClearColor: colornames.Black, SampleCount: uint32(*msaa)}).
		UseModule(quads.DiagnosticsModule{Interval: 2 * time.Second}).
		Build()

	store, _ := quads.Resource[core.QuadStore](app)
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	h := float32(*half)
	start := time.Now()
	store.Replace(core.RandomQuads(rng, *count,
		mgl32.Vec3{-10, -10, -10},
		mgl32.Vec3{10, 10, 10},
		mgl32.Vec3{h, h, h},
		billboard,
		palette,
	))
	app.Logger().Infof("Generated %d %s quads in %v", *count, billboard, time.Since(start))

	app.Run()
}
