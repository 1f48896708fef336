package quads

import (
	"time"

	rtapp "github.com/gekko3d/quads/quadrt/rt/app"
)

// DiagnosticsModule installs a Profiler and logs frame statistics every Interval.
type DiagnosticsModule struct {
	Interval time.Duration
}

type diagnosticsState struct {
	interval time.Duration
	// verbose also dumps scope timings; toggled with F3.
	verbose bool
}

func (m DiagnosticsModule) Install(app *App, cmd *Commands) {
	interval := m.Interval
	if interval <= 0 {
		interval = time.Second
	}
	cmd.AddResources(rtapp.NewProfiler(), &diagnosticsState{interval: interval})
	app.UseSystem(
		System(diagnosticsSystem).
			InStage(Finale),
	)
}

func diagnosticsSystem(prof *rtapp.Profiler, state *diagnosticsState, cmd *Commands) {
	if input, ok := OptionalResource[Input](cmd); ok && input.JustPressed[KeyF3] {
		state.verbose = !state.verbose
	}
	if report, ok := OptionalResource[QuadsFrameReport](cmd); ok {
		recordQuadsReport(prof, report)
	}
	if !prof.FrameTick(state.interval) {
		return
	}

	log := cmd.Logger()
	log.Infof("%.1f fps, %.2f ms/frame, %d quads, %d draws, %d binding rebuilds",
		prof.FPS(),
		float64(prof.FrameTime().Microseconds())/1000.0,
		prof.Count("Quads"),
		prof.Count("Draws"),
		prof.Count("BindingBuilds"),
	)
	if state.verbose {
		log.Infof("\n%s", prof.GetStatsString())
	}
}

func recordQuadsReport(prof *rtapp.Profiler, report *QuadsFrameReport) {
	prof.SetCount("Quads", uint64(report.Quads))
	prof.SetCount("Views", uint64(report.Views))
	prof.SetCount("Draws", uint64(report.Draws))
	prof.SetCount("Allocations", report.Allocations)
	prof.SetCount("BindingBuilds", report.BindingBuilds)
	if report.Err != nil {
		prof.AddCount("SkippedFrames", 1)
	}
}
