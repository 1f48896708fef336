package quads

import (
	"time"
)

type Time struct {
	Time time.Time
	Dt   time.Duration
	// Now is the clock read by timeSystem.
	Now func() time.Time
}

// DtSeconds is the last frame's duration in seconds.
func (t *Time) DtSeconds() float32 {
	return float32(t.Dt.Seconds())
}

type TimeModule struct{}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
		Now:  time.Now,
	})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
}

func timeSystem(timeResource *Time) {
	now := timeResource.Now()

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
}
