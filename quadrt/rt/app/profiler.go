package app

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// Profiler collects per-frame CPU timings of named scopes, counters
// and a smoothed frame rate.
type Profiler struct {
	Now func() time.Time

	scopes map[string]time.Duration
	starts map[string]time.Time
	counts map[string]uint64
	order  []string

	windowStart  time.Time
	windowFrames int
	lastFrame    time.Time
	frameTime    time.Duration
	fps          float64
	frames       uint64
}

func NewProfiler() *Profiler {
	return &Profiler{
		Now:    time.Now,
		scopes: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		counts: make(map[string]uint64),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.starts[name] = p.Now()
	if !slices.Contains(p.order, name) {
		p.order = append(p.order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.starts[name]; ok {
		p.scopes[name] = p.Now().Sub(start)
		delete(p.starts, name)
	}
}

func (p *Profiler) Scope(name string) time.Duration { return p.scopes[name] }

func (p *Profiler) SetCount(name string, count uint64) {
	p.counts[name] = count
}

func (p *Profiler) AddCount(name string, delta uint64) {
	p.counts[name] += delta
}

func (p *Profiler) Count(name string) uint64 { return p.counts[name] }

// FrameTick marks the end of a frame. The frame rate is recomputed once
// the averaging window has elapsed and FrameTick reports when that happened.
func (p *Profiler) FrameTick(window time.Duration) bool {
	now := p.Now()
	if !p.lastFrame.IsZero() {
		p.frameTime = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
	p.frames++

	if p.windowStart.IsZero() {
		p.windowStart = now
		return false
	}
	p.windowFrames++
	elapsed := now.Sub(p.windowStart)
	if elapsed < window {
		return false
	}
	p.fps = float64(p.windowFrames) / elapsed.Seconds()
	p.windowFrames = 0
	p.windowStart = now
	return true
}

func (p *Profiler) FPS() float64 { return p.fps }

func (p *Profiler) FrameTime() time.Duration { return p.frameTime }

func (p *Profiler) Frames() uint64 { return p.frames }

// Reset zeroes scope timings and keeps their display order.
func (p *Profiler) Reset() {
	for k := range p.scopes {
		p.scopes[k] = 0
	}
}

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Frame: %.1f fps (%.2f ms)\n", p.fps, float64(p.frameTime.Microseconds())/1000.0)

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000.0
		fmt.Fprintf(&sb, "  %-15s: %.2f ms\n", name, ms)
	}

	sb.WriteString("Stats:\n")
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.counts[k])
	}
	return sb.String()
}
