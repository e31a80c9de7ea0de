// Package profiler reports frame pacing and surface health once per interval.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one reporting interval's worth of counters.
type Stats struct {
	FPS          float64
	Frames       int
	Skipped      int
	Reconfigures int
	HeapMB       float64
	GCCount      uint32
	Interval     time.Duration
}

// Profiler counts presented frames, skipped frames and surface reconfigurations and logs a
// summary when the update interval has elapsed.
type Profiler struct {
	frames       int
	skipped      int
	reconfigures int

	lastTime       time.Time
	updateInterval time.Duration
	now            func() time.Time
	quiet          bool

	memStats runtime.MemStats
	last     Stats
}

// ProfilerOption is a functional option for NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are reported. Defaults to one second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithQuiet computes statistics without logging them.
func WithQuiet(quiet bool) ProfilerOption {
	return func(p *Profiler) {
		p.quiet = quiet
	}
}

// NewProfiler creates a new Profiler with the given options.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// FramePresented records a presented frame.
func (p *Profiler) FramePresented() { p.frames++ }

// FrameSkipped records a frame that was not presented, e.g. after a surface timeout.
func (p *Profiler) FrameSkipped() { p.skipped++ }

// SurfaceReconfigured records a surface reconfiguration after a resize or a lost surface.
func (p *Profiler) SurfaceReconfigured() { p.reconfigures++ }

// Last returns the statistics of the most recent completed interval.
func (p *Profiler) Last() Stats { return p.last }

// Tick should be called once per loop iteration. When the update interval has elapsed it
// computes the interval's statistics, logs them and resets the counters.
//
// Returns:
//   - bool: true if an interval completed on this tick
func (p *Profiler) Tick() bool {
	current := p.now()
	elapsed := current.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	p.last = Stats{
		FPS:          float64(p.frames) / elapsed.Seconds(),
		Frames:       p.frames,
		Skipped:      p.skipped,
		Reconfigures: p.reconfigures,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		GCCount:      p.memStats.NumGC,
		Interval:     elapsed,
	}
	if !p.quiet {
		log.Printf("[Profiler] FPS: %.2f | Skipped: %d | Reconfigures: %d | Heap: %.2f MB | GC: %d",
			p.last.FPS, p.last.Skipped, p.last.Reconfigures, p.last.HeapMB, p.last.GCCount)
	}

	p.frames, p.skipped, p.reconfigures = 0, 0, 0
	p.lastTime = current
	return true
}
