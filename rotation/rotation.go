// Package rotation implements the pure logic of a reed-switch
// anemometer: counting debounced rising edges of the sensor
// output and deciding when an accumulation window has elapsed.
package rotation

import "time"

// Counter counts rising edges of a sampled digital level.
//
// Each rising edge counts as a half rotation. Once an edge
// has been counted, no more are counted until a low level
// has been observed, so any number of consecutive high samples
// (including switch bounce read as high) count as a single edge.
//
// The zero value is ready to use.
type Counter struct {
	halfRotations uint64
	// polled holds whether the current high level
	// has already been counted.
	polled bool
}

// Observe records one sample of the pin level and reports
// whether it was counted as a new half rotation.
// Any non-zero level is treated as high.
func (c *Counter) Observe(level int) bool {
	high := level != 0
	switch {
	case high && !c.polled:
		c.polled = true
		c.halfRotations++
		return true
	case !high && c.polled:
		c.polled = false
	}
	return false
}

// HalfRotations returns the number of edges counted
// since the counter was last reset.
func (c *Counter) HalfRotations() uint64 {
	return c.halfRotations
}

// Rotations returns the number of full rotations counted.
// An odd half rotation is not included.
func (c *Counter) Rotations() uint64 {
	return c.halfRotations / 2
}

// Reset zeroes the count. Edge detection state is kept, so a
// high level that has already been counted is not counted again.
func (c *Counter) Reset() {
	c.halfRotations = 0
}

// DefaultWindow holds the default length of an accumulation window.
const DefaultWindow = 60 * time.Second

// Window represents a fixed-length accumulation interval.
type Window struct {
	// Start holds the time the window started.
	Start time.Time
	// Duration holds the length of the window.
	Duration time.Duration
}

// NewWindow returns a window of the given length starting at t.
// If d is zero, DefaultWindow is used.
func NewWindow(t time.Time, d time.Duration) Window {
	if d == 0 {
		d = DefaultWindow
	}
	return Window{
		Start:    t,
		Duration: d,
	}
}

// Expired reports whether strictly more than the window's
// duration has elapsed between its start and now.
func (w Window) Expired(now time.Time) bool {
	return now.Sub(w.Start) > w.Duration
}

// Restart starts a new window at t.
func (w *Window) Restart(t time.Time) {
	w.Start = t
}
