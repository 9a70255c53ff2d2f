// Package windworker provides a worker that samples a reed-switch
// anemometer on a GPIO pin and logs its rotation count.
//
// Every window (one minute by default) it appends a record holding
// the number of full rotations counted to the log file for the
// current day. The partial count of a window that's in progress
// when the worker is stopped is not logged.
package windworker

import (
	"context"
	"time"

	"github.com/juju/loggo"
	"gopkg.in/errgo.v1"

	"github.com/windlog/windlog/gpio"
	"github.com/windlog/windlog/rotation"
	"github.com/windlog/windlog/windstat"
)

var logger = loggo.GetLogger("windlog.windworker")

// Pin represents the sensor input pin. It's implemented by *gpio.Pin.
type Pin interface {
	Export() error
	SetDirection(gpio.Direction) error
	Value() (int, error)
	Unexport() error
}

type Params struct {
	// Pin holds the pin that the anemometer is connected to.
	Pin Pin
	// LogDir holds the name of the directory to store the log files.
	LogDir string
	// Now is used to query the current time. If it's nil, time.Now will be used.
	// The returned times should carry a monotonic clock reading
	// and be in the location used to name the log files.
	Now func() time.Time
	// Sleep is used to pause between samples. If it's nil,
	// time.Sleep will be used.
	Sleep func(time.Duration)
	// PollInterval holds the time to sleep after each sample.
	// If it's zero, DefaultPollInterval will be used.
	PollInterval time.Duration
	// Window holds the length of time over which rotations
	// are counted for each record. If it's zero, rotation.DefaultWindow
	// will be used.
	Window time.Duration
}

const DefaultPollInterval = time.Millisecond

// New returns a new Worker that samples the given pin.
// It exports the pin, sets it as an input and creates
// the log directory. The Worker should be closed
// after use to release the pin.
func New(p Params) (*Worker, error) {
	if p.Pin == nil {
		return nil, errgo.New("no pin set")
	}
	if p.LogDir == "" {
		return nil, errgo.New("no log directory set")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Sleep == nil {
		p.Sleep = time.Sleep
	}
	if p.PollInterval == 0 {
		p.PollInterval = DefaultPollInterval
	}
	if p.Window == 0 {
		p.Window = rotation.DefaultWindow
	}
	if err := p.Pin.Export(); err != nil {
		return nil, errgo.Mask(err)
	}
	if err := p.Pin.SetDirection(gpio.In); err != nil {
		return nil, errgo.Mask(err)
	}
	if err := windstat.EnsureDir(p.LogDir); err != nil {
		return nil, errgo.Mask(err)
	}
	return &Worker{
		p: p,
	}, nil
}

type Worker struct {
	p       Params
	counter rotation.Counter
	window  rotation.Window
}

// Run samples the pin until the context is cancelled, in which case
// it returns nil, or until reading the pin or writing a log
// record fails, in which case it returns the error.
//
// Cancellation is checked once per sample, so Run returns within
// about one poll interval; a sleep or log write in progress
// is not interrupted.
func (w *Worker) Run(ctx context.Context) error {
	w.counter = rotation.Counter{}
	w.window = rotation.NewWindow(w.p.Now(), w.p.Window)
	for ctx.Err() == nil {
		if err := w.poll(); err != nil {
			return errgo.Mask(err)
		}
		w.p.Sleep(w.p.PollInterval)
	}
	if n := w.counter.HalfRotations(); n > 0 {
		logger.Debugf("discarding %d half rotations from unfinished window", n)
	}
	return nil
}

// poll performs one sample cycle, writing a record first
// if the current window has expired.
func (w *Worker) poll() error {
	if now := w.p.Now(); w.window.Expired(now) {
		if err := w.flush(now); err != nil {
			return errgo.Mask(err)
		}
	}
	level, err := w.p.Pin.Value()
	if err != nil {
		return errgo.Mask(err)
	}
	if w.counter.Observe(level) {
		logger.Debugf("half rotations: %d", w.counter.HalfRotations())
	}
	return nil
}

// flush logs the rotations counted in the current window
// and starts a new one.
func (w *Worker) flush(now time.Time) error {
	r := windstat.Record{
		Time:      now,
		Rotations: w.counter.Rotations(),
	}
	if err := windstat.Append(w.p.LogDir, r); err != nil {
		return errgo.Mask(err)
	}
	logger.Debugf("logged %d rotations at %v", r.Rotations, now)
	w.counter.Reset()
	w.window.Restart(w.p.Now())
	return nil
}

// Close releases the pin.
func (w *Worker) Close() error {
	if err := w.p.Pin.Unexport(); err != nil {
		return errgo.Mask(err)
	}
	return nil
}
