// Package gpiotest provides a fake GPIO pin for testing code
// that samples an input pin.
package gpiotest

import (
	"sync"

	"gopkg.in/errgo.v1"

	"github.com/windlog/windlog/gpio"
)

// Pin is an in-memory stand-in for a *gpio.Pin.
type Pin struct {
	// Level is called to obtain the level returned from each
	// call to Value. The argument holds the number of
	// reads made before this one. If Level is nil, Value always
	// returns 0.
	Level func(n int) (int, error)

	// ExportErr, DirectionErr and UnexportErr are returned
	// from the respective methods when non-nil.
	ExportErr    error
	DirectionErr error
	UnexportErr  error

	mu        sync.Mutex
	exported  bool
	direction gpio.Direction
	reads     int
}

// Levels returns a Level function that returns each of the
// given levels in turn, followed by the final level forever.
func Levels(levels ...int) func(n int) (int, error) {
	return func(n int) (int, error) {
		if len(levels) == 0 {
			return 0, nil
		}
		if n >= len(levels) {
			n = len(levels) - 1
		}
		return levels[n], nil
	}
}

func (p *Pin) Export() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ExportErr != nil {
		return p.ExportErr
	}
	p.exported = true
	return nil
}

func (p *Pin) SetDirection(d gpio.Direction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.DirectionErr != nil {
		return p.DirectionErr
	}
	if !p.exported {
		return errgo.New("pin not exported")
	}
	p.direction = d
	return nil
}

func (p *Pin) Value() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.exported {
		return 0, errgo.New("pin not exported")
	}
	n := p.reads
	p.reads++
	if p.Level == nil {
		return 0, nil
	}
	return p.Level(n)
}

func (p *Pin) Unexport() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.UnexportErr != nil {
		return p.UnexportErr
	}
	p.exported = false
	return nil
}

// Exported reports whether the pin is currently exported.
func (p *Pin) Exported() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exported
}

// Direction returns the most recently set direction.
func (p *Pin) Direction() gpio.Direction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.direction
}

// Reads returns the number of calls made to Value.
func (p *Pin) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}
