// Package gpio drives a single GPIO pin through the Linux sysfs
// interface (/sys/class/gpio).
package gpio

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"github.com/juju/loggo"
	"golang.org/x/sys/unix"
	"gopkg.in/errgo.v1"
	"gopkg.in/retry.v1"
)

var logger = loggo.GetLogger("windlog.gpio")

// DefaultDir holds the directory where the kernel exposes
// the sysfs GPIO interface.
const DefaultDir = "/sys/class/gpio"

// Direction holds the direction of a pin.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Verify causes Export to wait for the exported files to become writable.
// This is necessary if the process is not running as root - systemd
// and udev will change the group permissions on the exported files, but
// this takes some time to do. If we try and access the files before
// the file group/modes are changed, we will get a permission error.
var Verify = false

// verifyStrategy bounds the wait performed when Verify is set.
var verifyStrategy retry.Strategy = retry.Regular{
	Total: 2 * time.Second,
	Delay: time.Millisecond,
}

func init() {
	u, err := user.Current()
	if err == nil && u.Uid != "0" {
		Verify = true
	}
}

// Pin represents one sysfs GPIO pin.
// It is not safe to use concurrently.
type Pin struct {
	// Dir holds the sysfs GPIO directory.
	// If it's empty, DefaultDir is used.
	Dir string

	number int
	value  *os.File
	buf    []byte
}

// New returns a Pin for the given GPIO number.
// No hardware access happens until Export is called.
func New(number int) *Pin {
	return &Pin{
		number: number,
	}
}

// Number returns the GPIO number of the pin.
func (p *Pin) Number() int {
	return p.number
}

// Export makes the pin available through sysfs. It does nothing
// if the pin's value file is already accessible.
func (p *Pin) Export() error {
	val := p.path("value")
	if unix.Access(val, unix.W_OK|unix.R_OK) == nil {
		logger.Debugf("gpio%d already exported", p.number)
		return nil
	}
	if err := writeFile(p.file("export"), strconv.Itoa(p.number)); err != nil {
		return errgo.Notef(err, "cannot export gpio%d", p.number)
	}
	if Verify {
		if err := verifyFile(val); err != nil {
			return errgo.Notef(err, "cannot export gpio%d", p.number)
		}
	}
	logger.Infof("exported gpio%d", p.number)
	return nil
}

// SetDirection sets the direction of the pin.
func (p *Pin) SetDirection(d Direction) error {
	if d != In && d != Out {
		return errgo.Newf("gpio%d: unknown direction %v", p.number, d)
	}
	if err := writeFile(p.path("direction"), d.String()); err != nil {
		return errgo.Notef(err, "cannot set gpio%d direction", p.number)
	}
	return nil
}

// Value returns the current logic level of the pin, 0 or 1.
func (p *Pin) Value() (int, error) {
	if p.value == nil {
		f, err := os.Open(p.path("value"))
		if err != nil {
			return 0, errgo.Notef(err, "cannot read gpio%d value", p.number)
		}
		p.value = f
		p.buf = make([]byte, 1)
	}
	if _, err := p.value.ReadAt(p.buf, 0); err != nil {
		return 0, errgo.Notef(err, "cannot read gpio%d value", p.number)
	}
	switch p.buf[0] {
	case '0':
		return 0, nil
	case '1':
		return 1, nil
	}
	return 0, errgo.Newf("gpio%d: unexpected value %q", p.number, p.buf)
}

// Unexport closes the pin's value file, if open, and
// removes the pin from sysfs.
func (p *Pin) Unexport() error {
	if p.value != nil {
		p.value.Close()
		p.value = nil
	}
	if err := writeFile(p.file("unexport"), strconv.Itoa(p.number)); err != nil {
		return errgo.Notef(err, "cannot unexport gpio%d", p.number)
	}
	logger.Infof("unexported gpio%d", p.number)
	return nil
}

func (p *Pin) file(name string) string {
	dir := p.Dir
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, name)
}

// path returns the path of the named attribute file of the pin.
func (p *Pin) path(attr string) string {
	return p.file(filepath.Join(fmt.Sprintf("gpio%d", p.number), attr))
}

func writeFile(fname, s string) error {
	f, err := os.OpenFile(fname, os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(s))
	return err
}

// verifyFile waits for f to become writable.
func verifyFile(f string) error {
	var err error
	for a := retry.Start(verifyStrategy, nil); a.Next(); {
		if err = unix.Access(f, unix.W_OK); err == nil {
			return nil
		}
	}
	return errgo.Newf("%s: not writable", f)
}
