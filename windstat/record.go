// Package windstat defines the rotation log format and the
// day-partitioned directory of log files it's stored in.
//
// Each log file holds the records for one calendar day and
// is named after that day (for example "2024-03-07").
// Each line of a log file consists of two comma-separated fields:
//	timestamp of the record (in seconds since the unix epoch)
//	number of full rotations counted in the preceding window
package windstat

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/errgo.v1"
)

// Record represents one aggregated rotation count.
type Record struct {
	// Time holds the time that the record was made.
	Time time.Time
	// Rotations holds the number of full rotations counted.
	Rotations uint64
}

// dayFormat is the format of log file names.
const dayFormat = "2006-01-02"

// WriteRecord writes a single record to w as one line.
func WriteRecord(w io.Writer, r Record) error {
	_, err := fmt.Fprintf(w, "%d,%d\n", r.Time.Unix(), r.Rotations)
	return err
}

// Filename returns the name of the log file in dir that holds
// records made at t. The calendar day is taken in t's location.
func Filename(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format(dayFormat))
}

// EnsureDir creates the log directory if it doesn't already exist.
// The parent directory must exist.
func EnsureDir(dir string) error {
	if err := os.Mkdir(dir, 0777); err != nil && !os.IsExist(err) {
		return errgo.Notef(err, "cannot create log directory")
	}
	return nil
}

// Append appends r to the log file in dir for the day of r.Time,
// creating the file if necessary.
func Append(dir string, r Record) error {
	path := Filename(dir, r.Time)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return errgo.Notef(err, "cannot open log file")
	}
	if err := WriteRecord(f, r); err != nil {
		f.Close()
		return errgo.Notef(err, "cannot write to %q", path)
	}
	if err := f.Close(); err != nil {
		return errgo.Notef(err, "cannot close %q", path)
	}
	return nil
}
