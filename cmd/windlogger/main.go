// The windlogger command samples a reed-switch anemometer
// and logs the number of rotations each minute to a file per day.
// It runs until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/loggo"
	"github.com/juju/loggo/loggocolor"

	"github.com/windlog/windlog/gpio"
	"github.com/windlog/windlog/windworker"
)

const (
	// windPin holds the GPIO number the anemometer is connected to.
	windPin = 2
	// logDir holds the directory the rotation logs are written to.
	logDir = "/root/wind_daten"
)

var logger = loggo.GetLogger("windlog")

func main() {
	if _, err := loggo.ReplaceDefaultWriter(loggocolor.NewWriter(os.Stderr)); err != nil {
		fmt.Fprintf(os.Stderr, "cannot set up logging: %v\n", err)
		os.Exit(1)
	}
	if err := loggo.ConfigureLoggers("<root>=INFO;windlog.windworker=DEBUG"); err != nil {
		fmt.Fprintf(os.Stderr, "cannot configure logging: %v\n", err)
		os.Exit(1)
	}
	if err := run(); err != nil {
		logger.Criticalf("%v", err)
		os.Exit(1)
	}
	fmt.Println("\nexiting...")
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := windworker.New(windworker.Params{
		Pin:    gpio.New(windPin),
		LogDir: logDir,
	})
	if err != nil {
		return err
	}
	logger.Infof("sampling gpio%d, logging to %s", windPin, logDir)
	if err := w.Run(ctx); err != nil {
		return err
	}
	return w.Close()
}
