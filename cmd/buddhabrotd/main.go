// Command buddhabrotd is a headless reference host for the buddhabrot
// engine: it configures a view, samples for a fixed duration, and saves the
// resulting frame as a PNG.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/kestrelrender/buddhabrot"
)

func main() {
	re := flag.Float64("re", -0.5, "real part of the view center")
	im := flag.Float64("im", 0.0, "imaginary part of the view center")
	scale := flag.Float64("scale", 200, "pixels per unit")
	width := flag.Int("width", 512, "image width in pixels")
	height := flag.Int("height", 512, "image height in pixels")
	workers := flag.Int("workers", 4, "number of sampling workers")
	duration := flag.Duration("duration", 10*time.Second, "how long to sample before saving")
	lowR := flag.Int("low-r", 0, "red channel low iteration bound")
	highR := flag.Int("high-r", 200, "red channel high iteration bound")
	lowG := flag.Int("low-g", 0, "green channel low iteration bound")
	highG := flag.Int("high-g", 1000, "green channel high iteration bound")
	lowB := flag.Int("low-b", 0, "blue channel low iteration bound")
	highB := flag.Int("high-b", 5000, "blue channel high iteration bound")
	contrast := flag.Int("contrast", 150, "tone-map contrast, 0..300")
	lightness := flag.Int("lightness", 100, "tone-map lightness, 0..200")
	out := flag.String("out", "buddhabrot.png", "output PNG path")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := buddhabrot.NewDefaultLogger("buddhabrotd", *debug)
	coord := buddhabrot.NewCoordinator(logger)
	go coord.Run()

	go func() {
		for ev := range coord.Events() {
			switch e := ev.(type) {
			case buddhabrot.FrameReadyEvent:
				logger.Infof("frame ready: %dx%d", e.W, e.H)
			case buddhabrot.WorkersStartedEvent:
				logger.Infof("workers started")
			case buddhabrot.WorkersStoppedEvent:
				logger.Infof("workers stopped")
			case buddhabrot.ViewAppliedEvent:
				logger.Infof("view applied: center=%v scale=%v", e.View.Center, e.View.Scale)
			}
		}
	}()

	windows, err := buddhabrot.NewWindows(*lowR, *highR, *lowG, *highG, *lowB, *highB)
	if err != nil {
		log.Fatalf("invalid iteration windows: %v", err)
	}

	setCmd := buddhabrot.NewSetCommand(complex(*re, *im), *scale, windows, *width, *height, false)
	coord.Commands() <- setCmd
	if err := setCmd.Wait(); err != nil {
		log.Fatalf("set view: %v", err)
	}

	workerCmd := buddhabrot.NewSetWorkerCountCommand(*workers)
	coord.Commands() <- workerCmd
	if err := workerCmd.Wait(); err != nil {
		log.Fatalf("set worker count: %v", err)
	}

	contrastCmd := buddhabrot.NewSetContrastCommand(*contrast)
	coord.Commands() <- contrastCmd
	if err := contrastCmd.Wait(); err != nil {
		log.Fatalf("set contrast: %v", err)
	}

	lightnessCmd := buddhabrot.NewSetLightnessCommand(*lightness)
	coord.Commands() <- lightnessCmd
	if err := lightnessCmd.Wait(); err != nil {
		log.Fatalf("set lightness: %v", err)
	}

	startCmd := buddhabrot.NewStartCommand()
	coord.Commands() <- startCmd
	if err := startCmd.Wait(); err != nil {
		log.Fatalf("start: %v", err)
	}

	time.Sleep(*duration)

	updateCmd := buddhabrot.NewUpdateImageCommand()
	coord.Commands() <- updateCmd
	if err := updateCmd.Wait(); err != nil {
		log.Fatalf("update image: %v", err)
	}

	saveCmd := buddhabrot.NewSaveScreenshotCommand(*out)
	coord.Commands() <- saveCmd
	if err := saveCmd.Wait(); err != nil {
		log.Fatalf("save screenshot: %v", err)
	}

	stopCmd := buddhabrot.NewStopCommand()
	coord.Commands() <- stopCmd
	stopCmd.Wait()

	close(coord.Commands())
	logger.Infof("done: %s", *out)
}
