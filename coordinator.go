package buddhabrot

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// coordState mirrors the coordinator's own view of whether its workers are
// stopped, running, or paused — distinct from any individual worker's
// Status, since a shrinking or growing pool can have workers transiently
// out of step with it.
type coordState int

const (
	coordStop coordState = iota
	coordRun
	coordPause
)

// Coordinator owns the current view, the worker pool, the merged
// accumulator and the tone-mapped frame. It is driven entirely through
// Commands()/Events(): Run serializes command processing on a single
// goroutine so none of the bookkeeping below needs its own locking against
// concurrent command calls — only against the worker goroutines it
// supervises.
type Coordinator struct {
	logger Logger

	viewPtr atomic.Pointer[View]

	mu      sync.Mutex
	view    *View
	state   coordState
	workers []*Worker
	barrier *barrier

	merged           *Accumulator
	frame            []uint32
	maxR, maxG, maxB uint64
	mulR, mulG, mulB float64

	tonemap TonemapConfig

	commands chan Command
	events   chan Event
}

// NewCoordinator builds a Coordinator with no workers and no view; callers
// must send a SetCommand before Start will succeed. A nil logger is
// replaced with a no-op logger.
func NewCoordinator(logger Logger) *Coordinator {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Coordinator{
		logger:   logger,
		barrier:  newBarrier(),
		tonemap:  DefaultTonemapConfig(),
		commands: make(chan Command, 32),
		events:   make(chan Event, 32),
	}
}

// Commands returns the channel hosts submit Command values on.
func (c *Coordinator) Commands() chan<- Command { return c.commands }

// Events returns the channel hosts should drain for coordinator
// notifications. The coordinator never blocks on a full Events channel
// (see emit), so a host that stops draining loses events rather than
// stalling sampling.
func (c *Coordinator) Events() <-chan Event { return c.events }

// Run processes commands until Commands() is closed. It is meant to be run
// in its own goroutine for the coordinator's lifetime.
func (c *Coordinator) Run() {
	for cmd := range c.commands {
		c.dispatch(cmd)
	}
}

func (c *Coordinator) dispatch(cmd Command) {
	switch cmd := cmd.(type) {
	case SetCommand:
		cmd.reply(c.set(cmd))
	case StartCommand:
		cmd.reply(c.start())
	case StopCommand:
		c.stop()
		cmd.reply(nil)
	case PauseCommand:
		c.pause()
		cmd.reply(nil)
	case ResumeCommand:
		c.resume()
		cmd.reply(nil)
	case SetWorkerCountCommand:
		cmd.reply(c.setWorkerCount(cmd.N))
	case UpdateImageCommand:
		c.updateImage()
		cmd.reply(nil)
	case SetContrastCommand:
		c.tonemap.Contrast = cmd.Value
		cmd.reply(nil)
	case SetLightnessCommand:
		c.tonemap.Lightness = cmd.Value
		cmd.reply(nil)
	case SaveScreenshotCommand:
		cmd.reply(c.saveScreenshot(cmd.Path))
	default:
		c.logger.Warnf("coordinator: unrecognized command %T", cmd)
	}
}

func (c *Coordinator) emit(e Event) {
	select {
	case c.events <- e:
	default:
		c.logger.Warnf("event dropped, consumer too slow: %T", e)
	}
}

// set installs a new view, reallocating buffers if the pixel dimensions
// changed and resizing per-worker sequence buffers if the iteration
// windows changed. If cmd.Pause is set, it pauses around the change and
// clears the accumulated buffers when the change actually invalidates
// them, then resumes — matching Buddha::set's haveToClear/pause/resume
// sequence.
func (c *Coordinator) set(cmd SetCommand) error {
	newView, err := NewView(cmd.Center, cmd.Scale, cmd.W, cmd.H, cmd.Windows)
	if err != nil {
		return err
	}

	c.mu.Lock()
	old := c.view
	dimsChanged := newView.dimensionsChanged(old)
	bufferDirty := dimsChanged || newView.geometryChanged(old)
	c.mu.Unlock()

	if cmd.Pause {
		c.pause()
	}

	if dimsChanged {
		c.resizeBuffers(newView.Size)
	}
	c.resizeSequences(newView.Windows)

	c.mu.Lock()
	c.view = newView
	c.mu.Unlock()
	c.viewPtr.Store(newView)

	if cmd.Pause {
		if bufferDirty {
			c.clearBuffers()
		}
		c.resume()
	}

	c.emit(ViewAppliedEvent{View: newView})
	return nil
}

func (c *Coordinator) resizeBuffers(size int) {
	c.mu.Lock()
	c.merged = NewAccumulator(size)
	c.frame = make([]uint32, size)
	workers := append([]*Worker(nil), c.workers...)
	c.mu.Unlock()

	for _, w := range workers {
		w.Lock()
		w.Accumulator = NewAccumulator(size)
		w.Unlock()
	}
}

func (c *Coordinator) resizeSequences(windows Windows) {
	n := windows.High - windows.Low

	c.mu.Lock()
	workers := append([]*Worker(nil), c.workers...)
	c.mu.Unlock()

	for _, w := range workers {
		w.Lock()
		if len(w.Sequence) != n {
			w.Sequence = make([]complex128, n)
		}
		w.Unlock()
	}
}

func (c *Coordinator) clearBuffers() {
	c.mu.Lock()
	merged := c.merged
	frame := c.frame
	workers := append([]*Worker(nil), c.workers...)
	c.mu.Unlock()

	if merged != nil {
		merged.Reset()
	}
	for i := range frame {
		frame[i] = 0
	}
	for _, w := range workers {
		w.Lock()
		if w.Accumulator != nil {
			w.Accumulator.Reset()
		}
		w.Unlock()
	}
}

// start initializes and launches every configured worker against the
// current view. It fails if no view has been set yet.
func (c *Coordinator) start() error {
	c.mu.Lock()
	view := c.view
	workers := append([]*Worker(nil), c.workers...)
	c.mu.Unlock()

	if view == nil {
		return fmt.Errorf("buddhabrot: cannot start before a view has been set")
	}

	for _, w := range workers {
		w.Lock()
		w.Initialize(view)
		w.Unlock()
		go w.Run()
	}

	c.mu.Lock()
	c.state = coordRun
	c.mu.Unlock()
	c.emit(WorkersStartedEvent{})
	return nil
}

// stop requests every non-stopped worker stop, then — only if the
// coordinator was running — blocks until each has acknowledged. This
// mirrors Buddha::stopGenerators acquiring the semaphore only when the
// prior state was RUN.
func (c *Coordinator) stop() {
	c.mu.Lock()
	wasRunning := c.state == coordRun
	workers := append([]*Worker(nil), c.workers...)
	c.mu.Unlock()

	for _, w := range workers {
		w.Lock()
		if w.status != StatusStop {
			w.Stop()
		}
		w.Unlock()
	}

	if wasRunning {
		c.barrier.acquire(len(workers))
	}

	c.mu.Lock()
	c.state = coordStop
	c.mu.Unlock()
	c.emit(WorkersStoppedEvent{})
}

// pause requests every running worker park itself, then blocks until each
// has acknowledged by releasing a barrier permit. A no-op unless the
// coordinator is currently running.
func (c *Coordinator) pause() {
	c.mu.Lock()
	if c.state != coordRun {
		c.mu.Unlock()
		return
	}
	workers := append([]*Worker(nil), c.workers...)
	c.mu.Unlock()

	for _, w := range workers {
		w.Lock()
		if w.status == StatusRun {
			w.Pause()
		}
		w.Unlock()
	}

	c.barrier.acquire(len(workers))

	c.mu.Lock()
	c.state = coordPause
	c.mu.Unlock()
}

// resume wakes every paused worker. It deliberately does not give back the
// barrier permits consumed by pause — see Worker.Resume. A no-op unless
// the coordinator is currently paused.
func (c *Coordinator) resume() {
	c.mu.Lock()
	if c.state != coordPause {
		c.mu.Unlock()
		return
	}
	workers := append([]*Worker(nil), c.workers...)
	c.mu.Unlock()

	for _, w := range workers {
		w.Lock()
		w.Resume()
		w.Unlock()
	}

	c.mu.Lock()
	c.state = coordRun
	c.mu.Unlock()
}

// setWorkerCount grows or shrinks the pool to n workers. Growing while
// running or paused initializes (and, if paused, immediately parks) the
// new workers so they participate correctly in the next pause/stop;
// shrinking while running or paused stops the excess workers and
// synchronously drains their acknowledgement permits before returning, so
// no permit from a removed worker is left queued for a later pause/stop to
// consume — closing a latent hazard in the reference
// implementation, where a worker added while paused could be left
// un-started and a shrink left dangling permits for a future pause/stop to
// trip over.
func (c *Coordinator) setWorkerCount(n int) error {
	if n < 0 {
		return fmt.Errorf("buddhabrot: worker count must be >= 0, got %d", n)
	}

	c.mu.Lock()
	state := c.state
	view := c.view
	c.mu.Unlock()

	for i := len(c.snapshotWorkers()); i < n; i++ {
		w := NewWorker(&c.viewPtr, c.barrier, c.logger)

		switch state {
		case coordRun:
			if view == nil {
				return fmt.Errorf("buddhabrot: cannot grow the worker pool before a view has been set")
			}
			w.Lock()
			w.Initialize(view)
			w.Unlock()
			c.appendWorker(w)
			go w.Run()
		case coordPause:
			if view == nil {
				return fmt.Errorf("buddhabrot: cannot grow the worker pool before a view has been set")
			}
			w.Lock()
			w.Initialize(view)
			w.Pause()
			w.Unlock()
			c.appendWorker(w)
			go w.Run()
			c.barrier.acquire(1)
		default:
			c.appendWorker(w)
		}
	}

	c.mu.Lock()
	removed := 0
	for i := n; i < len(c.workers); i++ {
		w := c.workers[i]
		if state != coordStop {
			w.Lock()
			w.Stop()
			w.Unlock()
			removed++
		}
	}
	if n < len(c.workers) {
		c.workers = c.workers[:n]
	}
	c.mu.Unlock()

	if removed > 0 {
		c.barrier.acquire(removed)
	}

	c.logger.Infof("worker count changed to %d", n)
	return nil
}

func (c *Coordinator) snapshotWorkers() []*Worker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Worker(nil), c.workers...)
}

func (c *Coordinator) appendWorker(w *Worker) {
	c.mu.Lock()
	c.workers = append(c.workers, w)
	c.mu.Unlock()
}

// updateImage reduces every worker's accumulator into the merged buffer,
// tone-maps it into the RGB frame, and emits the result. Timing for the
// reduce and the tone-map build is logged separately, matching
// Buddha::updateRGBImage's split timers.
func (c *Coordinator) updateImage() {
	start := time.Now()
	c.reduce()
	c.logger.Debugf("reduce took %s", time.Since(start))

	start = time.Now()
	c.mu.Lock()
	c.buildFrame()
	frame := append([]uint32(nil), c.frame...)
	view := c.view
	c.mu.Unlock()
	c.logger.Debugf("frame build took %s", time.Since(start))

	w, h := 0, 0
	if view != nil {
		w, h = view.W, view.H
	}
	c.emit(FrameReadyEvent{Frame: frame, W: w, H: h})
}

// reduce sums every worker's accumulator into the merged buffer and
// recomputes the per-channel maxima and tone-map multipliers.
func (c *Coordinator) reduce() {
	c.mu.Lock()
	merged := c.merged
	view := c.view
	workers := append([]*Worker(nil), c.workers...)
	tonemap := c.tonemap
	c.mu.Unlock()

	if merged == nil || view == nil {
		return
	}

	merged.Reset()
	for _, w := range workers {
		w.Lock()
		if w.Accumulator != nil {
			merged.Add(w.Accumulator)
		}
		w.Unlock()
	}

	maxR, maxG, maxB := merged.Maxima()
	realContrast, realLightness := tonemap.derived()

	c.mu.Lock()
	c.maxR, c.maxG, c.maxB = maxR, maxG, maxB
	c.mulR = channelMultiplier(maxR, view.Scale, realContrast, realLightness)
	c.mulG = channelMultiplier(maxG, view.Scale, realContrast, realLightness)
	c.mulB = channelMultiplier(maxB, view.Scale, realContrast, realLightness)
	c.mu.Unlock()
}

// buildFrame tone-maps c.merged into c.frame. Caller must hold c.mu.
func (c *Coordinator) buildFrame() {
	if c.merged == nil || c.view == nil {
		return
	}
	realContrast, _ := c.tonemap.derived()

	for i := 0; i < c.view.Size; i++ {
		j := i * 3
		r := clamp255(channelToneValue(c.merged.Raw[j+0], realContrast, c.mulR))
		g := clamp255(channelToneValue(c.merged.Raw[j+1], realContrast, c.mulG))
		b := clamp255(channelToneValue(c.merged.Raw[j+2], realContrast, c.mulB))
		c.frame[i] = uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	}
}
