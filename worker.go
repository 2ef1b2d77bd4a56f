package buddhabrot

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Status is a worker's place in the {stop, pause, run} state machine.
type Status int

const (
	StatusStop Status = iota
	StatusPause
	StatusRun
)

// Worker is one sampling goroutine: its own accumulator, iterate sequence
// buffer, RNG and Metropolis sampler, guarded by a mutex so the coordinator
// can safely pause/resume/stop it and swap its buffers between batches. The
// methods below that are not already internally locked (Pause, Resume,
// Stop, Initialize) assume the caller holds the worker's lock — mirroring
// the QMutexLocker-at-call-site discipline of the reference Buddha/
// BuddhaGenerator pair, rather than each method locking itself.
type Worker struct {
	ID string

	mu     sync.Mutex
	cond   *sync.Cond
	status Status

	Accumulator *Accumulator
	Sequence    []complex128

	viewPtr *atomic.Pointer[View]
	rng     *RNG
	sampler *Sampler
	barrier *barrier
	logger  Logger
}

// NewWorker builds a worker reading views from viewPtr (shared with the
// owning coordinator) and reporting pause/stop acknowledgements through
// bar. Its RNG is seeded from a freshly generated uuid so that two workers
// started in the same process never share a sequence.
func NewWorker(viewPtr *atomic.Pointer[View], bar *barrier, logger Logger) *Worker {
	if logger == nil {
		logger = NewNopLogger()
	}
	id := uuid.New()
	seed := binary.LittleEndian.Uint64(id[:8])
	rng := NewRNG(seed)

	w := &Worker{
		ID:      id.String(),
		status:  StatusStop,
		viewPtr: viewPtr,
		rng:     rng,
		sampler: NewSampler(rng),
		barrier: bar,
		logger:  logger,
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Lock and Unlock expose the worker's mutex so the coordinator can bracket
// a sequence of state-machine calls (Pause, Stop, Initialize, buffer
// resizes) as one atomic step, the same way the reference implementation
// takes a QMutexLocker before touching a generator.
func (w *Worker) Lock()   { w.mu.Lock() }
func (w *Worker) Unlock() { w.mu.Unlock() }

// Initialize (re)allocates the worker's accumulator and iterate-sequence
// buffer for view and marks it running. Caller must hold the lock.
func (w *Worker) Initialize(view *View) {
	w.Accumulator = NewAccumulator(view.Size)
	w.Sequence = make([]complex128, view.Windows.High-view.Windows.Low)
	w.status = StatusRun
}

// Pause requests the worker park itself at its next flow check. Caller
// must hold the lock.
func (w *Worker) Pause() {
	w.status = StatusPause
}

// Resume wakes a paused worker. Note that this does not hand back the
// barrier permit the worker released when it paused — the next pause or
// stop will correctly block again once the worker releases a fresh one,
// matching the semaphore discipline of the reference coordinator's
// resumeGenerators (its comment: "leave it acquired"). Caller must hold
// the lock.
func (w *Worker) Resume() {
	w.status = StatusRun
	w.cond.Signal()
}

// Stop requests the worker exit its run loop. It also wakes any goroutine
// blocked waiting out a pause, so a worker that was paused and then
// stopped does not hang forever — the reference implementation's own
// comment acknowledges stopping a paused generator "I think is impossible"
// by construction; broadcasting here closes that hazard in Go, where a
// leaked goroutine is a real cost a QThread never paid. Caller must hold
// the lock.
func (w *Worker) Stop() {
	w.status = StatusStop
	w.cond.Broadcast()
}

// flow is polled once per outer batch and once per Metropolis proposal. It
// parks the worker while paused (releasing one barrier permit on entry to
// the parked state) and reports false once the worker should exit.
func (w *Worker) flow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flowLocked()
}

func (w *Worker) flowLocked() bool {
	if w.status == StatusPause {
		w.barrier.release(1)
	}
	for w.status == StatusPause {
		w.cond.Wait()
	}
	return w.status != StatusStop
}

// Run is the worker's goroutine body: repeatedly run a Metropolis batch
// against the current view snapshot, checking flow between batches and
// (via the sampler's flow callback) within a batch. Metropolis deposits
// into the accumulator under w.Lock/w.Unlock, so the coordinator's own
// w.Lock around a read of w.Accumulator (reduce, resizeBuffers,
// clearBuffers) actually excludes this worker's writes instead of racing
// them. It releases one barrier permit on the way out, acknowledging the
// stop that ended it.
func (w *Worker) Run() {
	defer w.barrier.release(1)

	for {
		view := w.viewPtr.Load()

		w.mu.Lock()
		seq := w.Sequence
		acc := w.Accumulator
		w.mu.Unlock()

		if view == nil || acc == nil {
			if !w.flow() {
				return
			}
			continue
		}

		_, stopped := w.sampler.Metropolis(view, seq, acc, w.Lock, w.Unlock, w.flow)
		if stopped {
			w.logger.Debugf("worker %s stopped mid-batch", w.ID)
			return
		}

		w.mu.Lock()
		cont := w.flowLocked()
		w.mu.Unlock()
		if !cont {
			w.logger.Debugf("worker %s stopped", w.ID)
			return
		}
	}
}
