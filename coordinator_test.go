package buddhabrot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	c := NewCoordinator(NewNopLogger())
	go c.Run()
	t.Cleanup(func() {
		close(c.commands)
	})
	return c
}

func send(t *testing.T, c *Coordinator, cmd Command) error {
	t.Helper()
	c.Commands() <- cmd
	switch cmd := cmd.(type) {
	case SetCommand:
		return cmd.Wait()
	case StartCommand:
		return cmd.Wait()
	case StopCommand:
		return cmd.Wait()
	case PauseCommand:
		return cmd.Wait()
	case ResumeCommand:
		return cmd.Wait()
	case SetWorkerCountCommand:
		return cmd.Wait()
	case UpdateImageCommand:
		return cmd.Wait()
	case SetContrastCommand:
		return cmd.Wait()
	case SetLightnessCommand:
		return cmd.Wait()
	case SaveScreenshotCommand:
		return cmd.Wait()
	default:
		t.Fatalf("send: unhandled command type %T", cmd)
		return nil
	}
}

func TestCoordinatorStartRequiresView(t *testing.T) {
	c := newTestCoordinator(t)
	err := send(t, c, NewStartCommand())
	assert.Error(t, err, "starting before a view is set should fail")
}

func TestCoordinatorSetStartStopLifecycle(t *testing.T) {
	c := newTestCoordinator(t)

	w := mustWindows(t, 0, 20, 0, 50, 0, 100)
	require.NoError(t, send(t, c, NewSetCommand(complex(-0.5, 0), 200, w, 64, 64, false)))
	require.NoError(t, send(t, c, NewSetWorkerCountCommand(2)))
	require.NoError(t, send(t, c, NewStartCommand()))

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, send(t, c, NewUpdateImageCommand()))

	c.mu.Lock()
	frameLen := len(c.frame)
	c.mu.Unlock()
	assert.Equal(t, 64*64, frameLen, "frame should be sized for the configured view")

	require.NoError(t, send(t, c, NewStopCommand()))
}

func TestCoordinatorPauseBlocksUntilWorkersAcknowledge(t *testing.T) {
	c := newTestCoordinator(t)

	w := mustWindows(t, 0, 20, 0, 50, 0, 100)
	require.NoError(t, send(t, c, NewSetCommand(complex(-0.5, 0), 200, w, 64, 64, false)))
	require.NoError(t, send(t, c, NewSetWorkerCountCommand(3)))
	require.NoError(t, send(t, c, NewStartCommand()))

	done := make(chan struct{})
	go func() {
		require.NoError(t, send(t, c, NewPauseCommand()))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("pause did not return; workers never acknowledged")
	}

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	assert.Equal(t, coordPause, state)

	require.NoError(t, send(t, c, NewResumeCommand()))
	require.NoError(t, send(t, c, NewStopCommand()))
}

func TestCoordinatorShrinkDrainsExactPermits(t *testing.T) {
	c := newTestCoordinator(t)

	w := mustWindows(t, 0, 20, 0, 50, 0, 100)
	require.NoError(t, send(t, c, NewSetCommand(complex(-0.5, 0), 200, w, 32, 32, false)))
	require.NoError(t, send(t, c, NewSetWorkerCountCommand(4)))
	require.NoError(t, send(t, c, NewStartCommand()))

	done := make(chan struct{})
	go func() {
		require.NoError(t, send(t, c, NewSetWorkerCountCommand(1)))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("shrinking the worker pool did not return; permits for the 3 stopped workers were never drained")
	}

	c.mu.Lock()
	n := len(c.workers)
	c.mu.Unlock()
	assert.Equal(t, 1, n)

	require.NoError(t, send(t, c, NewStopCommand()))
}

func TestCoordinatorReduceZeroWorkersYieldsEmptyFrame(t *testing.T) {
	c := newTestCoordinator(t)

	w := mustWindows(t, 0, 20, 0, 50, 0, 100)
	require.NoError(t, send(t, c, NewSetCommand(complex(-0.5, 0), 200, w, 16, 16, false)))
	require.NoError(t, send(t, c, NewUpdateImageCommand()))

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, v := range c.frame {
		assert.Equal(t, uint32(0), v, "frame[%d] should be black with no workers ever having run", i)
	}
}
