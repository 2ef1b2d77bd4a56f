package buddhabrot

// Command is a request the coordinator's Run loop processes one at a time,
// in the order it receives them on Commands(). This mirrors the host
// issuing setValues/startCalculation/stopCalculation/... signals to the
// original coordinator, but as a single serialized channel of typed values
// instead of Qt signal/slot dispatch.
type Command interface {
	isCommand()
}

// resultCommand carries a single-shot error result back to whoever
// submitted the command. Wait blocks until the coordinator has processed
// the command.
type resultCommand struct {
	result chan error
}

func newResultCommand() resultCommand {
	return resultCommand{result: make(chan error, 1)}
}

func (r resultCommand) reply(err error) {
	r.result <- err
}

// Wait blocks until the coordinator has processed the command, returning
// any error it produced.
func (r resultCommand) Wait() error {
	return <-r.result
}

// SetCommand installs a new view (center, scale, dimensions, iteration
// windows). If Pause is true, the coordinator pauses the workers first,
// clears the buffers if the geometry or dimensions actually changed, and
// resumes afterward — matching the original's conditional
// pause/clear/resume dance in Buddha::set.
type SetCommand struct {
	resultCommand
	Center  complex128
	Scale   float64
	Windows Windows
	W, H    int
	Pause   bool
}

func (SetCommand) isCommand() {}

// NewSetCommand builds a SetCommand.
func NewSetCommand(center complex128, scale float64, windows Windows, w, h int, pause bool) SetCommand {
	return SetCommand{resultCommand: newResultCommand(), Center: center, Scale: scale, Windows: windows, W: w, H: h, Pause: pause}
}

// StartCommand starts all configured workers sampling against the current
// view.
type StartCommand struct{ resultCommand }

func (StartCommand) isCommand() {}

func NewStartCommand() StartCommand { return StartCommand{resultCommand: newResultCommand()} }

// StopCommand stops all workers; if they were running, it waits for each to
// acknowledge.
type StopCommand struct{ resultCommand }

func (StopCommand) isCommand() {}

func NewStopCommand() StopCommand { return StopCommand{resultCommand: newResultCommand()} }

// PauseCommand pauses all running workers and waits for each to
// acknowledge before returning.
type PauseCommand struct{ resultCommand }

func (PauseCommand) isCommand() {}

func NewPauseCommand() PauseCommand { return PauseCommand{resultCommand: newResultCommand()} }

// ResumeCommand resumes all paused workers.
type ResumeCommand struct{ resultCommand }

func (ResumeCommand) isCommand() {}

func NewResumeCommand() ResumeCommand { return ResumeCommand{resultCommand: newResultCommand()} }

// SetWorkerCountCommand grows or shrinks the worker pool to N workers.
type SetWorkerCountCommand struct {
	resultCommand
	N int
}

func (SetWorkerCountCommand) isCommand() {}

func NewSetWorkerCountCommand(n int) SetWorkerCountCommand {
	return SetWorkerCountCommand{resultCommand: newResultCommand(), N: n}
}

// UpdateImageCommand reduces every worker's accumulator into the merged
// buffer, tone-maps it into an RGB frame, and emits a FrameReadyEvent.
type UpdateImageCommand struct{ resultCommand }

func (UpdateImageCommand) isCommand() {}

func NewUpdateImageCommand() UpdateImageCommand {
	return UpdateImageCommand{resultCommand: newResultCommand()}
}

// SetContrastCommand updates the tone-mapping contrast parameter.
type SetContrastCommand struct {
	resultCommand
	Value int
}

func (SetContrastCommand) isCommand() {}

func NewSetContrastCommand(value int) SetContrastCommand {
	return SetContrastCommand{resultCommand: newResultCommand(), Value: value}
}

// SetLightnessCommand updates the tone-mapping lightness parameter.
type SetLightnessCommand struct {
	resultCommand
	Value int
}

func (SetLightnessCommand) isCommand() {}

func NewSetLightnessCommand(value int) SetLightnessCommand {
	return SetLightnessCommand{resultCommand: newResultCommand(), Value: value}
}

// SaveScreenshotCommand encodes the most recently built frame to a PNG file
// at Path.
type SaveScreenshotCommand struct {
	resultCommand
	Path string
}

func (SaveScreenshotCommand) isCommand() {}

func NewSaveScreenshotCommand(path string) SaveScreenshotCommand {
	return SaveScreenshotCommand{resultCommand: newResultCommand(), Path: path}
}
