package recorder

import (
	"errors"
	"fmt"
)

var (
	ErrCapabilityUnavailable = errors.New("audio capture unavailable")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrNotAudio              = errors.New("not an audio file")
	ErrNoPayload             = errors.New("no audio data to upload")
)

// TransitionError reports an operation attempted from a state that does not
// allow it. The recorder state is left untouched.
type TransitionError struct {
	Op   string
	From Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// DeviceError wraps a failure to open or start the capture device.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("microphone %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

type InvalidInputError struct {
	Name string
	MIME string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s is %s", ErrNotAudio, e.Name, e.MIME)
}

func (e *InvalidInputError) Unwrap() error { return ErrNotAudio }
