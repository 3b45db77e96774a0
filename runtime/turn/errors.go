package turn

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when an interview is in progress.
	ErrAlreadyRunning = errors.New("interview already running")

	// ErrNotRunning is returned by Stop when no interview is in progress.
	ErrNotRunning = errors.New("no interview running")

	// ErrLoopStopped is returned when the orchestrator loop is not running.
	ErrLoopStopped = errors.New("orchestrator loop is not running")

	// ErrEmptyUtterance is returned when the countdown fires with nothing buffered.
	ErrEmptyUtterance = errors.New("utterance is empty")

	// ErrUtteranceTooSmall is returned when buffered audio is below the size floor.
	ErrUtteranceTooSmall = errors.New("utterance below minimum size")
)
