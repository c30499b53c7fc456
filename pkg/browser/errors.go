package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is matched by every *ConnectionError.
	ErrConnection = errors.New("browser connection failed")

	ErrNoPage            = errors.New("no page is currently loaded or active in the browser")
	ErrElementNotFound   = errors.New("element not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNavigationTimeout = errors.New("navigation timed out")
	ErrEvaluation        = errors.New("script evaluation failed")
)

// ConnectionError reports that the remote endpoint refused or timed out.
// The message tells operators how to start the browser so it answers.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to browser at %s: %v (is it running with --remote-debugging-port=%s?)",
		e.Endpoint, e.Err, DebugPort(e.Endpoint))
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// OpError records the operation and target (url or selector) of a failure.
type OpError struct {
	Op     string
	Target string
	Err    error
}

func (e *OpError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Wrap annotates err with op and target. It returns nil for a nil err and
// leaves errors that already carry an operation untouched.
func Wrap(op, target string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Target: target, Err: err}
}
