package journal

import "fmt"

// OpenError means the store connection could not be established. It is fatal
// to the handle being opened; nothing is retried internally.
type OpenError struct {
	Err error
}

func (e *OpenError) Error() string { return fmt.Sprintf("journal: open: %v", e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// ReadError means a single advance, decode, cursor-capture, or timestamp
// call failed. The handle remains usable for subsequent calls.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("journal: %s: %v", e.Op, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// SeekError means a cursor restore failed for a reason other than a closest
// seek (which is an outcome, not an error).
type SeekError struct {
	Err error
}

func (e *SeekError) Error() string { return fmt.Sprintf("journal: seek: %v", e.Err) }
func (e *SeekError) Unwrap() error { return e.Err }

// WaitError means the blocking wait primitive itself failed. Waits are not
// retried automatically after one.
type WaitError struct {
	Err error
}

func (e *WaitError) Error() string { return fmt.Sprintf("journal: wait: %v", e.Err) }
func (e *WaitError) Unwrap() error { return e.Err }
