package log

import (
	"io"
	"os"
	"sync"
)

// writerOutput serializes writes to an underlying writer.
type writerOutput struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// Write implements Output.
func (o *writerOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}

// Close implements Output.
func (o *writerOutput) Close() error {
	if o.c == nil {
		return nil
	}
	return o.c.Close()
}

// NewConsoleOutput returns an output writing to stderr.
func NewConsoleOutput() Output {
	return &writerOutput{w: os.Stderr}
}

// NewWriterOutput returns an output writing to w. Used by tests to capture
// formatted entries.
func NewWriterOutput(w io.Writer) Output {
	return &writerOutput{w: w}
}

// NewFileOutput opens (or creates, appending) the file at path as an output.
func NewFileOutput(path string) (Output, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &writerOutput{w: f, c: f}, nil
}
