package logging

import (
	"bytes"
	"io"
	"sync"
)

// Deferred buffers log records while a full-screen UI owns the terminal.
type Deferred struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (d *Deferred) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Write(p)
}

// Flush copies buffered records to w and empties the buffer.
func (d *Deferred) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.buf.WriteTo(w)
	return err
}

// Len reports the number of buffered bytes.
func (d *Deferred) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}
