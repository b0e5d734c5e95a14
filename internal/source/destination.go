package source

import "io"

// Destination is an output-destination handle: the place a formatted
// message ultimately surfaces, e.g. the console owned by a process.
type Destination interface {
	io.Writer
	Name() string
}

type writerDestination struct {
	name string
	w    io.Writer
}

// NewWriterDestination wraps a writer as a named destination.
func NewWriterDestination(name string, w io.Writer) Destination {
	return &writerDestination{name: name, w: w}
}

func (d *writerDestination) Write(p []byte) (int, error) { return d.w.Write(p) }
func (d *writerDestination) Name() string                { return d.name }
