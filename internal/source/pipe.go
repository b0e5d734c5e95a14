package source

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// PipeEmitter reads "<priority> message" lines and emits them on the bus
// under a registered process. Priorities follow the journald convention
// (0=emergency .. 7=debug); lines without a numeric prefix default to info.
type PipeEmitter struct {
	bus *Bus
	pid ProcID
	r   io.Reader
}

// NewPipeEmitter registers a process with the given destination and returns
// an emitter that feeds the bus from r.
func NewPipeEmitter(bus *Bus, dest Destination, r io.Reader) *PipeEmitter {
	return &PipeEmitter{
		bus: bus,
		pid: bus.RegisterProc(dest),
		r:   r,
	}
}

// ProcID returns the process identifier the emitter registered under.
func (p *PipeEmitter) ProcID() ProcID {
	return p.pid
}

// Run reads lines until EOF or context cancellation, then unregisters the
// emitter's process.
func (p *PipeEmitter) Run(ctx context.Context) error {
	defer p.bus.UnregisterProc(p.pid)

	scanner := bufio.NewScanner(p.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sev, msg := parseLine(scanner.Text())
		meta := Metadata{{Key: MetaKeyProc, Value: p.pid}}
		p.bus.Emit(sev, msg, meta)
	}

	if err := scanner.Err(); err != nil {
		slog.Warn("pipe emitter scanner error", "error", err)
		return err
	}
	return nil
}

// parseLine splits an optional numeric syslog priority prefix off a line.
func parseLine(line string) (Severity, string) {
	pri, msg, ok := strings.Cut(line, " ")
	if ok {
		if n, err := strconv.Atoi(pri); err == nil && n >= 0 && n <= 7 {
			return SevEmergency - Severity(n), strings.TrimSpace(msg)
		}
	}
	return SevInfo, strings.TrimSpace(line)
}
