package logger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrNoSinks is returned once every sink has failed.
var ErrNoSinks = errors.New("logger: all sinks failed")

// entry is either a line or, with ack set, a flush marker ordered after every earlier line.
type entry struct {
	line []byte
	ack  chan error
}

type sink struct {
	name string
	buf  *bufio.Writer
	err  error
}

// asyncWriter hands log lines to a single goroutine that writes them to every
// sink. A sink that fails is dropped (reported once on stderr); the others keep
// receiving lines, so a full log disk does not silence stdout.
type asyncWriter struct {
	queue chan entry
	done  chan struct{}

	closeMu sync.RWMutex
	closed  bool

	mu    sync.Mutex
	sinks []*sink
	alive int
	notes io.Writer
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		queue: make(chan entry, 256),
		done:  make(chan struct{}),
		notes: os.Stderr,
	}
	for i, out := range writers {
		if out == nil {
			continue
		}
		w.sinks = append(w.sinks, &sink{name: sinkName(i, out), buf: bufio.NewWriterSize(out, bufSize)})
	}
	w.alive = len(w.sinks)
	go w.loop()
	return w
}

func sinkName(i int, out io.Writer) string {
	if f, ok := out.(*os.File); ok {
		return f.Name()
	}
	return fmt.Sprintf("sink#%d", i)
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for e := range w.queue {
		if e.ack != nil {
			e.ack <- w.flushSinks()
			continue
		}
		w.writeSinks(e.line)
	}
	w.flushSinks()
}

// Write queues a copy of p. It blocks when the queue is full rather than dropping lines.
func (w *asyncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if w.Alive() == 0 {
		return ErrNoSinks
	}
	line := make([]byte, len(p))
	copy(line, p)
	return w.enqueue(entry{line: line})
}

func (w *asyncWriter) enqueue(e entry) error {
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		return io.ErrClosedPipe
	}
	w.queue <- e
	return nil
}

// Alive returns the number of sinks still accepting output.
func (w *asyncWriter) Alive() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.alive
}

// Flush waits until every queued line reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	if err := w.enqueue(entry{ack: ack}); err != nil {
		return nil
	}
	return <-ack
}

// Close drains the queue and returns the errors of the sinks that failed.
func (w *asyncWriter) Close() error {
	w.closeMu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.closeMu.Unlock()
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, s := range w.sinks {
		if s.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, s.err))
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) writeSinks(line []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.sinks {
		if s.err != nil {
			continue
		}
		if _, err := s.buf.Write(line); err != nil {
			w.fail(s, err)
			continue
		}
		if err := s.buf.Flush(); err != nil {
			w.fail(s, err)
		}
	}
}

func (w *asyncWriter) flushSinks() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.sinks {
		if s.err != nil {
			continue
		}
		if err := s.buf.Flush(); err != nil {
			w.fail(s, err)
		}
	}
	if len(w.sinks) > 0 && w.alive == 0 {
		return ErrNoSinks
	}
	return nil
}

// fail must be called with mu held.
func (w *asyncWriter) fail(s *sink, err error) {
	s.err = err
	w.alive--
	if w.notes != nil {
		fmt.Fprintf(w.notes, "logger: sink %s disabled: %v\n", s.name, err)
	}
}
