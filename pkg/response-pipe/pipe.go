// Package pipe runs an http.Handler against a ResponseWriter that turns everything
// the handler writes into an ordered stream of events, so that another goroutine
// can inspect the status and headers before anything reaches the client.
package pipe

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
)

var (
	// ErrAbandoned is returned to the handler's writes once the consumer has stopped reading.
	ErrAbandoned = errors.New("response pipe abandoned")
	// ErrAborted is reported when the handler panicked with http.ErrAbortHandler.
	ErrAborted = errors.New("handler aborted the response")
)

type Kind int

const (
	// Start declares the status and headers.
	Start Kind = iota
	// Chunk carries a piece of the body.
	Chunk
	// Flush asks for buffered data to be sent to the client.
	Flush
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Chunk:
		return "chunk"
	case Flush:
		return "flush"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Event struct {
	Kind   Kind
	Status int
	// Header is a snapshot taken when the status was declared.
	Header http.Header
	// Chunk is owned by the consumer.
	Chunk []byte
}

// PanicError is reported when the handler panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

type Pipe struct {
	events  chan Event
	done    chan struct{}
	abandon sync.Once
	err     error
}

// New returns a pipe whose event channel holds up to buffer events.
func New(buffer int) *Pipe {
	if buffer < 0 {
		buffer = 0
	}
	return &Pipe{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Events returns the stream of events. It is closed when the handler returns.
func (p *Pipe) Events() <-chan Event {
	return p.events
}

// Err returns the reason the handler did not finish normally.
// It is only meaningful once Events has been closed.
func (p *Pipe) Err() error {
	return p.err
}

// Abandon tells the handler side that no more events will be read.
// Blocked and subsequent writes fail with ErrAbandoned.
func (p *Pipe) Abandon() {
	p.abandon.Do(func() { close(p.done) })
}

// Run serves r with h and closes the event stream when h returns.
// Panics in h are recovered and reported by Err.
func (p *Pipe) Run(h http.Handler, r *http.Request) {
	w := &Writer{pipe: p, header: make(http.Header)}
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				p.err = ErrAborted
			} else {
				p.err = &PanicError{Value: v, Stack: debug.Stack()}
			}
		}
		close(p.events)
	}()
	h.ServeHTTP(w, r)
}

// Writer is the http.ResponseWriter handed to the handler.
type Writer struct {
	pipe        *Pipe
	header      http.Header
	wroteHeader bool
	err         error
}

// Implementation of http.ResponseWriter
func (w *Writer) Header() http.Header {
	return w.header
}

// Implementation of http.ResponseWriter
func (w *Writer) WriteHeader(statusCode int) {
	if w.wroteHeader || w.err != nil {
		return
	}
	// informational responses are not passed on
	if statusCode >= 100 && statusCode < 200 {
		return
	}
	w.wroteHeader = true
	w.send(Event{Kind: Start, Status: statusCode, Header: w.header.Clone()})
}

// Implementation of http.ResponseWriter
func (w *Writer) Write(b []byte) (int, error) {
	// write headers if not already written
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.err != nil {
		return 0, w.err
	}
	if len(b) == 0 {
		return 0, nil
	}
	chunk := make([]byte, len(b))
	copy(chunk, b)
	if err := w.send(Event{Kind: Chunk, Chunk: chunk}); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Implementation of http.Flusher
func (w *Writer) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.err == nil {
		w.send(Event{Kind: Flush})
	}
}

func (w *Writer) send(e Event) error {
	select {
	case <-w.pipe.done:
		w.err = ErrAbandoned
		return w.err
	default:
	}
	select {
	case w.pipe.events <- e:
		return nil
	case <-w.pipe.done:
		w.err = ErrAbandoned
		return w.err
	}
}
