package pipe

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func collect(p *Pipe) []Event {
	var events []Event
	for e := range p.Events() {
		events = append(events, e)
	}
	return events
}

func TestEventOrder(t *testing.T) {
	p := New(0)
	go p.Run(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		w.Header().Set("X-Late", "1")
		w.Write([]byte("x"))
		w.(http.Flusher).Flush()
		w.Write([]byte("y"))
		w.WriteHeader(http.StatusInternalServerError)
	}), httptest.NewRequest("GET", "/", nil))

	events := collect(p)
	if p.Err() != nil {
		t.Fatal(p.Err())
	}
	kinds := []Kind{Start, Chunk, Flush, Chunk}
	if len(events) != len(kinds) {
		t.Fatalf("Events are %v", events)
	}
	for i, kind := range kinds {
		if events[i].Kind != kind {
			t.Fatalf("Event %d is %s, expected %s", i, events[i].Kind, kind)
		}
	}
	if events[0].Status != http.StatusCreated || events[0].Header.Get("Content-Type") != "text/plain" {
		t.Fatalf("Start event is %v", events[0])
	}
	if events[0].Header.Get("X-Late") != "" {
		t.Fatal("Header changed after the status was declared")
	}
	if string(events[1].Chunk) != "x" || string(events[3].Chunk) != "y" {
		t.Fatalf("Chunks are %q and %q", events[1].Chunk, events[3].Chunk)
	}
}

func TestImplicitStatus(t *testing.T) {
	p := New(4)
	go p.Run(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusContinue)
		w.Write([]byte("body"))
	}), httptest.NewRequest("GET", "/", nil))
	events := collect(p)
	if len(events) != 2 || events[0].Kind != Start || events[0].Status != http.StatusOK {
		t.Fatalf("Events are %v", events)
	}
}

func TestChunksAreCopied(t *testing.T) {
	p := New(4)
	go p.Run(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := []byte("a")
		w.Write(b)
		b[0] = 'b'
		w.Write(b)
	}), httptest.NewRequest("GET", "/", nil))
	events := collect(p)
	if string(events[1].Chunk) != "a" || string(events[2].Chunk) != "b" {
		t.Fatalf("Chunks are %q and %q", events[1].Chunk, events[2].Chunk)
	}
}

func TestNoStatus(t *testing.T) {
	p := New(0)
	go p.Run(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ignored", "1")
	}), httptest.NewRequest("GET", "/", nil))
	if events := collect(p); len(events) != 0 || p.Err() != nil {
		t.Fatalf("Events are %v, error %v", events, p.Err())
	}
}

func TestPanic(t *testing.T) {
	p := New(0)
	go p.Run(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), httptest.NewRequest("GET", "/", nil))
	collect(p)
	var panicErr *PanicError
	if !errors.As(p.Err(), &panicErr) || panicErr.Value != "boom" || len(panicErr.Stack) == 0 {
		t.Fatalf("Error is %v", p.Err())
	}
}

func TestAbortHandler(t *testing.T) {
	p := New(0)
	go p.Run(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partial"))
		panic(http.ErrAbortHandler)
	}), httptest.NewRequest("GET", "/", nil))
	if events := collect(p); len(events) != 2 {
		t.Fatalf("Events are %v", events)
	}
	if !errors.Is(p.Err(), ErrAborted) {
		t.Fatalf("Error is %v", p.Err())
	}
}

func TestAbandonUnblocksWriter(t *testing.T) {
	p := New(0)
	writeErr := make(chan error, 1)
	go p.Run(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		for {
			if _, err := w.Write([]byte("x")); err != nil {
				writeErr <- err
				return
			}
		}
	}), httptest.NewRequest("GET", "/", nil))

	<-p.Events()
	<-p.Events()
	p.Abandon()
	p.Abandon()

	select {
	case err := <-writeErr:
		if !errors.Is(err, ErrAbandoned) {
			t.Fatalf("Write error is %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Writer still blocked after abandon")
	}
}
