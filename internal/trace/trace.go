// Package trace provides the write-only, append-only trace sink that both
// recognizers write their step-by-step rows to.
//
// Sink is an interface passed into each recognizer rather than a
// process-wide singleton; Default is just one implementation of it —
// callers that want a single ambient sink can use Default, but nothing in
// this package forces them to.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink accepts formatted trace lines, one per recognizer step, in strict
// step order. Closing and flushing are the sink's own responsibility, not
// the caller's.
type Sink interface {
	Write(line string)
}

// Writef is a convenience for the common "format then Write" pattern.
func Writef(s Sink, format string, args ...any) {
	s.Write(fmt.Sprintf(format, args...))
}

// MemorySink accumulates lines in memory; used by tests that want to assert
// on the exact trace a recognizer produced.
type MemorySink struct {
	mu    sync.Mutex
	Lines []string
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write appends line to Lines.
func (m *MemorySink) Write(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lines = append(m.Lines, line)
}

// FileSink is a buffered, append-only Sink backed by an io.Writer (typically
// an *os.File opened in append mode).
type FileSink struct {
	mu sync.Mutex
	w  *bufio.Writer
	f  io.Closer
}

// NewFileSink opens path for appending and returns a Sink backed by it. The
// caller must call Close when done to flush and release the file.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file %q: %w", path, err)
	}
	return &FileSink{w: bufio.NewWriter(f), f: f}, nil
}

// Write appends line plus a trailing newline to the file.
func (s *FileSink) Write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

// Flush flushes any buffered output to disk without closing the file.
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.f.Close()
}

// WriterSink writes lines to an arbitrary io.Writer, one line each. Used
// for the stdout trace destination.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a Sink that writes to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write writes line plus a trailing newline to the underlying writer.
func (s *WriterSink) Write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

// Multi returns a Sink that writes every line to each of sinks, in order.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Write(line string) {
	for _, s := range m {
		s.Write(line)
	}
}

// NullSink discards every line written to it. Used where a Sink is required
// by an API but the caller has no interest in the trace: it is the initial
// Default, and the sink config.BuildSink returns for the "none" destination.
type NullSink struct{}

// Write discards line.
func (NullSink) Write(string) {}

var (
	defaultMu   sync.Mutex
	defaultSink Sink = NullSink{}
)

// SetDefault installs s as the sink returned by Default. Intended for use at
// process startup by cmd/psmith and cmd/psmithd; not for use by library code
// or tests, which should construct and pass their own Sink explicitly.
func SetDefault(s Sink) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSink = s
}

// Default returns the process-wide sink installed by SetDefault, or a
// NullSink if none has been installed. This exists purely as one
// implementation choice for callers (like the one-shot CLI) that genuinely
// want a single ambient sink; it is not required by anything in
// internal/ll1 or internal/lr0, both of which take a Sink as an explicit
// parameter.
func Default() Sink {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultSink
}
