package transcript

import (
	"strings"
	"sync"
)

// Sink consumes the push-based chunk/end flow. *Assembler satisfies it.
type Sink interface {
	HandleChunk(fragment string)
	HandleEnd()
}

// HTTPStream adapts the gateway's incremental-body delivery — a monotonic,
// append-only response buffer reported in full on every growth — into the
// same chunk/end flow the socket path uses. One concurrency model, with
// this as the thin adapter over it.
type HTTPStream struct {
	mu   sync.Mutex
	sink Sink
	seen int
	done bool
}

// NewHTTPStream creates an adapter feeding the given sink.
func NewHTTPStream(sink Sink) *HTTPStream {
	return &HTTPStream{sink: sink}
}

// Progress is a gateway.ProgressFunc: it receives the full buffer after
// each growth event and forwards only the unseen suffix as a chunk. The
// buffer is monotonic by construction, so the suffix is always new content.
func (s *HTTPStream) Progress(buffer string) {
	s.mu.Lock()
	if s.done || len(buffer) <= s.seen {
		s.mu.Unlock()
		return
	}
	delta := buffer[s.seen:]
	s.seen = len(buffer)
	s.mu.Unlock()

	s.sink.HandleChunk(delta)
}

// Finish signals end-of-stream to the sink. Idempotent.
func (s *HTTPStream) Finish() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.mu.Unlock()

	s.sink.HandleEnd()
}

// Collector is a minimal Sink accumulating fragments verbatim, for the
// HTTP incremental mode where the source buffer needs no duplicate
// suppression. The prompt console renders from it on every growth.
type Collector struct {
	mu       sync.Mutex
	buf      strings.Builder
	done     bool
	onChange func(buffer string)
}

// NewCollector creates a collector. onChange (optional) is invoked with the
// full accumulated buffer after every appended fragment.
func NewCollector(onChange func(buffer string)) *Collector {
	return &Collector{onChange: onChange}
}

// HandleChunk appends one fragment.
func (c *Collector) HandleChunk(fragment string) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.buf.WriteString(fragment)
	buffer := c.buf.String()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(buffer)
	}
}

// HandleEnd marks the stream complete.
func (c *Collector) HandleEnd() {
	c.mu.Lock()
	c.done = true
	c.mu.Unlock()
}

// Text returns the accumulated buffer.
func (c *Collector) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Done reports whether end-of-stream was observed.
func (c *Collector) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}
