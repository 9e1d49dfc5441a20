package llmpipeline

import (
	"context"
	"time"
	"unicode/utf8"
)

// Pacing defaults. A chunk of ~80 characters every ~18ms reads as smooth
// typing; raw network deltas arrive in bursts of a few characters to a few
// hundred.
const (
	// DefaultChunkSize is the chunk threshold in characters (runes, not
	// bytes, so a chunk boundary can never split a multi-byte character).
	DefaultChunkSize = 80

	// DefaultMinInterval is the minimum spacing between chunk deliveries.
	DefaultMinInterval = 18 * time.Millisecond
)

// PacerConfig tunes a DeltaPacer. Zero fields take the defaults.
type PacerConfig struct {
	// ChunkSize is the delivery threshold in characters.
	ChunkSize int

	// MinInterval is the minimum time between deliveries.
	MinInterval time.Duration
}

// DeltaPacer converts an unbounded-rate sequence of small text fragments
// into a bounded-rate sequence of consumer-visible chunks. One pacer serves
// one stream: fragments go in through Push in arrival order, chunks come out
// through the sink, and Finish flushes whatever remains when the stream ends.
//
// Guarantees:
//   - Concatenating all delivered chunks equals concatenating all pushed
//     fragments. Nothing is dropped, duplicated, or reordered.
//   - No chunk boundary splits a multi-byte character.
//   - The sink is never invoked after the driving context is cancelled;
//     Push and Finish return the context error instead.
//
// The pacer is not safe for concurrent use; the goroutine reading the
// stream drives it.
type DeltaPacer struct {
	sink        ChunkSink
	chunkSize   int
	minInterval time.Duration

	buf  []byte
	last time.Time
}

// NewDeltaPacer creates a pacer with default pacing that delivers to sink.
func NewDeltaPacer(sink ChunkSink) *DeltaPacer {
	return NewDeltaPacerWith(sink, PacerConfig{})
}

// NewDeltaPacerWith creates a pacer with the given configuration.
// Zero config fields take the package defaults.
func NewDeltaPacerWith(sink ChunkSink, cfg PacerConfig) *DeltaPacer {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	return &DeltaPacer{
		sink:        sink,
		chunkSize:   cfg.ChunkSize,
		minInterval: cfg.MinInterval,
		// Seed the delivery clock at construction so the first
		// sub-threshold fragment is not flushed on arrival.
		last: time.Now(),
	}
}

// Push appends one arriving fragment and delivers whatever the pacing policy
// allows. While the buffer holds at least ChunkSize characters, full chunks
// are cut from the front and delivered with MinInterval spacing. A push that
// leaves the buffer below threshold flushes the remainder as one short chunk
// if the interval since the last delivery has already passed.
func (p *DeltaPacer) Push(ctx context.Context, fragment string) error {
	p.buf = append(p.buf, fragment...)

	if utf8.RuneCount(p.buf) >= p.chunkSize {
		return p.drain(ctx)
	}

	// Trickle flush: a stream of fragments that never reaches the
	// threshold must not stall indefinitely.
	if len(p.buf) > 0 && time.Since(p.last) >= p.minInterval {
		return p.flush(ctx)
	}
	return nil
}

// Finish flushes any buffered remainder unconditionally, regardless of
// timing, as the final chunk. Call it exactly once, when the stream ends.
func (p *DeltaPacer) Finish(ctx context.Context) error {
	if len(p.buf) == 0 {
		return nil
	}
	return p.flush(ctx)
}

// drain repeatedly cuts ChunkSize characters from the buffer front,
// delivering each with the pacing pause, until under threshold.
func (p *DeltaPacer) drain(ctx context.Context) error {
	for utf8.RuneCount(p.buf) >= p.chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.emit(p.cutChunk())
		if err := p.pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

// flush delivers the whole remaining buffer as one chunk.
func (p *DeltaPacer) flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := string(p.buf)
	p.buf = p.buf[:0]
	p.emit(out)
	return nil
}

// cutChunk removes exactly chunkSize characters from the buffer front.
// The split offset is found by decoding runes, never by byte arithmetic.
func (p *DeltaPacer) cutChunk() string {
	off := 0
	for i := 0; i < p.chunkSize; i++ {
		_, size := utf8.DecodeRune(p.buf[off:])
		off += size
	}
	head := string(p.buf[:off])
	p.buf = p.buf[off:]
	return head
}

func (p *DeltaPacer) emit(chunk string) {
	p.sink(chunk)
	p.last = time.Now()
}

// pause waits the minimum interval, or returns early with the context error.
func (p *DeltaPacer) pause(ctx context.Context) error {
	t := time.NewTimer(p.minInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
