package llmpipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestNewDeltaPacer_Defaults(t *testing.T) {
	p := NewDeltaPacer(func(string) {})

	if p.chunkSize != DefaultChunkSize {
		t.Errorf("expected chunk size %d, got %d", DefaultChunkSize, p.chunkSize)
	}
	if p.minInterval != DefaultMinInterval {
		t.Errorf("expected min interval %v, got %v", DefaultMinInterval, p.minInterval)
	}
}

// Three fragments of 50, 50, and 10 characters against an 80-character
// threshold must come out as exactly one 80-character chunk and one
// 30-character chunk, in order, with nothing left for the final flush.
func TestDeltaPacer_ChunkArithmetic(t *testing.T) {
	var chunks []string
	p := NewDeltaPacerWith(func(text string) {
		chunks = append(chunks, text)
	}, PacerConfig{ChunkSize: 80, MinInterval: 60 * time.Millisecond})

	ctx := context.Background()
	fragments := []string{
		strings.Repeat("a", 50),
		strings.Repeat("b", 50),
		strings.Repeat("c", 10),
	}

	for _, frag := range fragments {
		if err := p.Push(ctx, frag); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}
	if err := p.Finish(ctx); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunkLengths(chunks))
	}
	if got := utf8.RuneCountInString(chunks[0]); got != 80 {
		t.Errorf("expected first chunk of 80 chars, got %d", got)
	}
	if got := utf8.RuneCountInString(chunks[1]); got != 30 {
		t.Errorf("expected second chunk of 30 chars, got %d", got)
	}

	want := strings.Join(fragments, "")
	if got := strings.Join(chunks, ""); got != want {
		t.Errorf("chunk concatenation does not match fragment concatenation\ngot:  %q\nwant: %q", got, want)
	}
}

// A remainder below threshold at stream end is emitted exactly once, by the
// final flush.
func TestDeltaPacer_FinalFlush(t *testing.T) {
	var chunks []string
	p := NewDeltaPacerWith(func(text string) {
		chunks = append(chunks, text)
	}, PacerConfig{ChunkSize: 80, MinInterval: 60 * time.Millisecond})

	ctx := context.Background()
	frag := strings.Repeat("x", 30)

	if err := p.Push(ctx, frag); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := p.Finish(ctx); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != frag {
		t.Errorf("expected flushed chunk %q, got %q", frag, chunks[0])
	}

	// A second Finish must not re-deliver anything.
	if err := p.Finish(ctx); err != nil {
		t.Fatalf("second Finish failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("remainder delivered more than once: %d chunks", len(chunks))
	}
}

// Sub-threshold fragments flush as a short chunk once the pacing interval
// has passed, instead of stalling until stream end.
func TestDeltaPacer_TrickleFlush(t *testing.T) {
	var chunks []string
	p := NewDeltaPacerWith(func(text string) {
		chunks = append(chunks, text)
	}, PacerConfig{ChunkSize: 80, MinInterval: 20 * time.Millisecond})

	ctx := context.Background()

	if err := p.Push(ctx, strings.Repeat("a", 30)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("fragment within the pacing interval should stay buffered, got %d chunks", len(chunks))
	}

	time.Sleep(40 * time.Millisecond)

	if err := p.Push(ctx, strings.Repeat("b", 10)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected trickle flush after interval elapsed, got %d chunks", len(chunks))
	}
	want := strings.Repeat("a", 30) + strings.Repeat("b", 10)
	if chunks[0] != want {
		t.Errorf("expected flushed chunk %q, got %q", want, chunks[0])
	}
}

// Concatenating delivered chunks always equals concatenating pushed
// fragments, whatever the fragment sizes.
func TestDeltaPacer_NoLossNoReorder(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
	}{
		{
			name:      "single large fragment",
			fragments: []string{strings.Repeat("abcdefgh", 60)},
		},
		{
			name:      "many tiny fragments",
			fragments: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
		},
		{
			name: "mixed sizes with multi-byte text",
			fragments: []string{
				strings.Repeat("é", 45),
				"plain ascii run ",
				strings.Repeat("日本語", 40),
				"tail",
			},
		},
		{
			name:      "empty fragments interleaved",
			fragments: []string{"start", "", strings.Repeat("m", 200), "", "end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var chunks []string
			p := NewDeltaPacerWith(func(text string) {
				chunks = append(chunks, text)
			}, PacerConfig{ChunkSize: 80, MinInterval: time.Millisecond})

			ctx := context.Background()
			for _, frag := range tt.fragments {
				if err := p.Push(ctx, frag); err != nil {
					t.Fatalf("Push failed: %v", err)
				}
			}
			if err := p.Finish(ctx); err != nil {
				t.Fatalf("Finish failed: %v", err)
			}

			want := strings.Join(tt.fragments, "")
			if got := strings.Join(chunks, ""); got != want {
				t.Errorf("chunk concatenation does not match fragment concatenation\ngot:  %q\nwant: %q", got, want)
			}
		})
	}
}

// Chunk boundaries must land on character boundaries even when the buffer
// holds multi-byte text.
func TestDeltaPacer_MultiByteBoundaries(t *testing.T) {
	var chunks []string
	p := NewDeltaPacerWith(func(text string) {
		chunks = append(chunks, text)
	}, PacerConfig{ChunkSize: 80, MinInterval: time.Millisecond})

	ctx := context.Background()
	frag := strings.Repeat("世", 100)

	if err := p.Push(ctx, frag); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := p.Finish(ctx); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is not valid UTF-8 (boundary split a character)", i)
		}
	}
	if got := utf8.RuneCountInString(chunks[0]); got != 80 {
		t.Errorf("expected full chunk of 80 chars, got %d", got)
	}
	if got := utf8.RuneCountInString(chunks[1]); got != 20 {
		t.Errorf("expected remainder chunk of 20 chars, got %d", got)
	}
}

// Once the context is cancelled, nothing further reaches the sink; Push and
// Finish report the cancellation.
func TestDeltaPacer_CancellationStopsDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var chunks []string
	p := NewDeltaPacerWith(func(text string) {
		chunks = append(chunks, text)
		cancel() // caller bails right after the first chunk
	}, PacerConfig{ChunkSize: 80, MinInterval: time.Millisecond})

	err := p.Push(ctx, strings.Repeat("a", 240))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from Push, got %v", err)
	}
	if !IsCancellation(err) {
		t.Error("cancellation should be classified by IsCancellation")
	}
	if len(chunks) != 1 {
		t.Fatalf("expected delivery to stop after cancellation, got %d chunks", len(chunks))
	}

	if err := p.Push(ctx, "more"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled from Push after cancel, got %v", err)
	}
	if err := p.Finish(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled from Finish after cancel, got %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("sink invoked after cancellation: %d chunks", len(chunks))
	}
}

func chunkLengths(chunks []string) []int {
	lengths := make([]int, len(chunks))
	for i, c := range chunks {
		lengths[i] = utf8.RuneCountInString(c)
	}
	return lengths
}
