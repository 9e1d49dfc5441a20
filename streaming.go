package llmpipeline

// DeltaSink receives raw text fragments as they arrive off the wire during a
// streaming completion. Providers invoke it from the goroutine driving the
// read loop, one fragment at a time, in arrival order.
//
// Returning a non-nil error aborts the stream: the provider stops reading,
// releases the connection, and returns the error from StreamComplete. The
// pacer uses this to stop the read loop once its context is cancelled.
type DeltaSink func(text string) error

// ChunkSink receives paced text chunks, the consumer-facing unit of delivery.
// A chunk is one or more deltas re-segmented by the DeltaPacer: bounded size,
// minimum spacing, never splitting a multi-byte character.
//
// Invocations are sequential, never concurrent with each other, and stop
// permanently once the driving context is cancelled. Concatenating every
// chunk delivered for one stream reproduces the full response text
// byte for byte. Callers that need delivery on a particular goroutine
// (a UI loop, say) re-dispatch from inside the sink themselves.
type ChunkSink func(text string)
