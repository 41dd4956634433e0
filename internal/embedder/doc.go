// Package embedder converts batches of text into vector embeddings through a
// tiered provider chain.
//
// Tiers are attempted in order and the first one that succeeds serves the
// whole batch:
//
//  1. Local model: deterministic, no network, preferred when enabled.
//  2. Remote API: hosted embedding endpoint, small batches with a fixed
//     pause between them to stay under rate limits.
//  3. Randomized vectors: keeps the pipeline producing an answer instead of
//     hard-failing, at the cost of near-random retrieval quality.
//
// A failure inside a tier marks that tier unavailable for the batch; it never
// fails the batch itself. The tier that actually served a batch is reported
// on the result so callers and tests can assert retrieval quality
// expectations were met. The randomized tier in particular must be
// observable, not just a log line.
//
// Local and remote tiers share an LRU content-hash cache so repeated chunks
// are not re-encoded.
package embedder
