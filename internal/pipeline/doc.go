// Package pipeline sequences the RAG stages: chunk the document, embed the
// chunks and the query, retrieve the most similar chunks, and generate a
// grounded answer.
//
// The pipeline is a linear state machine. Each stage records its elapsed
// time whether or not it succeeds, and the first hard failure halts the run
// with a stage label and a human-readable message on the result. Expected
// failures never surface as errors, they produce a result with Success
// false. No stage is retried here; retry lives inside the generation client.
//
// A Pipeline is stateless and safe for concurrent use; each Process call is
// independent.
package pipeline
