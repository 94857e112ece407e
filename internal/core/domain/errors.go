package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrieval indicates the evidence store could not be read.
	// Fatal to a generation run: no evidence means no mapping.
	ErrRetrieval = errors.New("evidence retrieval failed")

	// ErrIndexCorrupt indicates a persisted vector index failed its
	// integrity check on load. Fatal, no partial recovery.
	ErrIndexCorrupt = errors.New("vector index corrupt")

	// ErrGeneration indicates the LLM response could not be parsed into
	// an implemented requirement after the parse retry. Recorded as a
	// failed control; never aborts the batch.
	ErrGeneration = errors.New("control generation failed")

	// ErrProvider indicates a transport, auth, or rate-limit failure
	// from the LLM capability. Retryable at the transport boundary.
	ErrProvider = errors.New("llm provider error")

	// ErrLLMUnavailable indicates no LLM service is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	// Semantic retrieval is impossible without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
