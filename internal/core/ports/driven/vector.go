package driven

import "context"

// VectorIndex provides semantic similarity search over a fixed-dimension
// vector space. Two independent instances form the dual semantic index:
// one over fine-grained chunks, one over whole-file security summaries.
//
// The index is read-only during the generation phase; all inserts happen
// during analysis, so concurrent reads need no coordination.
type VectorIndex interface {
	// Insert adds or replaces the vector for the given id.
	Insert(ctx context.Context, id string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector, ordered
	// by decreasing similarity. k greater than the index size returns
	// every entry. An empty index returns no hits and no error.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Persist serialises the index to the given location.
	Persist(location string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched entry.
	ID string

	// Similarity is the cosine similarity score.
	Similarity float64
}
