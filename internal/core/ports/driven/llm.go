package driven

import "context"

// LLMService is the single narrow interface behind which all LLM access
// is isolated. It is the only source of non-determinism in the
// generation pipeline; everything else is testable with a stub.
//
// Transport, auth, and rate-limit failures surface as errors wrapping
// domain.ErrProvider with enough context to retry at a higher layer.
type LLMService interface {
	// Complete produces a completion for the given prompt. The prompt
	// states the expected response structure; parsing is the caller's
	// concern.
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// CompleteOptions configures a completion request.
type CompleteOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
