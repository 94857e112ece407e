package driven

import (
	"context"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

// CatalogResolver turns an OSCAL catalog plus profile into resolved
// control descriptors: profile-tailored descriptions with parameters
// substituted and identifiers pre-assigned. Resolution failures are
// fatal to a generation run.
type CatalogResolver interface {
	// Resolve returns the descriptors for the requested control ids, in
	// request order. Unknown control ids produce domain.ErrNotFound.
	Resolve(ctx context.Context, controlIDs []string) ([]domain.ControlDescriptor, error)
}
