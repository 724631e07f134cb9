package driven

import (
	"context"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// TableSource loads the feature and quote tables.
// Tables that do not match the configured schema fail with ErrSchemaMismatch.
type TableSource interface {
	// LoadCatalog reads every table and returns them in table order
	LoadCatalog(ctx context.Context) (*domain.Catalog, error)

	// Name identifies the source in logs ("csv", "postgres")
	Name() string
}
