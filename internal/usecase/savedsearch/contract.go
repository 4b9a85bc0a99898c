package savedsearch

import (
	"context"

	"github.com/kailas-cloud/kwsearch/internal/db"
	domsaved "github.com/kailas-cloud/kwsearch/internal/domain/savedsearch"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
)

// Repository defines the storage contract for saved searches.
type Repository interface {
	Insert(ctx context.Context, s domsaved.SavedSearch) error
	Get(ctx context.Context, id string) (domsaved.SavedSearch, error)
	Delete(ctx context.Context, id string) error
	Source() db.Source[domsaved.SavedSearch]
	OwnedBy(owner string) db.Source[domsaved.SavedSearch]
	Peers(ctx context.Context, owner string) ([]domsaved.SavedSearch, error)
	Renumber(ctx context.Context, owner string, ids []string) error
}

// Runner executes a stored query against the searched records.
type Runner[R any] interface {
	Search(ctx context.Context, p request.Params) (result.Page[R], error)
}
