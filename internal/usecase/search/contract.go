package search

import (
	"github.com/kailas-cloud/kwsearch/internal/db"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/query"
)

// Handler narrows src according to one parsed clause. Wildcards have
// already been stripped from the clause values; Negated asks for an
// exclusion predicate.
type Handler[T any] func(src db.Source[T], c query.Clause) db.Source[T]

// Handlers maps lowercase keywords to their handlers. A handler registered
// under query.BareKeyword receives bare terms when the service routes them.
type Handlers[T any] map[string]Handler[T]
