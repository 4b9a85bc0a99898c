package savedsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/kwsearch/internal/db"
	"github.com/kailas-cloud/kwsearch/internal/db/sqlite"
	"github.com/kailas-cloud/kwsearch/internal/domain"
	domsaved "github.com/kailas-cloud/kwsearch/internal/domain/savedsearch"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/order"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/query"
	"github.com/kailas-cloud/kwsearch/internal/usecase/search"
)

// Definition is the saved_searches table. created_at holds Unix nanoseconds.
var Definition = db.NewTable("saved_searches").
	TextKey("id").
	Text("owner").
	TextWithOpts("name", true, true).
	Text("query").
	Text("order_by").
	IntegerWithDefault("per_page", "0").
	IntegerWithDefault("position", "0").
	Integer("created_at").
	Index("owner", "position").
	MustBuild()

// byPosition lists peers in their stored order; creation time breaks ties
// left by concurrent inserts.
var byPosition = order.Spec{
	{Column: "position", Direction: order.Asc},
	{Column: "created_at", Direction: order.Asc},
}

// Repo stores saved searches in SQLite.
type Repo struct {
	store *sqlite.Store
	table *sqlite.Table[domsaved.SavedSearch]
}

// New creates a saved search repository.
func New(s *sqlite.Store) *Repo {
	return &Repo{store: s, table: sqlite.NewTable(s, Definition, scanSavedSearch)}
}

// Migrate creates the saved_searches table if needed.
func (r *Repo) Migrate(ctx context.Context) error {
	if err := r.store.CreateTable(ctx, Definition); err != nil {
		return fmt.Errorf("migrate saved searches: %w", err)
	}
	return nil
}

// Insert stores s.
func (r *Repo) Insert(ctx context.Context, s domsaved.SavedSearch) error {
	_, err := r.store.Exec(ctx, db.OpInsert,
		`INSERT INTO saved_searches (id, owner, name, query, order_by, per_page, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID(), s.Owner(), s.Name(), s.Query(), s.OrderBy(), s.PerPage(), s.Position(), s.CreatedAt().UnixNano())
	if err != nil {
		if errors.Is(err, db.ErrRowExists) {
			return fmt.Errorf("saved search %s: %w", s.ID(), domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert saved search %s: %w", s.ID(), err)
	}
	return nil
}

// Get returns a saved search by ID.
func (r *Repo) Get(ctx context.Context, id string) (domsaved.SavedSearch, error) {
	s, err := r.table.Get(ctx, "id", id)
	if err != nil {
		if errors.Is(err, db.ErrRowNotFound) {
			return domsaved.SavedSearch{}, fmt.Errorf("saved search %s: %w", id, domain.ErrNotFound)
		}
		return domsaved.SavedSearch{}, fmt.Errorf("get saved search %s: %w", id, err)
	}
	return s, nil
}

// Delete removes a saved search by ID.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.store.Exec(ctx, db.OpDelete, `DELETE FROM saved_searches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete saved search %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("saved search %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Source returns a source over every saved search.
func (r *Repo) Source() db.Source[domsaved.SavedSearch] { return r.table.Source() }

// OwnedBy returns a source over the owner's saved searches.
func (r *Repo) OwnedBy(owner string) db.Source[domsaved.SavedSearch] {
	cond, err := filter.NewMatch("owner", owner)
	if err != nil {
		return r.table.Source().None()
	}
	expr, err := filter.NewExpression([]filter.Condition{cond}, nil, nil)
	if err != nil {
		return r.table.Source().None()
	}
	return r.table.Source().Where(expr)
}

// Peers returns the owner's saved searches in position order.
func (r *Repo) Peers(ctx context.Context, owner string) ([]domsaved.SavedSearch, error) {
	items, err := r.OwnedBy(owner).OrderBy(byPosition).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saved searches of %s: %w", owner, err)
	}
	return items, nil
}

// Renumber stores positions 0..n-1 for ids, in order. The owner is implied
// by the ids; it is kept for the reorder store contract.
func (r *Repo) Renumber(ctx context.Context, _ string, ids []string) error {
	if err := r.table.Renumber(ctx, "id", "position", ids); err != nil {
		return fmt.Errorf("renumber saved searches: %w", err)
	}
	return nil
}

func scanSavedSearch(row sqlite.Scanner) (domsaved.SavedSearch, error) {
	var (
		id, owner, name, q, orderBy string
		perPage, position           int
		created                     int64
	)
	if err := row.Scan(&id, &owner, &name, &q, &orderBy, &perPage, &position, &created); err != nil {
		return domsaved.SavedSearch{}, err
	}
	return domsaved.Reconstruct(id, owner, name, q, orderBy, perPage, position, time.Unix(0, created).UTC()), nil
}

// Fields returns the sortable saved search fields. position is the default.
func Fields() order.Fields {
	return order.MustFields(
		order.Field{Name: "position", Column: "position"},
		order.Field{Name: "name", Column: "name"},
		order.Field{Name: "created_at", Column: "created_at"},
	)
}

// Handlers returns the saved search keywords:
//
//	name:doe     name starts with doe
//	query:user   query text contains user
func Handlers() search.Handlers[domsaved.SavedSearch] {
	return search.Handlers[domsaved.SavedSearch]{
		"name":  search.LikeAny[domsaved.SavedSearch]("name", query.AppendWildcard()),
		"query": search.LikeAny[domsaved.SavedSearch]("query", query.PrependWildcard(), query.AppendWildcard()),
	}
}
