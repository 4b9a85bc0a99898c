package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/kwsearch/internal/db"
	"github.com/kailas-cloud/kwsearch/internal/db/sqlite"
	"github.com/kailas-cloud/kwsearch/internal/domain"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/order"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/query"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
	"github.com/kailas-cloud/kwsearch/internal/usecase/search"
)

// Definition is the users table. created_at holds Unix nanoseconds.
var Definition = db.NewTable("users").
	IntegerKey("id").
	TextWithOpts("username", true, true).
	TextWithOpts("name", true, true).
	TextWithOpts("email", true, true).
	Integer("created_at").
	Unique("username").
	Index("created_at").
	MustBuild()

// Repo stores users in SQLite.
type Repo struct {
	store *sqlite.Store
	table *sqlite.Table[domuser.User]
}

// New creates a user repository.
func New(s *sqlite.Store) *Repo {
	return &Repo{store: s, table: sqlite.NewTable(s, Definition, scanUser)}
}

// Migrate creates the users table if needed.
func (r *Repo) Migrate(ctx context.Context) error {
	if err := r.store.CreateTable(ctx, Definition); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

// Insert stores u and returns it with its assigned ID.
func (r *Repo) Insert(ctx context.Context, u domuser.User) (domuser.User, error) {
	res, err := r.store.Exec(ctx, db.OpInsert,
		`INSERT INTO users (username, name, email, created_at) VALUES (?, ?, ?, ?)`,
		u.Username(), u.Name(), u.Email(), u.CreatedAt().UnixNano())
	if err != nil {
		if errors.Is(err, db.ErrRowExists) {
			return domuser.User{}, fmt.Errorf("user %q: %w", u.Username(), domain.ErrAlreadyExists)
		}
		return domuser.User{}, fmt.Errorf("insert user %q: %w", u.Username(), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domuser.User{}, fmt.Errorf("insert user %q: %w", u.Username(), err)
	}
	return u.WithID(id), nil
}

// Get returns a user by ID.
func (r *Repo) Get(ctx context.Context, id int64) (domuser.User, error) {
	u, err := r.table.Get(ctx, "id", id)
	if err != nil {
		if errors.Is(err, db.ErrRowNotFound) {
			return domuser.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
		}
		return domuser.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// Source returns a source over every user.
func (r *Repo) Source() db.Source[domuser.User] {
	return r.table.Source()
}

func scanUser(row sqlite.Scanner) (domuser.User, error) {
	var (
		id                    int64
		username, name, email string
		created               int64
	)
	if err := row.Scan(&id, &username, &name, &email, &created); err != nil {
		return domuser.User{}, err
	}
	return domuser.Reconstruct(id, username, name, email, time.Unix(0, created).UTC()), nil
}

// Fields returns the sortable user fields. created_at is the default.
func Fields() order.Fields {
	return order.MustFields(
		order.Field{Name: "created_at", Column: "created_at"},
		order.Field{Name: "id", Column: "id"},
		order.Field{Name: "name", Column: "name"},
		order.Field{Name: "username", Column: "username"},
		order.Field{Name: "email", Column: "email"},
	)
}

// Handlers returns the user search keywords:
//
//	username:doe      username starts with doe
//	first_name:john   name starts with john
//	last_name:doe     a later word of name starts with doe
//	email:jane@       email starts with jane@
//	id:1,2            id is 1 or 2
//	id:10..20         id between 10 and 20 inclusive
//
// Bare terms, when routed, match the start of the username or of any word
// of the name.
func Handlers() search.Handlers[domuser.User] {
	return search.Handlers[domuser.User]{
		query.BareKeyword: search.LikeColumns[domuser.User]([]search.Column{
			{Name: "username"},
			{Name: "name"},
			{Name: "name", Pattern: laterWord},
		}, query.AppendWildcard()),
		"username":   search.LikeAny[domuser.User]("username", query.AppendWildcard()),
		"first_name": search.LikeAny[domuser.User]("name", query.AppendWildcard()),
		"last_name":  search.LikeAnyFunc[domuser.User]("name", laterWord, query.AppendWildcard()),
		"email":      search.LikeAny[domuser.User]("email", query.AppendWildcard()),
		"id":         search.MatchNumbers[domuser.User]("id"),
	}
}

func laterWord(pattern string) string { return "% " + pattern }
