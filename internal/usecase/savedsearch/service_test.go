package savedsearch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/kwsearch/internal/db/sqlite"
	"github.com/kailas-cloud/kwsearch/internal/domain"
	domsaved "github.com/kailas-cloud/kwsearch/internal/domain/savedsearch"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
	reposaved "github.com/kailas-cloud/kwsearch/internal/repository/savedsearch"
)

// --- Mocks ---

type mockRunner struct {
	got  []request.Params
	page result.Page[string]
	err  error
}

func (m *mockRunner) Search(_ context.Context, p request.Params) (result.Page[string], error) {
	m.got = append(m.got, p)
	return m.page, m.err
}

// failingRepo wraps a working repository and fails selected operations.
type failingRepo struct {
	Repository
	insertErr error
	peersErr  error
}

func (f *failingRepo) Insert(ctx context.Context, s domsaved.SavedSearch) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.Repository.Insert(ctx, s)
}

func (f *failingRepo) Peers(ctx context.Context, owner string) ([]domsaved.SavedSearch, error) {
	if f.peersErr != nil {
		return nil, f.peersErr
	}
	return f.Repository.Peers(ctx, owner)
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) *reposaved.Repo {
	t.Helper()
	s, err := sqlite.Open(sqlite.Config{Path: filepath.Join(t.TempDir(), "saved.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := reposaved.New(s)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func newService(t *testing.T, repo Repository, runner Runner[string]) *Service[string] {
	t.Helper()
	list, err := ListService(repo, reposaved.Handlers(), reposaved.Fields())
	require.NoError(t, err)

	svc := New[string](repo, list, runner)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("s%02d", n)
	}
	tick := epoch
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc
}

func create(t *testing.T, svc *Service[string], owner, name, q string) domsaved.SavedSearch {
	t.Helper()
	s, err := svc.Create(context.Background(), owner, CreateParams{Name: name, Query: q})
	require.NoError(t, err)
	return s
}

func ids(items []domsaved.SavedSearch) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID()
	}
	return out
}

// --- Tests ---

func TestCreate_AssignsPositions(t *testing.T) {
	svc := newService(t, setupRepo(t), &mockRunner{})

	a := create(t, svc, "alice", "Does", "username:doe")
	b := create(t, svc, "alice", "Smiths", "last_name:smith")
	c := create(t, svc, "bob", "Mine", "id:1")

	assert.Equal(t, "s01", a.ID())
	assert.Equal(t, 0, a.Position())
	assert.Equal(t, 1, b.Position())
	assert.Equal(t, 0, c.Position(), "positions are per owner")
	assert.True(t, a.CreatedAt().After(epoch))
}

func TestCreate_Invalid(t *testing.T) {
	svc := newService(t, setupRepo(t), &mockRunner{})

	_, err := svc.Create(context.Background(), "alice", CreateParams{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.Create(context.Background(), "alice", CreateParams{Name: "x", PerPage: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestCreate_StoreErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := &failingRepo{Repository: setupRepo(t), peersErr: boom}
	svc := newService(t, repo, &mockRunner{})

	_, err := svc.Create(context.Background(), "alice", CreateParams{Name: "x"})
	assert.ErrorIs(t, err, boom)

	repo.peersErr = nil
	repo.insertErr = boom
	_, err = svc.Create(context.Background(), "alice", CreateParams{Name: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestGet_OtherOwner(t *testing.T) {
	svc := newService(t, setupRepo(t), &mockRunner{})
	a := create(t, svc, "alice", "Does", "username:doe")

	got, err := svc.Get(context.Background(), "alice", a.ID())
	require.NoError(t, err)
	assert.Equal(t, "Does", got.Name())

	_, err = svc.Get(context.Background(), "bob", a.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList(t *testing.T) {
	svc := newService(t, setupRepo(t), &mockRunner{})
	ctx := context.Background()
	create(t, svc, "alice", "Does", "username:doe")
	create(t, svc, "alice", "Smiths", "last_name:smith")
	create(t, svc, "alice", "Doe admins", "username:doe email:admin")
	create(t, svc, "bob", "Does", "username:doe")

	page, err := svc.List(ctx, "alice", request.Params{})
	require.NoError(t, err)
	assert.Equal(t, []string{"s01", "s02", "s03"}, ids(page.Items))
	assert.Equal(t, 3, page.TotalCount)

	page, err = svc.List(ctx, "alice", request.Params{Query: "name:doe", OrderBy: "name desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s01", "s03"}, ids(page.Items))

	page, err = svc.List(ctx, "alice", request.Params{Query: "", PerPage: 0})
	require.NoError(t, err)
	assert.Equal(t, []result.Code{result.CodeInvalidPerPage}, page.Errors.Codes())
}

func TestReorderAndDelete(t *testing.T) {
	svc := newService(t, setupRepo(t), &mockRunner{})
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		create(t, svc, "alice", fmt.Sprintf("Search %d", i), "")
	}

	order, err := svc.Reorder(ctx, "alice", []string{"s03", "s01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s03", "s01", "s02", "s04"}, order)

	_, err = svc.Reorder(ctx, "bob", []string{"s01"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "other owners' searches cannot be sorted")

	require.NoError(t, svc.Delete(ctx, "alice", "s01"))
	page, err := svc.List(ctx, "alice", request.Params{})
	require.NoError(t, err)
	assert.Equal(t, []string{"s03", "s02", "s04"}, ids(page.Items))
	for i, s := range page.Items {
		assert.Equal(t, i, s.Position(), s.ID())
	}

	assert.ErrorIs(t, svc.Delete(ctx, "bob", "s02"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "alice", "s01"), domain.ErrNotFound)
}

func TestRun(t *testing.T) {
	runner := &mockRunner{page: result.Page[string]{Items: []string{"doejohn"}, TotalCount: 1}}
	svc := newService(t, setupRepo(t), runner)
	ctx := context.Background()

	plain := create(t, svc, "alice", "Does", "username:doe")
	paged, err := svc.Create(ctx, "alice", CreateParams{
		Name: "Paged", Query: "last_name:doe", OrderBy: "created_at desc", PerPage: 20,
	})
	require.NoError(t, err)

	page, err := svc.Run(ctx, "alice", plain.ID(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"doejohn"}, page.Items)

	_, err = svc.Run(ctx, "alice", paged.ID(), "3")
	require.NoError(t, err)

	require.Len(t, runner.got, 2)
	assert.Equal(t, request.Params{Query: "username:doe"}, runner.got[0])
	assert.Equal(t, request.Params{
		Query: "last_name:doe", OrderBy: "created_at desc", PerPage: 20, Page: "3",
	}, runner.got[1])

	_, err = svc.Run(ctx, "bob", plain.ID(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	boom := errors.New("boom")
	runner.err = boom
	_, err = svc.Run(ctx, "alice", plain.ID(), nil)
	assert.ErrorIs(t, err, boom)
}
