package user_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/kwsearch/internal/db/sqlite"
	"github.com/kailas-cloud/kwsearch/internal/domain"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
	repouser "github.com/kailas-cloud/kwsearch/internal/repository/user"
	"github.com/kailas-cloud/kwsearch/internal/usecase/search"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// setupRepo creates a temporary SQLite store with the users table.
func setupRepo(t *testing.T) *repouser.Repo {
	t.Helper()
	s, err := sqlite.Open(sqlite.Config{Path: filepath.Join(t.TempDir(), "users.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := repouser.New(s)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func insert(t *testing.T, repo *repouser.Repo, username, name string, minute int) domuser.User {
	t.Helper()
	u, err := domuser.New(username, name, username+"@example.com", epoch.Add(time.Duration(minute)*time.Minute))
	require.NoError(t, err)
	u, err = repo.Insert(context.Background(), u)
	require.NoError(t, err)
	return u
}

// seedDoes inserts John, Jane and Jack Doe, then n unrelated users.
func seedDoes(t *testing.T, repo *repouser.Repo, n int) {
	t.Helper()
	insert(t, repo, "doejohn", "John Doe", 0)
	insert(t, repo, "doejane", "Jane Doe", 1)
	insert(t, repo, "doejack", "Jack Doe", 2)
	for i := 0; i < n; i++ {
		insert(t, repo, fmt.Sprintf("user%03d", i), fmt.Sprintf("Person%03d Smith", i), 3+i)
	}
}

func newService(t *testing.T, repo *repouser.Repo) *search.Service[domuser.User] {
	t.Helper()
	svc, err := search.New(repo.Source(), repouser.Handlers(), repouser.Fields())
	require.NoError(t, err)
	return svc
}

func usernames(users []domuser.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Username()
	}
	return out
}

func run(t *testing.T, svc *search.Service[domuser.User], p request.Params) result.Page[domuser.User] {
	t.Helper()
	page, err := svc.Search(context.Background(), p)
	require.NoError(t, err)
	return page
}

// --- Repo ---

func TestRepo_InsertAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	u := insert(t, repo, "doejohn", "John Doe", 5)
	assert.NotZero(t, u.ID())

	got, err := repo.Get(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "doejohn", got.Username())
	assert.Equal(t, "John Doe", got.Name())
	assert.Equal(t, "doejohn@example.com", got.Email())
	assert.True(t, got.CreatedAt().Equal(epoch.Add(5*time.Minute)))

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_DuplicateUsername(t *testing.T) {
	repo := setupRepo(t)
	insert(t, repo, "doejohn", "John Doe", 0)

	dup, err := domuser.New("DoeJohn", "Another John", "other@example.com", epoch)
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists, "usernames are unique regardless of case")
}

// --- Search over SQLite ---

func TestSearch_Username(t *testing.T) {
	repo := setupRepo(t)
	seedDoes(t, repo, 100)
	svc := newService(t, repo)

	for _, q := range []string{"username:doe", "username:dOe", "USERNAME:DoE"} {
		page := run(t, svc, request.Params{Query: q})
		assert.Equal(t, []string{"doejohn", "doejane", "doejack"}, usernames(page.Items), q)
		assert.Equal(t, 3, page.TotalCount, q)
		assert.Empty(t, page.Errors, q)
	}
}

func TestSearch_OrderDescending(t *testing.T) {
	repo := setupRepo(t)
	seedDoes(t, repo, 100)
	svc := newService(t, repo)

	page := run(t, svc, request.Params{Query: "username:doe", OrderBy: "created_at desc, id desc"})
	assert.Equal(t, []string{"doejack", "doejane", "doejohn"}, usernames(page.Items))

	page = run(t, svc, request.Params{Query: "username:doe", OrderBy: "CrEaTeD_aT dEsC, Id DeSc"})
	assert.Equal(t, []string{"doejack", "doejane", "doejohn"}, usernames(page.Items))

	page = run(t, svc, request.Params{Query: "username:doe", OrderBy: map[string]any{"name": "desc"}})
	assert.Equal(t, []string{"doejohn", "doejane", "doejack"}, usernames(page.Items))

	page = run(t, svc, request.Params{Query: "username:doe", OrderBy: "password desc"})
	assert.Equal(t, []string{"doejohn", "doejane", "doejack"}, usernames(page.Items), "unknown fields fall back")
}

func TestSearch_Names(t *testing.T) {
	repo := setupRepo(t)
	seedDoes(t, repo, 10)
	svc := newService(t, repo)

	page := run(t, svc, request.Params{Query: "last_name:dOe"})
	assert.Equal(t, []string{"doejohn", "doejane", "doejack"}, usernames(page.Items))

	page = run(t, svc, request.Params{Query: "first_name:jOhN last_name:DoE"})
	assert.Equal(t, []string{"doejohn"}, usernames(page.Items))

	page = run(t, svc, request.Params{Query: "first_name:JoHn,JaNe last_name:dOe"})
	assert.Equal(t, []string{"doejohn", "doejane"}, usernames(page.Items))

	page = run(t, svc, request.Params{Query: "-last_name:doe", PerPage: 100})
	assert.Equal(t, 10, page.TotalCount)
}

func TestSearch_Pagination(t *testing.T) {
	repo := setupRepo(t)
	seedDoes(t, repo, 100)
	svc := newService(t, repo)

	tests := []struct {
		page      any
		wantItems int
		wantFirst string
	}{
		{nil, 20, "doejohn"},
		{2, 20, "user017"},
		{"6", 3, "user097"},
		{1000, 0, ""},
	}
	for _, tt := range tests {
		page := run(t, svc, request.Params{Query: "", PerPage: 20, Page: tt.page})
		require.Len(t, page.Items, tt.wantItems, "page %v", tt.page)
		assert.Equal(t, 103, page.TotalCount, "page %v", tt.page)
		assert.Empty(t, page.Errors)
		if tt.wantFirst != "" {
			assert.Equal(t, tt.wantFirst, page.Items[0].Username(), "page %v", tt.page)
		}
	}
}

func TestSearch_TooManyItems(t *testing.T) {
	repo := setupRepo(t)
	seedDoes(t, repo, 47)
	svc := newService(t, repo).WithMaxItems(10)

	page := run(t, svc, request.Params{Query: ""})
	assert.Empty(t, page.Items)
	assert.Equal(t, 50, page.TotalCount)
	assert.True(t, page.Errors.Has(result.CodeTooManyItems))
	assert.False(t, page.Failed())

	q := "username:a,b,c,d,e,f,g,h,i,j,k,l,m,n,o,p,q,r,s,t,u,v,w,x,y,z,0,1,2,3,4,5,6,7,8,9,-,_"
	page = run(t, svc, request.Params{Query: q, PerPage: 5})
	assert.Empty(t, page.Items)
	assert.Equal(t, 50, page.TotalCount)
	assert.Equal(t, []result.Code{result.CodeTooManyItems}, page.Errors.Codes())
}

func TestSearch_IDAndEmail(t *testing.T) {
	repo := setupRepo(t)
	seedDoes(t, repo, 3)
	svc := newService(t, repo)

	page := run(t, svc, request.Params{Query: "id:1,3,abc", OrderBy: "id desc"})
	assert.Equal(t, []string{"doejack", "doejohn"}, usernames(page.Items))

	page = run(t, svc, request.Params{Query: "email:doej"})
	assert.Equal(t, 3, page.TotalCount)

	page = run(t, svc, request.Params{Query: "id:2..3,..1"})
	assert.Equal(t, []string{"doejohn", "doejane", "doejack"}, usernames(page.Items))

	page = run(t, svc, request.Params{Query: "-id:2.."})
	assert.Equal(t, []string{"doejohn"}, usernames(page.Items))

	page = run(t, svc, request.Params{Query: `-id:2 username:"doe"`})
	assert.Equal(t, []string{"doejohn", "doejack"}, usernames(page.Items))
}

func TestSearch_UnderscoreIsLiteral(t *testing.T) {
	repo := setupRepo(t)
	insert(t, repo, "a_b", "Under Score", 0)
	insert(t, repo, "axb", "Ex Bee", 1)
	svc := newService(t, repo)

	page := run(t, svc, request.Params{Query: "username:a_"})
	assert.Equal(t, []string{"a_b"}, usernames(page.Items))
}

func TestSearch_BareTerms(t *testing.T) {
	repo := setupRepo(t)
	seedDoes(t, repo, 2)
	insert(t, repo, "jsmith", "Janet Smith", 10)
	svc := newService(t, repo)

	page := run(t, svc, request.Params{Query: "jan"})
	assert.Equal(t, 6, page.TotalCount, "bare terms are dropped by default")

	routed := svc.WithBareTerms(mode.Route)

	page = run(t, routed, request.Params{Query: "jan"})
	assert.Equal(t, []string{"doejane", "jsmith"}, usernames(page.Items))

	page = run(t, routed, request.Params{Query: "smith -person000"})
	assert.Equal(t, []string{"user001", "jsmith"}, usernames(page.Items))

	page = run(t, routed, request.Params{Query: "doe username:doeja"})
	assert.Equal(t, []string{"doejane", "doejack"}, usernames(page.Items))
}
