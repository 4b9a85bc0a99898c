package kwsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/kwsearch/internal/db/sqlite"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
	repouser "github.com/kailas-cloud/kwsearch/internal/repository/user"
	healthuc "github.com/kailas-cloud/kwsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/kwsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can swap the storage.
type userStore interface {
	Insert(ctx context.Context, u domuser.User) (domuser.User, error)
	Get(ctx context.Context, id int64) (domuser.User, error)
}

// Client is the kwsearch SDK entry point.
type Client struct {
	store     *sqlite.Store
	users     userStore
	searchSvc *searchuc.Service[domuser.User]
	healthSvc healthUseCase
	obs       *observer
}

// New opens the database, creates the user table if needed and returns a
// ready Client. The provided context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.path == "" {
		return nil, errors.New("kwsearch: database path required (use WithSQLite)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(sqlite.Config{Path: cfg.path, BusyTimeout: cfg.busyTimeout})
	if err != nil {
		return nil, fmt.Errorf("kwsearch: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("kwsearch: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store *sqlite.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	repo := repouser.New(store)
	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("kwsearch: %w", err)
	}

	svc, err := searchuc.New(repo.Source(), repouser.Handlers(), repouser.Fields())
	if err != nil {
		return nil, fmt.Errorf("kwsearch: %w", err)
	}
	if cfg.maxItems > 0 {
		svc = svc.WithMaxItems(cfg.maxItems)
	}
	svc = svc.
		WithMaxPerPage(cfg.maxPerPage).
		WithMinCharacters(cfg.minCharacters).
		WithBareTerms(cfg.bareTerms)

	return &Client{
		store:     store,
		users:     repo,
		searchSvc: svc,
		healthSvc: healthuc.New(store, store, repouser.Definition.Name),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Users returns the user directory service.
func (c *Client) Users() *UserService {
	return &UserService{store: c.users, search: c.searchSvc, obs: c.obs}
}
