package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kwsearch/internal/access"
	"github.com/kailas-cloud/kwsearch/internal/config"
	"github.com/kailas-cloud/kwsearch/internal/db/sqlite"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
	reposaved "github.com/kailas-cloud/kwsearch/internal/repository/savedsearch"
	repouser "github.com/kailas-cloud/kwsearch/internal/repository/user"
	healthuc "github.com/kailas-cloud/kwsearch/internal/usecase/health"
	saveduc "github.com/kailas-cloud/kwsearch/internal/usecase/savedsearch"
	searchuc "github.com/kailas-cloud/kwsearch/internal/usecase/search"
)

// app is the composition root shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  *sqlite.Store
	users  *repouser.Repo
	saved  *reposaved.Repo
}

// openApp opens the database, waits for it and creates missing tables.
func openApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := sqlite.Open(sqlite.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.BusyTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.WaitForReady(ctx, cfg.ReadinessTimeout()); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		users:  repouser.New(store),
		saved:  reposaved.New(store),
	}
	if err := a.users.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	if err := a.saved.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// userSearch builds the user search service with the configured limits.
func (a *app) userSearch() (*searchuc.Service[domuser.User], error) {
	svc, err := searchuc.New(a.users.Source(), repouser.Handlers(), repouser.Fields())
	if err != nil {
		return nil, fmt.Errorf("user search: %w", err)
	}
	sc := a.cfg.Search
	if sc.MaxItems > 0 {
		svc = svc.WithMaxItems(sc.MaxItems)
	}
	return svc.
		WithMaxPerPage(sc.MaxPerPage).
		WithMinCharacters(sc.MinCharacters).
		WithBareTerms(sc.BareTerms).
		WithLogger(a.logger), nil
}

// savedSearches builds the saved search service; runner executes stored
// queries.
func (a *app) savedSearches(runner saveduc.Runner[domuser.User]) (*saveduc.Service[domuser.User], error) {
	list, err := saveduc.ListService(a.saved, reposaved.Handlers(), reposaved.Fields())
	if err != nil {
		return nil, fmt.Errorf("saved search listing: %w", err)
	}
	list = list.WithMaxPerPage(a.cfg.Search.MaxPerPage).WithLogger(a.logger)
	return saveduc.New[domuser.User](a.saved, list, runner), nil
}

func (a *app) health() *healthuc.Service {
	return healthuc.New(a.store, a.store, repouser.Definition.Name, reposaved.Definition.Name).
		WithTimeout(a.cfg.HealthTimeout())
}

func (a *app) registry() (*access.Registry, error) {
	reg, err := access.FromRoles(a.cfg.Access)
	if err != nil {
		return nil, fmt.Errorf("access policies: %w", err)
	}
	return reg, nil
}
