package kwsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/kwsearch/internal/domain/search/mode"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	path        string
	busyTimeout time.Duration

	maxItems      int
	maxPerPage    int
	minCharacters int
	bareTerms     mode.Mode

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSQLite sets the database file. ":memory:" opens a private in-memory
// database.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.path = path
	})
}

// WithBusyTimeout sets how long a connection waits on a locked database.
// Default: 5s.
func WithBusyTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.busyTimeout = d
	})
}

// WithMaxItems caps the number of matches a search may produce. Searches
// above the cap return nothing and report too_many_items. Zero disables
// the cap (default).
func WithMaxItems(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxItems = n
	})
}

// WithMaxPerPage clamps per_page. Zero disables clamping (default).
func WithMaxPerPage(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPerPage = n
	})
}

// WithMinCharacters rejects queries shorter than n characters with
// query_too_short.
func WithMinCharacters(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minCharacters = n
	})
}

// WithBareTermRouting routes terms without a keyword to the bare-term
// handler instead of dropping them.
func WithBareTermRouting() Option {
	return optionFunc(func(c *clientConfig) {
		c.bareTerms = mode.Route
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
