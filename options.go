package nodesearch

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nodesearch/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "redis" or "bleve"
	addrs     []string
	password  string
	blevePath string

	indexName        string
	readinessTimeout time.Duration
	workers          int
	maxBatchSize     int
	contributors     ContributorConfig

	entities EntityStore
	logger   *zap.Logger
}

// WithRedis stores the index in Redis 8+ with the search and JSON modules.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBleve stores the index in an embedded bleve index under path.
// An empty path keeps the index in memory. This is the default.
func WithBleve(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverBleve
		c.blevePath = path
	})
}

// WithIndexName sets the index every operation targets. Default: "website".
func WithIndexName(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
	})
}

// WithEntities sets the store entities are loaded from by id.
// Defaults to an empty MemoryStore.
func WithEntities(s EntityStore) Option {
	return optionFunc(func(c *clientConfig) {
		c.entities = s
	})
}

// WithReadinessTimeout bounds the backend readiness check in New.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithReindexWorkers sets the size of the bulk reindex pool. Default: 4.
func WithReindexWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithMaxBatchSize sets the maximum number of ids per reindex call.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithContributorConfig tunes typeahead paging and avatar size.
func WithContributorConfig(cfg ContributorConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.contributors = cfg
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
