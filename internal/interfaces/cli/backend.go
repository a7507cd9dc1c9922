package cli

import (
	"context"
	"io"
	"sync"

	"github.com/BillWilson/pat-checker/internal/application/infringement"
	"github.com/BillWilson/pat-checker/internal/application/ingest"
	"github.com/BillWilson/pat-checker/internal/application/reporting"
	"github.com/BillWilson/pat-checker/internal/config"
	"github.com/BillWilson/pat-checker/internal/domain/product"
	"github.com/BillWilson/pat-checker/internal/infrastructure/database/postgres"
	"github.com/BillWilson/pat-checker/internal/infrastructure/database/postgres/repositories"
	"github.com/BillWilson/pat-checker/internal/infrastructure/database/redis"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/internal/intelligence/openai"
	"github.com/BillWilson/pat-checker/internal/intelligence/reviewer"
)

// Importer loads one JSON document of records.
type Importer interface {
	Import(ctx context.Context, r io.Reader) (ingest.Stats, error)
}

// ProductCatalog reads stored products.
type ProductCatalog interface {
	ListByCompany(ctx context.Context, company string) ([]*product.Product, error)
}

// Reembedder recomputes one company's product embeddings.
type Reembedder interface {
	Reembed(ctx context.Context, company string) (ingest.Stats, error)
}

// Migrator is the schema migration surface used by the migrate command.
type Migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

// Backend builds the services a command needs.  Nothing is dialled until a
// method is called, so migrate never needs an OpenAI key and report list
// never touches Redis.
type Backend interface {
	PatentImporter(ctx context.Context, opts ...ingest.Option) (Importer, error)
	ProductImporter(ctx context.Context, opts ...ingest.Option) (Importer, error)
	ProductReembedder(ctx context.Context, opts ...ingest.Option) (Reembedder, error)
	Products(ctx context.Context) (ProductCatalog, error)
	Analyzer(ctx context.Context) (infringement.Service, error)
	Reports(ctx context.Context) (reporting.Service, error)
	Migrator(ctx context.Context) (Migrator, error)
	Close()
}

// BackendFactory builds a Backend from loaded configuration.
type BackendFactory func(cfg *config.Config, log logging.Logger) Backend

// NewBackend returns the production Backend over PostgreSQL, Redis and
// OpenAI.
func NewBackend(cfg *config.Config, log logging.Logger) Backend {
	return &backend{cfg: cfg, log: log}
}

type backend struct {
	cfg *config.Config
	log logging.Logger

	mu   sync.Mutex
	conn *postgres.Connection
	rdb  *redis.Client
	ai   *openai.Client
}

func (b *backend) database(ctx context.Context) (*postgres.Connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		conn, err := postgres.NewConnection(ctx, b.cfg.Database, b.log)
		if err != nil {
			return nil, err
		}
		b.conn = conn
	}
	return b.conn, nil
}

func (b *backend) openAI() (*openai.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ai == nil {
		client, err := openai.NewClient(b.cfg.OpenAI, b.log)
		if err != nil {
			return nil, err
		}
		b.ai = client
	}
	return b.ai, nil
}

// cache returns nil when Redis is unreachable; analyses then run uncached.
func (b *backend) cache(ctx context.Context) redis.Cache {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rdb == nil {
		client, err := redis.NewClient(ctx, b.cfg.Redis, b.log)
		if err != nil {
			b.log.Warn("Redis unavailable, continuing without cache", logging.Err(err))
			return nil
		}
		b.rdb = client
	}
	return redis.NewRedisCache(b.rdb, b.log,
		redis.WithPrefix(b.cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(b.cfg.Analysis.CacheTTL),
	)
}

func (b *backend) PatentImporter(ctx context.Context, opts ...ingest.Option) (Importer, error) {
	conn, err := b.database(ctx)
	if err != nil {
		return nil, err
	}
	repo := repositories.NewPatentRepository(conn.Pool(), b.log)
	return ingest.NewPatentImporter(repo, append([]ingest.Option{ingest.WithLogger(b.log)}, opts...)...), nil
}

func (b *backend) ProductImporter(ctx context.Context, opts ...ingest.Option) (Importer, error) {
	ai, err := b.openAI()
	if err != nil {
		return nil, err
	}
	conn, err := b.database(ctx)
	if err != nil {
		return nil, err
	}
	repo := repositories.NewProductRepository(conn.Pool(), b.log)
	return ingest.NewProductImporter(repo, ai, append([]ingest.Option{ingest.WithLogger(b.log)}, opts...)...), nil
}

func (b *backend) ProductReembedder(ctx context.Context, opts ...ingest.Option) (Reembedder, error) {
	ai, err := b.openAI()
	if err != nil {
		return nil, err
	}
	conn, err := b.database(ctx)
	if err != nil {
		return nil, err
	}
	repo := repositories.NewProductRepository(conn.Pool(), b.log)
	return ingest.NewReembedder(repo, ai, append([]ingest.Option{ingest.WithLogger(b.log)}, opts...)...), nil
}

func (b *backend) Products(ctx context.Context) (ProductCatalog, error) {
	conn, err := b.database(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.NewProductRepository(conn.Pool(), b.log), nil
}

func (b *backend) Analyzer(ctx context.Context) (infringement.Service, error) {
	ai, err := b.openAI()
	if err != nil {
		return nil, err
	}
	conn, err := b.database(ctx)
	if err != nil {
		return nil, err
	}
	pool := conn.Pool()
	return infringement.NewAnalysisService(
		repositories.NewPatentRepository(pool, b.log),
		repositories.NewProductRepository(pool, b.log),
		repositories.NewReportRepository(pool, b.log),
		ai,
		reviewer.New(ai, b.log),
		b.cache(ctx),
		b.cfg.Analysis,
		nil,
		b.log,
	), nil
}

func (b *backend) Reports(ctx context.Context) (reporting.Service, error) {
	conn, err := b.database(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.NewListingService(repositories.NewReportRepository(conn.Pool(), b.log), b.cfg.Analysis, b.log), nil
}

func (b *backend) Migrator(ctx context.Context) (Migrator, error) {
	m, err := postgres.NewMigrator(ctx, b.cfg.Database, b.log)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (b *backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		b.conn.Close()
	}
	if b.rdb != nil {
		if err := b.rdb.Close(); err != nil {
			b.log.Warn("Failed to close Redis client", logging.Err(err))
		}
	}
}
