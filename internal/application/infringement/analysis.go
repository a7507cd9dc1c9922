// Package infringement runs the patent-versus-company analysis pipeline.
package infringement

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/singleflight"

	"github.com/BillWilson/pat-checker/internal/config"
	"github.com/BillWilson/pat-checker/internal/domain/patent"
	"github.com/BillWilson/pat-checker/internal/domain/product"
	"github.com/BillWilson/pat-checker/internal/domain/report"
	"github.com/BillWilson/pat-checker/internal/infrastructure/database/redis"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/prometheus"
	"github.com/BillWilson/pat-checker/internal/intelligence/openai"
	"github.com/BillWilson/pat-checker/internal/intelligence/reviewer"
	appErrors "github.com/BillWilson/pat-checker/pkg/errors"
)

const (
	cacheKeyPrefix = "analysis:"
	cacheName      = "analysis"
)

// Reviewer produces an analysis for a question and its candidate products.
type Reviewer interface {
	Review(ctx context.Context, question string, products []*product.Product) (*reviewer.Result, error)
}

// AnalyzeOutput is the flattened report body.  Body is byte-identical to what
// an earlier request for the same pair returned while the cache entry lives.
type AnalyzeOutput struct {
	Body   json.RawMessage
	Cached bool

	// Report is nil when Body came from the cache.
	Report *report.Report
}

// Service is the analysis entry point used by the HTTP and CLI layers.
type Service interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeOutput, error)
}

// AnalysisService implements Service.
type AnalysisService struct {
	patents  patent.Repository
	products product.Repository
	reports  report.Repository
	embedder openai.Embedder
	reviewer Reviewer
	cache    redis.Cache
	metrics  *prometheus.AppMetrics
	logger   logging.Logger

	cacheTTL time.Duration
	topK     int
	timeout  time.Duration
	group    singleflight.Group
}

var _ Service = (*AnalysisService)(nil)

// NewAnalysisService wires the pipeline.  cache may be nil, in which case
// every request is computed.
func NewAnalysisService(
	patents patent.Repository,
	products product.Repository,
	reports report.Repository,
	embedder openai.Embedder,
	rev Reviewer,
	cache redis.Cache,
	cfg config.AnalysisConfig,
	metrics *prometheus.AppMetrics,
	log logging.Logger,
) *AnalysisService {
	if cfg.TopK <= 0 {
		cfg.TopK = config.DefaultTopK
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = config.DefaultCacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultAnalysisTimeout
	}
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}
	return &AnalysisService{
		patents:  patents,
		products: products,
		reports:  reports,
		embedder: embedder,
		reviewer: rev,
		cache:    cache,
		metrics:  metrics,
		logger:   log.Named("analysis"),
		cacheTTL: cfg.CacheTTL,
		topK:     cfg.TopK,
		timeout:  cfg.Timeout,
	}
}

// CacheKey derives the cache key for a normalized pair.  The NUL separator
// keeps ("ab","c") and ("a","bc") apart.
func CacheKey(patentID, companyName string) string {
	sum := sha256.Sum256([]byte(patentID + "\x00" + companyName))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Analyze returns the infringement report for in, from cache when possible.
// Concurrent misses for the same pair share one computation.
func (s *AnalysisService) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeOutput, error) {
	start := time.Now()
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	log := s.logger.WithContext(ctx).With(
		logging.String(logging.FieldPatentID, in.PatentID),
		logging.String(logging.FieldCompanyName, in.CompanyName),
	)
	key := CacheKey(in.PatentID, in.CompanyName)

	if body, ok := s.lookup(ctx, key, log); ok {
		prometheus.RecordAnalysis(s.metrics, prometheus.OutcomeCacheHit, time.Since(start))
		return &AnalyzeOutput{Body: body, Cached: true}, nil
	}

	// The computation outlives any single caller: a caller that goes away
	// stops waiting, the others still get the result.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.compute(cctx, in, key, log)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = appErrors.Wrap(ctx.Err(), appErrors.ErrCodeTimeout, "analysis request ended before the result was ready")
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		prometheus.RecordAnalysis(s.metrics, prometheus.OutcomeError, time.Since(start))
		prometheus.RecordError(s.metrics, cacheName, string(appErrors.GetCode(err)))
		return nil, err
	}

	outcome := prometheus.OutcomeComputed
	if shared {
		outcome = prometheus.OutcomeShared
	}
	prometheus.RecordAnalysis(s.metrics, outcome, time.Since(start))
	return v.(*AnalyzeOutput), nil
}

func (s *AnalysisService) lookup(ctx context.Context, key string, log logging.Logger) (json.RawMessage, bool) {
	if s.cache == nil {
		return nil, false
	}
	body, err := s.cache.Get(ctx, key)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			log.Warn("Analysis cache read failed, computing instead", logging.Err(err))
		}
		prometheus.RecordCacheAccess(s.metrics, cacheName, false)
		return nil, false
	}
	prometheus.RecordCacheAccess(s.metrics, cacheName, true)
	return body, true
}

func (s *AnalysisService) compute(ctx context.Context, in AnalyzeInput, key string, log logging.Logger) (*AnalyzeOutput, error) {
	p, err := s.patents.FindByPublicationNumber(ctx, in.PatentID)
	if err != nil {
		return nil, err
	}

	question, err := reviewer.SearchPrompt(p)
	if err != nil {
		return nil, err
	}

	embedStart := time.Now()
	values, err := s.embedder.Embed(ctx, question)
	prometheus.RecordUpstreamCall(s.metrics, "embed", err, time.Since(embedStart))
	if err != nil {
		return nil, err
	}

	candidates, err := s.products.NearestByCompany(ctx, in.CompanyName, pgvector.NewVector(values), s.topK)
	if err != nil {
		return nil, err
	}
	s.metrics.AnalysisProductsFound.WithLabelValues().Observe(float64(len(candidates)))

	chatStart := time.Now()
	result, err := s.reviewer.Review(ctx, question, candidates)
	var upstreamErr error
	if appErrors.IsUpstream(err) {
		upstreamErr = err
	}
	prometheus.RecordUpstreamCall(s.metrics, "chat", upstreamErr, time.Since(chatStart))
	if err != nil {
		return nil, err
	}

	payload, err := result.Analysis.Payload()
	if err != nil {
		return nil, err
	}
	rep, err := report.New(in.PatentID, in.CompanyName, payload)
	if err != nil {
		return nil, err
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}

	body, err := rep.MarshalAnalysis()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, body, s.cacheTTL); err != nil {
			log.Warn("Failed to cache analysis", logging.Err(err))
		}
	}

	log.Info("Analysis computed",
		logging.Int64("report_id", rep.ID),
		logging.Int("candidates", len(candidates)),
		logging.Int("infringing_products", len(result.Analysis.TopInfringingProducts)),
	)
	return &AnalyzeOutput{Body: body, Report: rep}, nil
}
