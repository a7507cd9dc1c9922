// Package ingest loads patents and company products from the JSON exports
// they are delivered in.
package ingest

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/prometheus"
	"github.com/BillWilson/pat-checker/internal/intelligence/openai"
)

// Record kinds, also used as the metrics label.
const (
	KindPatent  = "patent"
	KindProduct = "product"
	KindReembed = "reembed"
)

// Stats summarises one import run.
type Stats struct {
	RunID     string        `json:"run_id"`
	Kind      string        `json:"kind"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Inserted  int           `json:"inserted"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Progress is reported after every record.  Err is set when the record
// failed.
type Progress struct {
	RunID string
	Kind  string
	Done  int
	Total int
	Item  string
	Err   error
}

// ProgressFunc receives import progress.  It runs on the importing goroutine.
type ProgressFunc func(Progress)

type options struct {
	continueOnError bool
	progress        ProgressFunc
	metrics         *prometheus.AppMetrics
	logger          logging.Logger
}

// Option configures an importer.
type Option func(*options)

// WithContinueOnError keeps going after a failed record instead of stopping.
func WithContinueOnError(v bool) Option {
	return func(o *options) { o.continueOnError = v }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// WithMetrics records per-record outcomes and the run duration.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the importer's logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		metrics: prometheus.NewNopAppMetrics(),
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// run tracks one import and reports each record's outcome.
type importRun struct {
	opts  options
	stats Stats
	timer *prometheus.Timer
	log   logging.Logger
}

func newRun(kind string, total int, opts options) *importRun {
	id := uuid.NewString()
	return &importRun{
		opts:  opts,
		stats: Stats{RunID: id, Kind: kind, Total: total},
		timer: prometheus.NewTimer(opts.metrics.ImportDuration.WithLabelValues(kind)),
		log:   opts.logger.With(logging.String("run_id", id), logging.String("kind", kind)),
	}
}

// record accounts for one record and reports whether the run should stop.
// Rejected credentials stop the run even with continueOnError, since every
// later record would fail the same way.
func (r *importRun) record(item string, err error) bool {
	r.stats.Processed++
	if err != nil {
		r.stats.Failed++
		r.log.Warn("Import record failed", logging.String("item", item), logging.Err(err))
	} else {
		r.stats.Inserted++
	}
	prometheus.RecordImport(r.opts.metrics, r.stats.Kind, err)

	if r.opts.progress != nil {
		r.opts.progress(Progress{
			RunID: r.stats.RunID,
			Kind:  r.stats.Kind,
			Done:  r.stats.Processed,
			Total: r.stats.Total,
			Item:  item,
			Err:   err,
		})
	}
	return err != nil && (!r.opts.continueOnError || credentialsRejected(err))
}

func credentialsRejected(err error) bool {
	return openai.IsStatus(err, http.StatusUnauthorized) || openai.IsStatus(err, http.StatusForbidden)
}

func (r *importRun) finish() Stats {
	r.stats.Elapsed = r.timer.ObserveDuration()
	r.log.Info("Import finished",
		logging.Int("total", r.stats.Total),
		logging.Int("inserted", r.stats.Inserted),
		logging.Int("failed", r.stats.Failed),
		logging.Duration("elapsed", r.stats.Elapsed),
	)
	return r.stats
}
