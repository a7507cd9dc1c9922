package reviewer

import (
	"bytes"
	"context"
	"time"

	"github.com/BillWilson/pat-checker/internal/domain/product"
	"github.com/BillWilson/pat-checker/internal/domain/report"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/internal/intelligence/openai"
)

// Result is a reviewed analysis.  Only the typed fields survive parsing.
type Result struct {
	Analysis *report.Analysis
}

// Reviewer asks the chat model for an infringement analysis.
type Reviewer struct {
	chat   openai.ChatCompleter
	logger logging.Logger
}

// New returns a Reviewer backed by chat.
func New(chat openai.ChatCompleter, log logging.Logger) *Reviewer {
	return &Reviewer{chat: chat, logger: log.Named("reviewer")}
}

// Review sends the question and candidate products to the model and parses
// the reply.  Transport failures come back as upstream errors; an empty,
// malformed or incomplete reply is a serialization error.
func (r *Reviewer) Review(ctx context.Context, question string, products []*product.Product) (*Result, error) {
	prompt, err := ChatPrompt(question, products)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content, err := r.chat.ChatJSON(ctx, SystemMessage, prompt)
	if err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace([]byte(content))
	analysis, err := report.ParseAnalysis(raw)
	if err != nil {
		r.logger.Warn("Model reply rejected",
			logging.Int("content_bytes", len(raw)),
			logging.Err(err),
		)
		return nil, err
	}

	r.logger.Debug("Model reply accepted",
		logging.Int("products", len(analysis.TopInfringingProducts)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return &Result{Analysis: analysis}, nil
}
