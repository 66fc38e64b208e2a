// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

// ProgressFunc receives a fire-and-forget progress signal after each
// document: 1-based index, batch total, document title, and the terminal
// status. It carries no control authority back into the orchestrator.
type ProgressFunc func(index, total int, title string, status types.AnalysisStatus)

// ResultSink persists one document's artifact. Sink failures are logged
// and never affect the batch outcome.
type ResultSink interface {
	Persist(ctx context.Context, doc types.Document, art types.AnalysisArtifact) error
}

// Orchestrator processes a batch of documents strictly sequentially.
// Sequential execution is required: the documents share one invoker, and
// concurrent calls would break its spacing guarantee.
type Orchestrator struct {
	analyzer *Analyzer
	log      *zap.Logger
	progress ProgressFunc
	sinks    []ResultSink
}

// NewOrchestrator builds an orchestrator around an analyzer.
func NewOrchestrator(analyzer *Analyzer, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{analyzer: analyzer, log: log}
}

// OnProgress registers the progress callback.
func (o *Orchestrator) OnProgress(fn ProgressFunc) { o.progress = fn }

// AddSink registers a result sink invoked after each document.
func (o *Orchestrator) AddSink(s ResultSink) { o.sinks = append(o.sinks, s) }

// Run analyzes every document in order and returns the batch report.
// Every input document yields exactly one report entry regardless of
// outcome: a per-document failure is recorded and the batch continues.
func (o *Orchestrator) Run(ctx context.Context, docs []types.Document) *types.BatchReport {
	report := &types.BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	total := len(docs)
	for i, doc := range docs {
		art := o.analyzer.AnalyzeDocument(ctx, doc)

		report.Entries = append(report.Entries, types.BatchEntry{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Artifact:   art,
		})
		switch art.Status {
		case types.StatusSuccess:
			report.Succeeded++
		case types.StatusPartial:
			report.Partial++
		default:
			report.Failed++
		}

		o.persist(ctx, doc, art)

		if o.progress != nil {
			o.progress(i+1, total, doc.Title, art.Status)
		}
	}

	report.FinishedAt = time.Now()
	return report
}

func (o *Orchestrator) persist(ctx context.Context, doc types.Document, art types.AnalysisArtifact) {
	for _, sink := range o.sinks {
		if err := sink.Persist(ctx, doc, art); err != nil {
			o.log.Warn("result sink failed",
				zap.String("document", doc.ID),
				zap.Error(err),
			)
		}
	}
}
