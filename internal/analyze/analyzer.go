// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze drives the two-stage analysis pipeline: Stage 1 extracts
// a high-resolution restatement of a paper with the fast model tier,
// Stage 2 turns it into a summary and/or slide deck with the advanced
// tier. The batch orchestrator processes documents sequentially and
// isolates per-document failures.
package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tsato-cnlab/paper-reader/internal/genai"
	"github.com/tsato-cnlab/paper-reader/internal/prompt"
	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

// Fast-tier retry defaults. The fast tier is not expected to be
// throttled in practice, so its policy is lenient: few attempts, short
// wait. The advanced-tier policy comes from configuration.
const (
	fastMaxAttempts = 3
	fastRetryWait   = 5 * time.Second
)

// Analyzer runs the per-document state machine:
// start → extracting → extracted → summarizing → slides_generating → done,
// with errored reachable from any non-terminal state. It holds no state
// beyond one document; invocations are independent and reentrant.
type Analyzer struct {
	invoker *genai.Invoker
	cfg     types.AnalysisConfig
	log     *zap.Logger

	fastPolicy genai.Policy
	proPolicy  genai.Policy
}

// New builds an Analyzer sharing the given invoker. The advanced-tier
// retry policy is derived from cfg; zero values fall back to the
// reference defaults (5 attempts, 40s wait).
func New(invoker *genai.Invoker, cfg types.AnalysisConfig, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		invoker: invoker,
		cfg:     cfg,
		log:     log,
		fastPolicy: genai.Policy{
			MaxAttempts: fastMaxAttempts,
			Wait:        fastRetryWait,
		},
		proPolicy: genai.Policy{
			MaxAttempts: cfg.GenAI.MaxAttempts,
			Wait:        cfg.GenAI.RetryWait,
		},
	}
}

// AnalyzeDocument runs both stages for one document and assembles the
// artifact. It never returns an error: every outcome, including total
// failure, is expressed in the artifact's status and error text.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc types.Document) types.AnalysisArtifact {
	art := types.AnalysisArtifact{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Authors:    doc.Authors,
	}

	// Stage 1: extraction, skipped when a prior extraction is supplied.
	extraction := doc.Extraction
	if extraction == "" {
		a.log.Debug("stage 1: extracting", zap.String("document", doc.ID))
		text, err := a.invoker.Invoke(ctx,
			a.cfg.GenAI.FastModel,
			prompt.Extraction(doc.Title, doc.Text),
			a.fastPolicy,
		)
		if err != nil {
			// Without an extraction Stage 2 cannot run: whole document fails.
			art.Status = types.StatusFailed
			art.Error = fmt.Sprintf("extraction: %v", err)
			return art
		}
		extraction = text
	}
	// The extraction survives any later failure so a re-run can resume
	// from Stage 2.
	art.Extraction = extraction

	// Stage 2: the requested sub-stages, each independently skippable.
	var (
		requested int
		produced  int
		errs      []string
	)

	if a.cfg.Mode.WantsSummary() {
		requested++
		a.log.Debug("stage 2: summarizing", zap.String("document", doc.ID))
		out, err := a.invoker.Invoke(ctx,
			a.cfg.GenAI.ProModel,
			prompt.Summary(doc.Title, extraction),
			a.proPolicy,
		)
		if err != nil {
			errs = append(errs, fmt.Sprintf("summary: %v", err))
		} else {
			art.Summary = out
			produced++
		}
	}

	if a.cfg.Mode.WantsSlides() {
		requested++
		a.log.Debug("stage 2: generating slides", zap.String("document", doc.ID))
		out, err := a.invoker.Invoke(ctx,
			a.cfg.GenAI.ProModel,
			prompt.Slides(doc.Title, doc.Authors, extraction),
			a.proPolicy,
		)
		if err != nil {
			errs = append(errs, fmt.Sprintf("slides: %v", err))
		} else {
			art.Slides = ensureMarpHeader(out)
			produced++
		}
	}

	switch {
	case produced == requested:
		art.Status = types.StatusSuccess
	case produced > 0:
		art.Status = types.StatusPartial
		art.Error = strings.Join(errs, "; ")
	default:
		art.Status = types.StatusFailed
		art.Error = strings.Join(errs, "; ")
	}
	return art
}

// ensureMarpHeader prepends a Marp front-matter block when the model
// omitted it, so the deck renders directly with Marp tooling.
func ensureMarpHeader(slides string) string {
	head := slides
	if len(head) > 100 {
		head = head[:100]
	}
	if strings.Contains(head, "marp:") {
		return slides
	}
	return "---\nmarp: true\ntheme: default\n---\n\n" + slides
}
