// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsato-cnlab/paper-reader/internal/analyze"
	"github.com/tsato-cnlab/paper-reader/internal/convert"
	"github.com/tsato-cnlab/paper-reader/internal/genai"
	"github.com/tsato-cnlab/paper-reader/internal/library"
	"github.com/tsato-cnlab/paper-reader/internal/notion"
	"github.com/tsato-cnlab/paper-reader/internal/store"
	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

const (
	defaultFastModel = "gemini-2.0-flash-exp"
	defaultProModel  = "gemini-2.0-pro-exp"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the two-stage analysis over a batch of papers",
	Long: `Analyze loads papers from a Zotero collection (--collection) or a
directory of converted text files (--input-dir), runs Stage-1 extraction
with the fast model tier and Stage-2 summary/slide generation with the
advanced tier, and persists the results.

Calls to the generation service are spaced at least --call-spacing apart;
advanced-tier throttling is retried up to --max-attempts times with a
fixed --retry-wait between attempts. A paper that fails is recorded and
the batch continues.

With --retry-failed only papers whose stored artifact is not "success"
are re-run; papers with a surviving Stage-1 extraction resume directly
at Stage 2.`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}

	indexDir, _ := cmd.Flags().GetString("index-dir")
	st, err := store.NewStore(indexDir)
	if err != nil {
		return err
	}
	defer st.Close()

	docs, err := loadDocuments(ctx, cmd)
	if err != nil {
		return err
	}

	if retryFailed, _ := cmd.Flags().GetBool("retry-failed"); retryFailed {
		docs, err = filterFailed(ctx, st, docs)
		if err != nil {
			return err
		}
	}

	if len(docs) == 0 {
		fmt.Println("No documents to analyze.")
		return nil
	}

	client, err := generationClient(cfg.GenAI)
	if err != nil {
		return err
	}

	invoker := genai.NewInvoker(client, cfg.GenAI.CallSpacing, logger)
	analyzer := analyze.New(invoker, cfg, logger)
	orch := analyze.NewOrchestrator(analyzer, logger)

	orch.AddSink(st)

	outputDir, _ := cmd.Flags().GetString("output-dir")
	orch.AddSink(store.NewFileSink(outputDir))

	if notionCfg := notionConfig(cmd); notionCfg.Token != "" && notionCfg.DatabaseID != "" {
		orch.AddSink(notion.NewSink(notionCfg))
	}

	orch.OnProgress(func(index, total int, title string, status types.AnalysisStatus) {
		fmt.Fprintf(os.Stdout, "[%d/%d] %-8s %s\n", index, total, status, title)
	})

	fmt.Fprintf(os.Stdout, "Analyzing %d paper(s): stage 1 %s, stage 2 %s (mode %s)\n\n",
		len(docs), cfg.GenAI.FastModel, cfg.GenAI.ProModel, cfg.Mode)

	report := orch.Run(ctx, docs)

	if err := st.SaveReport(ctx, report); err != nil {
		logger.Warn("saving run report failed", zap.Error(err))
	}

	fmt.Fprintf(os.Stdout, "\nsucceeded: %d, partial: %d, failed: %d\n",
		report.Succeeded, report.Partial, report.Failed)

	if report.HasFailures() {
		return fmt.Errorf("%d of %d paper(s) did not fully succeed",
			report.Partial+report.Failed, report.Total())
	}
	return nil
}

// analysisConfig assembles the pipeline configuration from flags, with
// secrets and viper-backed environment values as fallbacks.
func analysisConfig(cmd *cobra.Command) (types.AnalysisConfig, error) {
	fastModel, _ := cmd.Flags().GetString("fast-model")
	proModel, _ := cmd.Flags().GetString("pro-model")
	provider, _ := cmd.Flags().GetString("provider")
	baseURL, _ := cmd.Flags().GetString("base-url")
	apiKey, _ := cmd.Flags().GetString("api-key")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	retryWait, _ := cmd.Flags().GetDuration("retry-wait")
	spacing, _ := cmd.Flags().GetDuration("call-spacing")
	mode, _ := cmd.Flags().GetString("mode")

	outputMode := types.OutputMode(mode)
	if !outputMode.Valid() {
		return types.AnalysisConfig{}, fmt.Errorf("invalid mode %q: use summary, slides, or both", mode)
	}

	secretKey := "gemini-api-key"
	if provider == "openai" {
		secretKey = "openai-api-key"
	}

	cfg := types.AnalysisConfig{
		GenAI: types.GenAIConfig{
			FastModel:   fastModel,
			ProModel:    proModel,
			APIKey:      secretDefault(secretKey, apiKey),
			BaseURL:     baseURL,
			Provider:    provider,
			MaxAttempts: maxAttempts,
			RetryWait:   retryWait,
			CallSpacing: spacing,
		},
		Mode: outputMode,
	}
	if cfg.GenAI.APIKey == "" {
		return types.AnalysisConfig{}, fmt.Errorf("generation API key required: set .secrets/%s or --api-key", secretKey)
	}
	return cfg, nil
}

// generationClient selects the backend for the configured provider.
func generationClient(cfg types.GenAIConfig) (genai.Client, error) {
	switch cfg.Provider {
	case "", "gemini":
		return &genai.GeminiClient{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL}, nil
	case "openai":
		return genai.NewOpenAIClient(cfg.APIKey, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: use gemini or openai", cfg.Provider)
	}
}

// loadDocuments reads the batch from the configured source.
func loadDocuments(ctx context.Context, cmd *cobra.Command) ([]types.Document, error) {
	inputDir, _ := cmd.Flags().GetString("input-dir")
	collection, _ := cmd.Flags().GetString("collection")

	switch {
	case inputDir != "":
		return library.LoadLocal(inputDir)
	case collection != "":
		client := library.NewClient(libraryConfig(cmd))
		return client.LoadDocuments(ctx, collection, convert.PDFConverter{}, os.Stdout)
	default:
		return nil, fmt.Errorf("document source required: provide --collection or --input-dir")
	}
}

// filterFailed keeps only documents whose stored artifact is not success,
// attaching any surviving Stage-1 extraction for reuse.
func filterFailed(ctx context.Context, st *store.Store, docs []types.Document) ([]types.Document, error) {
	failed, err := st.FailedExtractions(ctx)
	if err != nil {
		return nil, err
	}

	var out []types.Document
	for _, doc := range docs {
		extraction, ok := failed[doc.ID]
		if !ok {
			continue
		}
		doc.Extraction = extraction
		out = append(out, doc)
	}
	return out, nil
}

// notionConfig assembles the optional Notion sink configuration. The
// sink stays disabled unless both token and database are present.
func notionConfig(cmd *cobra.Command) types.NotionConfig {
	token, _ := cmd.Flags().GetString("notion-token")
	databaseID, _ := cmd.Flags().GetString("notion-database")

	return types.NotionConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 30 * time.Second},
		Token:      secretDefault("notion-token", token),
		DatabaseID: secretDefault("notion-database-id", databaseID),
	}
}

func addNotionFlags(cmd *cobra.Command) {
	cmd.Flags().String("notion-token", "", "Notion integration token (default: .secrets/notion-token)")
	cmd.Flags().String("notion-database", "", "Notion database ID (default: .secrets/notion-database-id)")
}

func init() {
	analyzeCmd.Flags().String("collection", "", "Zotero collection key to analyze")
	analyzeCmd.Flags().String("input-dir", "", "directory of converted paper texts (.md/.txt) instead of Zotero")
	analyzeCmd.Flags().String("mode", string(types.ModeBoth), "outputs to produce: summary, slides, or both")
	analyzeCmd.Flags().String("fast-model", defaultFastModel, "fast model tier for Stage-1 extraction")
	analyzeCmd.Flags().String("pro-model", defaultProModel, "advanced model tier for Stage-2 generation")
	analyzeCmd.Flags().String("provider", "gemini", "generation backend: gemini or openai")
	analyzeCmd.Flags().String("base-url", "", "override for the generation service endpoint")
	analyzeCmd.Flags().String("api-key", "", "generation API key (default: .secrets/)")
	analyzeCmd.Flags().Int("max-attempts", genai.DefaultMaxAttempts, "total attempt ceiling for advanced-tier calls")
	analyzeCmd.Flags().Duration("retry-wait", genai.DefaultRetryWait, "fixed wait between advanced-tier attempts")
	analyzeCmd.Flags().Duration("call-spacing", genai.DefaultCallSpacing, "minimum spacing between generation calls")
	analyzeCmd.Flags().String("output-dir", "output", "directory for per-paper output folders")
	analyzeCmd.Flags().String("index-dir", "index", "directory for the artifact database")
	analyzeCmd.Flags().Bool("retry-failed", false, "re-run only papers whose stored artifact is not success")

	addLibraryFlags(analyzeCmd)
	addNotionFlags(analyzeCmd)

	rootCmd.AddCommand(analyzeCmd)
}
