package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quotelens/quotelens/internal/pipeline"
	"github.com/quotelens/quotelens/internal/platform/config"
)

type analyzeFlags struct {
	text     string
	file     string
	headline string
	quote    string
	date     string
	topN     int
	topK     int
	rollcall bool
	search   bool
	debug    bool
}

func newAnalyzeCmd() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one article and print the result as JSON",
		RunE: func(*cobra.Command, []string) error {
			return runAnalyze(flags)
		},
	}

	cmd.Flags().StringVar(&flags.text, "text", "", "article text (mutually exclusive with --file)")
	cmd.Flags().StringVar(&flags.file, "file", "", "path to a file with the article text")
	cmd.Flags().StringVar(&flags.headline, "headline", "", "article headline")
	cmd.Flags().StringVar(&flags.quote, "quote", "", "analyze only this quote")
	cmd.Flags().StringVar(&flags.date, "date", "", "article date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&flags.topN, "top-n", 0, "keywords to extract (default from config)")
	cmd.Flags().IntVar(&flags.topK, "top-k", 0, "keywords per query (default from config)")
	cmd.Flags().BoolVar(&flags.rollcall, "rollcall", false, "build a transcript-archive query")
	cmd.Flags().BoolVar(&flags.search, "search", false, "run search and span matching")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "verbose logging")

	return cmd
}

func runAnalyze(flags *analyzeFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.AppEnv)
	if flags.debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.WarnLevel)
	}

	text := flags.text

	if flags.file != "" {
		data, err := os.ReadFile(flags.file)
		if err != nil {
			return fmt.Errorf("read article file: %w", err)
		}

		text = string(data)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := buildOrchestrator(cfg, &logger)

	result, err := orch.Analyze(ctx, pipeline.Request{
		Headline: flags.headline,
		Text:     text,
		Quote:    flags.quote,
		Date:     flags.date,
		TopN:     flags.topN,
		TopK:     flags.topK,
		Rollcall: flags.rollcall,
		Search:   flags.search,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(result)
}
