// Package rank implements a debugging command that runs link extraction
// and budgeted ranking for a query, then prints the selection without
// fetching any pages or generating an answer.
package rank

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/webrag/webrag/internal/common"
	"github.com/webrag/webrag/models"
	"github.com/webrag/webrag/pkg/cache"
	"github.com/webrag/webrag/pkg/fetcher"
	"github.com/webrag/webrag/pkg/gemini"
	"github.com/webrag/webrag/pkg/links"
	"github.com/webrag/webrag/pkg/ranker"
	"github.com/webrag/webrag/pkg/retry"
)

func newLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func RankAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "Error: no query provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  webrag rank "parental leave policy"`)
		os.Exit(1)
	}

	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if c.IsSet("budget") {
		config.EmbeddingBudget = c.Int("budget")
	}
	if c.IsSet("top-k") {
		config.TopKLinks = c.Int("top-k")
	}
	if config.APIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable is required")
		os.Exit(1)
	}

	rawURLs := config.MainURLs
	if c.IsSet("urls") {
		rawURLs = strings.Split(c.String("urls"), ",")
	}
	mainURLs, invalid := common.SanitizeAndValidateURLs(rawURLs)
	for _, bad := range invalid {
		logger.Warn("skipping malformed URL", "url", bad)
	}
	if len(mainURLs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no source pages configured")
		fmt.Fprintln(os.Stderr, "Set main_urls in the config file or pass --urls")
		os.Exit(1)
	}

	ctx := c.Context

	pageFetcher := fetcher.New(config.RequestTimeout, config.UserAgent)
	extractor := links.NewExtractor(pageFetcher, logger)

	var candidates []models.CandidateLink
	for _, mainURL := range mainURLs {
		candidates = append(candidates, extractor.Extract(ctx, mainURL, config.MaxLinksPerSite)...)
	}
	logger.Info("extracted candidate links", "count", len(candidates))

	store := cache.NewFileStore(config.CacheDir, logger)
	client := gemini.NewClient(gemini.Options{
		APIKey:         config.APIKey,
		EmbeddingModel: config.EmbeddingModel,
		ChatModel:      config.ChatModel,
		Timeout:        config.RequestTimeout,
	})
	executor := retry.NewExecutor(gemini.Classify, logger)

	r := ranker.New(client, store, executor, logger)
	ranked, err := r.Rank(ctx, query, candidates, config.TopKLinks, config.EmbeddingBudget, config.MinSelected)
	if err != nil {
		logger.Error("ranking aborted", "error", err)
		os.Exit(2)
	}

	fmt.Printf("Top %d links for %q:\n", len(ranked), query)
	for i, url := range ranked {
		fmt.Printf("  %2d. %s\n", i+1, url)
	}

	return nil
}
