// Package ask implements the end-to-end question answering command:
// extract candidate links, rank them under the embedding budget, fetch
// and chunk the winners, index the chunks and generate an answer.
package ask

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/webrag/webrag/internal/common"
	"github.com/webrag/webrag/models"
	"github.com/webrag/webrag/pkg/cache"
	"github.com/webrag/webrag/pkg/chain"
	"github.com/webrag/webrag/pkg/db"
	"github.com/webrag/webrag/pkg/docs"
	"github.com/webrag/webrag/pkg/fetcher"
	"github.com/webrag/webrag/pkg/gemini"
	"github.com/webrag/webrag/pkg/links"
	"github.com/webrag/webrag/pkg/ranker"
	"github.com/webrag/webrag/pkg/retry"
	"github.com/webrag/webrag/pkg/vectorstore"
)

func newLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(c *cli.Context) (*models.Config, error) {
	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("budget") {
		config.EmbeddingBudget = c.Int("budget")
	}
	if c.IsSet("top-k") {
		config.TopKLinks = c.Int("top-k")
	}
	if c.IsSet("min-selected") {
		config.MinSelected = c.Int("min-selected")
	}
	if c.IsSet("workers") {
		config.MaxWorkers = c.Int("workers")
	}
	if c.IsSet("cache-dir") {
		config.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("main-urls") {
		config.MainURLs = strings.Split(c.String("main-urls"), ",")
	}

	return config, nil
}

func AskAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))
	startTime := time.Now()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "Error: no question provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  webrag ask "what are the company values?"`)
		fmt.Fprintln(os.Stderr, `  webrag ask --source https://example.com/handbook/values/ "what are the values?"`)
		os.Exit(1)
	}

	config, err := loadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if config.APIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable is required")
		os.Exit(1)
	}

	source := strings.TrimSpace(c.String("source"))
	if source == "" && len(config.MainURLs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no source pages configured")
		fmt.Fprintln(os.Stderr, "Set main_urls in the config file, or pass --main-urls or --source")
		os.Exit(1)
	}

	ctx := c.Context

	store := cache.NewFileStore(config.CacheDir, logger)
	pageFetcher := fetcher.New(config.RequestTimeout, config.UserAgent)
	client := gemini.NewClient(gemini.Options{
		APIKey:         config.APIKey,
		EmbeddingModel: config.EmbeddingModel,
		ChatModel:      config.ChatModel,
		Temperature:    config.Temperature,
		MaxTokens:      config.MaxTokens,
		Timeout:        config.RequestTimeout,
	})
	executor := retry.NewExecutor(gemini.Classify, logger)

	splitter, err := docs.NewSplitter(config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		logger.Error("invalid chunking configuration", "error", err)
		os.Exit(2)
	}
	processor := docs.NewProcessor(pageFetcher, store, splitter, logger)
	if !c.Bool("no-lang-detect") {
		processor.EnableLanguageDetection()
	}

	var rankedURLs []string
	var chunks []models.Chunk

	if source != "" {
		logger.Info("using specific source URL", "url", source)
		rankedURLs = []string{source}
		chunks = processor.FetchOne(ctx, source)
	} else {
		logger.Info("step 1: extracting links from main pages")
		extractor := links.NewExtractor(pageFetcher, logger)

		mainURLs, invalid := common.SanitizeAndValidateURLs(config.MainURLs)
		for _, bad := range invalid {
			logger.Warn("skipping malformed main URL", "url", bad)
		}

		var candidates []models.CandidateLink
		for _, mainURL := range mainURLs {
			candidates = append(candidates, extractor.Extract(ctx, mainURL, config.MaxLinksPerSite)...)
		}

		logger.Info("step 2: ranking links by relevance to query", "candidates", len(candidates))
		r := ranker.New(client, store, executor, logger)
		rankedURLs, err = r.Rank(ctx, question, candidates, config.TopKLinks, config.EmbeddingBudget, config.MinSelected)
		if err != nil {
			// An aborted ranking means "could not rank", not "nothing is
			// relevant": fall back to the unranked list head.
			logger.Warn("ranking aborted, falling back to unranked links", "error", err)
			for i, candidate := range candidates {
				if i >= config.TopKLinks {
					break
				}
				rankedURLs = append(rankedURLs, candidate.URL)
			}
		}
		logger.Info("selected relevant links", "count", len(rankedURLs))

		logger.Info("step 3: loading and processing documents")
		chunks = processor.FetchAll(ctx, rankedURLs, config.MaxWorkers)
	}

	logger.Info("step 4: building vector index", "chunks", len(chunks))
	index := vectorstore.New(client, executor, logger)
	if err := index.Build(ctx, chunks); err != nil {
		logger.Error("failed to build vector index", "error", err)
		os.Exit(2)
	}

	logger.Info("step 5: generating answer")
	qa := chain.New(client, index, executor, config.RetrieverK, logger)
	answer := qa.Ask(ctx, question)

	elapsed := time.Since(startTime)
	printAnswer(question, answer, elapsed)

	recordHistory(c.String("db"), logger, db.AskRecord{
		Question:    question,
		AnswerChars: len(answer.Text),
		RankedCount: len(rankedURLs),
		ChunkCount:  len(chunks),
		SourceCount: len(answer.Sources),
		Language:    dominantLanguage(chunks),
		Duration:    elapsed,
	})

	return nil
}

func printAnswer(question string, answer chain.Answer, elapsed time.Duration) {
	fmt.Printf("Question: %s\n\n", question)
	fmt.Printf("%s\n", answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, source := range answer.Sources {
			fmt.Printf("  %d. %s\n", i+1, source)
		}
	}
	fmt.Printf("\nResponse time: %.2fs\n", elapsed.Seconds())
}

// recordHistory is best-effort: an unusable history database must never
// fail a run that already produced an answer.
func recordHistory(dbPath string, logger *slog.Logger, rec db.AskRecord) {
	database, err := db.Open(dbPath)
	if err != nil {
		logger.Warn("failed to open history database", "error", err)
		return
	}
	defer database.Close()

	if _, err := database.InsertAsk(rec); err != nil {
		logger.Warn("failed to record ask in history", "error", err)
	}
}

// dominantLanguage returns the most frequent detected page language
// across the chunk set, "" when detection is off or inconclusive.
func dominantLanguage(chunks []models.Chunk) string {
	counts := make(map[string]int)
	for _, chunk := range chunks {
		if chunk.Language != "" {
			counts[chunk.Language]++
		}
	}

	best, bestCount := "", 0
	for language, count := range counts {
		if count > bestCount {
			best, bestCount = language, count
		}
	}
	return best
}
