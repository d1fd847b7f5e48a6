// Package fetch implements a cache pre-warming command: it loads a set of
// pages through the document processor so later ask runs hit the page
// cache instead of the network.
package fetch

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/webrag/webrag/internal/common"
	"github.com/webrag/webrag/models"
	"github.com/webrag/webrag/pkg/cache"
	"github.com/webrag/webrag/pkg/docs"
	"github.com/webrag/webrag/pkg/fetcher"
)

func newLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func FetchAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))

	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if c.IsSet("workers") {
		config.MaxWorkers = c.Int("workers")
	}
	if c.IsSet("cache-dir") {
		config.CacheDir = c.String("cache-dir")
	}

	rawURLs := config.MainURLs
	if c.IsSet("urls") {
		rawURLs = strings.Split(c.String("urls"), ",")
	}
	urls, invalid := common.SanitizeAndValidateURLs(rawURLs)
	for _, bad := range invalid {
		logger.Warn("skipping malformed URL", "url", bad)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no URLs to fetch")
		fmt.Fprintln(os.Stderr, "Set main_urls in the config file or pass --urls")
		os.Exit(1)
	}

	splitter, err := docs.NewSplitter(config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		logger.Error("invalid chunking configuration", "error", err)
		os.Exit(2)
	}

	store := cache.NewFileStore(config.CacheDir, logger)
	pageFetcher := fetcher.New(config.RequestTimeout, config.UserAgent)
	processor := docs.NewProcessor(pageFetcher, store, splitter, logger)
	if !c.Bool("no-lang-detect") {
		processor.EnableLanguageDetection()
	}

	logger.Info("warming page cache", "urls", len(urls), "workers", config.MaxWorkers)
	chunks := processor.FetchAll(c.Context, urls, config.MaxWorkers)

	perSource := make(map[string]int)
	for _, chunk := range chunks {
		perSource[chunk.Source]++
	}

	failed := 0
	for _, url := range urls {
		if perSource[url] == 0 {
			failed++
			logger.Warn("no content cached for URL", "url", url)
		}
	}

	fmt.Printf("Cached %d/%d pages (%d chunks) under %s\n", len(urls)-failed, len(urls), len(chunks), config.CacheDir)
	return nil
}
