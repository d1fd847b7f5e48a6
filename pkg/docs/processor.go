// Package docs loads page text (cache-first), splits it into overlapping
// chunks and fans the work out across a bounded worker pool. One URL's
// failure never stops the others: it just contributes zero chunks.
package docs

import (
	"context"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
	"github.com/webrag/webrag/models"
	"github.com/webrag/webrag/pkg/cache"
)

// PageLoader fetches the full plain text of one page.
type PageLoader interface {
	PageText(ctx context.Context, url string) (string, error)
}

type Processor struct {
	loader   PageLoader
	store    cache.Store
	splitter *Splitter
	detector lingua.LanguageDetector
	logger   *slog.Logger
}

func NewProcessor(loader PageLoader, store cache.Store, splitter *Splitter, logger *slog.Logger) *Processor {
	return &Processor{loader: loader, store: store, splitter: splitter, logger: logger}
}

// EnableLanguageDetection turns on per-page language tagging. The
// detector model is heavyweight, so it is only built when asked for.
func (p *Processor) EnableLanguageDetection(languages ...lingua.Language) {
	if len(languages) == 0 {
		languages = []lingua.Language{lingua.English, lingua.German, lingua.French, lingua.Spanish, lingua.Portuguese, lingua.Japanese}
	}
	p.detector = lingua.NewLanguageDetectorBuilder().FromLanguages(languages...).Build()
}

// FetchOne returns the chunks for one URL, cache-first: cached page text
// is split without any network call; on a miss the page is fetched, the
// raw text persisted under the URL's identity, then split. A fetch
// failure is logged and yields nil, never an error.
func (p *Processor) FetchOne(ctx context.Context, url string) []models.Chunk {
	var text string

	if data, state := p.store.Load(cache.KindPage, url); state == cache.Hit {
		p.logger.Info("loaded page from cache", "url", url)
		text = string(data)
	} else {
		p.logger.Info("loading page from web", "url", url)
		fetched, err := p.loader.PageText(ctx, url)
		if err != nil {
			p.logger.Error("failed to load page", "url", url, "error", err)
			return nil
		}
		text = fetched
		p.store.Save(cache.KindPage, url, []byte(text))
	}

	language := p.detectLanguage(text)

	pieces := p.splitter.Split(text)
	chunks := make([]models.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = models.Chunk{Source: url, Text: piece, Index: i, Language: language}
	}

	p.logger.Info("split page into chunks", "url", url, "chunks", len(chunks), "language", language)
	return chunks
}

// FetchAll loads every URL through up to maxWorkers concurrent workers
// and concatenates the chunks. Order across URLs follows completion and
// is not guaranteed; order within one URL's chunks is.
func (p *Processor) FetchAll(ctx context.Context, urls []string, maxWorkers int) []models.Chunk {
	if len(urls) == 0 {
		return nil
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if maxWorkers > len(urls) {
		maxWorkers = len(urls)
	}

	p.logger.Info("loading documents", "url_count", len(urls), "workers", maxWorkers)

	jobs := make(chan string, len(urls))
	results := make(chan []models.Chunk, len(urls))

	var wg sync.WaitGroup
	for w := 1; w <= maxWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for url := range jobs {
				chunks := p.FetchOne(ctx, url)
				p.logger.Info("worker finished URL", "worker_id", id, "url", url, "chunks", len(chunks))
				results <- chunks
			}
		}(w)
	}

	for _, url := range urls {
		jobs <- url
	}
	close(jobs)

	wg.Wait()
	close(results)

	var all []models.Chunk
	for chunks := range results {
		all = append(all, chunks...)
	}

	p.logger.Info("document loading complete", "total_chunks", len(all))
	return all
}

// detectLanguage samples the head of the text; lingua's accuracy gains
// flatten out well before a full page of input.
func (p *Processor) detectLanguage(text string) string {
	if p.detector == nil {
		return ""
	}

	language, ok := p.detector.DetectLanguageOf(languageSample(text))
	if !ok {
		return ""
	}
	return language.IsoCode639_1().String()
}

const languageSampleBytes = 2000

// languageSample cuts the head of the text for detection, backing up to a
// rune boundary so a multibyte character is never split.
func languageSample(text string) string {
	if len(text) <= languageSampleBytes {
		return text
	}
	cut := languageSampleBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
