// Package ranker implements the budget-constrained, two-stage relevance
// ranking of candidate links against a query. A free lexical pass bounds
// how many paid embedding calls a single ranking may spend; cached
// document vectors are reused so work already paid for is never repeated.
package ranker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/webrag/webrag/models"
	"github.com/webrag/webrag/pkg/cache"
	"github.com/webrag/webrag/pkg/lexical"
	"github.com/webrag/webrag/pkg/retry"
	"github.com/webrag/webrag/pkg/vecmath"
)

// Embedder produces an embedding vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type Ranker struct {
	embedder Embedder
	store    cache.Store
	exec     *retry.Executor
	logger   *slog.Logger
}

func New(embedder Embedder, store cache.Store, exec *retry.Executor, logger *slog.Logger) *Ranker {
	return &Ranker{embedder: embedder, store: store, exec: exec, logger: logger}
}

// Rank orders candidate URLs by embedding similarity to the query and
// returns the top topK.
//
// The lexical prefilter bounds paid work: only the totalBudget-1 best
// candidates by keyword overlap get an embedding call (one unit is
// reserved for embedding the query itself), so the number of embedding
// calls per invocation never exceeds totalBudget regardless of how many
// candidates come in. When the prefilter keeps fewer than minSelected
// candidates, the selection is backfilled in original extraction order
// until it reaches minSelected or the list runs out; backfill relaxes the
// budget ceiling, so callers must size totalBudget accordingly.
//
// An empty result with a non-nil error means the ranking was aborted (the
// query embedding failed, or a selected candidate hit an unrecoverable
// provider failure). Callers must treat that as "could not rank", not
// "nothing is relevant", and fall back to an unranked source list.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []models.CandidateLink, topK, totalBudget, minSelected int) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	selected := r.selectCandidates(query, candidates, totalBudget, minSelected)

	// The query text is not a stable corpus identity, so its embedding
	// is never cached: one fresh call per invocation.
	queryVec, err := retry.Do(ctx, r.exec, "embed query", func(ctx context.Context) ([]float64, error) {
		return r.embedder.Embed(ctx, query)
	})
	if err != nil {
		r.logger.Error("ranking aborted: failed to embed query", "error", err)
		return nil, fmt.Errorf("ranking aborted: %w", err)
	}

	ranked := make([]models.RankedURL, 0, len(selected))
	for _, link := range selected {
		vec, state := cache.LoadVector(r.store, link.URL)
		if state != cache.Hit {
			r.logger.Debug("embedding cache state", "url", link.URL, "state", state)
			vec, err = retry.Do(ctx, r.exec, "embed document", func(ctx context.Context) ([]float64, error) {
				return r.embedder.Embed(ctx, link.Context)
			})
			if err != nil {
				r.logger.Error("ranking aborted: failed to embed candidate", "url", link.URL, "error", err)
				return nil, fmt.Errorf("ranking aborted: %w", err)
			}
			cache.SaveVector(r.store, link.URL, vec)
		}

		ranked = append(ranked, models.RankedURL{
			URL:        link.URL,
			Similarity: vecmath.Cosine(queryVec, vec),
		})
	}

	// Stable sort: similarity ties keep the lexical (selection) order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	// Clamp both ways: a non-positive topK from config or flags degrades
	// to an empty result rather than a panic.
	if topK < 0 {
		topK = 0
	}
	if topK > len(ranked) {
		topK = len(ranked)
	}
	urls := make([]string, 0, topK)
	for _, entry := range ranked[:topK] {
		urls = append(urls, entry.URL)
	}

	r.logger.Info("ranking complete", "candidates", len(candidates), "selected", len(selected), "returned", len(urls))
	return urls, nil
}

// selectCandidates runs the lexical prefilter and budget selection:
// stable-sort by descending keyword overlap (ties keep extraction order),
// keep the first totalBudget-1, then backfill in original order up to
// minSelected.
func (r *Ranker) selectCandidates(query string, candidates []models.CandidateLink, totalBudget, minSelected int) []models.CandidateLink {
	scored := make([]models.ScoredLink, len(candidates))
	for i, link := range candidates {
		scored[i] = models.ScoredLink{Link: link, LexicalScore: lexical.Score(link.Context, query)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].LexicalScore > scored[j].LexicalScore
	})

	budget := totalBudget - 1
	if budget < 0 {
		budget = 0
	}
	if budget > len(scored) {
		budget = len(scored)
	}

	selected := make([]models.CandidateLink, 0, budget)
	selectedURLs := make(map[string]struct{}, budget)
	for _, s := range scored[:budget] {
		selected = append(selected, s.Link)
		selectedURLs[s.Link.URL] = struct{}{}
	}

	if len(selected) < minSelected {
		r.logger.Warn("selection below minimum, backfilling", "selected", len(selected), "min_selected", minSelected)
		for _, link := range candidates {
			if len(selected) >= minSelected {
				break
			}
			if _, ok := selectedURLs[link.URL]; ok {
				continue
			}
			selected = append(selected, link)
			selectedURLs[link.URL] = struct{}{}
		}
	}

	return selected
}
