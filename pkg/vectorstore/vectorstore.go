// Package vectorstore holds an in-process similarity index over document
// chunks for final retrieval. Brute-force cosine search is plenty at the
// corpus sizes the pipeline produces (tens of pages, hundreds of chunks);
// the type is small enough to swap for a real vector database behind the
// same two methods.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/webrag/webrag/models"
	"github.com/webrag/webrag/pkg/retry"
	"github.com/webrag/webrag/pkg/vecmath"
)

// Embedder produces an embedding vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type entry struct {
	chunk  models.Chunk
	vector []float64
}

type Index struct {
	embedder Embedder
	exec     *retry.Executor
	logger   *slog.Logger
	entries  []entry
}

func New(embedder Embedder, exec *retry.Executor, logger *slog.Logger) *Index {
	return &Index{embedder: embedder, exec: exec, logger: logger}
}

// Build embeds every chunk and adds it to the index. Unlike ranking there
// is no budget here: the chunk set is already cost-bounded upstream by
// the ranker's topK.
func (ix *Index) Build(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		ix.logger.Warn("no chunks provided to build index")
		return nil
	}

	ix.logger.Info("building vector index", "chunks", len(chunks))
	for _, chunk := range chunks {
		vec, err := retry.Do(ctx, ix.exec, "embed chunk", func(ctx context.Context) ([]float64, error) {
			return ix.embedder.Embed(ctx, chunk.Text)
		})
		if err != nil {
			return fmt.Errorf("failed to build vector index: %w", err)
		}
		ix.entries = append(ix.entries, entry{chunk: chunk, vector: vec})
	}

	ix.logger.Info("vector index built", "entries", len(ix.entries))
	return nil
}

// Len reports the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.entries) }

// Retrieve embeds the query and returns the k most similar chunks, best
// first.
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	if len(ix.entries) == 0 {
		return nil, fmt.Errorf("vector index is empty")
	}

	queryVec, err := retry.Do(ctx, ix.exec, "embed retrieval query", func(ctx context.Context) ([]float64, error) {
		return ix.embedder.Embed(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed retrieval query: %w", err)
	}

	type scored struct {
		chunk      models.Chunk
		similarity float64
	}
	ranked := make([]scored, len(ix.entries))
	for i, e := range ix.entries {
		ranked[i] = scored{chunk: e.chunk, similarity: vecmath.Cosine(queryVec, e.vector)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})

	if k < 0 {
		k = 0
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	chunks := make([]models.Chunk, k)
	for i := 0; i < k; i++ {
		chunks[i] = ranked[i].chunk
	}
	return chunks, nil
}
