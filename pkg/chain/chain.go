// Package chain composes retrieved document chunks and a question into a
// language-model answer. Provider failures degrade into an apologetic
// answer text rather than an error: the user flow must always produce
// something to display.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/webrag/webrag/models"
	"github.com/webrag/webrag/pkg/retry"
)

const systemPromptTemplate = `You are an assistant for question-answering tasks about the configured documentation sources.
Use the following pieces of retrieved context to answer the question.
If you don't know the answer, say you don't know.
Keep your answers concise and focused on the question.

Context:
%s`

// Completer produces an answer from a system prompt and a user question.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Retriever returns the k chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.Chunk, error)
}

type Chain struct {
	llm       Completer
	retriever Retriever
	exec      *retry.Executor
	k         int
	logger    *slog.Logger
}

// Answer is the user-facing result: prose plus the source URLs of the
// chunks it was grounded on, in retrieval order.
type Answer struct {
	Text    string
	Sources []string
}

func New(llm Completer, retriever Retriever, exec *retry.Executor, k int, logger *slog.Logger) *Chain {
	return &Chain{llm: llm, retriever: retriever, exec: exec, k: k, logger: logger}
}

// Ask retrieves context for the query and generates an answer. It never
// returns an error: every failure mode maps to a degraded answer text so
// the caller can always show the user something.
func (c *Chain) Ask(ctx context.Context, query string) Answer {
	chunks, err := c.retriever.Retrieve(ctx, query, c.k)
	if err != nil {
		c.logger.Error("retrieval failed", "error", err)
		return Answer{Text: fmt.Sprintf("An error occurred: %v", err)}
	}

	contextText := make([]string, len(chunks))
	for i, chunk := range chunks {
		contextText[i] = chunk.Text
	}
	system := fmt.Sprintf(systemPromptTemplate, strings.Join(contextText, "\n\n"))

	c.logger.Info("running query", "query", query, "context_chunks", len(chunks))
	text, err := retry.Do(ctx, c.exec, "generate answer", func(ctx context.Context) (string, error) {
		return c.llm.Complete(ctx, system, query)
	})
	if err != nil {
		c.logger.Error("answer generation failed", "error", err)
		return Answer{Text: degradedAnswer(err), Sources: sources(chunks)}
	}

	return Answer{Text: text, Sources: sources(chunks)}
}

func degradedAnswer(err error) string {
	var rerr *retry.Error
	if errors.As(err, &rerr) && rerr.Class == retry.Fatal {
		return fmt.Sprintf("An error occurred: %v", rerr.Err)
	}
	return "Failed to get a response after multiple attempts. Please try again later."
}

// sources returns the distinct chunk source URLs in retrieval order.
func sources(chunks []models.Chunk) []string {
	var urls []string
	seen := make(map[string]struct{})
	for _, chunk := range chunks {
		if _, ok := seen[chunk.Source]; ok {
			continue
		}
		seen[chunk.Source] = struct{}{}
		urls = append(urls, chunk.Source)
	}
	return urls
}
