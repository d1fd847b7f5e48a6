// Package sessions implements the ask-history listing command.
package sessions

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/webrag/webrag/pkg/db"
)

func ListAction(c *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	database, err := db.Open(c.String("db"))
	if err != nil {
		logger.Error("failed to open history database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	limit := c.Int("limit")
	asks, err := database.RecentAsks(limit)
	if err != nil {
		logger.Error("failed to read history", "error", err)
		os.Exit(2)
	}

	if len(asks) == 0 {
		fmt.Printf("No history in %s\n", database.Path())
		return nil
	}

	fmt.Printf("%-5s %-19s %-8s %-7s %-7s %-5s %-9s %s\n",
		"ID", "When", "Ranked", "Chunks", "Sources", "Lang", "Duration", "Question")
	for _, ask := range asks {
		lang := ask.Language
		if lang == "" {
			lang = "-"
		}
		fmt.Printf("%-5d %-19s %-8d %-7d %-7d %-5s %-9s %s\n",
			ask.AskID,
			ask.CreatedAt.Format("2006-01-02 15:04:05"),
			ask.RankedCount,
			ask.ChunkCount,
			ask.SourceCount,
			lang,
			fmt.Sprintf("%.2fs", float64(ask.DurationMS)/1000),
			truncate(ask.Question, 60),
		)
	}

	return nil
}

// truncate shortens s to at most max runes, never splitting a multibyte
// character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
