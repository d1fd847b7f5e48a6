package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/webrag/webrag/internal/ask"
	"github.com/webrag/webrag/internal/fetch"
	"github.com/webrag/webrag/internal/rank"
	"github.com/webrag/webrag/internal/sessions"
)

func main() {
	app := &cli.App{
		Name:  "webrag",
		Usage: "Answer questions from configured documentation sites using budgeted link ranking",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "Path to the YAML config file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a question from the configured documentation sources",
				ArgsUsage: "\"<question>\"",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Answer from this single page, skipping link ranking",
					},
					&cli.StringFlag{
						Name:  "main-urls",
						Usage: "Comma-separated list of pages to extract candidate links from (overrides config)",
					},
					&cli.IntFlag{
						Name:  "budget",
						Usage: "Maximum embedding calls per run, including the query",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of ranked links to fetch",
					},
					&cli.IntFlag{
						Name:  "min-selected",
						Usage: "Minimum candidates to embed even past the budget",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent page fetchers",
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "Directory for the page and embedding caches",
					},
					&cli.BoolFlag{
						Name:  "no-lang-detect",
						Usage: "Skip page language detection",
					},
					&cli.StringFlag{
						Name:  "db",
						Usage: "Path to the history database (default: next to the binary)",
					},
				},
				Action: ask.AskAction,
			},
			{
				Name:      "rank",
				Usage:     "Show which links would be selected for a query, without fetching them",
				ArgsUsage: "\"<query>\"",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "urls",
						Usage: "Comma-separated list of pages to extract candidate links from (overrides config)",
					},
					&cli.IntFlag{
						Name:  "budget",
						Usage: "Maximum embedding calls per run, including the query",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of ranked links to print",
					},
				},
				Action: rank.RankAction,
			},
			{
				Name:  "fetch",
				Usage: "Pre-warm the page cache for a set of URLs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "urls",
						Usage: "Comma-separated list of URLs to fetch (overrides config main_urls)",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent page fetchers",
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "Directory for the page cache",
					},
					&cli.BoolFlag{
						Name:  "no-lang-detect",
						Usage: "Skip page language detection",
					},
				},
				Action: fetch.FetchAction,
			},
			{
				Name:  "sessions",
				Usage: "Inspect past ask runs",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List recent ask runs",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Value: 20,
								Usage: "Maximum rows to show",
							},
							&cli.StringFlag{
								Name:  "db",
								Usage: "Path to the history database (default: next to the binary)",
							},
						},
						Action: sessions.ListAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
