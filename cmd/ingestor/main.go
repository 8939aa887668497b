package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"safari_reviews/internal/adapters/gsheet"
	"safari_reviews/internal/adapters/markup"
	"safari_reviews/internal/adapters/observability"
	"safari_reviews/internal/app"
	"safari_reviews/internal/domain"
	"safari_reviews/internal/i18n"
	"safari_reviews/internal/shared"
)

// run loads every review source once and prints the rendered board.
func run(ctx context.Context, cmd *cli.Command) error {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(os.Stderr, cfg.AppEnv, cfg.LogLevel)

	page, err := markup.ScanFile(cmd.String("markup"))
	if err != nil {
		return err
	}
	section := cfg.MergeSection(page.Config)
	log.Info().
		Bool("section", page.Found).
		Int("cards", len(page.Cards)).
		Str("source", section.ReviewsSource).
		Msg("ingestor starting")

	bundle, err := i18n.Load(cfg.LocalesDir, i18n.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	lang := i18n.NewSwitcher(bundle, nil, cmd.String("lang"))

	opts := []app.BoardOption{
		app.WithView(domain.ParseFilter(cmd.String("filter")), domain.ParseSort(cmd.String("sort"))),
	}
	if cmd.Bool("history") {
		history, closeHistory, err := cfg.OpenHistory(ctx, cfg.Redis())
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer closeHistory()
		opts = append(opts, app.WithHistory(history))
	}
	board := app.NewBoard(lang.Lookup, opts...)
	board.LoadStartup(ctx, page.Cards)

	if section.ReviewsSource == domain.SourceGoogle && !cmd.Bool("offline") {
		client := gsheet.New(cfg.GSheetBase, section.SheetID, section.SheetName, cfg.FeedRPS,
			gsheet.WithHTTPClient(&http.Client{Timeout: cfg.FeedTimeout}))
		if _, err := board.IngestFeed(ctx, client); err != nil {
			log.Warn().Err(err).Msg("remote feed skipped")
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(board.Snapshot())
}

func main() {
	cmd := &cli.Command{
		Name:   "ingestor",
		Usage:  "Load host page, local history and remote feed reviews, then print the rendered board",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "markup",
				Aliases: []string{"m"},
				Usage:   "Path to the host page",
				Value:   "web/index.html",
				Sources: cli.EnvVars("MARKUP_PATH"),
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Filter mode: all, five (5), fourPlus (4)",
				Value: string(domain.FilterAll),
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort mode: default, newest, oldest, highest",
				Value: string(domain.SortDefault),
			},
			&cli.StringFlag{
				Name:    "lang",
				Usage:   "Label language",
				Value:   i18n.DefaultLanguage,
				Sources: cli.EnvVars("DEFAULT_LANG"),
			},
			&cli.BoolFlag{
				Name:  "history",
				Usage: "Replay the configured local review history",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Skip the remote feed",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("ingestor failed")
		os.Exit(1)
	}
}
