package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"safari_reviews/internal/adapters/gform"
	"safari_reviews/internal/adapters/gsheet"
	server "safari_reviews/internal/adapters/http_server"
	"safari_reviews/internal/adapters/markup"
	"safari_reviews/internal/adapters/observability"
	redisad "safari_reviews/internal/adapters/redis"
	"safari_reviews/internal/app"
	"safari_reviews/internal/domain"
	"safari_reviews/internal/events"
	"safari_reviews/internal/i18n"
	"safari_reviews/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(os.Stdout, cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	page, err := markup.ScanFile(cfg.MarkupPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.MarkupPath).Msg("host page unavailable; starting without embedded reviews")
	} else if !page.Found {
		log.Warn().Str("path", cfg.MarkupPath).Msg("no reviews section in host page")
	} else if page.Skipped > 0 {
		log.Warn().Int("skipped", page.Skipped).Msg("review cards without text ignored")
	}
	section := cfg.MergeSection(page.Config)

	// i18n
	bundle, err := i18n.Load(cfg.LocalesDir, i18n.DefaultLanguage)
	if err != nil {
		log.Fatal().Err(err).Msg("load translations failed")
	}
	bus := events.NewBus()
	lang := i18n.NewSwitcher(bundle, bus, cfg.DefaultLang)

	// storage
	rdb := cfg.Redis()
	history, closeHistory, err := cfg.OpenHistory(ctx, rdb)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.HistoryBackend).Msg("open review history failed")
	}
	defer closeHistory()

	opts := []app.BoardOption{app.WithHistory(history)}
	var fwd *gform.Forwarder
	if section.ReviewsSource == domain.SourceGoogle {
		fwd = gform.New(section.Form, cfg.ForwardMaxInFlight, cfg.ForwardTimeout)
	}
	if fwd != nil {
		opts = append(opts, app.WithForwarder(fwd))
	}
	board := app.NewBoard(lang.Lookup, opts...)
	defer board.Subscribe(bus)()
	board.LoadStartup(ctx, page.Cards)

	// http
	reg := observability.InitRegistry()
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Board: board, Bundle: bundle, Lang: lang, Section: section})
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)

	if section.ReviewsSource == domain.SourceGoogle {
		feedOpts := []gsheet.Option{gsheet.WithHTTPClient(&http.Client{Timeout: cfg.FeedTimeout})}
		if rdb != nil {
			feedOpts = append(feedOpts, gsheet.WithCache(redisad.New(rdb), cfg.CacheTTL))
		}
		client := gsheet.New(cfg.GSheetBase, section.SheetID, section.SheetName, cfg.FeedRPS, feedOpts...)
		g.Go(func() error {
			// a failed feed never stops the server
			_, _ = board.IngestFeed(gctx, client)
			return nil
		})
	}

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("http server failed")
	}
	if fwd != nil {
		fwd.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("API stopped")
}
