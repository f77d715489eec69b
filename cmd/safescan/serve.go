// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/safescan/internal/logging"
	"github.com/pdiddy/safescan/internal/metrics"
	"github.com/pdiddy/safescan/internal/notify"
	"github.com/pdiddy/safescan/internal/policy"
	"github.com/pdiddy/safescan/internal/scan"
	"github.com/pdiddy/safescan/internal/server"
	"github.com/pdiddy/safescan/internal/terms"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the analysis pipeline over HTTP:

  POST /v1/analyze            analyze label text or an OCR response
  POST /v1/sessions/attempts  record a scan attempt
  GET  /healthz               liveness
  GET  /metrics               Prometheus metrics

When engine.terms_file is set, edits to it are picked up without a restart.
Admin alerts are published to NATS when notify.nats_url is set.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := logging.New("safescan", cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := loadTerms(cfg.Engine)
	if err != nil {
		return err
	}
	engine := policy.New(db)
	if cfg.Engine.TermsFile != "" {
		go func() {
			err := terms.Watch(ctx, cfg.Engine.TermsFile, terms.Default(),
				func(db *terms.DB) {
					engine.SetDB(db)
					log.Info("terms reloaded", zap.String("file", cfg.Engine.TermsFile))
				},
				func(err error) {
					log.Warn("terms reload failed; keeping previous terms", zap.Error(err))
				},
			)
			if err != nil {
				log.Error("terms watcher stopped", zap.Error(err))
			}
		}()
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var notifier notify.Notifier = notify.Discard{}
	if cfg.Notify.NATSURL != "" {
		pub, err := notify.Connect(cfg.Notify, log)
		if err != nil {
			return err
		}
		defer pub.Close()
		notifier = pub
	}

	srv := server.New(server.Deps{
		Engine:   engine,
		Options:  scan.OptionsFrom(cfg.Engine),
		Store:    st,
		Notifier: notifier,
		Metrics:  metrics.New(),
		Limiter:  rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
		Logger:   log,
	})

	err = srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")

	rootCmd.AddCommand(serveCmd)
}
