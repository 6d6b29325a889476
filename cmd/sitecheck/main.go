package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitecheck/internal/config"
	"github.com/hamed0406/sitecheck/internal/domain"
	"github.com/hamed0406/sitecheck/internal/httpapi"
	"github.com/hamed0406/sitecheck/internal/logging"
	"github.com/hamed0406/sitecheck/internal/notify"
	"github.com/hamed0406/sitecheck/internal/probe"
	"github.com/hamed0406/sitecheck/internal/repo"
	"github.com/hamed0406/sitecheck/internal/repo/memory"
	"github.com/hamed0406/sitecheck/internal/report"
	"github.com/hamed0406/sitecheck/internal/runner"
)

func main() {
	loaded, envErr := config.LoadDotEnv()
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	style, err := report.ParseStyle(cfg.ReportStyle)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	if envErr != nil {
		logger.Warn("dotenv_error", zap.Error(envErr))
	}
	logger.Info("sitecheck_start",
		zap.Strings("env_files", loaded),
		zap.Strings("targets", cfg.Targets),
		zap.Duration("interval", cfg.CheckInterval),
		zap.Int("concurrency", cfg.MaxConcurrent),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := memory.New()
	if cfg.StatusAddr != "" {
		go serveStatus(ctx, logger, cfg, store, style)
	}

	r := runner.NewRunner(
		logger,
		probe.NewHTTPChecker(cfg.HTTPTimeout),
		probe.NewTLSChecker(cfg.TLSTimeout),
		cfg.ResponseThreshold,
		cfg.MaxConcurrent,
	)
	r.DNS = probe.NewDNSChecker()

	r.Run(ctx, cfg.Targets, cfg.CheckInterval, reportSink(logger, os.Stdout, style, store, buildNotifier(cfg, logger, os.Stderr)))

	// check outcomes never change the exit status
}

// reportSink prints each pass, keeps it for the status API and hands it to
// the notifier. None of these steps can fail the pass.
func reportSink(logger *zap.Logger, out io.Writer, style report.Style, store repo.RunStore, n notify.Notifier) runner.Sink {
	return func(ctx context.Context, run domain.Run) {
		if err := store.Save(ctx, run); err != nil {
			logger.Warn("run_save_error", zap.Error(err))
		}

		b := report.Classify(run.Results)
		if err := report.Write(out, style, b); err != nil {
			logger.Warn("report_write_error", zap.Error(err))
		}
		logger.Info("report_done",
			zap.Int("green", len(b.Green)),
			zap.Int("red", len(b.Red)),
			zap.Int("exception", len(b.Exception)),
		)

		if n == nil {
			return
		}
		// a pass interrupted by shutdown is full of cancellation errors
		if ctx.Err() != nil {
			logger.Info("notify_skipped_shutdown")
			return
		}
		// a send already under way survives shutdown
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := n.Send(sendCtx, "Site check: "+b.Summary(), report.Text(report.StylePlain, b)); err != nil {
			logger.Warn("notify_error", zap.Error(err))
		}
	}
}

// buildNotifier fans out to every configured channel. Skip notices go to
// notice so stdout only carries the report.
func buildNotifier(cfg config.Config, logger *zap.Logger, notice io.Writer) notify.Notifier {
	var ns notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		ns = append(ns, s)
	}
	if cfg.Email.Configured() {
		if cfg.Email.Enabled {
			ns = append(ns, notify.NewEmail(notify.EmailConfig{
				Host:     cfg.Email.Host,
				Port:     cfg.Email.Port,
				User:     cfg.Email.User,
				Password: cfg.Email.Password,
				From:     cfg.Email.From,
				To:       cfg.Email.To,
			}))
		} else {
			ns = append(ns, notify.Skip{Logger: logger, Channel: "email", Out: notice})
		}
	}
	if len(ns) == 0 {
		return nil
	}
	return ns
}

func serveStatus(ctx context.Context, logger *zap.Logger, cfg config.Config, store repo.RunStore, style report.Style) {
	api := httpapi.NewServer(logger, store, style)
	srv := &http.Server{
		Addr:              cfg.StatusAddr,
		Handler:           api.Router(cfg.StatusRPM, cfg.StatusBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("status_listen", zap.String("addr", cfg.StatusAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("status_listen_error", zap.Error(err))
	}
}
