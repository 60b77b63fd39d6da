package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/greenlight-ci/greenlight/internal/config"
	"github.com/greenlight-ci/greenlight/internal/fetcher"
	"github.com/greenlight-ci/greenlight/internal/notify"
	"github.com/greenlight-ci/greenlight/internal/probes"
	"github.com/greenlight-ci/greenlight/internal/retry"
	"github.com/greenlight-ci/greenlight/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env files - .env.local takes priority for development
	godotenv.Load(".env.local", ".env")

	cfg, err := config.FromEnv()
	if err != nil {
		// Fatal configuration problem: abort before any probe executes.
		// This is distinct from a probe failure and never produces a report.
		log.Error().Err(err).Msg("Invalid configuration")
		return 1
	}

	setupLogging(cfg)

	// Initialise Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Env,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialise Sentry")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()

	client := fetcher.New(&fetcher.Config{
		Timeout:   cfg.Timeout,
		UserAgent: fetcher.DefaultConfig().UserAgent,
		RateLimit: cfg.RateLimit,
	})

	suite := probes.Suite(client, cfg.TargetURL)
	r := runner.New(retry.New(), cfg.MaxRetries)
	report := r.Run(ctx, cfg.TargetURL, suite)

	if err := runner.WriteReportFile(report, cfg.ReportPath); err != nil {
		sentry.CaptureException(err)
		log.Error().Err(err).Msg("Failed to write report")
		return 1
	}

	if err := runner.EmitPipelineOutputs(report); err != nil {
		sentry.CaptureException(err)
		log.Error().Err(err).Msg("Failed to emit pipeline outputs")
		return 1
	}

	if cfg.SlackWebhookURL != "" {
		notifyRunOutcome(ctx, cfg, report)
	}

	return report.ExitCode()
}

// notifyRunOutcome sends the run summary to Slack. Delivery failure is
// logged but never affects the exit code - the report and exit status
// are the signals of record.
func notifyRunOutcome(ctx context.Context, cfg *config.Config, report *runner.Report) {
	event := notify.Event{
		Type:    notify.EventDeployment,
		Title:   fmt.Sprintf("Smoke tests for %s", cfg.TargetURL),
		Message: fmt.Sprintf("%d/%d probes passed", report.Summary.Passed, report.Summary.Total),
		Success: report.Summary.Failed == 0,
		Fields: map[string]string{
			"Total":    fmt.Sprintf("%d", report.Summary.Total),
			"Failed":   fmt.Sprintf("%d", report.Summary.Failed),
			"Duration": fmt.Sprintf("%dms", report.Summary.DurationMs),
		},
	}

	if err := notify.Send(ctx, cfg.SlackWebhookURL, event); err != nil {
		log.Warn().Err(err).Msg("Failed to send run summary notification")
	}
}

// setupLogging configures the logging system
func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Use console writer in development
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Str("service", "greenlight").
			Logger()
	}
}
