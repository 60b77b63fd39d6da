// Package runner executes the probe suite and produces the run report,
// pipeline outputs and exit code that gate a deployment.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/greenlight-ci/greenlight/internal/probes"
	"github.com/greenlight-ci/greenlight/internal/retry"
)

// Summary aggregates the outcome counters for one run.
type Summary struct {
	Total      int   `json:"total"`
	Passed     int   `json:"passed"`
	Failed     int   `json:"failed"`
	DurationMs int64 `json:"duration"`
}

// Report is the durable artifact of record for one suite run.
// Test order matches probe execution order.
type Report struct {
	RunID     string         `json:"run_id"`
	TargetURL string         `json:"target_url"`
	StartedAt time.Time      `json:"started_at"`
	Summary   Summary        `json:"summary"`
	Tests     []retry.Result `json:"tests"`
}

// ExitCode returns the process exit status the pipeline consumes:
// 0 only when no probe failed. An empty suite counts as success.
func (r *Report) ExitCode() int {
	if r.Summary.Failed == 0 {
		return 0
	}
	return 1
}

// Runner drives the probe suite through the retry scheduler.
type Runner struct {
	scheduler  *retry.Scheduler
	maxRetries int
}

// New creates a Runner that retries each probe up to maxRetries times.
func New(scheduler *retry.Scheduler, maxRetries int) *Runner {
	return &Runner{scheduler: scheduler, maxRetries: maxRetries}
}

// Run executes the suite strictly in order and returns the finalised
// report. The report is built by folding over probe outcomes; probe
// failures are reflected in the summary, never raised. Later probes run
// regardless of earlier failures.
func (r *Runner) Run(ctx context.Context, targetURL string, suite []probes.Probe) *Report {
	start := time.Now()
	report := &Report{
		RunID:     uuid.New().String(),
		TargetURL: targetURL,
		StartedAt: start.UTC(),
		Tests:     make([]retry.Result, 0, len(suite)),
	}

	log.Info().
		Str("run_id", report.RunID).
		Str("target_url", targetURL).
		Int("probes", len(suite)).
		Int("max_retries", r.maxRetries).
		Msg("Starting smoke test suite")

	for _, probe := range suite {
		log.Info().Str("probe", probe.Name).Msg("Running probe")
		result := r.scheduler.Execute(ctx, probe.Name, probe.Run, r.maxRetries)
		report.Tests = append(report.Tests, result)

		if result.Passed() {
			report.Summary.Passed++
			log.Info().
				Str("probe", result.Name).
				Int("attempts", result.Attempts).
				Int64("duration_ms", result.DurationMs).
				Msg("Probe passed")
		} else {
			report.Summary.Failed++
			log.Error().
				Str("probe", result.Name).
				Int("attempts", result.Attempts).
				Int64("duration_ms", result.DurationMs).
				Str("error", result.Error).
				Msg("Probe failed")
		}
	}

	report.Summary.Total = len(report.Tests)
	report.Summary.DurationMs = time.Since(start).Milliseconds()

	log.Info().
		Str("run_id", report.RunID).
		Int("total", report.Summary.Total).
		Int("passed", report.Summary.Passed).
		Int("failed", report.Summary.Failed).
		Int64("duration_ms", report.Summary.DurationMs).
		Msg("Smoke test suite completed")

	return report
}

// WriteReportFile writes the finalised report as indented JSON to path.
func WriteReportFile(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("Report written")
	return nil
}

// WritePipelineOutputs emits the machine-readable key/value pairs the
// invoking pipeline consumes.
func WritePipelineOutputs(w io.Writer, report *Report) error {
	results, err := json.Marshal(report.Tests)
	if err != nil {
		return fmt.Errorf("failed to serialise results: %w", err)
	}

	lines := []string{
		fmt.Sprintf("passed=%t", report.Summary.Failed == 0),
		fmt.Sprintf("total=%d", report.Summary.Total),
		fmt.Sprintf("passed-count=%d", report.Summary.Passed),
		fmt.Sprintf("failed-count=%d", report.Summary.Failed),
		fmt.Sprintf("results=%s", results),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write pipeline output: %w", err)
		}
	}
	return nil
}

// EmitPipelineOutputs writes the pipeline key/value pairs to the file
// named by GITHUB_OUTPUT when set, falling back to stdout.
func EmitPipelineOutputs(report *Report) error {
	if path := os.Getenv("GITHUB_OUTPUT"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open output file %s: %w", path, err)
		}
		defer f.Close()
		return WritePipelineOutputs(f, report)
	}
	return WritePipelineOutputs(os.Stdout, report)
}
