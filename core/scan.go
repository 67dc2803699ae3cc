package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/cleanscore/schema"
)

// ErrModelUnavailable is returned when a scan cycle finds the model server down.
var ErrModelUnavailable = errors.New("model server is not reachable")

// Health probes the model server, the store and the repository.
func (o *Orchestrator) Health(ctx context.Context) schema.HealthReport {
	var report schema.HealthReport

	if o.prober != nil {
		report.Ollama = o.prober.CheckHealth(ctx)
	} else {
		report.Ollama = schema.OllamaStatus{Error: "no model prober configured"}
	}

	if o.store != nil {
		status, err := o.store.GetStatus(ctx)
		if err != nil {
			report.StoreError = err.Error()
		}
		report.Store = status
	}

	if o.git != nil {
		root, err := o.git.GetRepoRoot(ctx, o.cfg.RepoPath)
		if err != nil {
			report.RepoError = err.Error()
		}
		report.RepoRoot = root
	}
	return report
}

// AnalyzeRecent runs one scan cycle over commits inside the lookback window.
// At most ScanLimit commits are analyzed, one after another. A failing commit is
// recorded in the report and does not stop the cycle.
func (o *Orchestrator) AnalyzeRecent(ctx context.Context) (*schema.ScanReport, error) {
	if o.prober != nil {
		status := o.prober.CheckHealth(ctx)
		if !status.Reachable {
			o.logger.Error("skipping scan cycle, model server unreachable", "url", status.BaseURL, "err", status.Error)
			return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, status.Error)
		}
		if !status.ModelAvailable {
			o.logger.Warn("configured model not listed by the server", "model", status.Model)
		}
	}

	until := o.now()
	since := until.Add(-o.cfg.Lookback)
	commits, err := o.git.GetCommitsByPeriod(ctx, o.cfg.RepoPath, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}

	report := &schema.ScanReport{Since: since, Until: until, Found: len(commits), Failures: map[string]string{}}
	o.logger.Info("starting scan cycle", "found", len(commits), "limit", o.cfg.ScanLimit, "since", since)

	for i, commit := range commits {
		if i >= o.cfg.ScanLimit {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome, err := o.AnalyzeCommit(ctx, commit.ID)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			o.logger.Error("commit analysis failed", "commit", commit.ID, "err", err)
			report.Failures[commit.ID] = err.Error()
			continue
		}
		report.Outcomes = append(report.Outcomes, *outcome)
	}
	return report, nil
}

// Watch runs a scan cycle immediately and then every interval until ctx is done.
// Cycle errors are passed to onCycle and do not stop the loop.
func (o *Orchestrator) Watch(ctx context.Context, interval time.Duration, onCycle func(*schema.ScanReport, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		report, err := o.AnalyzeRecent(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if onCycle != nil {
			onCycle(report, err)
		}
		o.logger.Info("waiting for next scan cycle", "interval", interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
