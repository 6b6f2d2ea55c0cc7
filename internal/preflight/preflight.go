package preflight

import (
	"context"
	"log/slog"

	"lifelens/internal/config"
	"lifelens/internal/logging"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Options tunes RunAll.
type Options struct {
	// SkipLLM leaves out the network round-trip to the diagnosis model.
	SkipLLM bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if opts.SkipLLM {
		results = append(results, CheckAPIKey("Diagnosis model", cfg.GetLLM()))
	} else {
		results = append(results, CheckLLM(ctx, "Diagnosis model", cfg.GetLLM()))
	}

	results = append(results, CheckSpeech(cfg.Speech)...)
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// LogResults writes one line per check, warning on failures.
func LogResults(logger *slog.Logger, results []Result) {
	logger = logging.NewComponentLogger(logger, "preflight")
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
			)
			continue
		}
		impact := "feature unavailable"
		if r.Optional {
			impact = "optional feature unavailable"
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldImpact, impact),
		)
	}
}
