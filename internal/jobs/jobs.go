// Package jobs implements the batch and maintenance surfaces of the
// translation store: filling missing translations through an engine,
// backfilling stub rows for a newly enabled locale, and per-locale coverage
// reporting. Jobs report tallies instead of aborting on the first bad item.
package jobs

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/quillworks/traduit/internal/locale"
	"github.com/quillworks/traduit/pkg/types"
)

// Report tallies one batch run.
type Report struct {
	RunID      string `json:"run_id"`
	Locale     string `json:"locale"`
	Processed  int    `json:"processed"`
	Translated int    `json:"translated"`
	Created    int    `json:"created"`
	Skipped    int    `json:"skipped"`
}

// Runner executes maintenance jobs against one store.
type Runner struct {
	store  types.Store
	logger *log.Logger
}

// NewRunner builds a Runner.
func NewRunner(store types.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{store: store, logger: logger}
}

// newRunID tags a batch run for logs and reports.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// TranslateMissing streams the source strings lacking text for targetLocale
// and fills them through translator. Engine failures are caught per item
// and counted as skips so one bad string never aborts the run. limit <= 0
// processes everything.
func (r *Runner) TranslateMissing(ctx context.Context, translator types.Translator, targetLocale, sourceFilter string, limit int) (Report, error) {
	targetLocale = locale.Normalize(targetLocale)
	report := Report{RunID: newRunID(), Locale: targetLocale}

	missing, err := r.collectMissing(ctx, targetLocale, locale.Normalize(sourceFilter), limit)
	if err != nil {
		return report, err
	}

	for _, src := range missing {
		report.Processed++

		text, err := translator.Translate(ctx, src.Original, src.SourceLocale, targetLocale)
		if err != nil {
			report.Skipped++
			r.logger.Printf("jobs %s: translate %s for %s: %v", report.RunID, src.Hash, targetLocale, err)
			continue
		}

		status := types.StatusTranslated
		if text == src.Original {
			status = types.StatusIdentical
		}
		key := types.TranslationKey{Hash: src.Hash, TargetLocale: targetLocale, Engine: translator.Name()}
		if err := r.store.UpsertText(ctx, key, text, status, nil); err != nil {
			report.Skipped++
			r.logger.Printf("jobs %s: store %s for %s: %v", report.RunID, src.Hash, targetLocale, err)
			continue
		}
		report.Translated++
	}

	r.logger.Printf("jobs %s: translate-missing %s done: %d processed, %d translated, %d skipped",
		report.RunID, targetLocale, report.Processed, report.Translated, report.Skipped)
	return report, nil
}

// BackfillStubs ensures a stub translation row exists for every source
// string still missing targetLocale, making the locale enumerable by query
// immediately after it is enabled. limit <= 0 backfills everything.
func (r *Runner) BackfillStubs(ctx context.Context, targetLocale string, limit int) (Report, error) {
	targetLocale = locale.Normalize(targetLocale)
	report := Report{RunID: newRunID(), Locale: targetLocale}

	missing, err := r.collectMissing(ctx, targetLocale, "", limit)
	if err != nil {
		return report, err
	}

	for _, src := range missing {
		report.Processed++

		key := types.TranslationKey{Hash: src.Hash, TargetLocale: targetLocale, Engine: types.EngineNone}
		if err := r.store.EnsureStub(ctx, key); err != nil {
			report.Skipped++
			r.logger.Printf("jobs %s: stub %s for %s: %v", report.RunID, src.Hash, targetLocale, err)
			continue
		}
		report.Created++
	}

	r.logger.Printf("jobs %s: backfill %s done: %d processed, %d ensured, %d skipped",
		report.RunID, targetLocale, report.Processed, report.Created, report.Skipped)
	return report, nil
}

// collectMissing materializes the missing set before any write runs, so the
// write path never interleaves with an open read cursor on the same
// connection.
func (r *Runner) collectMissing(ctx context.Context, targetLocale, sourceFilter string, limit int) ([]types.SourceString, error) {
	var missing []types.SourceString
	err := r.store.IterateMissing(ctx, targetLocale, sourceFilter, limit, func(src types.SourceString) error {
		missing = append(missing, src)
		return nil
	})
	return missing, err
}

// CoverageAll reports coverage for every given locale in order.
func (r *Runner) CoverageAll(ctx context.Context, locales []string) ([]types.Coverage, error) {
	out := make([]types.Coverage, 0, len(locales))
	for _, code := range locale.NormalizeAll(locales) {
		cov, err := r.store.Coverage(ctx, code)
		if err != nil {
			return out, err
		}
		out = append(out, cov)
	}
	return out, nil
}
