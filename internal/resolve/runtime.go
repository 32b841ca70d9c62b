// Package resolve implements the read path: a per-unit-of-work Runtime that
// answers "what text should this reader see for this field", memoizes
// answers for the life of the run, and falls back to the source value when
// no translation exists. It also routes record types between the two
// carrier storage modes.
package resolve

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/text/message"

	"github.com/quillworks/traduit/internal/hash"
	"github.com/quillworks/traduit/internal/index"
	"github.com/quillworks/traduit/internal/locale"
	"github.com/quillworks/traduit/pkg/types"
)

// memoKey identifies one resolved field on one live record instance.
// Records are tracked by identity, so carriers must be passed as pointers.
type memoKey struct {
	record any
	field  string
}

// Runtime holds the read-side state of one unit of work: the resolved
// display locale and a memoization cache. It must be created per run and
// never shared across concurrent units of work; a stale runtime leaks
// translations between requests.
type Runtime struct {
	store    types.Store
	registry *index.Registry
	locales  *locale.Resolver
	display  locale.DisplayResolution
	fallback string
	logger   *log.Logger

	mu   sync.Mutex
	memo map[memoKey]string
}

// New establishes the per-run resolution state. fallback is the
// locale tried after the display locale before giving up on translated
// text; pass "" to go straight to the source value.
func New(store types.Store, registry *index.Registry, locales *locale.Resolver, display locale.DisplayResolution, fallback string, logger *log.Logger) *Runtime {
	if logger == nil {
		logger = log.Default()
	}
	return &Runtime{
		store:    store,
		registry: registry,
		locales:  locales,
		display:  display,
		fallback: locale.Normalize(fallback),
		logger:   logger,
		memo:     make(map[memoKey]string),
	}
}

// DisplayLocale returns the locale this runtime serves.
func (r *Runtime) DisplayLocale() string {
	return r.display.Locale
}

// Printer returns the message printer of the display resolution, so
// numbers and dates formatted during this run agree with an explicitly
// overridden display locale.
func (r *Runtime) Printer() *message.Printer {
	return r.display.Printer()
}

// Resolve returns the text a reader should see for field on record: the
// memoized value if present, else the stored translation for the display
// locale, else the fallback locale's, else the record's own source value.
// Translation misses are silent; only structural misconfiguration errors.
func (r *Runtime) Resolve(ctx context.Context, record any, field string) (string, error) {
	key := memoKey{record: record, field: field}
	r.mu.Lock()
	if text, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return text, nil
	}
	r.mu.Unlock()

	spec, err := r.registry.SpecFor(record)
	if err != nil {
		return "", err
	}
	mode, err := r.registry.ModeFor(record)
	if err != nil {
		return "", err
	}
	if mode == types.ModePointer {
		return "", fmt.Errorf("resolve: %T is a pointer carrier, use Hydrate: %w",
			record, types.ErrNoBackingValue)
	}

	backing, err := r.BackingValue(record, field)
	if err != nil {
		return "", err
	}

	text := backing
	if backing != "" {
		sourceLocale := r.locales.SourceLocale(spec, record)
		if r.display.Locale != sourceLocale {
			contentKey := hash.Key(backing, sourceLocale, spec.ContextFor(field))
			if translated, ok := r.lookup(ctx, contentKey, sourceLocale); ok {
				text = translated
			}
		}
	}

	r.mu.Lock()
	r.memo[key] = text
	r.mu.Unlock()
	return text, nil
}

// lookup tries the display locale, then the fallback locale. Store errors
// are logged and treated as misses; readers get the source value rather
// than an error page.
func (r *Runtime) lookup(ctx context.Context, contentKey, sourceLocale string) (string, bool) {
	text, ok, err := r.store.Lookup(ctx, contentKey, r.display.Locale)
	if err != nil {
		r.logger.Printf("resolve: lookup %s/%s: %v", contentKey, r.display.Locale, err)
		return "", false
	}
	if ok {
		return text, true
	}

	if r.fallback == "" || r.fallback == r.display.Locale || r.fallback == sourceLocale {
		return "", false
	}
	text, ok, err = r.store.Lookup(ctx, contentKey, r.fallback)
	if err != nil {
		r.logger.Printf("resolve: lookup %s/%s: %v", contentKey, r.fallback, err)
		return "", false
	}
	return text, ok
}

// BackingValue is the strict accessor for a field's untranslated value. A
// missing backing value is a structural misconfiguration and fails loudly,
// unlike a missing translation.
func (r *Runtime) BackingValue(record any, field string) (string, error) {
	carrier, ok := record.(types.FieldCarrier)
	if !ok {
		return "", fmt.Errorf("resolve: %T: %w", record, types.ErrNoBackingValue)
	}
	value, present := carrier.BackingValue(field)
	if !present {
		return "", fmt.Errorf("resolve: %T.%s: %w", record, field, types.ErrNoBackingValue)
	}
	return value, nil
}

// Hydrate resolves every hashed field of a pointer carrier with a single
// store query and injects the results back. Fields without usable text are
// left untouched, so the view keeps rendering whatever it already carries.
func (r *Runtime) Hydrate(ctx context.Context, record types.PointerCarrier) error {
	hashes := record.TranslationHashes()
	if len(hashes) == 0 {
		return nil
	}

	keys := make([]string, 0, len(hashes))
	for _, h := range hashes {
		keys = append(keys, h)
	}
	found, err := r.store.LookupAll(ctx, keys, r.display.Locale)
	if err != nil {
		return fmt.Errorf("resolve: hydrate %T: %w", record, err)
	}

	for field, h := range hashes {
		if text, ok := found[h]; ok {
			record.InjectTranslation(field, text)
		}
	}
	return nil
}
