// Package collect implements the write path of the translation store: a
// per-unit-of-work Collector that stages translatable field values in
// memory, and a Committer that persists the staged state as one ordered,
// idempotent transaction when the host's write cycle completes.
package collect

import (
	"fmt"
	"sync"

	"github.com/quillworks/traduit/internal/hash"
	"github.com/quillworks/traduit/internal/index"
	"github.com/quillworks/traduit/internal/locale"
	"github.com/quillworks/traduit/pkg/types"
)

// State is the collector's position in its unit-of-work state machine.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// stagedSource is one deduplicated source string staged for commit together
// with its resolved target locales.
type stagedSource struct {
	source  types.SourceString
	targets []string
}

// stagedText is explicit translated text a caller supplied directly,
// distinct from anything an engine will produce later.
type stagedText struct {
	text string
	meta types.Meta
}

// Collector gathers translatable field values touched during one unit of
// work. Collection is pure in-memory accumulation; no I/O happens before
// the commit phase. A Collector must not be shared across concurrent units
// of work.
type Collector struct {
	mu       sync.Mutex
	state    State
	registry *index.Registry
	locales  *locale.Resolver
	sources  map[string]stagedSource
	texts    map[types.TranslationKey]stagedText
}

// NewCollector returns an idle collector bound to the translatable index
// and locale resolver.
func NewCollector(registry *index.Registry, locales *locale.Resolver) *Collector {
	c := &Collector{registry: registry, locales: locales}
	c.reset()
	return c
}

// State returns the current state machine position.
func (c *Collector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Track stages every non-empty translatable field value of record. The
// first Track of a unit of work moves the collector from Idle to
// Collecting. Staging the same content twice is safe: entries are keyed by
// content hash, so the last write wins over identical content.
//
// Pointer-mode carriers stage nothing; they reference source strings owned
// elsewhere.
func (c *Collector) Track(record any) error {
	spec, err := c.registry.SpecFor(record)
	if err != nil {
		return err
	}
	mode, err := c.registry.ModeFor(record)
	if err != nil {
		return err
	}
	if mode == types.ModePointer {
		return nil
	}

	carrier, ok := record.(types.FieldCarrier)
	if !ok {
		return fmt.Errorf("collect: %T declares translatable fields but is no field carrier: %w",
			record, types.ErrNoBackingValue)
	}

	sourceLocale := c.locales.SourceLocale(spec, record)
	targets := c.locales.TargetLocales(spec, sourceLocale)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateCommitting {
		return fmt.Errorf("collect: track during commit: %w", types.ErrNotCollecting)
	}
	c.state = StateCollecting

	for _, field := range spec.Fields {
		value, present := carrier.BackingValue(field.Name)
		if !present {
			return fmt.Errorf("collect: %T.%s: %w", record, field.Name, types.ErrNoBackingValue)
		}
		if value == "" {
			continue
		}

		key := hash.Key(value, sourceLocale, field.Context)
		c.sources[key] = stagedSource{
			source: types.SourceString{
				Hash:         key,
				Original:     value,
				SourceLocale: sourceLocale,
				Context:      field.Context,
			},
			targets: targets,
		}
	}
	return nil
}

// StageTranslation buffers explicit translated text supplied by the caller,
// to be upserted in the commit's final phase.
func (c *Collector) StageTranslation(key types.TranslationKey, text string, meta types.Meta) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if key.Engine == "" {
		key.Engine = types.EngineNone
	}
	key.TargetLocale = locale.Normalize(key.TargetLocale)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateCommitting {
		return fmt.Errorf("collect: stage during commit: %w", types.ErrNotCollecting)
	}
	c.state = StateCollecting
	c.texts[key] = stagedText{text: text, meta: meta}
	return nil
}

// Abort discards all staged state before a commit has begun. Aborting an
// idle collector is a no-op.
func (c *Collector) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCommitting {
		c.reset()
	}
}

// beginCommit snapshots the staged state and moves to Committing. The
// snapshot keeps the commit phase free of the collector lock.
func (c *Collector) beginCommit() (map[string]stagedSource, map[types.TranslationKey]stagedText) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sources, texts := c.sources, c.texts
	c.sources = make(map[string]stagedSource)
	c.texts = make(map[types.TranslationKey]stagedText)
	c.state = StateCommitting
	return sources, texts
}

// finishCommit returns to Idle. Staged state was already detached by
// beginCommit, so nothing leaks into the next unit of work whether the
// commit succeeded or failed.
func (c *Collector) finishCommit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
}

// reset clears staged state. Caller holds the lock (or owns the collector
// exclusively, as in NewCollector).
func (c *Collector) reset() {
	c.state = StateIdle
	c.sources = make(map[string]stagedSource)
	c.texts = make(map[types.TranslationKey]stagedText)
}
