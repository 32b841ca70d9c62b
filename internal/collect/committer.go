package collect

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/quillworks/traduit/pkg/types"
)

// maxFlushDepth bounds re-entrant flushes: one regular cycle plus one settle
// cycle for hosts whose change tracker sees the commit's own writes as new
// scheduled work. Deeper recursion is suppressed.
const maxFlushDepth = 2

// Committer persists a collector's staged state when the host signals that
// the write cycle is complete. All staged rows go through one transaction
// in a fixed phase order: source strings, then translation stubs, then
// explicit texts.
type Committer struct {
	store    types.Store
	logger   *log.Logger
	tolerant bool
	depth    atomic.Int32
}

// NewCommitter builds a Committer. In tolerant mode a failed commit is
// logged and abandoned instead of propagated; callers relying on immediate
// consistency must treat the commit as best-effort in that mode.
func NewCommitter(store types.Store, logger *log.Logger, tolerant bool) *Committer {
	if logger == nil {
		logger = log.Default()
	}
	return &Committer{store: store, logger: logger, tolerant: tolerant}
}

// Flush commits everything staged on c in one transaction and resets the
// collector to idle. Phase order is mandatory: stubs reference source
// strings, and explicit texts are only distinguishable from "never seen"
// once their stub phase ran.
//
// Flush may be re-entered once when satisfying the commit triggers another
// host write signal; beyond that settle cycle, recursion is suppressed.
func (m *Committer) Flush(ctx context.Context, c *Collector) error {
	depth := m.depth.Add(1)
	defer m.depth.Add(-1)
	if depth > maxFlushDepth {
		m.logger.Printf("collect: flush recursion suppressed at depth %d", depth)
		return nil
	}

	sources, texts := c.beginCommit()
	defer c.finishCommit()
	if len(sources) == 0 && len(texts) == 0 {
		return nil
	}

	err := m.store.WithinTx(ctx, func(ops types.StoreOps) error {
		for _, staged := range sources {
			if err := ops.UpsertSource(ctx, staged.source); err != nil {
				return fmt.Errorf("phase sources: %w", err)
			}
		}
		for _, staged := range sources {
			for _, target := range staged.targets {
				key := types.TranslationKey{
					Hash:         staged.source.Hash,
					TargetLocale: target,
					Engine:       types.EngineNone,
				}
				if err := ops.EnsureStub(ctx, key); err != nil {
					return fmt.Errorf("phase stubs: %w", err)
				}
			}
		}
		for key, staged := range texts {
			if err := ops.UpsertText(ctx, key, staged.text, types.StatusTranslated, staged.meta); err != nil {
				return fmt.Errorf("phase texts: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		// The wrapped store error carries the failing SQL and parameters.
		m.logger.Printf("collect: commit of %d sources, %d texts rolled back: %v",
			len(sources), len(texts), err)
		if m.tolerant {
			return nil
		}
		return fmt.Errorf("collect: commit: %w", err)
	}
	return nil
}
