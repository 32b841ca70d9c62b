// Package hostuow adapts host persistence lifecycles to the collector's
// unit-of-work state machine. The explicit UnitOfWork API mirrors the three
// host signals (scheduled write, write cycle complete, record loaded); a
// GORM plugin wires those signals to a live *gorm.DB.
package hostuow

import (
	"context"

	"github.com/quillworks/traduit/internal/collect"
	"github.com/quillworks/traduit/internal/index"
	"github.com/quillworks/traduit/pkg/types"
)

// UnitOfWork binds one collector/committer pair to one host unit of work
// (a request or a batch job). It must not be shared across concurrent
// units of work.
type UnitOfWork struct {
	registry  *index.Registry
	collector *collect.Collector
	committer *collect.Committer
}

// New builds a UnitOfWork.
func New(registry *index.Registry, collector *collect.Collector, committer *collect.Committer) *UnitOfWork {
	return &UnitOfWork{registry: registry, collector: collector, committer: committer}
}

// ScheduledWrite stages a record about to be inserted or updated. Records
// whose class carries no translatable index entry are ignored; the host
// fires this signal for everything it persists.
func (u *UnitOfWork) ScheduledWrite(record any) error {
	if !u.registry.Registered(record) {
		return nil
	}
	return u.collector.Track(record)
}

// SupplyTranslation buffers explicit translated text provided by the caller
// alongside its record writes.
func (u *UnitOfWork) SupplyTranslation(key types.TranslationKey, text string, meta types.Meta) error {
	return u.collector.StageTranslation(key, text, meta)
}

// WriteCycleComplete commits everything staged in this unit of work.
func (u *UnitOfWork) WriteCycleComplete(ctx context.Context) error {
	return u.committer.Flush(ctx, u.collector)
}

// Abort discards staged state when the host unit of work is rolled back
// before its write cycle completed.
func (u *UnitOfWork) Abort() {
	u.collector.Abort()
}
