package hostuow

import (
	"context"
	"reflect"

	"gorm.io/gorm"

	"github.com/quillworks/traduit/internal/resolve"
	"github.com/quillworks/traduit/pkg/types"
)

// Plugin bridges GORM's statement lifecycle to the unit of work: records
// pass through the collector before gorm writes them, the staged state is
// flushed once the statement's transaction settles, and loaded pointer
// carriers are hydrated after queries.
type Plugin struct {
	UOW *UnitOfWork

	// RuntimeFor, when set, supplies the per-request resolution runtime
	// used to hydrate loaded records. Without it, query hydration is off.
	RuntimeFor func(ctx context.Context) *resolve.Runtime

	// AutoFlush commits staged state after each create/update statement.
	// Hosts that batch several statements into one unit of work leave it
	// off and call WriteCycleComplete themselves.
	AutoFlush bool
}

// Name implements gorm.Plugin.
func (p *Plugin) Name() string { return "traduit" }

// Initialize registers the lifecycle callbacks.
func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register("traduit:collect_create", p.collect); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("traduit:collect_update", p.collect); err != nil {
		return err
	}
	if p.AutoFlush {
		if err := db.Callback().Create().After("gorm:create").Register("traduit:flush_create", p.flush); err != nil {
			return err
		}
		if err := db.Callback().Update().After("gorm:update").Register("traduit:flush_update", p.flush); err != nil {
			return err
		}
	}
	return db.Callback().Query().After("gorm:query").Register("traduit:hydrate", p.hydrate)
}

// collect stages the statement destination before gorm writes it.
func (p *Plugin) collect(db *gorm.DB) {
	if db.Statement == nil || db.Statement.Dest == nil {
		return
	}
	if err := p.UOW.ScheduledWrite(db.Statement.Dest); err != nil {
		_ = db.AddError(err)
	}
}

// flush commits the staged state once the statement ran. A failed statement
// aborts the staged state instead; gorm already rolled its transaction back.
func (p *Plugin) flush(db *gorm.DB) {
	if db.Error != nil {
		p.UOW.Abort()
		return
	}
	if err := p.UOW.WriteCycleComplete(db.Statement.Context); err != nil {
		_ = db.AddError(err)
	}
}

// hydrate resolves translations onto loaded pointer carriers, one batched
// store query per record.
func (p *Plugin) hydrate(db *gorm.DB) {
	if p.RuntimeFor == nil || db.Error != nil || db.Statement == nil || db.Statement.Dest == nil {
		return
	}
	runtime := p.RuntimeFor(db.Statement.Context)
	if runtime == nil {
		return
	}

	for _, record := range pointerCarriers(db.Statement.Dest) {
		if err := runtime.Hydrate(db.Statement.Context, record); err != nil {
			_ = db.AddError(err)
			return
		}
	}
}

// pointerCarriers extracts the pointer-mode carriers from a query
// destination, which gorm hands over as a single record or a slice.
func pointerCarriers(dest any) []types.PointerCarrier {
	if pc, ok := dest.(types.PointerCarrier); ok {
		return []types.PointerCarrier{pc}
	}

	v := reflect.ValueOf(dest)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return nil
	}

	var out []types.PointerCarrier
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() != reflect.Pointer && elem.CanAddr() {
			elem = elem.Addr()
		}
		if pc, ok := elem.Interface().(types.PointerCarrier); ok {
			out = append(out, pc)
		}
	}
	return out
}
