package resolve

import (
	"github.com/quillworks/traduit/internal/index"
	"github.com/quillworks/traduit/pkg/types"
)

// Router selects the storage mode for a record: field-value carriers expose
// their translatable values directly, pointer carriers expose a field→hash
// map and take resolved text by injection.
type Router struct {
	registry *index.Registry
}

// NewRouter builds a Router over the translatable index.
func NewRouter(registry *index.Registry) *Router {
	return &Router{registry: registry}
}

// Route returns the carrier mode for record. Registered classes use the
// mode fixed at registration (explicit declaration or structural probe);
// unregistered records are probed directly so read models that carry no
// index entry still route.
func (r *Router) Route(record any) types.CarrierMode {
	if mode, err := r.registry.ModeFor(record); err == nil {
		return mode
	}
	if _, ok := record.(types.PointerCarrier); ok {
		return types.ModePointer
	}
	return types.ModeFieldValue
}
