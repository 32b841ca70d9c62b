// Package engine provides the machine-translation backends that fill
// translation cells: an HTTP client for LibreTranslate-compatible services
// and an identity engine for development and tests.
package engine

import (
	"fmt"

	"github.com/quillworks/traduit/pkg/types"
)

// New builds the configured translator. An empty kind yields the identity
// engine so a bare config still runs end to end.
func New(cfg types.EngineConfig) (types.Translator, error) {
	switch cfg.Kind {
	case "", types.EngineKindIdentity:
		return Identity{}, nil
	case types.EngineKindHTTP:
		return NewHTTP(cfg), nil
	default:
		return nil, fmt.Errorf("engine: %w: %q", types.ErrEngineKindUnknown, cfg.Kind)
	}
}
