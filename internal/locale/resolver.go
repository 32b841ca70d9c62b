package locale

import (
	"github.com/quillworks/traduit/pkg/types"
)

// Resolver computes source and target locales for record classes from the
// global locale configuration and per-class overrides. It is pure: no I/O,
// no process state.
type Resolver struct {
	defaultLocale string
	enabled       []string
}

// NewResolver builds a Resolver from the global locale configuration. Codes
// are normalized once here so every later comparison is exact.
func NewResolver(cfg types.LocaleConfig) *Resolver {
	return &Resolver{
		defaultLocale: Normalize(cfg.Default),
		enabled:       NormalizeAll(cfg.Enabled),
	}
}

// Default returns the normalized global default locale.
func (r *Resolver) Default() string {
	return r.defaultLocale
}

// Enabled returns the normalized enabled locale set in configured order.
func (r *Resolver) Enabled() []string {
	return r.enabled
}

// IsEnabled reports whether code belongs to the enabled set. An empty
// enabled set accepts everything.
func (r *Resolver) IsEnabled(code string) bool {
	if len(r.enabled) == 0 {
		return true
	}
	code = Normalize(code)
	for _, e := range r.enabled {
		if e == code {
			return true
		}
	}
	return false
}

// SourceLocale resolves the locale a record's content is written in.
// Precedence: explicit per-class configured locale, then a SourceLocalized
// instance, then the global default.
func (r *Resolver) SourceLocale(spec types.ClassSpec, instance any) string {
	if spec.SourceLocale != "" {
		return Normalize(spec.SourceLocale)
	}
	if sl, ok := instance.(types.SourceLocalized); ok {
		if code := Normalize(sl.SourceLocale()); code != "" {
			return code
		}
	}
	return r.defaultLocale
}

// TargetLocales resolves the ordered target set for a record: the explicit
// per-class override when present (nil means "use the enabled set", an empty
// non-nil slice means "no targets"), minus the source locale and duplicates,
// preserving first-seen order.
func (r *Resolver) TargetLocales(spec types.ClassSpec, sourceLocale string) []string {
	candidates := r.enabled
	if spec.TargetLocales != nil {
		candidates = NormalizeAll(spec.TargetLocales)
	}

	sourceLocale = Normalize(sourceLocale)
	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		c = Normalize(c)
		if c == "" || c == sourceLocale || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
