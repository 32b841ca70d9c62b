package types

// FieldSpec declares one translatable field of a record class. Context
// disambiguates identical text used in different semantic roles; it becomes
// part of the content hash.
type FieldSpec struct {
	Name    string `json:"name"`
	Context string `json:"context,omitempty"`
}

// ClassSpec is the translatable-index entry for one record class: which
// fields carry translatable text and how locales are resolved for it.
type ClassSpec struct {
	// Fields lists the translatable fields in declaration order.
	Fields []FieldSpec `json:"fields"`

	// SourceLocale, when set, fixes the source locale for every instance
	// of the class. It takes precedence over a SourceLocalized instance.
	SourceLocale string `json:"source_locale,omitempty"`

	// TargetLocales overrides the globally enabled target set. nil means
	// use the enabled locales; an empty non-nil slice means the class is
	// explicitly not translated into anything.
	TargetLocales []string `json:"target_locales,omitempty"`

	// Mode forces the carrier mode instead of structural probing.
	Mode *CarrierMode `json:"mode,omitempty"`
}

// FieldNames returns the declared field names in order.
func (s ClassSpec) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// ContextFor returns the declared context for field, or "".
func (s ClassSpec) ContextFor(field string) string {
	for _, f := range s.Fields {
		if f.Name == field {
			return f.Context
		}
	}
	return ""
}
