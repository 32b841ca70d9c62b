package types

// CarrierMode selects how a record type stores its translatable content.
type CarrierMode int

const (
	// ModeFieldValue marks carriers that expose translatable field values
	// directly; the hash is derived from the record's own content and the
	// resolved text is served in place of the backing value.
	ModeFieldValue CarrierMode = iota

	// ModePointer marks denormalized read models that carry a field→hash
	// map pointing at source strings owned elsewhere; translations are
	// resolved externally and injected back.
	ModePointer
)

func (m CarrierMode) String() string {
	if m == ModePointer {
		return "pointer"
	}
	return "field-value"
}

// FieldCarrier is a record that owns its translatable field values.
type FieldCarrier interface {
	// BackingValue returns the untranslated stored value for field. The
	// second result is false when the field has no backing storage, which
	// resolution treats as a structural misconfiguration.
	BackingValue(field string) (string, bool)
}

// PointerCarrier is a read model that references source strings by hash.
type PointerCarrier interface {
	// TranslationHashes returns the field→hash map for the record.
	TranslationHashes() map[string]string

	// InjectTranslation stores resolved text back onto the record.
	InjectTranslation(field, text string)
}

// SourceLocalized is implemented by records that declare the locale their
// content is written in, overriding the global default at staging time.
type SourceLocalized interface {
	SourceLocale() string
}
