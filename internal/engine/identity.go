package engine

import "context"

// Identity returns the input text unchanged. Useful for wiring tests and
// for locales whose content is intentionally served untranslated.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
