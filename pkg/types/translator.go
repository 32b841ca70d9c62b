package types

import "context"

// Translator is the external machine-translation capability. Implementations
// may fail per call (network or engine error); batch jobs catch each failure
// so one bad item does not abort the run.
type Translator interface {
	// Name identifies the engine; it becomes the engine column of the
	// translation cells the engine fills.
	Name() string

	// Translate renders text from the source locale into the target locale.
	Translate(ctx context.Context, text, from, to string) (string, error)
}
