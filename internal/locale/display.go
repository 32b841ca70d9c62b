package locale

import (
	"log"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayRequest carries the read-side signals a display locale can be
// resolved from, strongest first. Zero values mean "signal absent".
type DisplayRequest struct {
	// Override is an explicit programmatic choice for the current run. It
	// is the only signal that also propagates to locale-sensitive
	// formatting (see DisplayResolution.Printer).
	Override string

	// Requested is an inbound-request-style signal, e.g. a locale segment
	// extracted from a route or query by the caller.
	Requested string

	// AcceptLanguage is the raw content-negotiation header, matched
	// best-fit against the enabled set.
	AcceptLanguage string
}

// DisplayResolution is the outcome of resolving a display locale.
type DisplayResolution struct {
	// Locale is the resolved display locale, always a member of the
	// enabled set when that set is non-empty.
	Locale string

	// Overridden reports that the explicit override won, in which case
	// Printer formats numbers and dates for the display locale.
	Overridden bool

	printer *message.Printer
}

// Printer returns a message printer for the resolved locale. Only an
// explicit override installs a locale-matched printer; passive resolutions
// keep formatting on the default locale.
func (d DisplayResolution) Printer() *message.Printer {
	return d.printer
}

// DisplayLocale resolves the locale a reader should see. Precedence:
// explicit override, request signal, Accept-Language best fit, global
// default. A candidate outside the enabled set is discarded for the default
// with a logged discrepancy; that is never fatal.
func (r *Resolver) DisplayLocale(req DisplayRequest, logger *log.Logger) DisplayResolution {
	if code := Normalize(req.Override); code != "" {
		resolved := r.clampToEnabled(code, logger)
		return DisplayResolution{
			Locale:     resolved,
			Overridden: true,
			printer:    printerFor(resolved),
		}
	}

	if code := Normalize(req.Requested); code != "" {
		return DisplayResolution{
			Locale:  r.clampToEnabled(code, logger),
			printer: printerFor(r.defaultLocale),
		}
	}

	if req.AcceptLanguage != "" && len(r.enabled) > 0 {
		matcher := language.NewMatcher(ParseTags(r.enabled))
		if _, index := language.MatchStrings(matcher, req.AcceptLanguage); index >= 0 && index < len(r.enabled) {
			return DisplayResolution{
				Locale:  r.enabled[index],
				printer: printerFor(r.defaultLocale),
			}
		}
	}

	return DisplayResolution{
		Locale:  r.defaultLocale,
		printer: printerFor(r.defaultLocale),
	}
}

// clampToEnabled keeps code when it is enabled, otherwise falls back to the
// default and logs the discrepancy.
func (r *Resolver) clampToEnabled(code string, logger *log.Logger) string {
	if r.IsEnabled(code) {
		return code
	}
	if logger != nil {
		logger.Printf("locale: %q not in enabled set %v, using default %q", code, r.enabled, r.defaultLocale)
	}
	return r.defaultLocale
}

// printerFor builds a message printer for code, falling back to the
// undetermined tag when the code does not parse.
func printerFor(code string) *message.Printer {
	tag, err := language.Parse(code)
	if err != nil {
		tag = language.Und
	}
	return message.NewPrinter(tag)
}
