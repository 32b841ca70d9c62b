// Package types defines the core entities of the translation store
// (SourceString, Translation), the Store, Translator and carrier interfaces,
// the configuration type, and the standard errors shared by every traduit
// component.
package types
