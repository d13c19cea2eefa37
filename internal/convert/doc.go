// Package convert declares the identifier conversion capabilities the
// resolver consumes and the Registry that bundles the configured providers.
//
// Every conversion fails with services.ErrConversionUnavailable when the
// provider is missing or services.ErrConversionNotFound when it was asked and
// had no answer. The resolver treats both the same way.
package convert
