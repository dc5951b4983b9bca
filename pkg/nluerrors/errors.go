// Package nluerrors defines the error taxonomy shared by every package in the
// engine: model-load failures, unknown-intent/filter errors, and internal
// invariant violations. Callers should match with errors.Is/errors.As.
package nluerrors

import "fmt"

var (
	// ErrModelVersionMismatch is returned by nlu.FromPath when the model's
	// declared model_version does not match the compile-time constant.
	ErrModelVersionMismatch = fmt.Errorf("model version mismatch")

	// ErrUnknownIntent is returned by a parser's GetSlots when the named intent
	// is not one it knows. Unknown whitelist/blacklist entries are reported
	// with ErrInvalidFilter instead.
	ErrUnknownIntent = fmt.Errorf("unknown intent")

	// ErrInvalidFilter is returned when a whitelist/blacklist entry does not
	// resolve to a dataset intent.
	ErrInvalidFilter = fmt.Errorf("invalid intent filter")

	// ErrEntityParser names the failure of a builtin or custom entity parser
	// collaborator. No package in this module wraps errors with it: entity
	// parser errors are returned with added context only.
	ErrEntityParser = fmt.Errorf("entity parser error")

	// ErrInjection is returned for non-injectable entity kinds or failed
	// directory operations during entity injection.
	ErrInjection = fmt.Errorf("injection error")

	// ErrInternal marks invariant violations wrapped with Internal; in this
	// module resources.Load uses it for an unparseable metadata language.
	// Other invariant errors (out-of-range lookup ids, tag/token count
	// mismatches) are returned as plain errors without it.
	ErrInternal = fmt.Errorf("internal error")
)

// Internal wraps cause with context and ErrInternal so callers can still
// errors.Is(err, ErrInternal) after wrapping.
func Internal(context string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", context, ErrInternal)
	}
	return fmt.Errorf("%s: %w: %w", context, ErrInternal, cause)
}

// Unknown returns an ErrUnknownIntent wrapped with the offending name.
func Unknown(intent string) error {
	return fmt.Errorf("%q: %w", intent, ErrUnknownIntent)
}

// InvalidFilter returns an ErrInvalidFilter wrapped with the offending name.
func InvalidFilter(intent string) error {
	return fmt.Errorf("%q: %w", intent, ErrInvalidFilter)
}
