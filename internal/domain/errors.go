package domain

import "errors"

// Error taxonomy for the dispatch pipeline. Callers classify failures with
// errors.Is; wrapped errors carry the underlying detail.
var (
	// ErrPermissionDenied: a required device authorization was not granted.
	// Recoverable by re-prompting.
	ErrPermissionDenied = errors.New("sms permission denied")

	// ErrModuleUnavailable: the native send primitive is absent or
	// unreachable on this platform or build.
	ErrModuleUnavailable = errors.New("telephony bridge unavailable")

	// ErrInvalidInput: blank recipient phone or blank message body.
	ErrInvalidInput = errors.New("invalid send input")

	// ErrDetectionFailed: a SIM enumeration tier threw or returned
	// unusable data. Never fatal; triggers fallback to the next tier.
	ErrDetectionFailed = errors.New("sim detection failed")

	// ErrNativeSend: the send primitive itself rejected the message.
	// The wrapped error carries the native error text verbatim.
	ErrNativeSend = errors.New("native send failed")
)
