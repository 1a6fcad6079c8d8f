// Package errors provides structured error types for the MagickWand binding.
//
// Errors carry a Phase (where processing failed: load, bind, call, bridge,
// resource, enum) and a Kind (what went wrong). Two errors match under
// errors.Is when both agree, which lets callers test for categories:
//
//	_, err := img.Blob("bogus")
//	if errors.Is(err, &errs.Error{Phase: errs.PhaseCall, Kind: errs.KindOperationFailed}) {
//	    // the native library rejected the call; err carries its message
//	}
//
// The call dispatcher is the only component that translates native failure
// signals into these errors; everything above it propagates them untouched.
package errors
