package mesh

import (
	"errors"
	"fmt"
)

// ErrMisuse is the sentinel for MisuseError, so callers can use errors.Is
// without matching the exact operation/state pair.
var ErrMisuse = errors.New("builder misuse")

// MisuseError reports an operation invoked against a channel in a state
// that cannot accept it (e.g. txInDatumValue on a PubKey pending input).
// It is a programmer error: the builder does not recover from it.
type MisuseError struct {
	Op    string
	State string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("mesh: %s is not valid on a pending %s item", e.Op, e.State)
}

func (e *MisuseError) Is(target error) bool { return target == ErrMisuse }

func misuseErr(op, state string) *MisuseError {
	return &MisuseError{Op: op, State: state}
}

// ErrIncompleteItem is the sentinel for IncompleteItemError.
var ErrIncompleteItem = errors.New("incomplete builder item")

// IncompleteItemError reports that finalize encountered a pending or
// queued item missing a required subfield (scriptSource, datumSource,
// redeemer, or a mint's policyId) for its declared type.
type IncompleteItemError struct {
	Channel string
	Index   int
	Missing []string
}

func (e *IncompleteItemError) Error() string {
	return fmt.Sprintf(
		"mesh: incomplete %s item at index %d: missing %v",
		e.Channel, e.Index, e.Missing,
	)
}

func (e *IncompleteItemError) Is(target error) bool { return target == ErrIncompleteItem }

func incompleteErr(channel string, index int, missing ...string) *IncompleteItemError {
	return &IncompleteItemError{Channel: channel, Index: index, Missing: missing}
}

// ErrSelection is the sentinel for SelectionError.
var ErrSelection = errors.New("utxo selection failed")

// SelectionError reports that UTxO Selection could not cover the required
// assets from the supplied pool of extra inputs.
type SelectionError struct {
	Strategy string
	Unit     string
	Required string
	Covered  string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf(
		"mesh: selection strategy %q could not cover unit %q (needed %s, had %s available)",
		e.Strategy, e.Unit, e.Required, e.Covered,
	)
}

func (e *SelectionError) Is(target error) bool { return target == ErrSelection }

func selectionErr(strategy, unit, required, covered string) *SelectionError {
	return &SelectionError{Strategy: strategy, Unit: unit, Required: required, Covered: covered}
}

// ErrEncoding is the sentinel for EncodingError.
var ErrEncoding = errors.New("encoding failed")

// EncodingError wraps a failure surfaced from the CBOR/JSON encoding layer:
// malformed hex, malformed JSON, or a value too wide for the target wire type.
type EncodingError struct {
	Context string
	Err     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("mesh: encoding error in %s: %v", e.Context, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

func encodingErr(context string, err error) *EncodingError {
	return &EncodingError{Context: context, Err: err}
}

// ErrNoEvaluator is returned by NewEvaluator when no WASM module was
// configured. The builder never silently skips evaluation.
var ErrNoEvaluator = errors.New("mesh: no evaluator WASM module configured")

// EvaluationError reports a Plutus script evaluation failure returned by
// the WASM evaluator itself (not a Go-side encoding or I/O failure).
type EvaluationError struct {
	EvalError EvalError
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("mesh: evaluation failed: %s", e.EvalError.ErrorType)
}
