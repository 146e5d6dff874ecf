// Package mesh implements a Cardano transaction-construction engine: a
// fluent builder over inputs, outputs, mints, withdrawals, certificates
// and collateral, a multi-asset UTxO selector, and an execution-unit
// reconciler that patches evaluator feedback back onto redeemer slots.
package mesh

// EvalError is the WASM evaluator's CBOR error envelope, returned when
// phase-two script evaluation fails for the draft transaction.
type EvalError struct {
	ErrorType  string   `cbor:"error_type"`
	Budget     Budget   `cbor:"budget"`
	DebugTrace []string `cbor:"debug_trace"`
}

// Budget is the WASM evaluator's own execution-unit shape, distinct from
// this package's ExUnits (mem/steps): the evaluator speaks mem/cpu.
type Budget struct {
	Mem uint64 `cbor:"mem"`
	CPU uint64 `cbor:"cpu"`
}

// wasmUTxO is the wire shape the WASM evaluator expects for each resolved
// input: address, value, and any datum/script needed for phase-two
// evaluation. It is distinct from this package's own UTxO type, which
// carries big-integer-safe asset quantities for selection and balancing.
type wasmUTxO struct {
	Address     string            `json:"address"`
	TxHash      string            `json:"tx_hash"`
	OutputIndex uint64            `json:"output_index"`
	DatumHash   *string           `json:"datum_hash,omitempty"`
	Datum       *string           `json:"datum,omitempty"`
	ScriptRef   *wasmScriptRef    `json:"script_ref,omitempty"`
	Assets      map[string]uint64 `json:"assets"`
}

// wasmScriptRef is distinct from this package's own ScriptRef (an
// Output's reference script): the evaluator's wire shape only needs a
// script type tag and the raw script bytes, not a Plutus version enum.
type wasmScriptRef struct {
	ScriptType string `json:"script_type"`
	Script     string `json:"script"`
}

type UTxOJSON struct {
	Hash    string       `json:"hash"`
	Outputs []OutputJSON `json:"outputs"`
}

type OutputJSON struct {
	TxHash      string      `json:"tx_hash"`
	OutputIndex int         `json:"output_index"`
	Address     string      `json:"address"`
	Amount      []AssetJSON `json:"amount"`
	InlineDatum string      `json:"inline_datum"`
	DataHash    string      `json:"data_hash"`
}

// HasInlineDatum reports whether this fixture output carries an Alonzo
// inline datum rather than (at most) a Shelley datum hash; it drives
// convertJSONOutputToUTxO's choice between createAlonzoOutput and
// createShelleyOutput the same way OutputDatum.Kind drives outputToApollo
// in codec.go.
func (o OutputJSON) HasInlineDatum() bool {
	return o.InlineDatum != ""
}

type AssetJSON struct {
	Unit     string `json:"unit"`
	Quantity int64  `json:"quantity"`
}
