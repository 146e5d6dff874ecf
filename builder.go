package mesh

import (
	"log/slog"
	"math/big"
)

// TxBuilder is the Fluent Builder Core (spec.md §4.1): a state machine
// that maps a sequence of chained operations onto well-formed
// BuilderBody entries. Each channel (input, output, mint, withdrawal,
// certificate, collateral) owns a single pending slot; starting a new
// item on a channel flushes the previous pending item on that channel
// into the body without rejecting it, and Finalize checks every queued
// item for completeness. TxBuilder is single-threaded and
// cooperative (spec.md §5): one instance represents one in-progress
// transaction and is not safe for concurrent mutation.
type TxBuilder struct {
	Body   *BuilderBody
	Params ProtocolParameters

	logger *slog.Logger

	pendingInput      *TxIn
	pendingOutput     *Output
	pendingMint       *MintItem
	pendingWithdrawal *Withdrawal
	pendingCollateral *TxIn

	inputScriptMode    bool
	inputScriptVersion PlutusVersion
	// pendingInputScriptVersion is a snapshot of inputScriptVersion taken
	// when the current pendingInput was opened; it survives the
	// inputScriptVersion reset in TxIn so TxInScript/SpendingTxInReference
	// can still consume the version remembered before txIn was called.
	pendingInputScriptVersion PlutusVersion

	mintScriptMode    bool
	mintScriptVersion PlutusVersion
	// pendingMintScriptVersion is the mint-channel equivalent of
	// pendingInputScriptVersion.
	pendingMintScriptVersion PlutusVersion

	withdrawalScriptMode    bool
	withdrawalScriptVersion PlutusVersion
	// pendingWithdrawalScriptVersion is the withdrawal-channel equivalent
	// of pendingInputScriptVersion.
	pendingWithdrawalScriptVersion PlutusVersion
}

// NewTxBuilder returns a TxBuilder over a freshly constructed BuilderBody.
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		Body:   NewBuilderBody(),
		Params: DefaultProtocolParameters(),
		logger: slog.Default(),
	}
}

// ProtocolParams overlays the non-zero fields of partial onto the
// builder's current protocol parameters (spec.md §4.1 `protocolParams`).
// It never fetches parameters from chain; callers supply defaults and
// overrides directly. The result is stored in t.Params; Finalize does not
// read t.Params, and redeemers opened by the builder take the
// package-level DefaultExUnits.
func (t *TxBuilder) ProtocolParams(partial ProtocolParameters) *TxBuilder {
	t.Params = t.Params.Merge(partial)
	return t
}

// SetLogger overrides the builder's logger; nil restores the default.
func (t *TxBuilder) SetLogger(logger *slog.Logger) *TxBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	t.logger = logger
	return t
}

func (t *TxBuilder) log() *slog.Logger {
	if t.logger == nil {
		return slog.Default()
	}
	return t.logger
}

// Reset clears the builder and its body back to construction-time state
// (spec.md §4.1 global operation `reset`). reset();reset() is
// indistinguishable from a single reset() (spec.md §8 invariant 6).
func (t *TxBuilder) Reset() *TxBuilder {
	t.Body.Reset()
	t.Params = DefaultProtocolParameters()
	t.pendingInput = nil
	t.pendingOutput = nil
	t.pendingMint = nil
	t.pendingWithdrawal = nil
	t.pendingCollateral = nil
	t.inputScriptMode = false
	t.inputScriptVersion = ""
	t.pendingInputScriptVersion = ""
	t.mintScriptMode = false
	t.mintScriptVersion = ""
	t.pendingMintScriptVersion = ""
	t.withdrawalScriptMode = false
	t.pendingWithdrawalScriptVersion = ""
	t.withdrawalScriptVersion = ""
	return t
}

// EmptyTxBuilderBody discards the current body in favor of a fresh one
// and returns it, per spec.md §4.1's `emptyTxBuilderBody` operation.
func (t *TxBuilder) EmptyTxBuilderBody() *BuilderBody {
	t.Reset()
	return t.Body
}

// ChangeAddress sets the address any external balancer should send
// leftover value to.
func (t *TxBuilder) ChangeAddress(address string) *TxBuilder {
	t.Body.ChangeAddress = address
	return t
}

// InvalidBefore sets the transaction's validity interval start slot.
func (t *TxBuilder) InvalidBefore(slot uint64) *TxBuilder {
	t.Body.ValidityRange.InvalidBefore = &slot
	return t
}

// InvalidHereafter sets the transaction's validity interval end slot.
func (t *TxBuilder) InvalidHereafter(slot uint64) *TxBuilder {
	t.Body.ValidityRange.InvalidHereafter = &slot
	return t
}

// MetadataValue attaches a metadata entry under the given transaction
// metadata label (tag). value is serialized with the big-integer-safe
// encoder (bigjson.go) so large on-chain metadata integers survive
// round-tripping.
func (t *TxBuilder) MetadataValue(tag uint64, value any) (*TxBuilder, error) {
	encoded, err := marshalBigJSON(value)
	if err != nil {
		return t, encodingErr("metadataValue", err)
	}
	t.Body.Metadata[tag] = BuilderData{Type: DataJSON, JSON: encoded}
	return t, nil
}

// SigningKey registers a raw hex-encoded signing key the external signer
// should use for this transaction.
func (t *TxBuilder) SigningKey(hex string) *TxBuilder {
	t.Body.SigningKeys = append(t.Body.SigningKeys, hex)
	return t
}

// RequiredSignerHash adds a required-signer key hash.
func (t *TxBuilder) RequiredSignerHash(hex string) *TxBuilder {
	t.Body.RequiredSignatures = append(t.Body.RequiredSignatures, hex)
	return t
}

// SelectUtxosFrom configures UTxO Selection: the candidate pool, the
// strategy, the lovelace threshold to pad the requirement by, and
// whether that threshold already covers fees.
func (t *TxBuilder) SelectUtxosFrom(extraInputs []UTxO, strategy SelectionStrategy, threshold int64, includeTxFees bool) *TxBuilder {
	t.Body.ExtraInputs = extraInputs
	t.Body.SelectionConfig.Strategy = strategy
	t.Body.SelectionConfig.Threshold = big.NewInt(threshold)
	t.Body.SelectionConfig.IncludeTxFees = includeTxFees
	return t
}

// Finalize flushes every pending channel (output, input, collateral,
// mint, withdrawal, in that order), validates completeness, runs UTxO
// Selection to cover the net required value, dedups inputs, and returns
// the finished body (spec.md §4.1 `finalize`/`queueAllLastItem`).
func (t *TxBuilder) Finalize() (*BuilderBody, error) {
	if err := t.flushAll(); err != nil {
		return nil, err
	}

	if err := t.validateCompleteness(); err != nil {
		return nil, err
	}

	if len(t.Body.ExtraInputs) > 0 || t.Body.SelectionConfig.Threshold.Sign() != 0 {
		required := t.Body.NetRequiredValue()
		selected, err := Select(t.Body.ExtraInputs, required, t.Body.SelectionConfig)
		if err != nil {
			return nil, err
		}
		for _, u := range selected {
			t.Body.Inputs = append(t.Body.Inputs, TxIn{
				TxHash:  u.Input.TxHash,
				TxIndex: u.Input.TxIndex,
				Amount:  u.Output.Amount,
				Address: u.Output.Address,
				Kind:    TxInPubKey,
			})
		}
		t.log().Debug("utxo selection complete", "strategy", t.Body.SelectionConfig.Strategy, "selected", len(selected))
	}

	t.Body.Dedup()

	return t.Body, nil
}

// flushAll flushes every channel's pending slot in finalize's documented
// order: output, input, collateral, mint, withdrawal.
func (t *TxBuilder) flushAll() error {
	if err := t.flushPendingOutput(); err != nil {
		return err
	}
	if err := t.flushPendingInput(); err != nil {
		return err
	}
	if err := t.flushPendingCollateral(); err != nil {
		return err
	}
	if err := t.flushPendingMint(); err != nil {
		return err
	}
	if err := t.flushPendingWithdrawal(); err != nil {
		return err
	}
	return nil
}

// validateCompleteness checks every queued Script input, Plutus mint,
// ScriptWithdrawal, and ScriptCertificate for required subfields
// (spec.md §8 invariant 2).
func (t *TxBuilder) validateCompleteness() error {
	for i, in := range t.Body.Inputs {
		if missing := in.missingScriptFields(); len(missing) > 0 {
			return incompleteErr("input", i, missing...)
		}
	}
	for i, m := range t.Body.Mints {
		if missing := m.missingFields(); len(missing) > 0 {
			return incompleteErr("mint", i, missing...)
		}
	}
	for i, w := range t.Body.Withdrawals {
		if w.Kind != WithdrawalScript {
			continue
		}
		if missing := w.missingFields(); len(missing) > 0 {
			return incompleteErr("withdrawal", i, missing...)
		}
	}
	for i, c := range t.Body.Certificates {
		if c.Kind != CertificateScript {
			continue
		}
		if missing := c.missingFields(); len(missing) > 0 {
			return incompleteErr("certificate", i, missing...)
		}
	}
	return nil
}
