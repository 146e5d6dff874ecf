package mesh

// TxIn opens a new pending input, flushing whatever input was pending
// before it. If a spendingPlutusScriptV* call set the script-mode flag,
// the new pending input opens as Script (with an empty ScriptTxIn);
// otherwise it opens as PubKey. The flag is cleared either way
// (spec.md §4.1).
func (t *TxBuilder) TxIn(txHash string, txIndex uint32, amount Value, address string) *TxBuilder {
	t.flushPendingInputSilently()

	in := &TxIn{TxHash: txHash, TxIndex: txIndex, Amount: amount, Address: address}
	if t.inputScriptMode {
		in.Kind = TxInScript
		in.ScriptTxIn = &ScriptTxIn{}
	} else {
		in.Kind = TxInPubKey
	}
	t.pendingInputScriptVersion = t.inputScriptVersion
	t.inputScriptMode = false
	t.inputScriptVersion = ""

	t.pendingInput = in
	return t
}

func (t *TxBuilder) spendingPlutusScript(version PlutusVersion) *TxBuilder {
	t.inputScriptMode = true
	t.inputScriptVersion = version
	return t
}

// SpendingPlutusScriptV1 marks the next TxIn as a Plutus V1 script input.
func (t *TxBuilder) SpendingPlutusScriptV1() *TxBuilder { return t.spendingPlutusScript(PlutusV1) }

// SpendingPlutusScriptV2 marks the next TxIn as a Plutus V2 script input.
func (t *TxBuilder) SpendingPlutusScriptV2() *TxBuilder { return t.spendingPlutusScript(PlutusV2) }

// SpendingPlutusScriptV3 marks the next TxIn as a Plutus V3 script input.
func (t *TxBuilder) SpendingPlutusScriptV3() *TxBuilder { return t.spendingPlutusScript(PlutusV3) }

// TxInScript attaches a script's CBOR to the pending input. On a PubKey
// pending input it promotes to SimpleScript; on a Script pending input
// it sets the Plutus scriptSource; it is a MisuseError on a pending
// SimpleScript input (spec.md §4.1).
func (t *TxBuilder) TxInScript(cborHex string) (*TxBuilder, error) {
	if t.pendingInput == nil {
		return t, nil
	}
	switch t.pendingInput.Kind {
	case TxInPubKey:
		t.pendingInput.Kind = TxInSimpleScript
		t.pendingInput.SimpleScriptTxIn = &SimpleScriptTxIn{
			ScriptSource: ScriptSource{Kind: ScriptSourceProvided, ScriptCBOR: cborHex},
		}
	case TxInScript:
		t.pendingInput.ScriptTxIn.ScriptSource = ScriptSource{
			Kind:       ScriptSourceProvided,
			ScriptCBOR: cborHex,
			Version:    t.pendingInputVersion(),
		}
	case TxInSimpleScript:
		return t, misuseErr("txInScript", "SimpleScript")
	}
	return t, nil
}

func (t *TxBuilder) pendingInputVersion() PlutusVersion {
	if t.pendingInputScriptVersion != "" {
		return t.pendingInputScriptVersion
	}
	return PlutusV2
}

// TxInDatumValue sets the pending Script input's datum source to a
// provided value. Valid only on Script; a MisuseError on PubKey/SimpleScript
// (spec.md §4.1).
func (t *TxBuilder) TxInDatumValue(data BuilderData) (*TxBuilder, error) {
	if t.pendingInput == nil {
		return t, nil
	}
	if t.pendingInput.Kind != TxInScript {
		return t, misuseErr("txInDatumValue", pendingInputStateName(t.pendingInput.Kind))
	}
	t.pendingInput.ScriptTxIn.DatumSource = DatumSource{Kind: DatumSourceProvided, Data: data}
	return t, nil
}

// TxInInlineDatumPresent marks the pending Script input's datum as
// already inline on the UTxO being spent. Valid only on Script.
func (t *TxBuilder) TxInInlineDatumPresent() (*TxBuilder, error) {
	if t.pendingInput == nil {
		return t, nil
	}
	if t.pendingInput.Kind != TxInScript {
		return t, misuseErr("txInInlineDatumPresent", pendingInputStateName(t.pendingInput.Kind))
	}
	t.pendingInput.ScriptTxIn.DatumSource = DatumSource{Kind: DatumSourceInline}
	return t, nil
}

// TxInRedeemerValue sets the pending Script input's redeemer. Valid only
// on Script. An explicit exUnits overrides DefaultExUnits.
func (t *TxBuilder) TxInRedeemerValue(data BuilderData, exUnits ...ExUnits) (*TxBuilder, error) {
	if t.pendingInput == nil {
		return t, nil
	}
	if t.pendingInput.Kind != TxInScript {
		return t, misuseErr("txInRedeemerValue", pendingInputStateName(t.pendingInput.Kind))
	}
	redeemer := NewRedeemer(data)
	if len(exUnits) > 0 {
		redeemer.ExUnits = exUnits[0]
	}
	t.pendingInput.ScriptTxIn.Redeemer = redeemer
	return t, nil
}

// SpendingTxInReference sets the pending Script input's scriptSource to
// an inline reference, using the remembered Plutus version (default V2
// if no spendingPlutusScriptV* preceded it — spec.md §9). Valid only on
// Script.
func (t *TxBuilder) SpendingTxInReference(txHash string, txIndex uint32, scriptHash string) (*TxBuilder, error) {
	if t.pendingInput == nil {
		return t, nil
	}
	if t.pendingInput.Kind != TxInScript {
		return t, misuseErr("spendingTxInReference", pendingInputStateName(t.pendingInput.Kind))
	}
	t.pendingInput.ScriptTxIn.ScriptSource = ScriptSource{
		Kind:       ScriptSourceInline,
		TxHash:     txHash,
		TxIndex:    txIndex,
		ScriptHash: scriptHash,
		Version:    t.pendingInputVersion(),
	}
	return t, nil
}

// ReadOnlyTxInReference appends directly to ReferenceInputs; it does not
// touch the pending input slot (spec.md §4.1).
func (t *TxBuilder) ReadOnlyTxInReference(txHash string, txIndex uint32) *TxBuilder {
	t.Body.ReferenceInputs = append(t.Body.ReferenceInputs, UTxOInput{TxHash: txHash, TxIndex: txIndex})
	return t
}

// flushPendingInput flushes the pending input, if any, into Body.Inputs.
func (t *TxBuilder) flushPendingInput() error {
	t.flushPendingInputSilently()
	return nil
}

func (t *TxBuilder) flushPendingInputSilently() {
	if t.pendingInput == nil {
		return
	}
	t.Body.Inputs = append(t.Body.Inputs, *t.pendingInput)
	t.pendingInput = nil
}

func pendingInputStateName(kind TxInKind) string {
	switch kind {
	case TxInPubKey:
		return "PubKey"
	case TxInSimpleScript:
		return "SimpleScript"
	default:
		return "Script"
	}
}
