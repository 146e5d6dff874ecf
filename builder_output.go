package mesh

// TxOut opens a new pending output, flushing whatever output was
// pending before it.
func (t *TxBuilder) TxOut(address string, amount Value) *TxBuilder {
	t.flushPendingOutputSilently()
	t.pendingOutput = &Output{Address: address, Amount: amount}
	return t
}

// TxOutDatumHashValue attaches a datum to the pending output by hash:
// the datum value itself travels off-chain, only its hash is recorded
// on-chain.
func (t *TxBuilder) TxOutDatumHashValue(data BuilderData) *TxBuilder {
	if t.pendingOutput == nil {
		return t
	}
	t.pendingOutput.Datum = &OutputDatum{Kind: OutputDatumHash, Data: data}
	return t
}

// TxOutInlineDatumValue attaches a datum to the pending output inline:
// the full value is carried on-chain in the output itself.
func (t *TxBuilder) TxOutInlineDatumValue(data BuilderData) *TxBuilder {
	if t.pendingOutput == nil {
		return t
	}
	t.pendingOutput.Datum = &OutputDatum{Kind: OutputDatumInline, Data: data}
	return t
}

// TxOutReferenceScript attaches a reference script to the pending output.
func (t *TxBuilder) TxOutReferenceScript(code string, version PlutusVersion) *TxBuilder {
	if t.pendingOutput == nil {
		return t
	}
	t.pendingOutput.ReferenceScript = &ScriptRef{Code: code, Version: version}
	return t
}

func (t *TxBuilder) flushPendingOutput() error {
	t.flushPendingOutputSilently()
	return nil
}

func (t *TxBuilder) flushPendingOutputSilently() {
	if t.pendingOutput == nil {
		return
	}
	t.Body.Outputs = append(t.Body.Outputs, *t.pendingOutput)
	t.pendingOutput = nil
}
