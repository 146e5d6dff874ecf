package mesh

import "math/big"

func (t *TxBuilder) withdrawalPlutusScript(version PlutusVersion) *TxBuilder {
	t.withdrawalScriptMode = true
	t.withdrawalScriptVersion = version
	return t
}

// WithdrawalPlutusScriptV1 marks the next Withdrawal as governed by a
// Plutus V1 script.
func (t *TxBuilder) WithdrawalPlutusScriptV1() *TxBuilder {
	return t.withdrawalPlutusScript(PlutusV1)
}

// WithdrawalPlutusScriptV2 marks the next Withdrawal as governed by a
// Plutus V2 script.
func (t *TxBuilder) WithdrawalPlutusScriptV2() *TxBuilder {
	return t.withdrawalPlutusScript(PlutusV2)
}

// WithdrawalPlutusScriptV3 marks the next Withdrawal as governed by a
// Plutus V3 script.
func (t *TxBuilder) WithdrawalPlutusScriptV3() *TxBuilder {
	return t.withdrawalPlutusScript(PlutusV3)
}

// Withdrawal opens a new pending reward withdrawal, flushing whatever
// withdrawal was pending before it.
func (t *TxBuilder) Withdrawal(rewardAddress string, coin *big.Int) *TxBuilder {
	t.flushPendingWithdrawalSilently()

	w := &Withdrawal{RewardAddress: rewardAddress, Coin: coin}
	if t.withdrawalScriptMode {
		w.Kind = WithdrawalScript
	} else {
		w.Kind = WithdrawalPubKey
	}
	t.pendingWithdrawalScriptVersion = t.withdrawalScriptVersion
	t.withdrawalScriptMode = false
	t.withdrawalScriptVersion = ""

	t.pendingWithdrawal = w
	return t
}

// WithdrawalScript attaches the pending withdrawal's script source by
// inline CBOR. On a PubKey pending withdrawal it promotes to
// SimpleScript.
func (t *TxBuilder) WithdrawalScript(cborHex string) *TxBuilder {
	if t.pendingWithdrawal == nil {
		return t
	}
	version := t.pendingWithdrawalScriptVersion
	switch t.pendingWithdrawal.Kind {
	case WithdrawalPubKey:
		t.pendingWithdrawal.Kind = WithdrawalSimpleScript
		version = ""
	case WithdrawalScript:
		if version == "" {
			version = PlutusV2
		}
	}
	t.pendingWithdrawal.ScriptSource = ScriptSource{Kind: ScriptSourceProvided, ScriptCBOR: cborHex, Version: version}
	return t
}

// WithdrawalTxInReference attaches the pending withdrawal's script
// source by reference to an on-chain UTxO. Fails on a PubKey pending
// withdrawal.
func (t *TxBuilder) WithdrawalTxInReference(txHash string, txIndex uint32, scriptHash string) (*TxBuilder, error) {
	if t.pendingWithdrawal == nil {
		return t, nil
	}
	if t.pendingWithdrawal.Kind == WithdrawalPubKey {
		return t, misuseErr("withdrawalTxInReference", "PubKey")
	}
	version := PlutusVersion("")
	if t.pendingWithdrawal.Kind == WithdrawalScript {
		version = t.pendingWithdrawalScriptVersion
		if version == "" {
			version = PlutusV2
		}
	}
	t.pendingWithdrawal.ScriptSource = ScriptSource{
		Kind:       ScriptSourceInline,
		TxHash:     txHash,
		TxIndex:    txIndex,
		ScriptHash: scriptHash,
		Version:    version,
	}
	return t, nil
}

// WithdrawalRedeemerValue sets the pending Script withdrawal's redeemer.
// Valid only when the pending withdrawal is Script.
func (t *TxBuilder) WithdrawalRedeemerValue(data BuilderData, exUnits ...ExUnits) (*TxBuilder, error) {
	if t.pendingWithdrawal == nil {
		return t, nil
	}
	if t.pendingWithdrawal.Kind != WithdrawalScript {
		return t, misuseErr("withdrawalRedeemerValue", "PubKey/SimpleScript")
	}
	redeemer := NewRedeemer(data)
	if len(exUnits) > 0 {
		redeemer.ExUnits = exUnits[0]
	}
	t.pendingWithdrawal.Redeemer = redeemer
	return t, nil
}

func (t *TxBuilder) flushPendingWithdrawal() error {
	t.flushPendingWithdrawalSilently()
	return nil
}

func (t *TxBuilder) flushPendingWithdrawalSilently() {
	if t.pendingWithdrawal == nil {
		return
	}
	t.Body.Withdrawals = append(t.Body.Withdrawals, *t.pendingWithdrawal)
	t.pendingWithdrawal = nil
}
