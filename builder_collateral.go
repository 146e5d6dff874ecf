package mesh

// TxInCollateral opens a new pending collateral input, flushing whatever
// collateral input was pending before it. Collateral inputs are always
// PubKey (spec.md §3): collateral never carries a script.
func (t *TxBuilder) TxInCollateral(txHash string, txIndex uint32, amount Value, address string) *TxBuilder {
	t.flushPendingCollateralSilently()
	t.pendingCollateral = &TxIn{
		TxHash:  txHash,
		TxIndex: txIndex,
		Amount:  amount,
		Address: address,
		Kind:    TxInPubKey,
	}
	return t
}

func (t *TxBuilder) flushPendingCollateral() error {
	t.flushPendingCollateralSilently()
	return nil
}

func (t *TxBuilder) flushPendingCollateralSilently() {
	if t.pendingCollateral == nil {
		return
	}
	t.Body.Collaterals = append(t.Body.Collaterals, *t.pendingCollateral)
	t.pendingCollateral = nil
}
