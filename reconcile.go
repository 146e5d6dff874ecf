package mesh

// DefaultExUnitsMultiplier is the safety margin applied to evaluator
// budgets (spec.md §4.3): off-chain cost estimation is approximate, and a
// 10% pad absorbs rounding and context-shift drift between the evaluated
// draft and the final, re-sized transaction.
const DefaultExUnitsMultiplier = 1.1

// ReconcileRedeemers merges evaluator-reported Actions back onto the
// matching redeemer slot for each action's tag/index, overwriting that
// slot's ExUnits with floor(budget * multiplier). Actions that reference
// a slot of the wrong type (e.g. a MINT action against a Native mint) or
// an out-of-range index are skipped silently: the evaluator's output is
// advisory, and a non-matching slot means "no on-chain script here,
// nothing to update" (spec.md §4.3, §7).
func (b *BuilderBody) ReconcileRedeemers(actions []Action, multiplier float64) {
	for _, action := range actions {
		b.reconcileOne(action, multiplier)
	}
}

func (b *BuilderBody) reconcileOne(action Action, multiplier float64) {
	switch action.Tag {
	case RedeemerTagSpend:
		if action.Index < 0 || action.Index >= len(b.Inputs) {
			return
		}
		in := &b.Inputs[action.Index]
		if in.Kind != TxInScript || in.ScriptTxIn == nil || in.ScriptTxIn.Redeemer == nil {
			return
		}
		in.ScriptTxIn.Redeemer.ExUnits = action.Budget.Scale(multiplier)

	case RedeemerTagMint:
		if action.Index < 0 || action.Index >= len(b.Mints) {
			return
		}
		m := &b.Mints[action.Index]
		if m.Type != MintPlutus || m.Redeemer == nil {
			return
		}
		m.Redeemer.ExUnits = action.Budget.Scale(multiplier)

	case RedeemerTagCert:
		if action.Index < 0 || action.Index >= len(b.Certificates) {
			return
		}
		c := &b.Certificates[action.Index]
		if c.Kind != CertificateScript || c.Redeemer == nil {
			return
		}
		c.Redeemer.ExUnits = action.Budget.Scale(multiplier)

	case RedeemerTagReward:
		if action.Index < 0 || action.Index >= len(b.Withdrawals) {
			return
		}
		w := &b.Withdrawals[action.Index]
		if w.Kind != WithdrawalScript || w.Redeemer == nil {
			return
		}
		w.Redeemer.ExUnits = action.Budget.Scale(multiplier)
	}
}
