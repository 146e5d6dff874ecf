package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptInput() TxIn {
	return TxIn{
		TxHash: "deadbeef", TxIndex: 0, Kind: TxInScript,
		ScriptTxIn: &ScriptTxIn{
			ScriptSource: ScriptSource{Kind: ScriptSourceProvided, ScriptCBOR: "01"},
			DatumSource:  DatumSource{Kind: DatumSourceInline},
			Redeemer:     NewRedeemer(BuilderData{Type: DataCBOR, CBORHex: "00"}),
		},
	}
}

func TestReconcileRedeemersOverwritesMatchingSlot(t *testing.T) {
	body := NewBuilderBody()
	body.Inputs = []TxIn{scriptInput()}

	body.ReconcileRedeemers([]Action{
		{Tag: RedeemerTagSpend, Index: 0, Budget: ExUnits{Mem: 1000, Steps: 2000}},
	}, DefaultExUnitsMultiplier)

	got := body.Inputs[0].ScriptTxIn.Redeemer.ExUnits
	assert.Equal(t, uint64(1100), got.Mem)
	assert.Equal(t, uint64(2200), got.Steps)
}

func TestReconcileRedeemersSkipsMismatchedKind(t *testing.T) {
	body := NewBuilderBody()
	body.Inputs = []TxIn{{Kind: TxInPubKey, TxHash: "a", TxIndex: 0}}

	body.ReconcileRedeemers([]Action{
		{Tag: RedeemerTagSpend, Index: 0, Budget: ExUnits{Mem: 999, Steps: 999}},
	}, DefaultExUnitsMultiplier)

	assert.Nil(t, body.Inputs[0].ScriptTxIn)
}

func TestReconcileRedeemersSkipsOutOfRangeIndex(t *testing.T) {
	body := NewBuilderBody()
	body.Inputs = []TxIn{scriptInput()}
	original := body.Inputs[0].ScriptTxIn.Redeemer.ExUnits

	body.ReconcileRedeemers([]Action{
		{Tag: RedeemerTagSpend, Index: 5, Budget: ExUnits{Mem: 1, Steps: 1}},
	}, DefaultExUnitsMultiplier)

	assert.Equal(t, original, body.Inputs[0].ScriptTxIn.Redeemer.ExUnits)
}

func TestReconcileRedeemersMint(t *testing.T) {
	body := NewBuilderBody()
	body.Mints = []MintItem{{
		PolicyID: "policy", AssetName: "617373", Type: MintPlutus,
		ScriptSource: ScriptSource{Kind: ScriptSourceProvided, ScriptCBOR: "01"},
		Redeemer:     NewRedeemer(BuilderData{Type: DataCBOR, CBORHex: "00"}),
	}}

	body.ReconcileRedeemers([]Action{
		{Tag: RedeemerTagMint, Index: 0, Budget: ExUnits{Mem: 100, Steps: 100}},
	}, 2.0)

	require.Equal(t, uint64(200), body.Mints[0].Redeemer.ExUnits.Mem)
}
