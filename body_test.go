package mesh

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupRemovesDuplicateInputsKeepingFirst(t *testing.T) {
	body := NewBuilderBody()
	body.Inputs = []TxIn{
		{TxHash: "a", TxIndex: 0, Address: "first"},
		{TxHash: "b", TxIndex: 0, Address: "only"},
		{TxHash: "a", TxIndex: 0, Address: "duplicate-dropped"},
	}

	body.Dedup()

	require.Len(t, body.Inputs, 2)
	assert.Equal(t, "first", body.Inputs[0].Address)
	assert.Equal(t, "only", body.Inputs[1].Address)
}

func TestDedupIdempotent(t *testing.T) {
	body := NewBuilderBody()
	body.Inputs = []TxIn{
		{TxHash: "a", TxIndex: 0},
		{TxHash: "a", TxIndex: 1},
	}
	body.Dedup()
	once := append([]TxIn(nil), body.Inputs...)
	body.Dedup()
	assert.Equal(t, once, body.Inputs)
}

func TestResetIsIdempotent(t *testing.T) {
	b := NewTxBuilder()
	b.TxOut("addr1", NewValue(NewAsset(LovelaceUnit, 1)))
	b.Reset()
	afterOneReset := b.Body.Clone()

	b.Reset()
	assert.Equal(t, afterOneReset, b.Body)
}

func TestNetRequiredValue(t *testing.T) {
	body := NewBuilderBody()
	body.Outputs = []Output{{Amount: NewValue(NewAsset(LovelaceUnit, 10_000_000))}}
	body.Inputs = []TxIn{{Amount: NewValue(NewAsset(LovelaceUnit, 3_000_000))}}
	body.Mints = []MintItem{{PolicyID: "policy", AssetName: "617373", Amount: big.NewInt(5)}}

	required := body.NetRequiredValue()

	assert.Equal(t, int64(7_000_000), required.Lovelace().Int64())
	assert.Equal(t, int64(-5), required["policy617373"].Int64())
}

func TestBuilderBodyCloneDoesNotAlias(t *testing.T) {
	body := NewBuilderBody()
	body.Inputs = []TxIn{{TxHash: "a", TxIndex: 0}}

	clone := body.Clone()
	clone.Inputs[0].TxHash = "mutated"

	assert.Equal(t, "a", body.Inputs[0].TxHash)
}
