package mesh

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utxoAt(txHash string, idx uint32, assets ...Asset) UTxO {
	return UTxO{
		Input:  UTxOInput{TxHash: txHash, TxIndex: idx},
		Output: UTxOOutput{Address: "addr_test", Amount: NewValue(assets...)},
	}
}

func TestSelectLargestFirstCoversLovelace(t *testing.T) {
	pool := []UTxO{
		utxoAt("a", 0, NewAsset(LovelaceUnit, 2_000_000)),
		utxoAt("b", 0, NewAsset(LovelaceUnit, 10_000_000)),
		utxoAt("c", 0, NewAsset(LovelaceUnit, 3_000_000)),
	}
	required := NewValue(NewAsset(LovelaceUnit, 9_000_000))

	selected, err := Select(pool, required, SelectionConfig{Threshold: big.NewInt(0), Strategy: SelectionLargestFirst})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "b", selected[0].Input.TxHash)
}

func TestSelectLargestFirstInsufficientPoolErrors(t *testing.T) {
	pool := []UTxO{utxoAt("a", 0, NewAsset(LovelaceUnit, 1_000_000))}
	required := NewValue(NewAsset(LovelaceUnit, 9_000_000))

	_, err := Select(pool, required, SelectionConfig{Threshold: big.NewInt(0), Strategy: SelectionLargestFirst})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSelection))
}

func TestSelectExperimentalMinimizesInputCount(t *testing.T) {
	policy := "11111111111111111111111111111111111111111111111111111122"
	pool := []UTxO{
		utxoAt("a", 0, NewAsset(LovelaceUnit, 2_000_000), NewAsset(policy, 1)),
		utxoAt("b", 0, NewAsset(LovelaceUnit, 2_000_000)),
		utxoAt("c", 0, NewAsset(LovelaceUnit, 5_000_000)),
	}
	required := NewValue(NewAsset(LovelaceUnit, 2_000_000), NewAsset(policy, 1))

	selected, err := Select(pool, required, SelectionConfig{Threshold: big.NewInt(0), Strategy: SelectionExperimental})
	require.NoError(t, err)

	covered := make(Value)
	for _, u := range selected {
		covered = covered.Add(valueOfUTxO(u))
	}
	assert.True(t, covered.Covers(required))

	// "a" alone carries the policy unit and enough lovelace.
	require.Len(t, selected, 1)
	assert.Equal(t, "a", selected[0].Input.TxHash)
}

func TestSelectThresholdPadsLovelace(t *testing.T) {
	pool := []UTxO{utxoAt("a", 0, NewAsset(LovelaceUnit, 5_000_000))}
	required := NewValue(NewAsset(LovelaceUnit, 4_000_000))

	_, err := Select(pool, required, SelectionConfig{Threshold: big.NewInt(2_000_000), Strategy: SelectionLargestFirst})
	require.Error(t, err)
}

func TestSelectZeroRequirementReturnsNil(t *testing.T) {
	pool := []UTxO{utxoAt("a", 0, NewAsset(LovelaceUnit, 5_000_000))}
	selected, err := Select(pool, NewValue(), SelectionConfig{Threshold: big.NewInt(0)})
	require.NoError(t, err)
	assert.Nil(t, selected)
}

func TestSelectLargestFirstMultiAssetCoversAssetAndLovelace(t *testing.T) {
	policy := "11111111111111111111111111111111111111111111111111111122"
	pool := []UTxO{
		utxoAt("a", 0, NewAsset(LovelaceUnit, 2_000_000), NewAsset(policy, 5)),
		utxoAt("b", 0, NewAsset(LovelaceUnit, 1_000_000), NewAsset(policy, 2)),
		utxoAt("c", 0, NewAsset(LovelaceUnit, 10_000_000)),
	}
	required := NewValue(NewAsset(LovelaceUnit, 2_000_000), NewAsset(policy, 4))

	selected, err := Select(pool, required, SelectionConfig{Threshold: big.NewInt(0), Strategy: SelectionLargestFirstMultiAsset})
	require.NoError(t, err)

	covered := make(Value)
	for _, u := range selected {
		covered = covered.Add(valueOfUTxO(u))
	}
	assert.True(t, covered.Covers(required))

	// the asset pass picks "a" first (largest policy-unit holder), whose
	// own lovelace already meets the (smaller) lovelace requirement, so
	// the lovelace pass adds nothing further.
	require.Len(t, selected, 1)
	assert.Equal(t, "a", selected[0].Input.TxHash)
}

func TestSelectLargestFirstMultiAssetFallsBackToLovelaceAfterAssetPass(t *testing.T) {
	policy := "11111111111111111111111111111111111111111111111111111122"
	pool := []UTxO{
		utxoAt("a", 0, NewAsset(LovelaceUnit, 1_000_000), NewAsset(policy, 4)),
		utxoAt("b", 0, NewAsset(LovelaceUnit, 8_000_000)),
	}
	required := NewValue(NewAsset(LovelaceUnit, 9_000_000), NewAsset(policy, 4))

	selected, err := Select(pool, required, SelectionConfig{Threshold: big.NewInt(0), Strategy: SelectionLargestFirstMultiAsset})
	require.NoError(t, err)

	covered := make(Value)
	for _, u := range selected {
		covered = covered.Add(valueOfUTxO(u))
	}
	assert.True(t, covered.Covers(required))
	require.Len(t, selected, 2)
}

func TestSelectKeepRelevantStillCoversNonADA(t *testing.T) {
	policy := "11111111111111111111111111111111111111111111111111111122"
	pool := []UTxO{
		utxoAt("a", 0, NewAsset(LovelaceUnit, 50_000_000)),
		utxoAt("b", 0, NewAsset(LovelaceUnit, 2_000_000), NewAsset(policy, 1)),
	}
	required := NewValue(NewAsset(LovelaceUnit, 1_000_000), NewAsset(policy, 1))

	selected, err := Select(pool, required, SelectionConfig{Threshold: big.NewInt(0), Strategy: SelectionKeepRelevant})
	require.NoError(t, err)

	covered := make(Value)
	for _, u := range selected {
		covered = covered.Add(valueOfUTxO(u))
	}
	assert.True(t, covered.Covers(required))
}
