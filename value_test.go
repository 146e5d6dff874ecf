package mesh

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueAddSubtractRoundTrip(t *testing.T) {
	a := NewValue(NewAsset(LovelaceUnit, 5_000_000), NewAsset("abcdeadbeef", 10))

	roundTripped := a.Add(a).Subtract(a)

	assert.Equal(t, a.Lovelace().String(), roundTripped.Lovelace().String())
}

func TestValueIsZero(t *testing.T) {
	v := NewValue(NewAsset(LovelaceUnit, 10))
	assert.False(t, v.IsZero())

	v = v.Subtract(v)
	assert.True(t, v.IsZero())
}

func TestValueCovers(t *testing.T) {
	have := NewValue(NewAsset(LovelaceUnit, 10), NewAsset("policyassetname", 2))
	required := NewValue(NewAsset(LovelaceUnit, 5), NewAsset("policyassetname", 2))

	assert.True(t, have.Covers(required))

	required = required.Add(NewValue(NewAsset("policyassetname", 1)))
	assert.False(t, have.Covers(required))
}

func TestValueUnitsSorted(t *testing.T) {
	v := NewValue(NewAsset("zzz", 1), NewAsset("aaa", 1), NewAsset(LovelaceUnit, 1))
	units := v.Units()
	assert.Equal(t, []string{"aaa", LovelaceUnit, "zzz"}, units)
}

func TestValueCloneDoesNotAlias(t *testing.T) {
	v := NewValue(NewAsset(LovelaceUnit, 10))
	clone := v.Clone()
	clone[LovelaceUnit].Add(clone[LovelaceUnit], big.NewInt(5))

	assert.Equal(t, int64(10), v.Lovelace().Int64())
	assert.Equal(t, int64(15), clone.Lovelace().Int64())
}

func TestValuePositiveDropsNonPositive(t *testing.T) {
	v := Value{
		LovelaceUnit: big.NewInt(5),
		"zero":       big.NewInt(0),
		"negative":   big.NewInt(-3),
	}
	pos := v.Positive()
	assert.Len(t, pos, 1)
	assert.Equal(t, int64(5), pos.Lovelace().Int64())
}
