package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocolParametersMergeOverlaysNonZeroFields(t *testing.T) {
	base := DefaultProtocolParameters()
	patch := ProtocolParameters{MinFeeA: 100}

	merged := base.Merge(patch)

	assert.Equal(t, uint64(100), merged.MinFeeA)
	assert.Equal(t, base.MinFeeB, merged.MinFeeB)
	assert.Equal(t, base.CoinsPerUTxOByte, merged.CoinsPerUTxOByte)
}

func TestProtocolParametersMergeLeavesZeroExUnitsUntouched(t *testing.T) {
	base := DefaultProtocolParameters()
	merged := base.Merge(ProtocolParameters{})

	assert.Equal(t, base.DefaultExUnits, merged.DefaultExUnits)
}

func TestLoadProtocolParametersWithoutFileReturnsDefaults(t *testing.T) {
	params, err := LoadProtocolParameters("")
	assert.NoError(t, err)
	assert.Equal(t, DefaultProtocolParameters().MinFeeA, params.MinFeeA)
}
