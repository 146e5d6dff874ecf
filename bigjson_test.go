package mesh

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBigJSONPreservesWideIntegers(t *testing.T) {
	huge := new(big.Int)
	huge.SetString("123456789012345678901234567890", 10)

	out, err := marshalBigJSON(map[string]any{"amount": huge})
	require.NoError(t, err)
	assert.Contains(t, out, "123456789012345678901234567890")
	assert.NotContains(t, out, `"123456789012345678901234567890"`)
}

func TestMarshalBigJSONPassesThroughPlainValues(t *testing.T) {
	out, err := marshalBigJSON(map[string]any{"label": "hello", "count": 3})
	require.NoError(t, err)
	assert.Contains(t, out, `"label":"hello"`)
}

func TestMetadataValueStoresEncodedJSON(t *testing.T) {
	b := NewTxBuilder()
	huge := new(big.Int)
	huge.SetString("99999999999999999999999999", 10)

	_, err := b.MetadataValue(721, map[string]any{"qty": huge})
	require.NoError(t, err)

	entry, ok := b.Body.Metadata[721]
	require.True(t, ok)
	assert.Equal(t, DataJSON, entry.Type)
	assert.Contains(t, entry.JSON, "99999999999999999999999999")
}
