package mesh

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrowToInt64Overflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 64)
	_, err := narrowToInt64("test", huge)
	require.Error(t, err)
	assert.True(t, err.(*EncodingError).Context == "test")
}

func TestNarrowToInt64WithinRange(t *testing.T) {
	v, err := narrowToInt64("test", big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestValueToMultiAssetRejectsShortUnit(t *testing.T) {
	v := NewValue(NewAsset(LovelaceUnit, 1), NewAsset("short", 1))
	_, _, err := valueToMultiAsset("output.amount", v)
	require.Error(t, err)
}

func TestValueToMultiAssetSplitsLovelaceAndAssets(t *testing.T) {
	unit := "11111111111111111111111111111111111111111111111111111122" + "deadbeef"
	v := NewValue(NewAsset(LovelaceUnit, 2_000_000), NewAsset(unit, 7))

	lovelace, multiAssets, err := valueToMultiAsset("output.amount", v)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), lovelace)
	assert.Len(t, multiAssets, 1)
}

func TestDatumHashHexComputesBlake2b256(t *testing.T) {
	hashHex, err := datumHashHex(BuilderData{Type: DataCBOR, CBORHex: "deadbeef"})
	require.NoError(t, err)
	assert.Len(t, hashHex, 64)
	assert.NotEqual(t, "deadbeef", hashHex)

	again, err := datumHashHex(BuilderData{Type: DataCBOR, CBORHex: "deadbeef"})
	require.NoError(t, err)
	assert.Equal(t, hashHex, again)
}

func TestDatumHashHexRejectsNonCBOR(t *testing.T) {
	_, err := datumHashHex(BuilderData{Type: DataMesh, Mesh: PDInt(1)})
	require.Error(t, err)
}

const testOutputAddress = "addr1v92fkk3qu3y68cu5ka38qhmyhx3xhxgpxqp6907m5guevlqqjd7xgj"

func TestOutputToApolloHashDatumUsesComputedDigestNotRawCBOR(t *testing.T) {
	out := Output{
		Address: testOutputAddress,
		Amount:  NewValue(NewAsset(LovelaceUnit, 2_000_000)),
		Datum:   &OutputDatum{Kind: OutputDatumHash, Data: BuilderData{Type: DataCBOR, CBORHex: "deadbeef"}},
	}

	apolloOut, err := outputToApollo(out)
	require.NoError(t, err)

	hashHex, err := datumHashHex(out.Datum.Data)
	require.NoError(t, err)
	assert.True(t, apolloOut.PreAlonzo.HasDatum)
	assert.Equal(t, hashHex, hex.EncodeToString(apolloOut.PreAlonzo.DatumHash.Payload[:]))
}

func TestEncodeTransactionBodyProducesNonEmptyCBOR(t *testing.T) {
	body := NewBuilderBody()
	body.Inputs = append(body.Inputs, TxIn{TxHash: "aa", TxIndex: 0, Kind: TxInPubKey})
	body.Outputs = append(body.Outputs, Output{
		Address: testOutputAddress,
		Amount:  NewValue(NewAsset(LovelaceUnit, 2_000_000)),
	})

	encoded, err := EncodeTransactionBody(body)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}
