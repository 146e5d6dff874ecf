package mesh

import (
	"encoding/hex"
	"testing"

	"github.com/Salvionied/apollo/serialization/Address"
	"github.com/Salvionied/apollo/serialization/MultiAsset"
	"github.com/Salvionied/apollo/serialization/TransactionInput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateValueTracksHasAssets(t *testing.T) {
	plain := createValue(2_000_000, MultiAsset.MultiAsset[int64]{})
	assert.False(t, plain.HasAssets)
	assert.Equal(t, int64(2_000_000), plain.Coin)

	_, multiAssets, err := valueToMultiAsset("test", NewValue(
		NewAsset(LovelaceUnit, 2_000_000),
		NewAsset("11111111111111111111111111111111111111111111111111111122deadbeef", 3),
	))
	require.NoError(t, err)

	withAssets := createValue(2_000_000, multiAssets)
	assert.True(t, withAssets.HasAssets)
}

func TestCreateShelleyOutputWithAndWithoutDatumHash(t *testing.T) {
	addr := mustDecodeAddress(t, testOutputAddress)

	bare := createShelleyOutput(addr, 1_000_000, MultiAsset.MultiAsset[int64]{}, "")
	assert.False(t, bare.PreAlonzo.HasDatum)

	hashHex, err := datumHashHex(BuilderData{Type: DataCBOR, CBORHex: "deadbeef"})
	require.NoError(t, err)
	withHash := createShelleyOutput(addr, 1_000_000, MultiAsset.MultiAsset[int64]{}, hashHex)
	assert.True(t, withHash.PreAlonzo.HasDatum)
}

func TestCreateAlonzoOutputDecodesInlineDatum(t *testing.T) {
	addr := mustDecodeAddress(t, testOutputAddress)

	out, err := createAlonzoOutput(addr, 1_000_000, MultiAsset.MultiAsset[int64]{}, "01")
	require.NoError(t, err)
	assert.True(t, out.IsPostAlonzo)
	require.NotNil(t, out.PostAlonzo.Datum)
}

func TestConvertJSONOutputToUTxORejectsShortUnit(t *testing.T) {
	output := OutputJSON{
		Address: testOutputAddress,
		Amount:  []AssetJSON{{Unit: "short", Quantity: 5}},
	}
	_, err := convertJSONOutputToUTxO(output, TransactionInput.TransactionInput{})
	require.Error(t, err)
}

func TestConvertJSONOutputToUTxOSplitsLovelaceAndAssets(t *testing.T) {
	unit := "11111111111111111111111111111111111111111111111111111122" + "deadbeef"
	output := OutputJSON{
		Address: testOutputAddress,
		Amount: []AssetJSON{
			{Unit: LovelaceUnit, Quantity: 2_000_000},
			{Unit: unit, Quantity: 7},
		},
	}
	input := TransactionInput.TransactionInput{TransactionId: []byte{0xaa}, Index: 0}

	utxo, err := convertJSONOutputToUTxO(output, input)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), utxo.Output.GetAmount().GetCoin())
	assert.NotEmpty(t, utxo.Output.GetAmount().GetAssets())
}

func TestParseUTxOsFromJSONMatchesByHashAndIndex(t *testing.T) {
	jsonData := []byte(`[
		{
			"hash": "aa",
			"outputs": [
				{"tx_hash": "aa", "output_index": 0, "address": "` + testOutputAddress + `", "amount": [{"unit": "lovelace", "quantity": 1000000}]},
				{"tx_hash": "aa", "output_index": 1, "address": "` + testOutputAddress + `", "amount": [{"unit": "lovelace", "quantity": 2000000}]}
			]
		}
	]`)

	txHash, err := hex.DecodeString("aa")
	require.NoError(t, err)
	inputs := []TransactionInput.TransactionInput{{TransactionId: txHash, Index: 1}}

	utxos, err := ParseUTxOsFromJSON(jsonData, inputs)
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, int64(2_000_000), utxos[0].Output.GetAmount().GetCoin())
}

func TestGetTxFromBytesRoundTripsEncodeTransactionBody(t *testing.T) {
	body := NewBuilderBody()
	body.Inputs = append(body.Inputs, TxIn{TxHash: "aa", TxIndex: 0, Kind: TxInPubKey})
	body.Outputs = append(body.Outputs, Output{
		Address: testOutputAddress,
		Amount:  NewValue(NewAsset(LovelaceUnit, 2_000_000)),
	})

	encoded, err := EncodeTransactionBody(body)
	require.NoError(t, err)

	tx, err := GetTxFromBytes(encoded)
	require.NoError(t, err)
	require.Len(t, tx.TransactionBody.Inputs, 1)
	require.Len(t, tx.TransactionBody.Outputs, 1)
}

func TestPrepareAssetMapAndPrepareUTxO(t *testing.T) {
	unit := "11111111111111111111111111111111111111111111111111111122" + "deadbeef"
	output := OutputJSON{
		Address: testOutputAddress,
		Amount: []AssetJSON{
			{Unit: LovelaceUnit, Quantity: 5_000_000},
			{Unit: unit, Quantity: 9},
		},
	}
	input := TransactionInput.TransactionInput{TransactionId: []byte{0xbb}, Index: 2}
	utxo, err := convertJSONOutputToUTxO(output, input)
	require.NoError(t, err)

	assetMap := prepareAssetMap(&utxo)
	assert.Equal(t, uint64(5_000_000), assetMap["lovelace"])
	assert.Equal(t, uint64(9), assetMap["11111111111111111111111111111111111111111111111111111122deadbeef"])

	wire, err := prepareUTxO(&utxo, assetMap)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), wire.OutputIndex)
	assert.Equal(t, "bb", wire.TxHash)
	assert.Nil(t, wire.ScriptRef)
}

func TestSerializeUTxOsInterleavesLengthPrefixedPairs(t *testing.T) {
	serialized := serializeUTxOs([][]byte{{1, 2}, {3}}, [][]byte{{9, 9}, {8}})
	assert.NotEmpty(t, serialized)

	// 8-byte count, then per pair: 8-byte length + input bytes, 8-byte
	// length + output bytes.
	require.Len(t, serialized, 46)
	assert.Equal(t, []byte{1, 2}, serialized[16:18])
	assert.Equal(t, []byte{9, 9}, serialized[26:28])
	assert.Equal(t, byte(3), serialized[36])
	assert.Equal(t, byte(8), serialized[45])
}

func mustDecodeAddress(t *testing.T, addr string) Address.Address {
	t.Helper()
	decoded, err := Address.DecodeAddress(addr)
	require.NoError(t, err)
	return decoded
}
