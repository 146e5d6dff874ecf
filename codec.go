package mesh

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/Salvionied/apollo/serialization/Address"
	apolloAsset "github.com/Salvionied/apollo/serialization/Asset"
	"github.com/Salvionied/apollo/serialization/AssetName"
	"github.com/Salvionied/apollo/serialization/MultiAsset"
	"github.com/Salvionied/apollo/serialization/Policy"
	"github.com/Salvionied/apollo/serialization/Transaction"
	"github.com/Salvionied/apollo/serialization/TransactionBody"
	"github.com/Salvionied/apollo/serialization/TransactionInput"
	"github.com/Salvionied/apollo/serialization/TransactionOutput"
	apolloCbor "github.com/Salvionied/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// codec.go is the Apollo Codec Bridge: it narrows our big-integer-safe
// BuilderBody into apollo's int64-width wire types and hands the result
// to apollo's own canonical CBOR marshaler, the boundary the rest of the
// package is careful never to cross directly (see utils.go's
// createAlonzoOutput/createShelleyOutput/createValue, which this reuses).

// narrowToInt64 converts a *big.Int to int64, reporting EncodingError on
// overflow rather than silently truncating (spec.md §7).
func narrowToInt64(context string, v *big.Int) (int64, error) {
	if v == nil {
		return 0, nil
	}
	if !v.IsInt64() {
		return 0, encodingErr(context, fmt.Errorf("value %s overflows int64", v.String()))
	}
	return v.Int64(), nil
}

// splitUnit splits a Value unit key (56 hex chars of policy id followed by
// the asset name's hex bytes) into apollo's Policy/AssetName pair, the
// convention every unit in this package follows (see value.go's NewAsset).
// Both valueToMultiAsset and utils.go's convertJSONOutputToUTxO resolve
// units this way, so the bounds check lives here once rather than being
// duplicated (and, in the JSON-fixture path, previously skipped entirely —
// a unit shorter than a policy id would have panicked on the slice).
func splitUnit(context, unit string) (Policy.PolicyId, AssetName.AssetName, error) {
	if len(unit) < 56 {
		return Policy.PolicyId{}, AssetName.AssetName{}, encodingErr(context, fmt.Errorf("unit %q shorter than a policy id", unit))
	}
	policyID := Policy.PolicyId{Value: unit[:56]}
	assetName := *AssetName.NewAssetNameFromHexString(unit[56:])
	return policyID, assetName, nil
}

// valueToMultiAsset splits a Value into its lovelace quantity and its
// non-lovelace units as an apollo MultiAsset, narrowing every quantity to
// int64.
func valueToMultiAsset(context string, v Value) (int64, MultiAsset.MultiAsset[int64], error) {
	lovelace, err := narrowToInt64(context+".lovelace", v.Lovelace())
	if err != nil {
		return 0, nil, err
	}

	multiAssets := MultiAsset.MultiAsset[int64]{}
	for _, unit := range v.Units() {
		if unit == LovelaceUnit {
			continue
		}
		qty, err := narrowToInt64(context+"."+unit, v[unit])
		if err != nil {
			return 0, nil, err
		}
		policyID, assetName, err := splitUnit(context+".unit", unit)
		if err != nil {
			return 0, nil, err
		}
		if _, ok := multiAssets[policyID]; !ok {
			multiAssets[policyID] = apolloAsset.Asset[int64]{}
		}
		multiAssets[policyID][assetName] = qty
	}
	return lovelace, multiAssets, nil
}

// outputToApollo converts a single Output to apollo's TransactionOutput,
// choosing the Alonzo (inline datum) or Shelley (datum hash / no datum)
// wire shape the way createAlonzoOutput/createShelleyOutput do.
func outputToApollo(out Output) (TransactionOutput.TransactionOutput, error) {
	addr, err := Address.DecodeAddress(out.Address)
	if err != nil {
		return TransactionOutput.TransactionOutput{}, encodingErr("output.address", err)
	}

	lovelace, multiAssets, err := valueToMultiAsset("output.amount", out.Amount)
	if err != nil {
		return TransactionOutput.TransactionOutput{}, err
	}

	if out.Datum != nil && out.Datum.Kind == OutputDatumInline {
		inlineHex, err := datumToCBORHex(out.Datum.Data)
		if err != nil {
			return TransactionOutput.TransactionOutput{}, err
		}
		return createAlonzoOutput(addr, lovelace, multiAssets, inlineHex)
	}

	hashHex := ""
	if out.Datum != nil && out.Datum.Kind == OutputDatumHash {
		hashHex, err = datumHashHex(out.Datum.Data)
		if err != nil {
			return TransactionOutput.TransactionOutput{}, err
		}
	}
	return createShelleyOutput(addr, lovelace, multiAssets, hashHex), nil
}

// datumToCBORHex resolves a BuilderData into the hex-encoded CBOR
// createAlonzoOutput expects. Only DataCBOR is supported as an
// inline-datum source; DataMesh and DataJSON data are rejected with an
// EncodingError.
func datumToCBORHex(data BuilderData) (string, error) {
	switch data.Type {
	case DataCBOR:
		return data.CBORHex, nil
	default:
		return "", encodingErr("datum.type", fmt.Errorf("inline datum requires DataCBOR, got type %d", data.Type))
	}
}

// datumHashHex resolves a BuilderData into the hex-encoded blake2b-256
// digest an Output's datum-hash field requires. It hashes the datum's
// raw CBOR bytes rather than its hex string, matching the digest
// gouroboros computes over encoded ledger values (Blake2b256Hash).
func datumHashHex(data BuilderData) (string, error) {
	if data.Type != DataCBOR {
		return "", encodingErr("datumHash.type", fmt.Errorf("datum hash requires DataCBOR, got type %d", data.Type))
	}
	raw, err := hex.DecodeString(data.CBORHex)
	if err != nil {
		return "", encodingErr("datumHash.cbor", err)
	}
	digest := blake2b.Sum256(raw)
	return hex.EncodeToString(digest[:]), nil
}

// inputToApollo converts a single TxIn's identity to apollo's
// TransactionInput. Only the (txHash, txIndex) identity crosses the
// bridge; script/datum/redeemer material is witness-set concern, not
// part of the transaction body's input list.
func inputToApollo(in TxIn) (TransactionInput.TransactionInput, error) {
	txHash, err := hex.DecodeString(in.TxHash)
	if err != nil {
		return TransactionInput.TransactionInput{}, encodingErr("input.txHash", err)
	}
	return TransactionInput.TransactionInput{
		TransactionId: txHash,
		Index:         int(in.TxIndex),
	}, nil
}

// EncodeTransactionBody narrows a finalized BuilderBody into an apollo
// TransactionBody and returns its canonical CBOR encoding. Witness set,
// auxiliary data and script/redeemer material are deliberately out of
// scope here: this bridge exists to exercise apollo's value/output/input
// wire types and cbor/v2's canonical encoder, not to re-implement
// apollo's own transaction assembly.
func EncodeTransactionBody(body *BuilderBody) ([]byte, error) {
	inputs := make([]TransactionInput.TransactionInput, 0, len(body.Inputs))
	for _, in := range body.Inputs {
		apolloIn, err := inputToApollo(in)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, apolloIn)
	}

	outputs := make([]TransactionOutput.TransactionOutput, 0, len(body.Outputs))
	for _, out := range body.Outputs {
		apolloOut, err := outputToApollo(out)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, apolloOut)
	}

	collaterals := make([]TransactionInput.TransactionInput, 0, len(body.Collaterals))
	for _, in := range body.Collaterals {
		apolloIn, err := inputToApollo(in)
		if err != nil {
			return nil, err
		}
		collaterals = append(collaterals, apolloIn)
	}

	txBody := TransactionBody.TransactionBody{
		Inputs:     inputs,
		Outputs:    outputs,
		Collateral: collaterals,
	}

	tx := Transaction.Transaction{TransactionBody: txBody}

	encoded, err := apolloCbor.Marshal(tx)
	if err != nil {
		return nil, encodingErr("transaction", err)
	}
	return encoded, nil
}
