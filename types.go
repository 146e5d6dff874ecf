package mesh

import (
	"math/big"
	"strconv"
)

// PlutusVersion identifies a Plutus script language version.
type PlutusVersion string

const (
	PlutusV1 PlutusVersion = "V1"
	PlutusV2 PlutusVersion = "V2"
	PlutusV3 PlutusVersion = "V3"
)

// ScriptSourceKind discriminates how a script is supplied to the builder.
type ScriptSourceKind int

const (
	// ScriptSourceNone means no script has been attached yet.
	ScriptSourceNone ScriptSourceKind = iota
	// ScriptSourceProvided carries the script's CBOR inline in the body.
	ScriptSourceProvided
	// ScriptSourceInline references a script carried by another UTxO
	// on-chain (spendingTxInReference / mintTxInReference / etc).
	ScriptSourceInline
)

// ScriptSource is the tagged union spec.md §4 calls "Provided-inline CBOR
// or Inline-by-reference" wherever a script source appears (input, mint,
// withdrawal, certificate).
type ScriptSource struct {
	Kind ScriptSourceKind

	// Provided
	ScriptCBOR string
	Version    PlutusVersion // empty for native scripts

	// Inline
	TxHash     string
	TxIndex    uint32
	ScriptHash string
	ScriptSize uint64
}

// IsSet reports whether a script source has actually been attached.
func (s ScriptSource) IsSet() bool { return s.Kind != ScriptSourceNone }

// DatumSourceKind discriminates how a spent script UTxO's datum is
// revealed.
type DatumSourceKind int

const (
	DatumSourceNone DatumSourceKind = iota
	// DatumSourceProvided carries the datum value inline.
	DatumSourceProvided
	// DatumSourceInline marks the datum as already inline on the UTxO
	// being spent (txInInlineDatumPresent): no value need be supplied.
	DatumSourceInline
)

// DatumSource is the tagged union behind txInDatumValue /
// txInInlineDatumPresent.
type DatumSource struct {
	Kind DatumSourceKind
	Data BuilderData // only meaningful when Kind == DatumSourceProvided
}

// IsSet reports whether a datum source has actually been attached.
func (d DatumSource) IsSet() bool { return d.Kind != DatumSourceNone }

// BuilderDataType discriminates the three encodings BuilderData can carry.
type BuilderDataType int

const (
	// DataMesh is an in-memory Plutus-Data tagged union.
	DataMesh BuilderDataType = iota
	// DataJSON is "detailed schema" JSON, stringified with a
	// big-integer-safe encoder (see bigjson.go).
	DataJSON
	// DataCBOR is an opaque hex string, passed through verbatim.
	DataCBOR
)

// BuilderData is the uniform datum/redeemer payload type from spec.md §3.
type BuilderData struct {
	Type BuilderDataType

	Mesh    PlutusData // Type == DataMesh
	JSON    string     // Type == DataJSON, already stringified
	CBORHex string     // Type == DataCBOR
}

// PlutusDataKind discriminates the Plutus-Data tagged union.
type PlutusDataKind int

const (
	PlutusDataConstr PlutusDataKind = iota
	PlutusDataMap
	PlutusDataList
	PlutusDataInteger
	PlutusDataBytes
)

// PlutusData is the canonical in-memory Plutus-Data representation named
// in spec.md §6: Constr(tag, fields) | Map(entries) | List(items) |
// Integer | Bytes.
type PlutusData struct {
	Kind PlutusDataKind

	ConstrTag    uint64
	ConstrFields []PlutusData

	MapEntries []PlutusDataMapEntry

	ListItems []PlutusData

	Integer *big.Int
	Bytes   []byte
}

// PlutusDataMapEntry is a single key/value pair of a PlutusData Map.
type PlutusDataMapEntry struct {
	Key   PlutusData
	Value PlutusData
}

// PDConstr builds a Plutus-Data constructor value.
func PDConstr(tag uint64, fields ...PlutusData) PlutusData {
	return PlutusData{Kind: PlutusDataConstr, ConstrTag: tag, ConstrFields: fields}
}

// PDInt builds a Plutus-Data integer value from an int64.
func PDInt(v int64) PlutusData {
	return PlutusData{Kind: PlutusDataInteger, Integer: big.NewInt(v)}
}

// PDBigInt builds a Plutus-Data integer value from a *big.Int.
func PDBigInt(v *big.Int) PlutusData {
	return PlutusData{Kind: PlutusDataInteger, Integer: new(big.Int).Set(v)}
}

// PDBytes builds a Plutus-Data bytestring value.
func PDBytes(b []byte) PlutusData {
	return PlutusData{Kind: PlutusDataBytes, Bytes: b}
}

// PDList builds a Plutus-Data list value.
func PDList(items ...PlutusData) PlutusData {
	return PlutusData{Kind: PlutusDataList, ListItems: items}
}

// PDMap builds a Plutus-Data map value.
func PDMap(entries ...PlutusDataMapEntry) PlutusData {
	return PlutusData{Kind: PlutusDataMap, MapEntries: entries}
}

// ExUnits is an execution-unit budget: memory and CPU steps.
type ExUnits struct {
	Mem   uint64
	Steps uint64
}

// Scale returns floor(e * multiplier), matching the Evaluation
// Reconciler's safety-margin arithmetic (spec.md §4.3).
func (e ExUnits) Scale(multiplier float64) ExUnits {
	return ExUnits{
		Mem:   uint64(float64(e.Mem) * multiplier),
		Steps: uint64(float64(e.Steps) * multiplier),
	}
}

// DefaultExUnits is the fixed large budget assigned to a freshly opened
// redeemer before the Evaluation Reconciler overwrites it (spec.md §6).
var DefaultExUnits = ExUnits{Mem: 14000000, Steps: 10000000000}

// NewRedeemer builds a Redeemer with DefaultExUnits.
func NewRedeemer(data BuilderData) *Redeemer {
	return &Redeemer{Data: data, ExUnits: DefaultExUnits}
}

// Redeemer is arbitrary script input data paired with an execution-unit
// budget (spec.md §3).
type Redeemer struct {
	Data    BuilderData
	ExUnits ExUnits
}

// RedeemerTag identifies which transaction component a redeemer is
// attached to, matching the Cardano ledger's redeemer_tag CDDL ordering
// (0=Spend, 1=Mint, 2=Cert, 3=Reward).
type RedeemerTag int

const (
	RedeemerTagSpend RedeemerTag = iota
	RedeemerTagMint
	RedeemerTagCert
	RedeemerTagReward
)

func redeemerTagFromWire(v uint8) (RedeemerTag, bool) {
	switch v {
	case 0:
		return RedeemerTagSpend, true
	case 1:
		return RedeemerTagMint, true
	case 2:
		return RedeemerTagCert, true
	case 3:
		return RedeemerTagReward, true
	default:
		return 0, false
	}
}

// Action is one evaluator-reported execution-unit estimate for a single
// redeemer slot, the unit the Evaluation Reconciler consumes (spec.md §4.3).
type Action struct {
	Tag    RedeemerTag
	Index  int
	Budget ExUnits
}

// TxInKind discriminates the input channel's tagged union.
type TxInKind int

const (
	TxInPubKey TxInKind = iota
	TxInSimpleScript
	TxInScript
)

// SimpleScriptTxIn is the extra state a SimpleScript input carries.
type SimpleScriptTxIn struct {
	ScriptSource ScriptSource
}

// ScriptTxIn is the extra state a Plutus Script input carries. All three
// fields are REQUIRED: Finalize reports an IncompleteItemError for a
// queued Script input missing any of them (spec.md §3).
type ScriptTxIn struct {
	ScriptSource ScriptSource
	DatumSource  DatumSource
	Redeemer     *Redeemer
}

// TxIn is the tagged union over {PubKey, SimpleScript, Script} from
// spec.md §3.
type TxIn struct {
	TxHash  string
	TxIndex uint32
	Amount  Value
	Address string

	Kind TxInKind

	SimpleScriptTxIn *SimpleScriptTxIn // Kind == TxInSimpleScript
	ScriptTxIn       *ScriptTxIn       // Kind == TxInScript
}

// ID returns the (txHash, txIndex) identity pair as a stable string key.
func (t TxIn) ID() string { return utxoID(t.TxHash, t.TxIndex) }

// missingScriptFields reports which of {scriptSource, datumSource,
// redeemer} a Script-kind input is missing, for IncompleteItemError.
func (t TxIn) missingScriptFields() []string {
	if t.Kind != TxInScript {
		return nil
	}
	var missing []string
	si := t.ScriptTxIn
	if si == nil || !si.ScriptSource.IsSet() {
		missing = append(missing, "scriptSource")
	}
	if si == nil || !si.DatumSource.IsSet() {
		missing = append(missing, "datumSource")
	}
	if si == nil || si.Redeemer == nil {
		missing = append(missing, "redeemer")
	}
	return missing
}

// MintType discriminates whether a mint uses a native or Plutus policy.
type MintType int

const (
	MintNative MintType = iota
	MintPlutus
)

// MintItem is a single mint/burn line item from spec.md §3. Amount is
// signed: positive for mint, negative for burn.
type MintItem struct {
	PolicyID  string
	AssetName string
	Amount    *big.Int
	Type      MintType

	ScriptSource ScriptSource
	Redeemer     *Redeemer // Type == MintPlutus only
}

// Unit returns the resulting asset's unit: policyId + hex assetName.
func (m MintItem) Unit() string { return m.PolicyID + m.AssetName }

func (m MintItem) missingFields() []string {
	var missing []string
	if !m.ScriptSource.IsSet() {
		missing = append(missing, "scriptSource")
	}
	if m.Type == MintPlutus && m.Redeemer == nil {
		missing = append(missing, "redeemer")
	}
	if m.PolicyID == "" {
		missing = append(missing, "policyId")
	}
	return missing
}

// WithdrawalKind discriminates the withdrawal channel's tagged union.
type WithdrawalKind int

const (
	WithdrawalPubKey WithdrawalKind = iota
	WithdrawalSimpleScript
	WithdrawalScript
)

// Withdrawal is the tagged union over {PubKeyWithdrawal,
// SimpleScriptWithdrawal, ScriptWithdrawal} from spec.md §3.
type Withdrawal struct {
	RewardAddress string
	Coin          *big.Int

	Kind WithdrawalKind

	ScriptSource ScriptSource // script variants only
	Redeemer     *Redeemer    // Kind == WithdrawalScript only
}

func (w Withdrawal) missingFields() []string {
	if w.Kind == WithdrawalPubKey {
		return nil
	}
	var missing []string
	if !w.ScriptSource.IsSet() {
		missing = append(missing, "scriptSource")
	}
	if w.Kind == WithdrawalScript && w.Redeemer == nil {
		missing = append(missing, "redeemer")
	}
	return missing
}

// CertType enumerates the certificate payload kinds from spec.md §3.
type CertType int

const (
	CertRegisterPool CertType = iota
	CertRetirePool
	CertRegisterStake
	CertDeregisterStake
	CertDelegateStake
)

// PoolParams carries the fields of a RegisterPool certificate.
type PoolParams struct {
	Operator          string
	VrfKeyHash        string
	Pledge            *big.Int
	Cost              *big.Int
	MarginNumerator   uint64
	MarginDenominator uint64
	RewardAccount     string
	PoolOwners        []string
	Relays            []string
	Metadata          *string
}

// CertPayload is the certType payload: exactly one of the fields below is
// meaningful, selected by Type.
type CertPayload struct {
	Type CertType

	PoolParams *PoolParams // CertRegisterPool
	PoolID     string      // CertRetirePool, CertDelegateStake
	Epoch      uint64      // CertRetirePool

	StakeAddress string // CertRegisterStake, CertDeregisterStake, CertDelegateStake
}

// CertificateKind discriminates the certificate channel's tagged union.
type CertificateKind int

const (
	CertificateBasic CertificateKind = iota
	CertificateSimpleScript
	CertificateScript
)

// Certificate is the tagged union over {BasicCertificate,
// SimpleScriptCertificate, ScriptCertificate} from spec.md §3.
type Certificate struct {
	Kind CertificateKind
	Cert CertPayload

	ScriptSource ScriptSource // script variants only
	Redeemer     *Redeemer    // Kind == CertificateScript only
}

func (c Certificate) missingFields() []string {
	if c.Kind == CertificateBasic {
		return nil
	}
	var missing []string
	if !c.ScriptSource.IsSet() {
		missing = append(missing, "scriptSource")
	}
	if c.Kind == CertificateScript && c.Redeemer == nil {
		missing = append(missing, "redeemer")
	}
	return missing
}

// OutputDatumKind discriminates how an output's datum is attached.
type OutputDatumKind int

const (
	OutputDatumHash OutputDatumKind = iota
	OutputDatumInline
)

// OutputDatum is the datum an Output carries, either by hash or inline.
type OutputDatum struct {
	Kind OutputDatumKind
	Data BuilderData
}

// ScriptRef is a reference script attached to an Output.
type ScriptRef struct {
	Code    string
	Version PlutusVersion
}

// Output is a single transaction output from spec.md §3.
type Output struct {
	Address         string
	Amount          Value
	Datum           *OutputDatum
	ReferenceScript *ScriptRef
}

// UTxOInput identifies a UTxO by its (txHash, outputIndex) pair.
type UTxOInput struct {
	TxHash  string
	TxIndex uint32
}

// UTxOOutput is the output half of a UTxO.
type UTxOOutput struct {
	Address         string
	Amount          Value
	Datum           *OutputDatum
	ReferenceScript *ScriptRef
}

// UTxO pairs a UTxOInput with its UTxOOutput (spec.md §3). Identity is
// (txHash, outputIndex).
type UTxO struct {
	Input  UTxOInput
	Output UTxOOutput
}

// ID returns the UTxO's (txHash, outputIndex) identity as a stable
// string key.
func (u UTxO) ID() string { return utxoID(u.Input.TxHash, u.Input.TxIndex) }

func utxoID(txHash string, txIndex uint32) string {
	return txHash + "#" + strconv.FormatUint(uint64(txIndex), 10)
}
