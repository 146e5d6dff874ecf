package mesh

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EvaluatorConfig holds the parameters handed to the WASM Plutus
// evaluator on construction.
type EvaluatorConfig struct {
	WasmFile     *string `yaml:"wasmFile,omitempty"`
	CostModels   []byte  `yaml:"-"`
	MaxTxExSteps uint64  `yaml:"maxTxExSteps" envconfig:"MAX_TX_EX_STEPS"`
	MaxTxExMem   uint64  `yaml:"maxTxExMem"   envconfig:"MAX_TX_EX_MEM"`
	ZeroTime     uint64  `yaml:"zeroTime"     envconfig:"ZERO_TIME"`
	ZeroSlot     uint64  `yaml:"zeroSlot"     envconfig:"ZERO_SLOT"`
	SlotLength   uint64  `yaml:"slotLength"   envconfig:"SLOT_LENGTH"`
}

// ProtocolParameters is the subset of Cardano protocol parameters this
// engine carries: fee coefficients, the minimum-UTxO-value coefficient,
// pool and key deposits, and a default execution-unit budget. TxBuilder
// stores them in its Params field; Finalize does not read them, and
// redeemers opened by the builder take the package-level DefaultExUnits
// rather than this DefaultExUnits field. Per spec.md §6, the builder never
// fetches these from chain; it only accepts caller-supplied defaults and
// overrides.
type ProtocolParameters struct {
	MinFeeA          uint64  `yaml:"minFeeA"          envconfig:"MIN_FEE_A"`
	MinFeeB          uint64  `yaml:"minFeeB"          envconfig:"MIN_FEE_B"`
	CoinsPerUTxOByte uint64  `yaml:"coinsPerUtxoByte" envconfig:"COINS_PER_UTXO_BYTE"`
	PoolDeposit      uint64  `yaml:"poolDeposit"      envconfig:"POOL_DEPOSIT"`
	KeyDeposit       uint64  `yaml:"keyDeposit"       envconfig:"KEY_DEPOSIT"`
	DefaultExUnits   ExUnits `yaml:"defaultExUnits"`
}

// DefaultProtocolParameters returns the engine's built-in defaults. These
// are reasonable mainnet-era values, not a live chain query (spec.md §6).
func DefaultProtocolParameters() ProtocolParameters {
	return ProtocolParameters{
		MinFeeA:          44,
		MinFeeB:          155381,
		CoinsPerUTxOByte: 4310,
		PoolDeposit:      500000000,
		KeyDeposit:       2000000,
		DefaultExUnits: ExUnits{
			Mem:   14000000,
			Steps: 10000000000,
		},
	}
}

// Merge overlays the non-zero fields of patch onto a copy of p and
// returns the result. protocolParams(partialOverride) uses this for a
// field-by-field merge rather than a generic deep-copy library: the
// override semantics need per-field zero-value detection that a
// reflection-based copier does not give us without extra bookkeeping.
func (p ProtocolParameters) Merge(patch ProtocolParameters) ProtocolParameters {
	merged := p
	if patch.MinFeeA != 0 {
		merged.MinFeeA = patch.MinFeeA
	}
	if patch.MinFeeB != 0 {
		merged.MinFeeB = patch.MinFeeB
	}
	if patch.CoinsPerUTxOByte != 0 {
		merged.CoinsPerUTxOByte = patch.CoinsPerUTxOByte
	}
	if patch.PoolDeposit != 0 {
		merged.PoolDeposit = patch.PoolDeposit
	}
	if patch.KeyDeposit != 0 {
		merged.KeyDeposit = patch.KeyDeposit
	}
	if patch.DefaultExUnits.Mem != 0 {
		merged.DefaultExUnits.Mem = patch.DefaultExUnits.Mem
	}
	if patch.DefaultExUnits.Steps != 0 {
		merged.DefaultExUnits.Steps = patch.DefaultExUnits.Steps
	}
	return merged
}

// LoadProtocolParameters starts from DefaultProtocolParameters, overlays
// an optional YAML file, then overlays MESH_-prefixed environment
// variables, mirroring the file-then-env layering used by
// blinklabs-io/dingo's config loader.
func LoadProtocolParameters(yamlPath string) (ProtocolParameters, error) {
	params := DefaultProtocolParameters()

	if yamlPath != "" {
		buf, err := os.ReadFile(yamlPath)
		if err != nil {
			return params, fmt.Errorf("mesh: read protocol parameters file: %w", err)
		}
		var fromFile ProtocolParameters
		if err := yaml.Unmarshal(buf, &fromFile); err != nil {
			return params, fmt.Errorf("mesh: parse protocol parameters file: %w", err)
		}
		params = params.Merge(fromFile)
	}

	var fromEnv ProtocolParameters
	if err := envconfig.Process("mesh", &fromEnv); err != nil {
		return params, fmt.Errorf("mesh: process protocol parameter environment: %w", err)
	}
	params = params.Merge(fromEnv)

	return params, nil
}
