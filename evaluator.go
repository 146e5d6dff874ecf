package mesh

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"

	apolloUTxO "github.com/Salvionied/apollo/serialization/UTxO"
	base "github.com/Salvionied/apollo/txBuilding/Backend/Base"
	apolloCbor "github.com/Salvionied/cbor/v2"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Evaluator hosts a compiled Plutus phase-two cost-model evaluator inside
// a wazero WASM runtime. It is the concrete implementation of the
// external "Evaluator" collaborator described in spec.md §1: it executes
// the draft transaction's scripts against resolved input UTxOs and
// returns execution-unit estimates for the Evaluation Reconciler.
type Evaluator struct {
	runtime           wazero.Runtime
	module            api.Module
	evalPhaseTwoRaw   api.Function
	alloc             api.Function
	dealloc           api.Function
	utxoToInputBytes  api.Function
	utxoToOutputBytes api.Function
	config            EvaluatorConfig
	logger            *slog.Logger
}

// NewEvaluator loads and instantiates the configured WASM module. A
// WasmFile path is required: this module does not embed a default
// evaluator binary, so a caller that never supplies one gets ErrNoEvaluator
// from NewEvaluator rather than a silently missing cost model.
func NewEvaluator(ctx context.Context, config EvaluatorConfig) (*Evaluator, error) {
	if config.WasmFile == nil {
		return nil, ErrNoEvaluator
	}

	runtime := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("mesh: instantiate wasi: %w", err)
	}

	wasmBytes, err := os.ReadFile(*config.WasmFile)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("mesh: read evaluator wasm file: %w", err)
	}

	modConfig := wazero.NewModuleConfig().
		WithStdout(os.Stdout).
		WithStderr(os.Stderr)

	module, err := runtime.InstantiateWithConfig(ctx, wasmBytes, modConfig)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("mesh: instantiate evaluator module: %w", err)
	}

	return &Evaluator{
		runtime:           runtime,
		module:            module,
		evalPhaseTwoRaw:   module.ExportedFunction("eval_phase_two_raw"),
		alloc:             module.ExportedFunction("alloc"),
		dealloc:           module.ExportedFunction("dealloc"),
		utxoToInputBytes:  module.ExportedFunction("utxo_to_input_bytes"),
		utxoToOutputBytes: module.ExportedFunction("utxo_to_output_bytes"),
		config:            config,
		logger:            slog.Default(),
	}, nil
}

// SetLogger overrides the evaluator's logger; passing nil restores the
// default logger rather than disabling logging, matching slog's own
// nil-safety contract.
func (e *Evaluator) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger
}

// Close terminates the WASM runtime and releases resources.
func (e *Evaluator) Close(ctx context.Context) {
	e.module.Close(ctx)
	e.runtime.Close(ctx)
}

// Evaluate runs phase-two validation for every script-carrying input in
// txBytes and returns one raw CBOR-encoded redeemer result per evaluated
// redeemer, in evaluator-reported order.
func (e *Evaluator) Evaluate(ctx context.Context, txBytes []byte, utxos []apolloUTxO.UTxO) ([][]byte, error) {
	tx, err := GetTxFromBytes(txBytes)
	if err != nil {
		return nil, encodingErr("evaluator: parse transaction", err)
	}

	utxoMap := make(map[string]apolloUTxO.UTxO, len(utxos))
	for _, utxo := range utxos {
		key := fmt.Sprintf("%s:%d",
			hex.EncodeToString(utxo.Input.TransactionId),
			utxo.Input.Index)
		utxoMap[key] = utxo
	}

	var inputBytes [][]byte
	var outputBytes [][]byte

	for _, input := range tx.TransactionBody.Inputs {
		key := fmt.Sprintf("%s:%d",
			hex.EncodeToString(input.TransactionId),
			input.Index)

		resolved, exists := utxoMap[key]
		if !exists {
			return nil, fmt.Errorf("mesh: missing resolved UTxO for input %s", key)
		}

		assetMap := prepareAssetMap(&resolved)
		wireUTxO, err := prepareUTxO(&resolved, assetMap)
		if err != nil {
			return nil, err
		}

		utxoCbor, err := apolloCbor.Marshal(wireUTxO)
		if err != nil {
			return nil, encodingErr("evaluator: marshal utxo", err)
		}

		utxoPtr, utxoLen, err := e.writeToMemory(ctx, utxoCbor)
		if err != nil {
			return nil, err
		}
		defer e.deallocMemory(ctx, utxoPtr, utxoLen)

		inputUtxoBytes, err := e.callFunction(ctx, e.utxoToInputBytes, utxoPtr, utxoLen)
		if err != nil {
			return nil, err
		}
		inputBytes = append(inputBytes, inputUtxoBytes)

		outputUtxoBytes, err := e.callFunction(ctx, e.utxoToOutputBytes, utxoPtr, utxoLen)
		if err != nil {
			return nil, err
		}
		outputBytes = append(outputBytes, outputUtxoBytes)
	}

	serializedUtxos := serializeUTxOs(inputBytes, outputBytes)

	txPtr, txLen, err := e.writeToMemory(ctx, txBytes)
	if err != nil {
		return nil, err
	}
	defer e.deallocMemory(ctx, txPtr, txLen)

	utxosPtr, utxosLen, err := e.writeToMemory(ctx, serializedUtxos)
	if err != nil {
		return nil, err
	}
	defer e.deallocMemory(ctx, utxosPtr, utxosLen)

	costModelsPtr, costModelsLen, err := e.writeToMemory(ctx, e.config.CostModels)
	if err != nil {
		return nil, err
	}
	defer e.deallocMemory(ctx, costModelsPtr, costModelsLen)

	results, err := e.evalPhaseTwoRaw.Call(ctx,
		txPtr, txLen,
		utxosPtr, utxosLen,
		costModelsPtr, costModelsLen,
		e.config.MaxTxExSteps, e.config.MaxTxExMem,
		e.config.ZeroTime, e.config.ZeroSlot, e.config.SlotLength,
	)
	if err != nil {
		return nil, fmt.Errorf("mesh: eval_phase_two_raw call: %w", err)
	}

	resultPtr := uint32(results[0] >> 32)
	resultLen := uint32(results[0])

	resultBytes, ok := e.module.Memory().Read(resultPtr, resultLen)
	if !ok {
		return nil, errors.New("mesh: failed to read evaluator result memory")
	}
	defer e.deallocMemory(ctx, uint64(resultPtr), uint64(resultLen))

	if len(resultBytes) == 0 {
		return nil, errors.New("mesh: empty result from WASM evaluation")
	}

	if resultBytes[0] == 0 {
		var cborArray [][]byte
		decoder := apolloCbor.NewDecoder(bytes.NewReader(resultBytes[1:]))
		if err := decoder.Decode(&cborArray); err != nil {
			return nil, encodingErr("evaluator: decode result array", err)
		}
		e.logger.Debug("evaluator produced redeemer results", "count", len(cborArray))
		return cborArray, nil
	}

	var evalError EvalError
	if err := apolloCbor.Unmarshal(resultBytes[1:], &evalError); err != nil {
		return nil, encodingErr("evaluator: decode eval error", err)
	}
	return nil, &EvaluationError{EvalError: evalError}
}

// evaluatedRedeemer is the per-redeemer layout this module expects the
// evaluator's raw result entries to decode to: a tag (0=Spend, 1=Mint,
// 2=Cert, 3=Reward, matching the Cardano ledger's redeemer_tag CDDL
// ordering), the redeemer's index within its tag group, and the measured
// budget. The evaluator binary's exact per-entry CBOR layout is not part
// of the retrieved reference material; this shape is the natural
// counterpart to Action and is documented as an assumption in DESIGN.md.
type evaluatedRedeemer struct {
	_     struct{} `cbor:",toarray"`
	Tag   uint8
	Index uint64
	Mem   uint64
	Steps uint64
}

// EvaluateActions runs Evaluate and decodes its raw per-redeemer results
// into Actions ready for (*BuilderBody).ReconcileRedeemers, so callers
// do not need to know the evaluator's wire format.
func (e *Evaluator) EvaluateActions(ctx context.Context, txBytes []byte, utxos []apolloUTxO.UTxO) ([]Action, error) {
	rawResults, err := e.Evaluate(ctx, txBytes, utxos)
	if err != nil {
		return nil, err
	}

	actions := make([]Action, 0, len(rawResults))
	for _, raw := range rawResults {
		var r evaluatedRedeemer
		if err := apolloCbor.Unmarshal(raw, &r); err != nil {
			return nil, encodingErr("evaluator: decode redeemer result", err)
		}
		tag, ok := redeemerTagFromWire(r.Tag)
		if !ok {
			return nil, fmt.Errorf("mesh: unknown redeemer tag %d in evaluator result", r.Tag)
		}
		actions = append(actions, Action{
			Tag:   tag,
			Index: int(r.Index),
			Budget: ExUnits{
				Mem:   r.Mem,
				Steps: r.Steps,
			},
		})
	}
	return actions, nil
}

// EvaluateWithChainContext resolves txBytes's inputs against chainContext
// (an apollo backend: a local UTxO cache, a node connection, whatever the
// caller wired up) and runs EvaluateActions over the result, so callers
// that already have an apollo ChainContext don't need to resolve inputs
// themselves first.
func (e *Evaluator) EvaluateWithChainContext(ctx context.Context, txBytes []byte, chainContext base.ChainContext) ([]Action, error) {
	utxos, err := GetUtxosFromTx(ctx, txBytes, chainContext)
	if err != nil {
		return nil, fmt.Errorf("mesh: resolve inputs via chain context: %w", err)
	}
	return e.EvaluateActions(ctx, txBytes, utxos)
}

// EvaluateWithJSONUTxOs resolves txBytes's inputs against a flat JSON
// UTxO dump (jsonData, in the ParseUTxOsFromJSON shape) rather than a
// live chain context, and runs EvaluateActions over the result. This is
// the path test fixtures and offline evaluation take.
func (e *Evaluator) EvaluateWithJSONUTxOs(ctx context.Context, txBytes, jsonData []byte) ([]Action, error) {
	tx, err := GetTxFromBytes(txBytes)
	if err != nil {
		return nil, encodingErr("evaluator: parse transaction", err)
	}
	utxos, err := ParseUTxOsFromJSON(jsonData, tx.TransactionBody.Inputs)
	if err != nil {
		return nil, fmt.Errorf("mesh: resolve inputs via json fixture: %w", err)
	}
	return e.EvaluateActions(ctx, txBytes, utxos)
}

// writeToMemory allocates memory in the WASM module and writes data to it.
func (e *Evaluator) writeToMemory(ctx context.Context, data []byte) (uint64, uint64, error) {
	results, err := e.alloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, 0, fmt.Errorf("mesh: wasm alloc: %w", err)
	}
	ptr := results[0]
	if !e.module.Memory().Write(uint32(ptr), data) {
		return 0, 0, errors.New("mesh: failed to write data to WASM memory")
	}
	return ptr, uint64(len(data)), nil
}

// deallocMemory frees memory previously allocated in the WASM module.
func (e *Evaluator) deallocMemory(ctx context.Context, ptr, size uint64) {
	if _, err := e.dealloc.Call(ctx, ptr, size); err != nil {
		e.logger.Warn("evaluator dealloc failed", "error", err)
	}
}

// callFunction invokes a WASM function and retrieves its result bytes.
func (e *Evaluator) callFunction(ctx context.Context, fn api.Function, args ...uint64) ([]byte, error) {
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("mesh: wasm function call: %w", err)
	}
	if len(results) < 1 {
		return nil, errors.New("mesh: no results from wasm function call")
	}

	resultPtr := uint32(results[0] >> 32)
	resultLen := uint32(results[0])

	resultBytes, ok := e.module.Memory().Read(resultPtr, resultLen)
	if !ok {
		return nil, errors.New("mesh: failed to read function result memory")
	}

	resultCopy := make([]byte, len(resultBytes))
	copy(resultCopy, resultBytes)

	e.deallocMemory(ctx, uint64(resultPtr), uint64(resultLen))

	return resultCopy, nil
}
