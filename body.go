package mesh

import "math/big"

// SelectionStrategy names one of the four UTxO Selection algorithms from
// spec.md §4.2.
type SelectionStrategy int

const (
	// SelectionExperimental is the default strategy: a multi-pass
	// smallest-covering-UTxO-first selector aimed at minimizing input
	// count (spec.md §4.2).
	SelectionExperimental SelectionStrategy = iota
	SelectionLargestFirst
	SelectionLargestFirstMultiAsset
	SelectionKeepRelevant
)

// ValidityRange is the transaction's optional slot validity window.
type ValidityRange struct {
	InvalidBefore    *uint64
	InvalidHereafter *uint64
}

// SelectionConfig configures UTxO Selection for finalize: how much extra
// lovelace to pad the requirement by, which strategy to run, and whether
// that padding already accounts for fees.
type SelectionConfig struct {
	Threshold     *big.Int
	Strategy      SelectionStrategy
	IncludeTxFees bool
}

// BuilderBody is the aggregate mutable transaction descriptor spec.md §3
// calls the root aggregate. It is mutated only by the Fluent Builder Core
// and the Evaluation Reconciler, and is cleared wholesale by Reset.
type BuilderBody struct {
	Inputs             []TxIn
	Outputs            []Output
	Mints              []MintItem
	Withdrawals        []Withdrawal
	Certificates       []Certificate
	ReferenceInputs    []UTxOInput
	Collaterals        []TxIn
	RequiredSignatures []string
	SigningKeys        []string
	Metadata           map[uint64]BuilderData

	ChangeAddress string
	ValidityRange ValidityRange

	ExtraInputs     []UTxO
	SelectionConfig SelectionConfig
}

// NewBuilderBody returns an empty BuilderBody with the default selection
// strategy (experimental) and a zero threshold.
func NewBuilderBody() *BuilderBody {
	return &BuilderBody{
		Metadata: make(map[uint64]BuilderData),
		SelectionConfig: SelectionConfig{
			Threshold: big.NewInt(0),
			Strategy:  SelectionExperimental,
		},
	}
}

// Reset clears the body back to its construction-time state. After
// Reset, the body is indistinguishable from a freshly constructed one
// (spec.md §8 invariant 6: reset idempotence).
func (b *BuilderBody) Reset() {
	*b = *NewBuilderBody()
}

// Clone returns a deep copy of the body, used by tests asserting
// pre/post-Reset state without aliasing the original's slices.
func (b *BuilderBody) Clone() *BuilderBody {
	out := &BuilderBody{
		Inputs:             append([]TxIn(nil), b.Inputs...),
		Outputs:            append([]Output(nil), b.Outputs...),
		Mints:              append([]MintItem(nil), b.Mints...),
		Withdrawals:        append([]Withdrawal(nil), b.Withdrawals...),
		Certificates:       append([]Certificate(nil), b.Certificates...),
		ReferenceInputs:    append([]UTxOInput(nil), b.ReferenceInputs...),
		Collaterals:        append([]TxIn(nil), b.Collaterals...),
		RequiredSignatures: append([]string(nil), b.RequiredSignatures...),
		SigningKeys:        append([]string(nil), b.SigningKeys...),
		Metadata:           make(map[uint64]BuilderData, len(b.Metadata)),
		ChangeAddress:      b.ChangeAddress,
		ValidityRange:      b.ValidityRange,
		ExtraInputs:        append([]UTxO(nil), b.ExtraInputs...),
		SelectionConfig:    b.SelectionConfig,
	}
	for k, v := range b.Metadata {
		out.Metadata[k] = v
	}
	if b.SelectionConfig.Threshold != nil {
		out.SelectionConfig.Threshold = new(big.Int).Set(b.SelectionConfig.Threshold)
	}
	return out
}

// NetRequiredValue computes Σoutputs - Σinputs - Σmints(+) + Σburns(-),
// the "required assets" quantity UTxO Selection balances against
// (spec.md §4.2). It is exposed on its own (supplemental to spec.md's
// minimum requirement) because an external balancer needs exactly this
// figure to size a change output, and finalize would otherwise compute
// it opaquely.
func (b *BuilderBody) NetRequiredValue() Value {
	required := make(Value)

	for _, out := range b.Outputs {
		required = required.Add(out.Amount)
	}

	for _, in := range b.Inputs {
		if len(in.Amount) == 0 {
			continue
		}
		required = required.Subtract(in.Amount)
	}

	for _, m := range b.Mints {
		required = required.Subtract(NewValue(Asset{Unit: m.Unit(), Quantity: m.Amount}))
	}

	return required
}

// removeDuplicateInputs walks inputs in order, keeping the first
// occurrence of each (txHash, txIndex) and dropping the rest, preserving
// survivor order (spec.md §4.4).
func removeDuplicateInputs(inputs []TxIn) []TxIn {
	seen := make(map[string]struct{}, len(inputs))
	out := make([]TxIn, 0, len(inputs))
	for _, in := range inputs {
		id := in.ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, in)
	}
	return out
}

// Dedup removes duplicate inputs in place, per spec.md §4.4.
func (b *BuilderBody) Dedup() {
	b.Inputs = removeDuplicateInputs(b.Inputs)
}
