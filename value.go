package mesh

import (
	"math/big"
	"sort"
)

// LovelaceUnit is the distinguished unit for native ADA.
const LovelaceUnit = "lovelace"

// Asset is a (unit, quantity) pair. unit is "lovelace" for native ADA, or
// policy-id + hex-encoded asset-name for everything else. Quantity is
// kept as *big.Int internally so large NFT/metadata-adjacent quantities
// never round-trip through a float64.
type Asset struct {
	Unit     string
	Quantity *big.Int
}

// NewAsset builds an Asset from an int64 quantity, a convenience for
// tests and call sites that don't need arbitrary precision.
func NewAsset(unit string, quantity int64) Asset {
	return Asset{Unit: unit, Quantity: big.NewInt(quantity)}
}

// Value is a multi-asset bundle: unit -> quantity. It is the in-memory
// representation of the "amount" Cardano outputs carry and the register
// UTxO Selection balances against.
type Value map[string]*big.Int

// NewValue builds a Value from a list of Assets, summing duplicate units.
func NewValue(assets ...Asset) Value {
	v := make(Value, len(assets))
	for _, a := range assets {
		v.addQuantity(a.Unit, a.Quantity)
	}
	return v
}

func (v Value) addQuantity(unit string, qty *big.Int) {
	if existing, ok := v[unit]; ok {
		existing.Add(existing, qty)
		return
	}
	v[unit] = new(big.Int).Set(qty)
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing the receiver's big.Int pointers.
func (v Value) Clone() Value {
	out := make(Value, len(v))
	for unit, qty := range v {
		out[unit] = new(big.Int).Set(qty)
	}
	return out
}

// Lovelace returns the lovelace quantity, or zero if absent.
func (v Value) Lovelace() *big.Int {
	if qty, ok := v[LovelaceUnit]; ok {
		return qty
	}
	return big.NewInt(0)
}

// Add returns a new Value that is the asset-wise sum of v and other.
func (v Value) Add(other Value) Value {
	out := v.Clone()
	for unit, qty := range other {
		out.addQuantity(unit, qty)
	}
	return out
}

// Subtract returns a new Value that is the asset-wise difference v - other.
// Units may go negative; callers that need "required remaining" semantics
// read the sign themselves (see Positive, as used by Select).
func (v Value) Subtract(other Value) Value {
	out := v.Clone()
	for unit, qty := range other {
		out.addQuantity(unit, new(big.Int).Neg(qty))
	}
	return out
}

// IsZero reports whether every unit in v is exactly zero (units present
// with a zero quantity count as zero, matching sum(A) - sum(A) == empty
// from spec.md §8's value-algebra round-trip property).
func (v Value) IsZero() bool {
	for _, qty := range v {
		if qty.Sign() != 0 {
			return false
		}
	}
	return true
}

// Covers reports whether v has, for every unit in required with a
// positive quantity, at least that much. Units required with a
// zero-or-negative quantity are always considered covered.
func (v Value) Covers(required Value) bool {
	for unit, reqQty := range required {
		if reqQty.Sign() <= 0 {
			continue
		}
		have, ok := v[unit]
		if !ok || have.Cmp(reqQty) < 0 {
			return false
		}
	}
	return true
}

// Units returns the value's unit keys in a stable, sorted order — useful
// for deterministic iteration in selection and serialization.
func (v Value) Units() []string {
	units := make([]string, 0, len(v))
	for unit := range v {
		units = append(units, unit)
	}
	sort.Strings(units)
	return units
}

// Positive returns the subset of v whose quantities are strictly greater
// than zero.
func (v Value) Positive() Value {
	out := make(Value, len(v))
	for unit, qty := range v {
		if qty.Sign() > 0 {
			out[unit] = new(big.Int).Set(qty)
		}
	}
	return out
}

// valueOfUTxO returns a UTxO's output amount, cloned so callers can
// mutate it without aliasing the UTxO's own Value.
func valueOfUTxO(u UTxO) Value {
	return u.Output.Amount.Clone()
}
