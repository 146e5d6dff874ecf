package mesh

import (
	"math/big"
	"sort"
)

// Select runs the configured strategy over pool to cover required
// (after padding lovelace by cfg.Threshold), returning the UTxOs to
// append as PubKey inputs in selection order (spec.md §4.2).
//
// Regardless of strategy, Select only ever returns success when the
// chosen UTxOs actually cover every positive-required unit (spec.md §8
// invariant 4) — keepRelevant's documented fall-through quirk (see
// DESIGN.md) means its own pass can under-cover a non-ADA requirement,
// so every strategy's result is checked against required before
// returning, and a strategy that under-covers reports SelectionError
// rather than silently shipping an insufficient input set.
func Select(pool []UTxO, required Value, cfg SelectionConfig) ([]UTxO, error) {
	threshold := cfg.Threshold
	if threshold == nil {
		threshold = big.NewInt(0)
	}
	padded := required.Clone()
	padded.addQuantity(LovelaceUnit, threshold)
	padded = padded.Positive()

	if len(padded) == 0 {
		return nil, nil
	}

	strategyName, selected, err := dispatchSelection(pool, padded, cfg.Strategy)
	if err != nil {
		return nil, err
	}

	covered := make(Value)
	for _, u := range selected {
		covered = covered.Add(valueOfUTxO(u))
	}
	for _, unit := range padded.Units() {
		need := padded[unit]
		have, ok := covered[unit]
		if need.Sign() <= 0 {
			continue
		}
		if !ok || have.Cmp(need) < 0 {
			haveStr := "0"
			if ok {
				haveStr = have.String()
			}
			return nil, selectionErr(strategyName, unit, need.String(), haveStr)
		}
	}

	return selected, nil
}

func dispatchSelection(pool []UTxO, required Value, strategy SelectionStrategy) (string, []UTxO, error) {
	switch strategy {
	case SelectionLargestFirst:
		sel, err := selectLargestFirst(pool, required)
		return "largestFirst", sel, err
	case SelectionLargestFirstMultiAsset:
		sel, err := selectLargestFirstMultiAsset(pool, required)
		return "largestFirstMultiAsset", sel, err
	case SelectionKeepRelevant:
		sel, err := selectKeepRelevant(pool, required)
		return "keepRelevant", sel, err
	default:
		sel, err := selectExperimental(pool, required)
		return "experimental", sel, err
	}
}

// selectLargestFirst only considers lovelace: sort candidates by
// lovelace quantity descending (stable, so ties resolve by original pool
// order) and consume until the lovelace requirement is met.
func selectLargestFirst(pool []UTxO, required Value) ([]UTxO, error) {
	needed := new(big.Int).Set(required.Lovelace())
	if needed.Sign() <= 0 {
		return nil, nil
	}

	ordered := sortedByUnitDesc(pool, LovelaceUnit)
	var selected []UTxO
	for _, u := range ordered {
		if needed.Sign() <= 0 {
			break
		}
		selected = append(selected, u)
		needed.Sub(needed, lovelaceOf(u))
	}
	if needed.Sign() > 0 {
		return nil, selectionErr("largestFirst", LovelaceUnit, required.Lovelace().String(), sumLovelace(pool).String())
	}
	return selected, nil
}

// selectLargestFirstMultiAsset handles each non-ADA unit with a positive
// requirement first (sorted by that unit's quantity descending), then
// lovelace last. Each selected UTxO reduces the requirement across all
// of its contained units, not just the unit being targeted.
func selectLargestFirstMultiAsset(pool []UTxO, required Value) ([]UTxO, error) {
	remaining := required.Clone()
	available := append([]UTxO(nil), pool...)
	chosen := make(map[string]struct{})
	var selected []UTxO

	take := func(u UTxO) {
		chosen[u.ID()] = struct{}{}
		selected = append(selected, u)
		remaining = remaining.Subtract(valueOfUTxO(u))
	}

	for _, unit := range required.Units() {
		if unit == LovelaceUnit {
			continue
		}
		if remaining[unit] == nil || remaining[unit].Sign() <= 0 {
			continue
		}
		ordered := sortedByUnitDesc(unchosen(available, chosen), unit)
		for _, u := range ordered {
			if remaining[unit] == nil || remaining[unit].Sign() <= 0 {
				break
			}
			take(u)
		}
	}

	if remaining.Lovelace().Sign() > 0 {
		ordered := sortedByUnitDesc(unchosen(available, chosen), LovelaceUnit)
		for _, u := range ordered {
			if remaining.Lovelace().Sign() <= 0 {
				break
			}
			take(u)
		}
	}

	return selected, nil
}

// selectKeepRelevant prefilters the pool to UTxOs carrying any
// non-lovelace unit that is actually required, then runs a largest-first
// lovelace pass that consumes the prefiltered set (largest first) before
// the rest of the pool (largest first). This mirrors the source's documented fall-through: it does not
// independently re-check non-ADA coverage, which is why Select always
// re-verifies coverage afterward.
func selectKeepRelevant(pool []UTxO, required Value) ([]UTxO, error) {
	relevantUnits := make(map[string]struct{})
	for unit, qty := range required {
		if unit != LovelaceUnit && qty.Sign() > 0 {
			relevantUnits[unit] = struct{}{}
		}
	}

	var relevant, rest []UTxO
	for _, u := range pool {
		if utxoHasAnyUnit(u, relevantUnits) {
			relevant = append(relevant, u)
		} else {
			rest = append(rest, u)
		}
	}

	ordered := append(sortedByUnitDesc(relevant, LovelaceUnit), sortedByUnitDesc(rest, LovelaceUnit)...)
	needed := new(big.Int).Set(required.Lovelace())
	var selected []UTxO
	for _, u := range ordered {
		if needed.Sign() <= 0 {
			break
		}
		selected = append(selected, u)
		needed.Sub(needed, lovelaceOf(u))
	}
	if needed.Sign() > 0 {
		return nil, selectionErr("keepRelevant", LovelaceUnit, required.Lovelace().String(), sumLovelace(pool).String())
	}
	return selected, nil
}

// selectExperimental is a multi-pass selector: it processes required
// units from least-available-in-pool to most-available, preferring a
// single UTxO that fully covers each unit (picking the smallest such
// UTxO to minimize overshoot) and falling back to a largest-first sweep
// when no single UTxO covers the unit. The goal is a small input count.
func selectExperimental(pool []UTxO, required Value) ([]UTxO, error) {
	remaining := required.Clone()
	chosen := make(map[string]struct{})
	var selected []UTxO

	take := func(u UTxO) {
		chosen[u.ID()] = struct{}{}
		selected = append(selected, u)
		remaining = remaining.Subtract(valueOfUTxO(u))
	}

	units := required.Units()
	sort.Slice(units, func(i, j int) bool {
		return totalAvailable(pool, units[i]).Cmp(totalAvailable(pool, units[j])) < 0
	})

	for _, unit := range units {
		for remaining[unit] != nil && remaining[unit].Sign() > 0 {
			candidates := unchosen(pool, chosen)
			best, ok := smallestCovering(candidates, unit, remaining[unit])
			if ok {
				take(best)
				continue
			}
			ordered := sortedByUnitDesc(candidates, unit)
			progressed := false
			for _, u := range ordered {
				if remaining[unit] == nil || remaining[unit].Sign() <= 0 {
					break
				}
				take(u)
				progressed = true
			}
			if !progressed {
				break
			}
		}
	}

	if remaining.Lovelace().Sign() > 0 {
		candidates := unchosen(pool, chosen)
		best, ok := smallestCovering(candidates, LovelaceUnit, remaining.Lovelace())
		if ok {
			take(best)
		} else {
			ordered := sortedByUnitDesc(candidates, LovelaceUnit)
			for _, u := range ordered {
				if remaining.Lovelace().Sign() <= 0 {
					break
				}
				take(u)
			}
		}
	}

	return selected, nil
}

// --- shared helpers ---

func lovelaceOf(u UTxO) *big.Int {
	if qty, ok := u.Output.Amount[LovelaceUnit]; ok {
		return qty
	}
	return big.NewInt(0)
}

func unitOf(u UTxO, unit string) *big.Int {
	if qty, ok := u.Output.Amount[unit]; ok {
		return qty
	}
	return big.NewInt(0)
}

func sortedByUnitDesc(pool []UTxO, unit string) []UTxO {
	ordered := append([]UTxO(nil), pool...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return unitOf(ordered[i], unit).Cmp(unitOf(ordered[j], unit)) > 0
	})
	return ordered
}

func totalAvailable(pool []UTxO, unit string) *big.Int {
	total := big.NewInt(0)
	for _, u := range pool {
		total.Add(total, unitOf(u, unit))
	}
	return total
}

func sumLovelace(pool []UTxO) *big.Int {
	return totalAvailable(pool, LovelaceUnit)
}

func unchosen(pool []UTxO, chosen map[string]struct{}) []UTxO {
	out := make([]UTxO, 0, len(pool))
	for _, u := range pool {
		if _, ok := chosen[u.ID()]; !ok {
			out = append(out, u)
		}
	}
	return out
}

func utxoHasAnyUnit(u UTxO, units map[string]struct{}) bool {
	for unit, qty := range u.Output.Amount {
		if qty.Sign() <= 0 {
			continue
		}
		if _, ok := units[unit]; ok {
			return true
		}
	}
	return false
}

// smallestCovering returns the smallest-by-unit-quantity UTxO in pool
// that alone covers need for unit, if one exists.
func smallestCovering(pool []UTxO, unit string, need *big.Int) (UTxO, bool) {
	var best UTxO
	var bestQty *big.Int
	found := false
	for _, u := range pool {
		qty := unitOf(u, unit)
		if qty.Cmp(need) < 0 {
			continue
		}
		if !found || qty.Cmp(bestQty) < 0 {
			best, bestQty, found = u, qty, true
		}
	}
	return best, found
}
