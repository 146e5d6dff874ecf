package mesh

import (
	"bytes"
	"encoding/json"
	"math/big"
)

// marshalBigJSON stringifies value the way transaction metadata needs:
// every json.Number and every *big.Int/big.Int encountered is rendered
// as a bare (unquoted) decimal literal rather than round-tripped through
// float64, so on-chain integers wider than 2^53 survive intact. No
// third-party JSON library in the retrieved corpus offers big-integer-safe
// encoding (encoding/json's own Number type only helps on decode), so
// this one function is hand-rolled against the standard library; see
// DESIGN.md.
func marshalBigJSON(value any) (string, error) {
	normalized, err := normalizeBigJSON(value)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// rawBigInt marshals to its decimal digits with no surrounding quotes.
type rawBigInt struct{ v *big.Int }

func (r rawBigInt) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(r.v.String())
	return buf.Bytes(), nil
}

func normalizeBigJSON(value any) (any, error) {
	switch v := value.(type) {
	case *big.Int:
		return rawBigInt{v}, nil
	case big.Int:
		return rawBigInt{&v}, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			norm, err := normalizeBigJSON(item)
			if err != nil {
				return nil, err
			}
			out[k] = norm
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			norm, err := normalizeBigJSON(item)
			if err != nil {
				return nil, err
			}
			out[i] = norm
		}
		return out, nil
	default:
		return v, nil
	}
}
