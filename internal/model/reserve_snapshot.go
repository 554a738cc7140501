package model

import (
	"encoding/json"
	"math/big"
)

// ReserveSnapshot holds both pair reserves captured from a single getReserves
// call, so they describe the same pool state instant.
type ReserveSnapshot struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// MarshalJSON renders reserves as decimal strings.
func (s ReserveSnapshot) MarshalJSON() ([]byte, error) {
	out := struct {
		Reserve0 string `json:"reserve0"`
		Reserve1 string `json:"reserve1"`
	}{}
	if s.Reserve0 != nil {
		out.Reserve0 = s.Reserve0.String()
	}
	if s.Reserve1 != nil {
		out.Reserve1 = s.Reserve1.String()
	}
	return json.Marshal(out)
}
