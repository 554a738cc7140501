package model

// DepositParams is the computed six-field deposit tuple. Amounts are decimal
// strings since they are uint256-class values.
type DepositParams struct {
	Token0        string `json:"token0"`
	Token1        string `json:"token1"`
	Amount0       string `json:"amount0"`
	Amount1       string `json:"amount1"`
	MinAmount0Out string `json:"min_amount0_out"`
	MinAmount1Out string `json:"min_amount1_out"`
	Ratio         string `json:"ratio"`
	Policy        string `json:"policy"`
}
