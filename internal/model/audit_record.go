package model

// AuditRecord captures one parameter calculation for post-trade review.
type AuditRecord struct {
	ChainID        uint64        `json:"chain_id"`
	BlockNumber    uint64        `json:"block_number"`
	BlockTimestamp uint64        `json:"block_timestamp"`
	PairAddress    string        `json:"pair_address"`
	AnchorToken    string        `json:"anchor_token"`
	Params         DepositParams `json:"params"`
	EncodedHex     string        `json:"encoded_hex"`
	CreatedAt      string        `json:"created_at"`
}
