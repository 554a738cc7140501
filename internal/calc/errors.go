package calc

import "errors"

var (
	// ErrDegenerateReserves marks a pool with a zero reserve on either side;
	// the reserve ratio is undefined for such a pool.
	ErrDegenerateReserves = errors.New("pool has a zero reserve")

	// ErrRatioTruncatedToZero marks a reserve pair whose integer ratio rounds
	// to zero, which would make the amount derivation divide by zero.
	ErrRatioTruncatedToZero = errors.New("reserve ratio truncated to zero")

	// ErrAnchorNotInPair marks a configured anchor token that matches neither
	// side of the pair. Misconfiguration, never defaulted.
	ErrAnchorNotInPair = errors.New("anchor token is not part of the pair")
)
