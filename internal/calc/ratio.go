package calc

import (
	"fmt"
	"math/big"

	"depositCalc/internal/model"
)

// RatioPolicy selects how reserves with differing token precision are
// normalized before the ratio is taken.
type RatioPolicy string

const (
	// PolicyLegacyDecimalCount scales the higher-precision side's counterpart
	// by floor(decimalsHigh/decimalsLow). This divides decimal counts rather
	// than powers of ten and truncates early, reproducing the downstream
	// strategy's historical arithmetic exactly.
	PolicyLegacyDecimalCount RatioPolicy = "legacy-decimal-count"

	// PolicyPowerOfTenScaling scales the lower-precision reserve by
	// 10^|decimals0-decimals1| and truncates only at the final division.
	PolicyPowerOfTenScaling RatioPolicy = "pow10-scaling"
)

// ParseRatioPolicy validates a policy name from config.
func ParseRatioPolicy(name string) (RatioPolicy, error) {
	switch RatioPolicy(name) {
	case PolicyLegacyDecimalCount, PolicyPowerOfTenScaling:
		return RatioPolicy(name), nil
	default:
		return "", fmt.Errorf("unknown ratio policy %q", name)
	}
}

var hundred = big.NewInt(100)

// ComputeReserveRatio returns the decimal-normalized reserve ratio expressed
// as units of token0 per 100 units of token1. All arithmetic is on big.Int;
// division truncates toward zero.
func ComputeReserveRatio(reserves model.ReserveSnapshot, decimals0, decimals1 uint8, policy RatioPolicy) (*big.Int, error) {
	if reserves.Reserve0 == nil || reserves.Reserve1 == nil ||
		reserves.Reserve0.Sign() <= 0 || reserves.Reserve1.Sign() <= 0 {
		return nil, ErrDegenerateReserves
	}

	var (
		ratio *big.Int
		err   error
	)
	switch policy {
	case PolicyLegacyDecimalCount:
		ratio, err = legacyCountRatio(reserves.Reserve0, reserves.Reserve1, decimals0, decimals1)
	case PolicyPowerOfTenScaling:
		ratio = powerOfTenRatio(reserves.Reserve0, reserves.Reserve1, decimals0, decimals1)
	default:
		err = fmt.Errorf("unknown ratio policy %q", policy)
	}
	if err != nil {
		return nil, err
	}

	if ratio.Sign() == 0 {
		return nil, ErrRatioTruncatedToZero
	}
	return ratio, nil
}

func legacyCountRatio(reserve0, reserve1 *big.Int, decimals0, decimals1 uint8) (*big.Int, error) {
	switch {
	case decimals0 == decimals1:
		ratio := new(big.Int).Quo(reserve0, reserve1)
		return ratio.Mul(ratio, hundred), nil
	case decimals0 > decimals1:
		if decimals1 == 0 {
			return nil, fmt.Errorf("legacy ratio policy requires nonzero token decimals")
		}
		adjust := big.NewInt(int64(decimals0 / decimals1))
		scaled := new(big.Int).Mul(adjust, reserve1)
		ratio := new(big.Int).Quo(reserve0, scaled)
		return ratio.Mul(ratio, hundred), nil
	default:
		if decimals0 == 0 {
			return nil, fmt.Errorf("legacy ratio policy requires nonzero token decimals")
		}
		adjust := big.NewInt(int64(decimals1 / decimals0))
		scaled := new(big.Int).Mul(adjust, reserve0)
		ratio := new(big.Int).Quo(scaled, reserve1)
		return ratio.Mul(ratio, hundred), nil
	}
}

func powerOfTenRatio(reserve0, reserve1 *big.Int, decimals0, decimals1 uint8) *big.Int {
	scaled0 := new(big.Int).Set(reserve0)
	scaled1 := new(big.Int).Set(reserve1)
	switch {
	case decimals0 > decimals1:
		scaled1.Mul(scaled1, powerOfTen(decimals0-decimals1))
	case decimals1 > decimals0:
		scaled0.Mul(scaled0, powerOfTen(decimals1-decimals0))
	}

	ratio := new(big.Int).Mul(scaled0, hundred)
	return ratio.Quo(ratio, scaled1)
}

func powerOfTen(exp uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}
