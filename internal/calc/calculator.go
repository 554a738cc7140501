package calc

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"depositCalc/internal/model"
)

// PoolReader supplies the pair reads the calculator depends on.
type PoolReader interface {
	Token0(ctx context.Context) (common.Address, error)
	Token1(ctx context.Context) (common.Address, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	Reserves(ctx context.Context) (model.ReserveSnapshot, error)
}

// Config fixes the inputs of a calculation. The anchor token's amount is
// supplied by the caller; the opposite side is always derived.
type Config struct {
	AnchorToken       common.Address
	FixedAmount       *big.Int
	SlippageTolerance float64
	Policy            RatioPolicy
}

// Calculator derives a matched two-sided deposit from a single-token amount
// and encodes it for the strategy contract. It is fully validated at
// construction and holds no mutable state across calls.
type Calculator struct {
	reader         PoolReader
	anchor         common.Address
	fixedAmount    *big.Int
	slippageFactor *big.Int
	policy         RatioPolicy
	logger         *zap.Logger
}

// Result carries the derived deposit amounts and their encoded form.
type Result struct {
	Params  model.DepositParams
	Encoded []byte
}

// New validates the configuration and builds a calculator.
func New(cfg Config, reader PoolReader, logger *zap.Logger) (*Calculator, error) {
	if reader == nil {
		return nil, fmt.Errorf("pool reader is required")
	}
	if cfg.AnchorToken == (common.Address{}) {
		return nil, fmt.Errorf("anchor token address is required")
	}
	if cfg.FixedAmount == nil || cfg.FixedAmount.Sign() <= 0 {
		return nil, fmt.Errorf("fixed amount must be a positive integer")
	}
	if cfg.SlippageTolerance < 0 || cfg.SlippageTolerance >= 1 {
		return nil, fmt.Errorf("slippage tolerance must be in [0,1): %v", cfg.SlippageTolerance)
	}
	if _, err := ParseRatioPolicy(string(cfg.Policy)); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Calculator{
		reader:         reader,
		anchor:         cfg.AnchorToken,
		fixedAmount:    new(big.Int).Set(cfg.FixedAmount),
		slippageFactor: big.NewInt(int64(math.Floor((1 - cfg.SlippageTolerance) * 100))),
		policy:         cfg.Policy,
		logger:         logger,
	}, nil
}

// BuildParams runs one full calculation: read pair state, derive both deposit
// amounts and their slippage-bounded minimums, and ABI-encode the result.
// Each invocation is an independent pipeline; a failed read aborts the whole
// call with no partial output.
func (c *Calculator) BuildParams(ctx context.Context) (*Result, error) {
	var (
		token0, token1       common.Address
		decimals0, decimals1 uint8
		snapshot             model.ReserveSnapshot
	)

	// Address before decimals within each token, everything else in parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr, err := c.reader.Token0(gctx)
		if err != nil {
			return fmt.Errorf("token0: %w", err)
		}
		decimals, err := c.reader.Decimals(gctx, addr)
		if err != nil {
			return fmt.Errorf("token0 decimals: %w", err)
		}
		token0, decimals0 = addr, decimals
		return nil
	})
	g.Go(func() error {
		addr, err := c.reader.Token1(gctx)
		if err != nil {
			return fmt.Errorf("token1: %w", err)
		}
		decimals, err := c.reader.Decimals(gctx, addr)
		if err != nil {
			return fmt.Errorf("token1 decimals: %w", err)
		}
		token1, decimals1 = addr, decimals
		return nil
	})
	g.Go(func() error {
		reserves, err := c.reader.Reserves(gctx)
		if err != nil {
			return fmt.Errorf("reserves: %w", err)
		}
		snapshot = reserves
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ratio, err := ComputeReserveRatio(snapshot, decimals0, decimals1, c.policy)
	if err != nil {
		return nil, err
	}

	var amount0, amount1 *big.Int
	switch c.anchor {
	case token0:
		amount0 = new(big.Int).Set(c.fixedAmount)
		amount1 = deriveFromToken0(amount0, ratio)
	case token1:
		amount1 = new(big.Int).Set(c.fixedAmount)
		amount0 = deriveFromToken1(amount1, ratio)
	default:
		return nil, fmt.Errorf("%w: anchor %s, pair %s/%s",
			ErrAnchorNotInPair, c.anchor.Hex(), token0.Hex(), token1.Hex())
	}

	minAmount0 := minOut(amount0, c.slippageFactor)
	minAmount1 := minOut(amount1, c.slippageFactor)

	encoded, err := EncodeDepositParams(token0, token1, amount0, amount1, minAmount0, minAmount1)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	c.logger.Debug("deposit params computed",
		zap.String("token0", token0.Hex()),
		zap.String("token1", token1.Hex()),
		zap.String("amount0", amount0.String()),
		zap.String("amount1", amount1.String()),
		zap.String("min_amount0_out", minAmount0.String()),
		zap.String("min_amount1_out", minAmount1.String()),
		zap.String("ratio", ratio.String()),
		zap.String("policy", string(c.policy)),
	)

	return &Result{
		Params: model.DepositParams{
			Token0:        token0.Hex(),
			Token1:        token1.Hex(),
			Amount0:       amount0.String(),
			Amount1:       amount1.String(),
			MinAmount0Out: minAmount0.String(),
			MinAmount1Out: minAmount1.String(),
			Ratio:         ratio.String(),
			Policy:        string(c.policy),
		},
		Encoded: encoded,
	}, nil
}

// SlippageFactor exposes the precomputed percentage multiplier, mostly for
// logging and audit records.
func (c *Calculator) SlippageFactor() *big.Int {
	return new(big.Int).Set(c.slippageFactor)
}

// deriveFromToken0 converts a token0 amount into its token1 counterpart:
// amount1 = floor(amount0 * 100 / ratio).
func deriveFromToken0(amount0, ratio *big.Int) *big.Int {
	amount1 := new(big.Int).Mul(amount0, hundred)
	return amount1.Quo(amount1, ratio)
}

// deriveFromToken1 converts a token1 amount into its token0 counterpart:
// amount0 = floor(amount1 * ratio / 100).
func deriveFromToken1(amount1, ratio *big.Int) *big.Int {
	amount0 := new(big.Int).Mul(amount1, ratio)
	return amount0.Quo(amount0, hundred)
}

func minOut(amount, slippageFactor *big.Int) *big.Int {
	out := new(big.Int).Mul(amount, slippageFactor)
	return out.Quo(out, hundred)
}
