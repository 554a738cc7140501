package dex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"depositCalc/internal/model"
)

// ErrPairUnbound is returned when a reader is constructed without a pair
// address. The reader cannot exist in an unbound state, so this only guards
// programmer error at the call site.
var ErrPairUnbound = errors.New("pair address is not bound")

// ContractCaller is the read-only chain access the reader needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// PairReader reads token identities, token decimals and reserves from a
// V2-style pair contract. It performs no retries and caches nothing; each
// method is one or more eth_calls against the latest block.
type PairReader struct {
	caller ContractCaller
	pair   common.Address
	logger *zap.Logger
}

// NewPairReader builds a reader bound to the given pair contract.
func NewPairReader(caller ContractCaller, pair common.Address, logger *zap.Logger) (*PairReader, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is required")
	}
	if pair == (common.Address{}) {
		return nil, ErrPairUnbound
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PairReader{caller: caller, pair: pair, logger: logger}, nil
}

// Address returns the bound pair address.
func (r *PairReader) Address() common.Address {
	return r.pair
}

// Token0 returns the pair's first token address.
func (r *PairReader) Token0(ctx context.Context) (common.Address, error) {
	return r.tokenAddress(ctx, "token0")
}

// Token1 returns the pair's second token address.
func (r *PairReader) Token1(ctx context.Context) (common.Address, error) {
	return r.tokenAddress(ctx, "token1")
}

func (r *PairReader) tokenAddress(ctx context.Context, method string) (common.Address, error) {
	parsed, err := PairABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse pair abi: %w", err)
	}
	values, err := r.call(ctx, r.pair, parsed, method)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", method, err)
	}
	return addr, nil
}

// Decimals queries the decimals of an arbitrary token. Token identity is only
// known once the pair has been queried, so callers resolve the address first.
func (r *PairReader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	parsed, err := erc20StringABIInstance()
	if err != nil {
		return 0, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := r.call(ctx, token, parsed, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return 0, fmt.Errorf("decimals: %w", err)
	}
	return decimals, nil
}

// Reserves captures both reserves from a single getReserves call so the
// snapshot describes one pool state instant.
func (r *PairReader) Reserves(ctx context.Context) (model.ReserveSnapshot, error) {
	parsed, err := PairABI()
	if err != nil {
		return model.ReserveSnapshot{}, fmt.Errorf("parse pair abi: %w", err)
	}
	values, err := r.call(ctx, r.pair, parsed, "getReserves")
	if err != nil {
		return model.ReserveSnapshot{}, err
	}
	if len(values) < 2 {
		return model.ReserveSnapshot{}, fmt.Errorf("getReserves: expected at least 2 outputs, got %d", len(values))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return model.ReserveSnapshot{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return model.ReserveSnapshot{}, fmt.Errorf("reserve1: %w", err)
	}
	return model.ReserveSnapshot{Reserve0: reserve0, Reserve1: reserve1}, nil
}

// TokenMeta loads decimals, symbol and name for a token. Symbol and name are
// best effort: some tokens return bytes32, some revert, neither is fatal.
func (r *PairReader) TokenMeta(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex()}

	decimals, err := r.Decimals(ctx, token)
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals

	stringABI, err := erc20StringABIInstance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20Bytes32ABIInstance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	if values, err := r.call(ctx, token, stringABI, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := r.call(ctx, token, bytes32ABI, "symbol"); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else {
		r.logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := r.call(ctx, token, stringABI, "name"); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := r.call(ctx, token, bytes32ABI, "name"); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else {
		r.logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta, nil
}

func (r *PairReader) call(ctx context.Context, to common.Address, parsed abi.ABI, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("call %s: empty result", method)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
