package calc

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	depositArgs     abi.Arguments
	depositArgsOnce sync.Once
	depositArgsErr  error
)

func depositArguments() (abi.Arguments, error) {
	depositArgsOnce.Do(func() {
		addressType, err := abi.NewType("address", "", nil)
		if err != nil {
			depositArgsErr = fmt.Errorf("address type: %w", err)
			return
		}
		uint256Type, err := abi.NewType("uint256", "", nil)
		if err != nil {
			depositArgsErr = fmt.Errorf("uint256 type: %w", err)
			return
		}
		depositArgs = abi.Arguments{
			{Name: "tokenA", Type: addressType},
			{Name: "tokenB", Type: addressType},
			{Name: "amountA", Type: uint256Type},
			{Name: "amountB", Type: uint256Type},
			{Name: "minAmountAOut", Type: uint256Type},
			{Name: "minAmountBOut", Type: uint256Type},
		}
	})
	return depositArgs, depositArgsErr
}

// EncodeDepositParams packs the six-field deposit tuple into the fixed ABI
// layout the strategy contract expects: two addresses left-padded to 32 bytes
// followed by four big-endian uint256 words. Field order is a compatibility
// contract and must not change.
func EncodeDepositParams(tokenA, tokenB common.Address, amountA, amountB, minAmountAOut, minAmountBOut *big.Int) ([]byte, error) {
	args, err := depositArguments()
	if err != nil {
		return nil, fmt.Errorf("build argument table: %w", err)
	}
	return args.Pack(tokenA, tokenB, amountA, amountB, minAmountAOut, minAmountBOut)
}
