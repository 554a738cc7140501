package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

var (
	pairAddr   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	token0Addr = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	token1Addr = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type stubCall struct {
	to       common.Address
	selector string
}

type stubCaller struct {
	responses map[stubCall][]byte
	errs      map[stubCall]error
	calls     []stubCall
}

func newStubCaller() *stubCaller {
	return &stubCaller{
		responses: make(map[stubCall][]byte),
		errs:      make(map[stubCall]error),
	}
}

func (s *stubCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	key := stubCall{to: *msg.To, selector: hexutil.Encode(msg.Data[:4])}
	s.calls = append(s.calls, key)
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	resp, ok := s.responses[key]
	if !ok {
		return nil, fmt.Errorf("unexpected call %s to %s", key.selector, key.to.Hex())
	}
	return resp, nil
}

func (s *stubCaller) countCalls(key stubCall) int {
	count := 0
	for _, call := range s.calls {
		if call == key {
			count++
		}
	}
	return count
}

func pairSelector(t *testing.T, method string) string {
	t.Helper()
	parsed, err := PairABI()
	if err != nil {
		t.Fatalf("pair abi: %v", err)
	}
	return hexutil.Encode(parsed.Methods[method].ID)
}

func erc20Selector(t *testing.T, method string) string {
	t.Helper()
	parsed, err := erc20StringABIInstance()
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}
	return hexutil.Encode(parsed.Methods[method].ID)
}

func packPairOutput(t *testing.T, method string, values ...interface{}) []byte {
	t.Helper()
	parsed, err := PairABI()
	if err != nil {
		t.Fatalf("pair abi: %v", err)
	}
	data, err := parsed.Methods[method].Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack %s output: %v", method, err)
	}
	return data
}

func packERC20StringOutput(t *testing.T, method string, values ...interface{}) []byte {
	t.Helper()
	parsed, err := erc20StringABIInstance()
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}
	data, err := parsed.Methods[method].Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack %s output: %v", method, err)
	}
	return data
}

func packERC20Bytes32Output(t *testing.T, method string, value string) []byte {
	t.Helper()
	parsed, err := erc20Bytes32ABIInstance()
	if err != nil {
		t.Fatalf("erc20 bytes32 abi: %v", err)
	}
	var word [32]byte
	copy(word[:], value)
	data, err := parsed.Methods[method].Outputs.Pack(word)
	if err != nil {
		t.Fatalf("pack %s output: %v", method, err)
	}
	return data
}

func newStubPair(t *testing.T) *stubCaller {
	t.Helper()
	caller := newStubCaller()
	caller.responses[stubCall{pairAddr, pairSelector(t, "token0")}] = packPairOutput(t, "token0", token0Addr)
	caller.responses[stubCall{pairAddr, pairSelector(t, "token1")}] = packPairOutput(t, "token1", token1Addr)
	caller.responses[stubCall{pairAddr, pairSelector(t, "getReserves")}] =
		packPairOutput(t, "getReserves", big.NewInt(1000), big.NewInt(500), uint32(1700000000))
	caller.responses[stubCall{token0Addr, erc20Selector(t, "decimals")}] = packERC20StringOutput(t, "decimals", uint8(18))
	caller.responses[stubCall{token1Addr, erc20Selector(t, "decimals")}] = packERC20StringOutput(t, "decimals", uint8(6))
	return caller
}

func newTestReader(t *testing.T, caller ContractCaller) *PairReader {
	t.Helper()
	reader, err := NewPairReader(caller, pairAddr, zap.NewNop())
	if err != nil {
		t.Fatalf("new pair reader: %v", err)
	}
	return reader
}

func TestNewPairReaderValidation(t *testing.T) {
	if _, err := NewPairReader(newStubCaller(), common.Address{}, zap.NewNop()); !errors.Is(err, ErrPairUnbound) {
		t.Fatalf("got %v, want ErrPairUnbound", err)
	}
	if _, err := NewPairReader(nil, pairAddr, zap.NewNop()); err == nil {
		t.Fatalf("expected error for nil caller")
	}
}

func TestPairReaderTokens(t *testing.T) {
	reader := newTestReader(t, newStubPair(t))

	token0, err := reader.Token0(context.Background())
	if err != nil {
		t.Fatalf("token0: %v", err)
	}
	if token0 != token0Addr {
		t.Fatalf("token0 mismatch: %s", token0.Hex())
	}

	token1, err := reader.Token1(context.Background())
	if err != nil {
		t.Fatalf("token1: %v", err)
	}
	if token1 != token1Addr {
		t.Fatalf("token1 mismatch: %s", token1.Hex())
	}
}

func TestPairReaderDecimalsTwoHop(t *testing.T) {
	caller := newStubPair(t)
	reader := newTestReader(t, caller)

	// token identity must come from the pair before decimals can be queried
	token0, err := reader.Token0(context.Background())
	if err != nil {
		t.Fatalf("token0: %v", err)
	}
	decimals, err := reader.Decimals(context.Background(), token0)
	if err != nil {
		t.Fatalf("decimals: %v", err)
	}
	if decimals != 18 {
		t.Fatalf("decimals mismatch: %d", decimals)
	}

	if got := caller.countCalls(stubCall{token0Addr, erc20Selector(t, "decimals")}); got != 1 {
		t.Fatalf("decimals call count mismatch: %d", got)
	}
}

func TestPairReaderReservesSnapshot(t *testing.T) {
	caller := newStubPair(t)
	reader := newTestReader(t, caller)

	reserves, err := reader.Reserves(context.Background())
	if err != nil {
		t.Fatalf("reserves: %v", err)
	}
	if reserves.Reserve0.String() != "1000" || reserves.Reserve1.String() != "500" {
		t.Fatalf("reserves mismatch: %s/%s", reserves.Reserve0, reserves.Reserve1)
	}

	// both reserves must come from one getReserves call
	if got := caller.countCalls(stubCall{pairAddr, pairSelector(t, "getReserves")}); got != 1 {
		t.Fatalf("getReserves call count mismatch: %d", got)
	}
}

func TestPairReaderReadFailure(t *testing.T) {
	errRemote := errors.New("rpc unavailable")
	caller := newStubPair(t)
	caller.errs[stubCall{pairAddr, pairSelector(t, "token0")}] = errRemote
	reader := newTestReader(t, caller)

	if _, err := reader.Token0(context.Background()); !errors.Is(err, errRemote) {
		t.Fatalf("got %v, want wrapped remote error", err)
	}
}

func TestPairReaderTokenMeta(t *testing.T) {
	caller := newStubPair(t)
	caller.responses[stubCall{token0Addr, erc20Selector(t, "symbol")}] = packERC20StringOutput(t, "symbol", "WETH")
	caller.responses[stubCall{token0Addr, erc20Selector(t, "name")}] = packERC20StringOutput(t, "name", "Wrapped Ether")
	reader := newTestReader(t, caller)

	meta, err := reader.TokenMeta(context.Background(), token0Addr)
	if err != nil {
		t.Fatalf("token meta: %v", err)
	}
	if meta.Address != token0Addr.Hex() || meta.Decimals != 18 {
		t.Fatalf("meta mismatch: %+v", meta)
	}
	if meta.Symbol != "WETH" || meta.Name != "Wrapped Ether" {
		t.Fatalf("symbol/name mismatch: %+v", meta)
	}
}

func TestPairReaderTokenMetaBytes32Fallback(t *testing.T) {
	caller := newStubPair(t)
	// bytes32-returning token: the string decode fails, the bytes32 retry succeeds
	caller.responses[stubCall{token1Addr, erc20Selector(t, "symbol")}] = packERC20Bytes32Output(t, "symbol", "MKR")
	caller.responses[stubCall{token1Addr, erc20Selector(t, "name")}] = packERC20Bytes32Output(t, "name", "Maker")
	reader := newTestReader(t, caller)

	meta, err := reader.TokenMeta(context.Background(), token1Addr)
	if err != nil {
		t.Fatalf("token meta: %v", err)
	}
	if meta.Symbol != "MKR" || meta.Name != "Maker" {
		t.Fatalf("bytes32 symbol/name mismatch: %+v", meta)
	}
	if meta.Decimals != 6 {
		t.Fatalf("decimals mismatch: %d", meta.Decimals)
	}
}
