package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"depositCalc/internal/calc"
	"depositCalc/internal/chain"
	"depositCalc/internal/config"
	"depositCalc/internal/dex"
	"depositCalc/internal/model"
	"depositCalc/internal/storage"
	"depositCalc/internal/storage/postgres"
)

func runBuild(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	pair, err := parseAddress(cfg.Pair, "pair")
	if err != nil {
		return err
	}
	anchor, err := parseAddress(cfg.AnchorToken, "anchor-token")
	if err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(cfg.Amount, 10)
	if !ok || cfg.Amount == "" {
		return fmt.Errorf("amount must be a decimal integer: %q", cfg.Amount)
	}
	policy, err := calc.ParseRatioPolicy(cfg.RatioPolicy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, chain.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.RetryBackoff,
	})
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reader, err := dex.NewPairReader(chainClient, pair, logger)
	if err != nil {
		return err
	}

	calculator, err := calc.New(calc.Config{
		AnchorToken:       anchor,
		FixedAmount:       amount,
		SlippageTolerance: cfg.SlippageTolerance,
		Policy:            policy,
	}, reader, logger)
	if err != nil {
		return err
	}

	logger.Info("build start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pair", pair.Hex()),
		zap.String("anchor_token", anchor.Hex()),
		zap.String("amount", amount.String()),
		zap.Float64("slippage", cfg.SlippageTolerance),
		zap.String("ratio_policy", string(policy)),
		zap.String("audit_out", cfg.AuditOut),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	result, err := calculator.BuildParams(ctx)
	if err != nil {
		return err
	}

	if err := writeAudit(ctx, cfg, chainClient, pair, anchor, result, logger); err != nil {
		return err
	}

	fmt.Println(hexutil.Encode(result.Encoded))
	return nil
}

func writeAudit(
	ctx context.Context,
	cfg config.Config,
	chainClient *chain.Client,
	pair common.Address,
	anchor common.Address,
	result *calc.Result,
	logger *zap.Logger,
) error {
	var sinks []storage.Storage
	if cfg.AuditOut != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.AuditOut))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure audit schema: %w", err)
		}
		sinks = append(sinks, store)
	}
	if len(sinks) == 0 {
		return nil
	}

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	blockNumber, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("block number: %w", err)
	}
	blockTimestamp, err := chainClient.BlockTimestamp(ctx, blockNumber)
	if err != nil {
		return fmt.Errorf("block timestamp: %w", err)
	}

	record := model.AuditRecord{
		ChainID:        chainID.Uint64(),
		BlockNumber:    blockNumber,
		BlockTimestamp: blockTimestamp,
		PairAddress:    pair.Hex(),
		AnchorToken:    anchor.Hex(),
		Params:         result.Params,
		EncodedHex:     hexutil.Encode(result.Encoded),
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	for _, sink := range sinks {
		if err := sink.PutAuditRecord(ctx, record); err != nil {
			return fmt.Errorf("write audit record: %w", err)
		}
	}

	logger.Info("audit recorded",
		zap.Uint64("chain_id", record.ChainID),
		zap.Uint64("block_number", record.BlockNumber),
		zap.Int("sinks", len(sinks)),
	)
	return nil
}

func parseAddress(value, flag string) (common.Address, error) {
	if value == "" {
		return common.Address{}, fmt.Errorf("%s address is required", flag)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", flag, value)
	}
	return common.HexToAddress(value), nil
}
