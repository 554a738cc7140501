package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"depositCalc/internal/calc"
	"depositCalc/internal/chain"
	"depositCalc/internal/config"
	"depositCalc/internal/dex"
	"depositCalc/internal/model"
)

type pairInspection struct {
	Pair     string                `json:"pair"`
	Token0   model.TokenMeta       `json:"token0"`
	Token1   model.TokenMeta       `json:"token1"`
	Reserves model.ReserveSnapshot `json:"reserves"`
	Ratio    string                `json:"ratio"`
	Policy   string                `json:"policy"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
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

	inspection, err := inspectPair(ctx, reader, policy)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(inspection, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal inspection: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func inspectPair(ctx context.Context, reader *dex.PairReader, policy calc.RatioPolicy) (*pairInspection, error) {
	token0, err := reader.Token0(ctx)
	if err != nil {
		return nil, fmt.Errorf("token0: %w", err)
	}
	token1, err := reader.Token1(ctx)
	if err != nil {
		return nil, fmt.Errorf("token1: %w", err)
	}

	meta0, err := reader.TokenMeta(ctx, token0)
	if err != nil {
		return nil, fmt.Errorf("token0 metadata: %w", err)
	}
	meta1, err := reader.TokenMeta(ctx, token1)
	if err != nil {
		return nil, fmt.Errorf("token1 metadata: %w", err)
	}

	reserves, err := reader.Reserves(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserves: %w", err)
	}

	ratio, err := calc.ComputeReserveRatio(reserves, meta0.Decimals, meta1.Decimals, policy)
	if err != nil {
		return nil, err
	}

	return &pairInspection{
		Pair:     reader.Address().Hex(),
		Token0:   meta0,
		Token1:   meta1,
		Reserves: reserves,
		Ratio:    ratio.String(),
		Policy:   string(policy),
	}, nil
}
