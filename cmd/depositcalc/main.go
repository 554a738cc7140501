package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "depositcalc",
		Short:        "AMM two-sided deposit parameter calculator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Compute and encode deposit parameters for a pair",
		RunE:  runBuild,
	}

	addPairFlags(buildCmd)
	buildCmd.Flags().String("anchor-token", "", "anchor token address (amount side supplied by the caller)")
	buildCmd.Flags().String("amount", "", "anchor token amount in base units (decimal)")
	buildCmd.Flags().Float64("slippage", 0.01, "slippage tolerance as a fraction in [0,1)")
	buildCmd.Flags().String("audit-out", "", "optional audit JSONL path")
	buildCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for audit records")

	root.AddCommand(buildCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print pair tokens, decimals, reserves and ratio",
		RunE:  runInspect,
	}

	addPairFlags(inspectCmd)

	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPairFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "chain RPC URL")
	cmd.Flags().String("pair", "", "pair contract address")
	cmd.Flags().String("ratio-policy", "legacy-decimal-count", "ratio policy (legacy-decimal-count, pow10-scaling)")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts for chain reads")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
