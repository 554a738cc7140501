package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"depositCalc/internal/model"
)

// Store provides Postgres persistence for audit records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS deposit_audit (
			id BIGSERIAL PRIMARY KEY,
			chain_id BIGINT NOT NULL,
			block_number BIGINT NOT NULL,
			block_timestamp BIGINT NOT NULL,
			pair_address TEXT NOT NULL,
			anchor_token TEXT NOT NULL,
			token0 TEXT NOT NULL,
			token1 TEXT NOT NULL,
			amount0 NUMERIC NOT NULL,
			amount1 NUMERIC NOT NULL,
			min_amount0_out NUMERIC NOT NULL,
			min_amount1_out NUMERIC NOT NULL,
			ratio NUMERIC NOT NULL,
			policy TEXT NOT NULL,
			encoded_hex TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// PutAuditRecord inserts one audit record.
func (s *Store) PutAuditRecord(ctx context.Context, record model.AuditRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO deposit_audit (
			chain_id, block_number, block_timestamp, pair_address, anchor_token,
			token0, token1, amount0, amount1, min_amount0_out, min_amount1_out,
			ratio, policy, encoded_hex
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		int64(record.ChainID),
		int64(record.BlockNumber),
		int64(record.BlockTimestamp),
		record.PairAddress,
		record.AnchorToken,
		record.Params.Token0,
		record.Params.Token1,
		record.Params.Amount0,
		record.Params.Amount1,
		record.Params.MinAmount0Out,
		record.Params.MinAmount1Out,
		record.Params.Ratio,
		record.Params.Policy,
		record.EncodedHex,
	)
	return err
}
