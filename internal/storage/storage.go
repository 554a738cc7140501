package storage

import (
	"context"

	"depositCalc/internal/model"
)

// Storage records computed deposit parameters for later review.
type Storage interface {
	PutAuditRecord(ctx context.Context, record model.AuditRecord) error
}
