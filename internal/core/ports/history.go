package ports

import (
	"context"

	"go.trai.ch/bake/internal/core/domain"
)

// HistoryStore keeps a ledger of cache runs.
//
//go:generate mockgen -source=history.go -destination=mocks/mock_history.go -package=mocks
type HistoryStore interface {
	// Record stores a run and the final state of its modules.
	Record(ctx context.Context, run *domain.RunRecord) error
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
