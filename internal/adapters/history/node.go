package history

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
)

const NodeID graft.ID = "adapter.history"

func init() {
	graft.Register(graft.Node[ports.HistoryStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.HistoryStore, error) {
			return NewStore(domain.DefaultHistoryPath()), nil
		},
	})
}
