package logarchive

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bake/internal/core/ports"
)

const NodeID graft.ID = "adapter.log_archiver"

func init() {
	graft.Register(graft.Node[ports.LogArchiver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LogArchiver, error) {
			return New(DefaultKeep), nil
		},
	})
}
