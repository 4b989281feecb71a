package patch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bake/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/core/ports"
)

// NodeID is the unique identifier for the patcher Graft node.
const NodeID graft.ID = "engine.patch"

func init() {
	graft.Register(graft.Node[*Patcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Patcher, error) {
			fileSystem, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(fileSystem, log), nil
		},
	})
}
