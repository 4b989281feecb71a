package matrix

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bake/internal/adapters/fs"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/logger"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/xcodebuild" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/core/ports"
)

// NodeID is the unique identifier for the matrix driver Graft node.
const NodeID graft.ID = "engine.matrix"

func init() {
	graft.Register(graft.Node[*Driver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			xcodebuild.NodeID,
			fs.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Driver, error) {
			toolchain, err := graft.Dep[ports.Toolchain](ctx)
			if err != nil {
				return nil, err
			}

			fileSystem, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(toolchain, fileSystem, log), nil
		},
	})
}
