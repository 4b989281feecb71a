package checksum

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bake/internal/adapters/cachefile" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/core/ports"
)

// NodeID is the unique identifier for the checksum engine Graft node.
const NodeID graft.ID = "engine.checksum"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.HasherNodeID,
			cachefile.NodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}

			return New(hasher, store), nil
		},
	})
}
