package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bake/internal/adapters/history"            //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/lock"               //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/logarchive"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/xcodebuild"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/adapters/xcodeproj"          //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/checksum"
	"go.trai.ch/bake/internal/engine/matrix"
	"go.trai.ch/bake/internal/engine/patch"
	"go.trai.ch/bake/internal/engine/prune"
)

// NodeID is the unique identifier for the pipeline Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[*Pipeline]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			xcodeproj.NodeID,
			xcodebuild.NodeID,
			checksum.NodeID,
			matrix.NodeID,
			prune.NodeID,
			patch.NodeID,
			lock.NodeID,
			logarchive.NodeID,
			history.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: runNode,
	})
}

func runNode(ctx context.Context) (*Pipeline, error) {
	var deps Deps
	var err error

	if deps.Loader, err = graft.Dep[ports.ProjectLoader](ctx); err != nil {
		return nil, err
	}
	if deps.Toolchain, err = graft.Dep[ports.Toolchain](ctx); err != nil {
		return nil, err
	}
	if deps.Checksum, err = graft.Dep[*checksum.Engine](ctx); err != nil {
		return nil, err
	}
	if deps.Matrix, err = graft.Dep[*matrix.Driver](ctx); err != nil {
		return nil, err
	}
	if deps.Pruner, err = graft.Dep[*prune.Pruner](ctx); err != nil {
		return nil, err
	}
	if deps.Patcher, err = graft.Dep[*patch.Patcher](ctx); err != nil {
		return nil, err
	}
	if deps.Locker, err = graft.Dep[ports.Locker](ctx); err != nil {
		return nil, err
	}
	if deps.Archiver, err = graft.Dep[ports.LogArchiver](ctx); err != nil {
		return nil, err
	}
	if deps.History, err = graft.Dep[ports.HistoryStore](ctx); err != nil {
		return nil, err
	}
	if deps.Telemetry, err = graft.Dep[ports.Telemetry](ctx); err != nil {
		return nil, err
	}
	if deps.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
		return nil, err
	}

	return New(deps, ""), nil
}
