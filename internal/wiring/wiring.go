// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/bake/internal/adapters/cachefile"
	_ "go.trai.ch/bake/internal/adapters/config"
	_ "go.trai.ch/bake/internal/adapters/fs"
	_ "go.trai.ch/bake/internal/adapters/history"
	_ "go.trai.ch/bake/internal/adapters/lock"
	_ "go.trai.ch/bake/internal/adapters/logarchive"
	_ "go.trai.ch/bake/internal/adapters/logger"
	_ "go.trai.ch/bake/internal/adapters/shell"
	_ "go.trai.ch/bake/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/bake/internal/adapters/xcodebuild"
	_ "go.trai.ch/bake/internal/adapters/xcodeproj"
	// Register app and engine nodes.
	_ "go.trai.ch/bake/internal/app"
	_ "go.trai.ch/bake/internal/engine/checksum"
	_ "go.trai.ch/bake/internal/engine/matrix"
	_ "go.trai.ch/bake/internal/engine/patch"
	_ "go.trai.ch/bake/internal/engine/pipeline"
	_ "go.trai.ch/bake/internal/engine/prune"
)
