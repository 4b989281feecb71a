package ports

import (
	"context"

	"go.trai.ch/bake/internal/core/domain"
)

// BuildRequest describes one toolchain build of a scheme for a single SDK.
type BuildRequest struct {
	ProjectPath     string
	Scheme          string
	SDK             domain.SDK
	Archs           []string
	Configuration   string
	Flags           []string
	SymRoot         string
	DerivedDataPath string
	LogPath         string
}

// BuildResult reports how a toolchain build ended.
type BuildResult struct {
	ExitCode int
	LogPath  string
}

// XCFrameworkSlice is one per-SDK input of a merged bundle.
type XCFrameworkSlice struct {
	// Product is the framework directory or static library file.
	Product string
	// DebugSymbols is the optional dSYM bundle of the product.
	DebugSymbols string
}

// XCFrameworkRequest describes the merge of per-SDK products into one bundle.
type XCFrameworkRequest struct {
	Output  string
	Slices  []XCFrameworkSlice
	LogPath string
}

// Toolchain is the native build toolchain.
//
//go:generate mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type Toolchain interface {
	// Version returns the tooling identifier recorded in the cache file.
	Version(ctx context.Context) (string, error)

	// Build runs one build. A non-zero exit code returns an error wrapping
	// domain.ErrBuildFailed together with the result.
	Build(ctx context.Context, req BuildRequest) (BuildResult, error)

	// CreateXCFramework merges products into a multi-architecture bundle.
	CreateXCFramework(ctx context.Context, req XCFrameworkRequest) error
}
