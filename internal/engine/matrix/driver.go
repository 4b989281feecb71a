// Package matrix builds modules for every requested SDK and merges the
// per-SDK products into XCFramework bundles.
package matrix

import (
	"context"
	"path/filepath"
	"slices"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"howett.net/plist"
)

// StepBuild is the pipeline step name used for build failures.
const StepBuild = "build"

// Driver runs the toolchain over the build matrix.
type Driver struct {
	toolchain ports.Toolchain
	fs        ports.FileSystem
	logger    ports.Logger
}

// New creates a Driver.
func New(toolchain ports.Toolchain, fs ports.FileSystem, logger ports.Logger) *Driver {
	return &Driver{
		toolchain: toolchain,
		fs:        fs,
		logger:    logger,
	}
}

// BuildRequest describes one scheme build over several SDKs.
type BuildRequest struct {
	Layout        domain.Layout
	ProjectPath   string
	Scheme        string
	Configuration string
	SDKs          []domain.SDK
	Archs         []string
	Flags         []string
}

// Build runs one toolchain invocation per SDK concurrently. Each SDK gets
// its own derived data directory while products land in the shared build
// directory. Every invocation finishes before Build returns; the first
// failure is reported as a *domain.StepError.
func (d *Driver) Build(ctx context.Context, req BuildRequest) error {
	var g errgroup.Group
	for _, sdk := range req.SDKs {
		g.Go(func() error {
			logPath := req.Layout.BuildLog(sdk)
			d.logger.Debug("building " + req.Scheme + " for " + sdk.Xcodebuild())

			_, err := d.toolchain.Build(ctx, ports.BuildRequest{
				ProjectPath:     req.ProjectPath,
				Scheme:          req.Scheme,
				SDK:             sdk,
				Archs:           req.Archs,
				Configuration:   req.Configuration,
				Flags:           req.Flags,
				SymRoot:         req.Layout.BuildDir(),
				DerivedDataPath: req.Layout.DerivedDataDir(sdk),
				LogPath:         logPath,
			})
			if err != nil {
				return &domain.StepError{Step: StepBuild, SDK: sdk, LogPath: logPath, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// MergeRequest describes the bundle creation of one module.
type MergeRequest struct {
	Layout           domain.Layout
	Module           *domain.Module
	Configuration    string
	SDKs             []domain.SDK
	SkipDebugSymbols bool
}

// Merge creates the module's XCFramework from its per-SDK products. It
// reports false without an error when a product is missing for any SDK.
// An existing bundle is replaced.
func (d *Driver) Merge(ctx context.Context, req MergeRequest) (bool, error) {
	parts := make([]ports.XCFrameworkSlice, 0, len(req.SDKs))
	for _, sdk := range req.SDKs {
		product := req.Layout.ProductPath(req.Configuration, sdk, req.Module)
		if !d.fs.Exists(product) {
			d.logger.Debug("no product for " + req.Module.Name + " at " + product)
			return false, nil
		}

		slice := ports.XCFrameworkSlice{Product: product}
		if dsym := product + ".dSYM"; !req.SkipDebugSymbols && d.fs.Exists(dsym) {
			slice.DebugSymbols = dsym
		}
		parts = append(parts, slice)
	}

	output := req.Layout.BundlePath(req.Module)
	if err := d.fs.RemoveAll(output); err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrMergeFailed, err.Error()), "output", output)
	}

	err := d.toolchain.CreateXCFramework(ctx, ports.XCFrameworkRequest{
		Output:  output,
		Slices:  parts,
		LogPath: req.Layout.MergeLog(),
	})
	if err != nil {
		return false, zerr.With(err, "module", req.Module.Name)
	}
	return true, nil
}

type bundleInfo struct {
	AvailableLibraries []struct {
		LibraryIdentifier string `plist:"LibraryIdentifier"`
	} `plist:"AvailableLibraries"`
}

// BundleSlices returns the sorted library identifiers of a bundle, such
// as "ios-arm64" or "ios-arm64_x86_64-simulator". A missing or unreadable
// bundle has no slices.
func (d *Driver) BundleSlices(bundle string) []string {
	data, err := d.fs.ReadFile(filepath.Join(bundle, "Info.plist"))
	if err != nil {
		return nil
	}

	var info bundleInfo
	if _, err := plist.Unmarshal(data, &info); err != nil {
		d.logger.Debug("unreadable bundle info " + bundle + ": " + err.Error())
		return nil
	}

	ids := make([]string, 0, len(info.AvailableLibraries))
	for _, lib := range info.AvailableLibraries {
		if lib.LibraryIdentifier != "" {
			ids = append(ids, lib.LibraryIdentifier)
		}
	}
	slices.Sort(ids)
	return ids
}

// HasSlice reports whether the module's bundle holds the slice built for
// sdk with archs.
func (d *Driver) HasSlice(layout domain.Layout, module *domain.Module, sdk domain.SDK, archs []string) bool {
	return slices.Contains(d.BundleSlices(layout.BundlePath(module)), sdk.SliceID(archs))
}
