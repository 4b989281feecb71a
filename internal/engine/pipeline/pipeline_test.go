package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/cachefile"
	"go.trai.ch/bake/internal/adapters/fs"
	"go.trai.ch/bake/internal/adapters/history"
	"go.trai.ch/bake/internal/adapters/lock"
	"go.trai.ch/bake/internal/adapters/logarchive"
	telemetry "go.trai.ch/bake/internal/adapters/telemetry/progrock"
	"go.trai.ch/bake/internal/adapters/xcodeproj"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.trai.ch/bake/internal/engine/checksum"
	"go.trai.ch/bake/internal/engine/matrix"
	"go.trai.ch/bake/internal/engine/patch"
	"go.trai.ch/bake/internal/engine/pipeline"
	"go.trai.ch/bake/internal/engine/prune"
	"go.trai.ch/bake/internal/fixture"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const tooling = "Xcode 15.0 Build version 15A240d"

// fakeXcode stands in for xcodebuild: builds write a product for every
// module that is not marked broken, merges write a bundle listing the
// slices of the merged products.
type fakeXcode struct {
	t      *testing.T
	layout domain.Layout
	archs  []string

	mu      sync.Mutex
	builds  int
	merged  []string
	missing map[string]bool
	failSDK domain.SDK
}

func (f *fakeXcode) build(_ context.Context, req ports.BuildRequest) (ports.BuildResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds++

	assert.Equal(f.t, pipeline.AggregateTarget, req.Scheme)
	assert.FileExists(f.t, filepath.Join(req.ProjectPath, "xcshareddata", "xcschemes", pipeline.AggregateTarget+".xcscheme"))

	if req.SDK == f.failSDK {
		return ports.BuildResult{ExitCode: 65, LogPath: req.LogPath},
			zerr.With(zerr.Wrap(domain.ErrBuildFailed, "xcodebuild exited with a non-zero status"), "exit_code", 65)
	}
	for _, name := range []string{fixture.Alamofire, fixture.Moya, fixture.Feature} {
		if f.missing[name] {
			continue
		}
		m := &domain.Module{Name: name, ProductName: name, ProductType: domain.ProductFramework}
		fixture.WriteProduct(f.t, f.layout.ProductPath(req.Configuration, req.SDK, m))
	}
	return ports.BuildResult{LogPath: req.LogPath}, nil
}

func (f *fakeXcode) merge(_ context.Context, req ports.XCFrameworkRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	for _, slice := range req.Slices {
		sdk := domain.SDKDevice
		if strings.Contains(slice.Product, "-"+domain.SDKSimulator.Xcodebuild()+string(filepath.Separator)) {
			sdk = domain.SDKSimulator
		}
		ids = append(ids, sdk.SliceID(f.archs))
	}
	fixture.WriteBundle(f.t, req.Output, ids...)

	name := strings.TrimSuffix(filepath.Base(req.Output), ".xcframework")
	iface := filepath.Join(req.Output, ids[0], name+".framework", "Modules", name+".swiftmodule", "arm64.swiftinterface")
	require.NoError(f.t, os.MkdirAll(filepath.Dir(iface), 0o750))
	require.NoError(f.t, os.WriteFile(iface, []byte("public func f() -> "+name+".Value\n"), 0o600))

	f.merged = append(f.merged, name)
	return nil
}

type harness struct {
	dir      string
	layout   domain.Layout
	xcode    *fakeXcode
	history  *history.Store
	pipeline *pipeline.Pipeline
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := fixture.Install(t, t.TempDir())
	layout := domain.Layout{Root: dir}
	archs := []string{"arm64"}

	ctrl := gomock.NewController(t)
	xcode := &fakeXcode{t: t, layout: layout, archs: archs, missing: map[string]bool{}}
	toolchain := mocks.NewMockToolchain(ctrl)
	toolchain.EXPECT().Version(gomock.Any()).Return(tooling, nil).AnyTimes()
	toolchain.EXPECT().Build(gomock.Any(), gomock.Any()).DoAndReturn(xcode.build).AnyTimes()
	toolchain.EXPECT().CreateXCFramework(gomock.Any(), gomock.Any()).DoAndReturn(xcode.merge).AnyTimes()

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	walker := fs.NewWalker()
	fileSystem := fs.NewFileSystem(walker)
	store := history.NewStore(filepath.Join(dir, domain.DefaultHistoryPath()))

	p := pipeline.New(pipeline.Deps{
		Loader:    xcodeproj.NewLoader(),
		Toolchain: toolchain,
		Checksum:  checksum.New(fs.NewHasher(walker, fs.DefaultIgnores...), cachefile.NewStore(layout.CacheFile())),
		Matrix:    matrix.New(toolchain, fileSystem, log),
		Pruner:    prune.New(fileSystem, log),
		Patcher:   patch.New(fileSystem, log),
		Locker:    lock.New(),
		Archiver:  logarchive.New(logarchive.DefaultKeep),
		History:   store,
		Telemetry: telemetry.New(),
		Logger:    log,
	}, dir)

	return &harness{dir: dir, layout: layout, xcode: xcode, history: store, pipeline: p}
}

func (h *harness) options() domain.CacheOptions {
	opts := domain.DefaultCacheOptions()
	opts.SDKs = []domain.SDK{domain.SDKSimulator, domain.SDKDevice}
	opts.Archs = h.xcode.archs
	return opts
}

func (h *harness) targets(t *testing.T) []string {
	t.Helper()
	p, err := xcodeproj.Open(filepath.Join(h.dir, fixture.ProjectPath))
	require.NoError(t, err)
	var names []string
	for _, target := range p.Targets() {
		names = append(names, target.Name)
	}
	return names
}

func (h *harness) cacheFile(t *testing.T) domain.CacheFile {
	t.Helper()
	file, err := cachefile.NewStore(h.layout.CacheFile()).Load()
	require.NoError(t, err)
	return file
}

func (h *harness) rawCacheFile(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(h.layout.CacheFile())
	require.NoError(t, err)
	return data
}

func (h *harness) pbxproj(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, fixture.ProjectPath, "project.pbxproj"))
	require.NoError(t, err)
	return data
}

func TestPipeline_FirstRun(t *testing.T) {
	h := newHarness(t)

	report, err := h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)

	assert.Equal(t, []string{fixture.Alamofire, fixture.Moya}, report.Candidates)
	assert.Equal(t, []string{fixture.Alamofire, fixture.Moya}, report.Dirty)
	assert.Empty(t, report.Cacheable)
	assert.Equal(t, []string{fixture.Alamofire, fixture.Moya}, report.Pruned)
	assert.Equal(t, map[string]domain.ModuleState{
		fixture.Alamofire: domain.StatePruned,
		fixture.Moya:      domain.StatePruned,
	}, report.States)
	assert.Equal(t, 2, h.xcode.builds)
	assert.ElementsMatch(t, []string{fixture.Alamofire, fixture.Moya}, h.xcode.merged)

	assert.Equal(t, []string{fixture.Feature, fixture.FeatureResources, fixture.PodsApp}, h.targets(t))
	assert.NotContains(t, string(h.pbxproj(t)), pipeline.AggregateTarget)

	xcconfig, err := os.ReadFile(filepath.Join(h.dir, "Pods", "Target Support Files", "Feature", "Feature.release.xcconfig"))
	require.NoError(t, err)
	assert.Contains(t, string(xcconfig), "${PODS_ROOT}/../.bake/xcframeworks/Moya.xcframework/${BAKE_XCFRAMEWORK_PLATFORM}")
	assert.Contains(t, string(xcconfig), "BAKE_XCFRAMEWORK_PLATFORM_iphonesimulator = ios-arm64-simulator")

	file := h.cacheFile(t)
	require.Len(t, file, 2)
	sim := file["release-iphonesimulator"]
	assert.Equal(t, domain.SDKSimulator, sim.SDK)
	assert.Equal(t, "arm64", sim.Arch)
	assert.Equal(t, tooling, sim.ToolingVersion)
	require.Len(t, sim.Checksums, 2)
	assert.True(t, strings.HasPrefix(sim.Checksums[0], fixture.Alamofire+": "))

	runs, err := h.history.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, domain.RunStatusSucceeded, runs[0].Status)
	assert.Equal(t, 2, runs[0].Count(domain.StatePruned))
}

func TestPipeline_RerunWithoutChanges(t *testing.T) {
	h := newHarness(t)
	_, err := h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)
	first := h.rawCacheFile(t)

	fixture.PodInstall(t, h.dir)
	report, err := h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)

	assert.Empty(t, report.Dirty)
	assert.Equal(t, []string{fixture.Alamofire, fixture.Moya}, report.Cacheable)
	assert.Equal(t, []string{fixture.Alamofire, fixture.Moya}, report.Pruned)
	assert.Equal(t, 2, h.xcode.builds, "nothing is rebuilt")
	assert.Equal(t, string(first), string(h.rawCacheFile(t)), "the cache file is byte identical")
	assert.Equal(t, []string{fixture.Feature, fixture.FeatureResources, fixture.PodsApp}, h.targets(t))

	// Running on the already pruned project changes nothing.
	before := h.pbxproj(t)
	report, err = h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)
	assert.Empty(t, report.Candidates)
	assert.Equal(t, before, h.pbxproj(t))
	assert.Equal(t, string(first), string(h.rawCacheFile(t)))
}

func TestPipeline_ChangedDependentRebuildsOnlyIt(t *testing.T) {
	h := newHarness(t)
	_, err := h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)
	first := h.rawCacheFile(t)

	fixture.PodInstall(t, h.dir)
	source := filepath.Join(h.dir, "Pods", "Moya", "Sources", "Moya.swift")
	require.NoError(t, os.WriteFile(source, []byte("public enum Moya { case changed }"), 0o600))
	h.xcode.merged = nil

	report, err := h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)
	assert.Equal(t, []string{fixture.Moya}, report.Dirty)
	assert.Equal(t, []string{fixture.Alamofire}, report.Cacheable)
	assert.Equal(t, []string{fixture.Moya}, h.xcode.merged, "the dependency reuses its bundle")
	assert.Equal(t, []string{fixture.Alamofire, fixture.Moya}, report.Pruned)

	before := strings.Split(string(first), "\n")
	after := strings.Split(string(h.rawCacheFile(t)), "\n")
	require.Len(t, after, len(before))
	changed := 0
	for i := range before {
		if before[i] == after[i] {
			continue
		}
		changed++
		assert.Contains(t, after[i], fixture.Moya+": ", "only the changed module entry differs")
	}
	assert.Equal(t, 2, changed, "one entry per requested SDK")
}

func TestPipeline_ChangedDependencyRebuildsDependents(t *testing.T) {
	h := newHarness(t)
	_, err := h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)

	fixture.PodInstall(t, h.dir)
	source := filepath.Join(h.dir, "Pods", "Alamofire", "Source", "Alamofire.swift")
	require.NoError(t, os.WriteFile(source, []byte("public enum AF { case changed }"), 0o600))

	report, err := h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)
	assert.Equal(t, []string{fixture.Alamofire, fixture.Moya}, report.Dirty)
	assert.Equal(t, 4, h.xcode.builds)

	opts := h.options()
	opts.Graph = false
	fixture.PodInstall(t, h.dir)
	require.NoError(t, os.WriteFile(source, []byte("public enum AF { case again }"), 0o600))

	report, err = h.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{fixture.Alamofire}, report.Dirty)
	assert.Equal(t, []string{fixture.Moya}, report.Cacheable)
}

func TestPipeline_BuildFailureRestoresProject(t *testing.T) {
	h := newHarness(t)
	h.xcode.failSDK = domain.SDKDevice
	before := h.pbxproj(t)

	report, err := h.pipeline.Run(context.Background(), h.options())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBuildFailed))

	var stepErr *domain.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, pipeline.StepBuild, stepErr.Step)
	assert.Equal(t, domain.SDKDevice, stepErr.SDK)
	assert.Equal(t, h.layout.BuildLog(domain.SDKDevice), stepErr.LogPath)

	assert.Equal(t, before, h.pbxproj(t))
	assert.NoFileExists(t, filepath.Join(h.dir, fixture.ProjectPath, "xcshareddata", "xcschemes", pipeline.AggregateTarget+".xcscheme"))
	assert.NoFileExists(t, h.layout.CacheFile())
	assert.Equal(t, domain.StateDirty, report.States[fixture.Alamofire])

	runs, err := h.history.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStatusFailed, runs[0].Status)
	assert.Equal(t, pipeline.StepBuild, runs[0].FailedStep)
}

func TestPipeline_MissingProductKeepsSource(t *testing.T) {
	h := newHarness(t)
	h.xcode.missing[fixture.Moya] = true

	report, err := h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)

	assert.Equal(t, domain.StateKeptAsSource, report.States[fixture.Moya])
	assert.Equal(t, domain.StatePruned, report.States[fixture.Alamofire])
	assert.Equal(t, []string{fixture.Alamofire}, report.Pruned)
	assert.Contains(t, h.targets(t), fixture.Moya)

	for _, rec := range h.cacheFile(t) {
		require.Len(t, rec.Checksums, 1)
		assert.True(t, strings.HasPrefix(rec.Checksums[0], fixture.Alamofire+": "))
	}
}

func TestPipeline_FocusKeepsSource(t *testing.T) {
	h := newHarness(t)
	opts := h.options()
	opts.Focus = []string{fixture.Moya}

	report, err := h.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{fixture.Alamofire, fixture.Feature, fixture.Moya}, report.Candidates)
	assert.Equal(t, []string{fixture.Alamofire, fixture.Feature}, report.Pruned)
	assert.Equal(t, domain.StateKeptAsSource, report.States[fixture.Moya])

	targets := h.targets(t)
	assert.Contains(t, targets, fixture.Moya)
	assert.NotContains(t, targets, fixture.Feature)

	// The focused module still gets a record entry: its bundle is valid.
	rec := h.cacheFile(t)["release-iphoneos"]
	assert.Len(t, rec.Checksums, 3)
}

func TestPipeline_ExcludeClosure(t *testing.T) {
	h := newHarness(t)
	before := h.pbxproj(t)
	opts := h.options()
	opts.Exclude = []string{fixture.Alamofire}

	report, err := h.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, report.Candidates)
	assert.Zero(t, h.xcode.builds)
	assert.Equal(t, before, h.pbxproj(t))
}

func TestPipeline_UnknownModule(t *testing.T) {
	h := newHarness(t)
	opts := h.options()
	opts.Include = []string{"Ghost"}

	_, err := h.pipeline.Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownModule))

	var stepErr *domain.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, pipeline.StepSelect, stepErr.Step)
}

func TestPipeline_MissingProject(t *testing.T) {
	h := newHarness(t)
	opts := h.options()
	opts.ProjectPath = "Missing/Pods.xcodeproj"

	_, err := h.pipeline.Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProjectLoadFailed))

	var stepErr *domain.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, pipeline.StepLoad, stepErr.Step)
}

func TestPipeline_Canceled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.pipeline.Run(ctx, h.options())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	runs, err := h.history.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, pipeline.StepLoad, runs[0].FailedStep)
}

func TestPipeline_ArchivesPreviousLogs(t *testing.T) {
	h := newHarness(t)
	logPath := h.layout.BuildLog(domain.SDKSimulator)
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0o750))
	require.NoError(t, os.WriteFile(logPath, []byte("previous build"), 0o600))

	_, err := h.pipeline.Run(context.Background(), h.options())
	require.NoError(t, err)

	archived, err := filepath.Glob(filepath.Join(h.layout.LogArchiveDir(), "*.zst"))
	require.NoError(t, err)
	assert.True(t, slices.ContainsFunc(archived, func(p string) bool {
		return strings.HasPrefix(filepath.Base(p), "build-iphonesimulator-")
	}))
}
