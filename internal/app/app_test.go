package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/app"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.trai.ch/bake/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

type fakeRunner struct {
	layout domain.Layout
	calls  []domain.CacheOptions
	report *pipeline.Report
	err    error
}

func (f *fakeRunner) Run(_ context.Context, opts domain.CacheOptions) (*pipeline.Report, error) {
	f.calls = append(f.calls, opts)
	return f.report, f.err
}

func (f *fakeRunner) Layout() domain.Layout {
	return f.layout
}

type harness struct {
	app     *app.App
	runner  *fakeRunner
	loader  *mocks.MockConfigLoader
	history *mocks.MockHistoryStore
	fs      *mocks.MockFileSystem
	logger  *mocks.MockLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		runner:  &fakeRunner{layout: domain.Layout{Root: "/work"}, report: &pipeline.Report{RunID: "run-1"}},
		loader:  mocks.NewMockConfigLoader(ctrl),
		history: mocks.NewMockHistoryStore(ctrl),
		fs:      mocks.NewMockFileSystem(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
	}
	h.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	h.app = app.New(h.loader, h.runner, h.history, h.fs, h.logger)
	return h
}

func TestApp_LoadOptions(t *testing.T) {
	h := newHarness(t)
	defaults := domain.DefaultCacheOptions()
	h.loader.EXPECT().Load(".").Return(defaults, nil)

	opts, err := h.app.LoadOptions("")
	require.NoError(t, err)
	assert.Equal(t, defaults, opts)
}

func TestApp_LoadOptions_Error(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load("custom.yaml").Return(domain.CacheOptions{}, domain.ErrConfigReadFailed)

	_, err := h.app.LoadOptions("custom.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestApp_Cache(t *testing.T) {
	h := newHarness(t)
	opts := domain.DefaultCacheOptions()

	report, err := h.app.Cache(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)
	require.Len(t, h.runner.calls, 1)
	assert.Equal(t, opts, h.runner.calls[0])
}

func TestApp_Cache_InvalidOptions(t *testing.T) {
	h := newHarness(t)
	opts := domain.DefaultCacheOptions()
	opts.ChecksumMode = "sha"

	_, err := h.app.Cache(context.Background(), opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidChecksumMode)
	assert.Empty(t, h.runner.calls, "invalid options never reach the pipeline")
}

func TestApp_Cache_Failure(t *testing.T) {
	h := newHarness(t)
	stepErr := &domain.StepError{Step: pipeline.StepBuild, SDK: domain.SDKSimulator, Err: domain.ErrBuildFailed}
	h.runner.err = stepErr

	report, err := h.app.Cache(context.Background(), domain.DefaultCacheOptions())
	require.Error(t, err)
	assert.NotNil(t, report, "a partial report is returned with the error")

	var got *domain.StepError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, pipeline.StepBuild, got.Step)
}

func TestApp_Clean(t *testing.T) {
	h := newHarness(t)

	h.fs.EXPECT().Exists("/work/.bake/build").Return(true)
	h.fs.EXPECT().RemoveAll("/work/.bake/build").Return(nil)
	h.fs.EXPECT().Exists("/work/.bake/derived").Return(false)
	h.fs.EXPECT().Exists("/work/.bake/xcframeworks").Return(true)
	h.fs.EXPECT().RemoveAll("/work/.bake/xcframeworks").Return(nil)
	h.fs.EXPECT().Exists("/work/.bake/cache.yml").Return(true)
	h.fs.EXPECT().RemoveAll("/work/.bake/cache.yml").Return(nil)

	require.NoError(t, h.app.Clean(context.Background(), app.CleanOptions{}))
}

func TestApp_Clean_All(t *testing.T) {
	h := newHarness(t)

	h.fs.EXPECT().Exists(gomock.Any()).Return(true).Times(6)
	for _, path := range []string{
		"/work/.bake/build",
		"/work/.bake/derived",
		"/work/.bake/xcframeworks",
		"/work/.bake/cache.yml",
		"/work/.bake/logs",
		"/work/.bake/history.db",
	} {
		h.fs.EXPECT().RemoveAll(path).Return(nil)
	}

	require.NoError(t, h.app.Clean(context.Background(), app.CleanOptions{Logs: true, History: true}))
}

func TestApp_Clean_JoinsErrors(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("permission denied")

	h.fs.EXPECT().Exists(gomock.Any()).Return(true).Times(4)
	h.fs.EXPECT().RemoveAll("/work/.bake/build").Return(boom)
	h.fs.EXPECT().RemoveAll("/work/.bake/derived").Return(nil)
	h.fs.EXPECT().RemoveAll("/work/.bake/xcframeworks").Return(boom)
	h.fs.EXPECT().RemoveAll("/work/.bake/cache.yml").Return(nil)

	err := h.app.Clean(context.Background(), app.CleanOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "build products")
	assert.Contains(t, err.Error(), "xcframeworks")
}

func TestApp_History(t *testing.T) {
	h := newHarness(t)
	runs := []domain.RunRecord{{ID: "b"}, {ID: "a"}}

	h.history.EXPECT().Recent(gomock.Any(), app.DefaultHistoryLimit).Return(runs, nil)
	got, err := h.app.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, runs, got)

	h.history.EXPECT().Recent(gomock.Any(), 3).Return(nil, domain.ErrHistoryFailed)
	_, err = h.app.History(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHistoryFailed)
}

func TestApp_SetLogLevel(t *testing.T) {
	h := newHarness(t)
	h.logger.EXPECT().SetLevel(domain.LogLevelDebug)
	h.app.SetLogLevel(domain.LogLevelDebug)
}
