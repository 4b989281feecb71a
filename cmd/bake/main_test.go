package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/bake/internal/app"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.trai.ch/bake/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

type stubRunner struct {
	err error
}

func (s stubRunner) Run(context.Context, domain.CacheOptions) (*pipeline.Report, error) {
	return &pipeline.Report{}, s.err
}

func (s stubRunner) Layout() domain.Layout {
	return domain.Layout{}
}

func provide(t *testing.T, runner app.Runner) (ComponentProvider, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(domain.DefaultCacheOptions(), nil).AnyTimes()
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	a := app.New(loader, runner, mocks.NewMockHistoryStore(ctrl), mocks.NewMockFileSystem(ctrl), log)
	return func(context.Context) (*app.Components, error) {
		return &app.Components{App: a, Logger: log}, nil
	}, log
}

func TestRun(t *testing.T) {
	provider, _ := provide(t, stubRunner{})
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"version"}, &stdout, &stderr, provider)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "bake version")
	assert.Empty(t, stderr.String())
}

func TestRun_CacheSucceeds(t *testing.T) {
	provider, _ := provide(t, stubRunner{})
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"cache"}, &stdout, &stderr, provider)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "bake")
}

func TestRun_PipelineFailureLogsError(t *testing.T) {
	failure := &domain.StepError{Step: pipeline.StepBuild, Err: domain.ErrBuildFailed}
	provider, log := provide(t, stubRunner{err: failure})
	log.EXPECT().Error(failure)

	code := run(context.Background(), []string{"cache"}, &bytes.Buffer{}, &bytes.Buffer{}, provider)
	assert.Equal(t, 1, code)
}

func TestRun_ProviderError(t *testing.T) {
	var stderr bytes.Buffer
	provider := func(context.Context) (*app.Components, error) {
		return nil, errors.New("wiring failed")
	}

	code := run(context.Background(), []string{"cache"}, &bytes.Buffer{}, &stderr, provider)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: wiring failed\n", stderr.String())
}
