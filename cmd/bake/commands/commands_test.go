package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/cmd/bake/commands"
	"go.trai.ch/bake/internal/app"
	"go.trai.ch/bake/internal/build"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/engine/pipeline"
)

type mockApp struct {
	level       *domain.LogLevel
	configPath  string
	loaded      domain.CacheOptions
	loadErr     error
	cacheOpts   *domain.CacheOptions
	report      *pipeline.Report
	cacheErr    error
	cleanOpts   *app.CleanOptions
	historyArgs []int
	runs        []domain.RunRecord
}

func newMockApp() *mockApp {
	return &mockApp{
		loaded: domain.DefaultCacheOptions(),
		report: &pipeline.Report{},
	}
}

func (m *mockApp) SetLogLevel(level domain.LogLevel) {
	m.level = &level
}

func (m *mockApp) LoadOptions(path string) (domain.CacheOptions, error) {
	m.configPath = path
	return m.loaded, m.loadErr
}

func (m *mockApp) Cache(_ context.Context, opts domain.CacheOptions) (*pipeline.Report, error) {
	m.cacheOpts = &opts
	return m.report, m.cacheErr
}

func (m *mockApp) Clean(_ context.Context, opts app.CleanOptions) error {
	m.cleanOpts = &opts
	return nil
}

func (m *mockApp) History(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.historyArgs = append(m.historyArgs, limit)
	return m.runs, nil
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Cache(t *testing.T) {
	t.Run("uses config values without flags", func(t *testing.T) {
		m := newMockApp()
		m.loaded.Exclude = []string{"Moya"}
		m.loaded.Bitcode = true

		_, err := execute(t, m, "cache")
		require.NoError(t, err)
		require.NotNil(t, m.cacheOpts)
		assert.Empty(t, m.configPath)
		assert.Equal(t, m.loaded, *m.cacheOpts)
	})

	t.Run("flags override config values", func(t *testing.T) {
		m := newMockApp()
		m.loaded.Exclude = []string{"Moya"}
		m.loaded.Graph = true

		_, err := execute(t, m, "cache",
			"--config", "ci/.bake.yaml",
			"--sdk", "sim,ios",
			"--arch", "arm64",
			"--exclude", "Alamofire",
			"--include", "Feature",
			"--focus", "Moya",
			"--graph=false",
			"--keep-sources",
			"--relative-paths=false",
			"--skip-debug-symbols",
			"--ignore-checksums",
			"--mtime-checksums",
			"--bitcode",
			"--project", "App/Pods/Pods.xcodeproj",
			"--configuration", "Debug",
		)
		require.NoError(t, err)
		require.NotNil(t, m.cacheOpts)

		opts := m.cacheOpts
		assert.Equal(t, "ci/.bake.yaml", m.configPath)
		assert.Equal(t, []domain.SDK{domain.SDKSimulator, domain.SDKDevice}, opts.SDKs)
		assert.Equal(t, []string{"arm64"}, opts.Archs)
		assert.Equal(t, []string{"Alamofire"}, opts.Exclude)
		assert.Equal(t, []string{"Feature"}, opts.Include)
		assert.Equal(t, []string{"Moya"}, opts.Focus)
		assert.False(t, opts.Graph)
		assert.True(t, opts.KeepSources)
		assert.False(t, opts.RelativePaths)
		assert.True(t, opts.SkipDebugSymbols)
		assert.True(t, opts.IgnoreChecksums)
		assert.Equal(t, domain.ChecksumModTime, opts.ChecksumMode)
		assert.True(t, opts.Bitcode)
		assert.Equal(t, "App/Pods/Pods.xcodeproj", opts.ProjectPath)
		assert.Equal(t, "Debug", opts.Configuration)
	})

	t.Run("rejects unknown sdk", func(t *testing.T) {
		m := newMockApp()
		_, err := execute(t, m, "cache", "--sdk", "watch")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidSDK)
		assert.Nil(t, m.cacheOpts)
	})

	t.Run("returns config errors", func(t *testing.T) {
		m := newMockApp()
		m.loadErr = domain.ErrConfigReadFailed
		_, err := execute(t, m, "cache")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConfigReadFailed)
		assert.Nil(t, m.cacheOpts)
	})

	t.Run("returns pipeline errors", func(t *testing.T) {
		m := newMockApp()
		m.cacheErr = errors.New("simulated error")
		out, err := execute(t, m, "cache")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
		assert.Empty(t, out)
	})

	t.Run("prints a summary", func(t *testing.T) {
		m := newMockApp()
		m.report = &pipeline.Report{
			Candidates: []string{"Alamofire", "Moya"},
			Dirty:      []string{"Moya"},
			Cacheable:  []string{"Alamofire"},
			Pruned:     []string{"Alamofire", "Moya"},
			Patched:    []string{"a.xcconfig", "b.xcconfig"},
			States: map[string]domain.ModuleState{
				"Alamofire": domain.StatePruned,
				"Moya":      domain.StatePruned,
				"Feature":   domain.StateKeptAsSource,
			},
			Duration: 1500 * time.Millisecond,
		}

		out, err := execute(t, m, "cache")
		require.NoError(t, err)
		assert.Contains(t, out, "2 modules in 1.5s")
		assert.Contains(t, out, "built   Moya")
		assert.Contains(t, out, "reused  Alamofire")
		assert.Contains(t, out, "cached  Alamofire, Moya")
		assert.Contains(t, out, "source  Feature")
		assert.Contains(t, out, "patched 2 files")
	})
}

func TestCommands_Verbosity(t *testing.T) {
	m := newMockApp()
	_, err := execute(t, m, "cache", "-v")
	require.NoError(t, err)
	require.NotNil(t, m.level)
	assert.Equal(t, domain.LogLevelDebug, *m.level)

	m = newMockApp()
	_, err = execute(t, m, "cache", "--quiet")
	require.NoError(t, err)
	require.NotNil(t, m.level)
	assert.Equal(t, domain.LogLevelWarn, *m.level)

	m = newMockApp()
	_, err = execute(t, m, "cache")
	require.NoError(t, err)
	assert.Nil(t, m.level, "the logger default is kept")

	m = newMockApp()
	_, err = execute(t, m, "cache", "-v", "-q")
	require.Error(t, err)
}

func TestCommands_Clean(t *testing.T) {
	tests := []struct {
		args     []string
		expected app.CleanOptions
	}{
		{[]string{"clean"}, app.CleanOptions{}},
		{[]string{"clean", "--logs"}, app.CleanOptions{Logs: true}},
		{[]string{"clean", "-a"}, app.CleanOptions{Logs: true, History: true}},
	}

	for _, tt := range tests {
		m := newMockApp()
		_, err := execute(t, m, tt.args...)
		require.NoError(t, err)
		require.NotNil(t, m.cleanOpts)
		assert.Equal(t, tt.expected, *m.cleanOpts)
	}
}

func TestCommands_History(t *testing.T) {
	m := newMockApp()
	out, err := execute(t, m, "history")
	require.NoError(t, err)
	assert.Equal(t, []int{app.DefaultHistoryLimit}, m.historyArgs)
	assert.Contains(t, out, "no runs recorded")

	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m = newMockApp()
	m.runs = []domain.RunRecord{
		{
			ID:         "0123456789abcdef",
			StartedAt:  started,
			FinishedAt: started.Add(42 * time.Second),
			SDKs:       []domain.SDK{domain.SDKSimulator},
			Status:     domain.RunStatusFailed,
			FailedStep: pipeline.StepBuild,
			Modules:    map[string]domain.ModuleState{"Moya": domain.StateKeptAsSource},
		},
	}
	out, err = execute(t, m, "history", "-n", "3")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, m.historyArgs)
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "89abcdef")
	assert.Contains(t, out, "0 cached, 1 source")
	assert.Contains(t, out, "in 42s")
	assert.Contains(t, out, "failed at build")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, newMockApp(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
	assert.Contains(t, out, "bake version")
}
