package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/config"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Defaults(t *testing.T) {
	dir := t.TempDir()
	// The working directory of a run usually holds the .bake directory too.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, domain.BakeDirName), 0o750))

	opts, err := config.NewLoader(nil).Load(dir)
	require.NoError(t, err)

	expected := domain.DefaultCacheOptions()
	assert.Equal(t, expected.SDKs, opts.SDKs)
	assert.Equal(t, expected.Archs, opts.Archs)
	assert.Equal(t, expected.Graph, opts.Graph)
	assert.Equal(t, expected.RelativePaths, opts.RelativePaths)
	assert.Equal(t, expected.ChecksumMode, opts.ChecksumMode)
	assert.Equal(t, expected.Configuration, opts.Configuration)
	assert.Equal(t, expected.ProjectPath, opts.ProjectPath)
	assert.Equal(t, expected.XcconfigPattern, opts.XcconfigPattern)
	assert.Equal(t, expected.InterfacePattern, opts.InterfacePattern)
	assert.Empty(t, opts.Exclude)
	assert.Empty(t, opts.Focus)
}

func TestLoader_File(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).Times(1)

	dir := t.TempDir()
	writeConfig(t, dir, ".bake.yaml", `
sdk: [sim, ios]
arch: [arm64, x86_64]
exclude: [Moya]
focus: [Feature]
graph: false
keepSources: true
checksums: mtime
configuration: Debug
project: App/Pods/Pods.xcodeproj
`)

	opts, err := config.NewLoader(log).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []domain.SDK{domain.SDKSimulator, domain.SDKDevice}, opts.SDKs)
	assert.Equal(t, []string{"arm64", "x86_64"}, opts.Archs)
	assert.Equal(t, []string{"Moya"}, opts.Exclude)
	assert.Equal(t, []string{"Feature"}, opts.Focus)
	assert.False(t, opts.Graph)
	assert.True(t, opts.KeepSources)
	assert.True(t, opts.RelativePaths, "unset keys keep their default")
	assert.Equal(t, domain.ChecksumModTime, opts.ChecksumMode)
	assert.Equal(t, "Debug", opts.Configuration)
	assert.Equal(t, "App/Pods/Pods.xcodeproj", opts.ProjectPath)
}

func TestLoader_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "ci.yml", "sdk: [ios]\nbitcode: true\n")

	opts, err := config.NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.SDK{domain.SDKDevice}, opts.SDKs)
	assert.True(t, opts.Bitcode)
}

func TestLoader_Environment(t *testing.T) {
	t.Setenv("BAKE_SDK", "ios")
	t.Setenv("BAKE_KEEPSOURCES", "true")
	t.Setenv("BAKE_CONFIGURATION", "Debug")

	dir := t.TempDir()
	writeConfig(t, dir, ".bake.yaml", "sdk: [sim]\nconfiguration: Release\n")

	opts, err := config.NewLoader(nil).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []domain.SDK{domain.SDKDevice}, opts.SDKs)
	assert.True(t, opts.KeepSources)
	assert.Equal(t, "Debug", opts.Configuration)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel error
	}{
		{"malformed yaml", "sdk: [sim\n", domain.ErrConfigReadFailed},
		{"unknown sdk", "sdk: [watchos]\n", domain.ErrInvalidSDK},
		{"unknown arch", "arch: [ppc]\n", domain.ErrInvalidArch},
		{"unknown checksum mode", "checksums: atime\n", domain.ErrInvalidChecksumMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, ".bake.yaml", tt.content)

			_, err := config.NewLoader(nil).Load(dir)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}
