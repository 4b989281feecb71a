// Package config loads cache defaults from an optional .bake.yaml and the environment.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// EnvPrefix is the prefix of environment variables overriding file values.
const EnvPrefix = "BAKE"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader on top of viper.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{logger: log}
}

// Load reads the configuration and returns the resulting cache options.
// path is either a directory searched for .bake.yaml or the config file itself.
// Without a file the defaults, overridden by BAKE_ variables, are returned.
func (l *Loader) Load(path string) (domain.CacheOptions, error) {
	v := newViper()

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(domain.ConfigFileName)
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return domain.CacheOptions{}, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
		}
	} else if l.logger != nil {
		l.logger.Debug("loaded config " + v.ConfigFileUsed())
	}

	var file BakeFile
	if err := v.Unmarshal(&file); err != nil {
		return domain.CacheOptions{}, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	opts, err := file.toOptions()
	if err != nil {
		return domain.CacheOptions{}, zerr.With(err, "path", v.ConfigFileUsed())
	}
	return opts, nil
}

func newViper() *viper.Viper {
	defaults := domain.DefaultCacheOptions()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	sdks := make([]string, 0, len(defaults.SDKs))
	for _, sdk := range defaults.SDKs {
		sdks = append(sdks, string(sdk))
	}

	// Every key needs a default so AutomaticEnv can override it.
	v.SetDefault("sdk", sdks)
	v.SetDefault("arch", defaults.Archs)
	v.SetDefault("exclude", []string{})
	v.SetDefault("include", []string{})
	v.SetDefault("focus", []string{})
	v.SetDefault("graph", defaults.Graph)
	v.SetDefault("keepSources", defaults.KeepSources)
	v.SetDefault("relativePaths", defaults.RelativePaths)
	v.SetDefault("skipDebugSymbols", defaults.SkipDebugSymbols)
	v.SetDefault("ignoreChecksums", defaults.IgnoreChecksums)
	v.SetDefault("checksums", string(defaults.ChecksumMode))
	v.SetDefault("bitcode", defaults.Bitcode)
	v.SetDefault("configuration", defaults.Configuration)
	v.SetDefault("project", defaults.ProjectPath)
	v.SetDefault("xcconfigPattern", defaults.XcconfigPattern)
	v.SetDefault("interfacePattern", defaults.InterfacePattern)
	return v
}

func (f *BakeFile) toOptions() (domain.CacheOptions, error) {
	sdks, err := domain.ParseSDKs(f.SDK)
	if err != nil {
		return domain.CacheOptions{}, err
	}

	opts := domain.CacheOptions{
		SDKs:             sdks,
		Archs:            f.Arch,
		Exclude:          f.Exclude,
		Include:          f.Include,
		Focus:            f.Focus,
		Graph:            f.Graph,
		KeepSources:      f.KeepSources,
		RelativePaths:    f.RelativePaths,
		SkipDebugSymbols: f.SkipDebugSymbols,
		IgnoreChecksums:  f.IgnoreChecksums,
		ChecksumMode:     domain.ChecksumMode(strings.ToLower(f.Checksums)),
		Bitcode:          f.Bitcode,
		Configuration:    f.Configuration,
		ProjectPath:      f.Project,
		XcconfigPattern:  f.XcconfigPattern,
		InterfacePattern: f.InterfacePattern,
	}
	if err := opts.Validate(); err != nil {
		return domain.CacheOptions{}, err
	}
	return opts, nil
}
