package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// ChecksumMode selects which file attributes feed a module checksum.
type ChecksumMode string

const (
	// ChecksumContent hashes file contents.
	ChecksumContent ChecksumMode = "content"
	// ChecksumModTime hashes file sizes and modification times.
	ChecksumModTime ChecksumMode = "mtime"
)

const (
	// DefaultConfiguration is the build configuration used for cached bundles.
	DefaultConfiguration = "Release"

	// DefaultProjectPath is the Pods project relative to the working directory.
	DefaultProjectPath = "Pods/Pods.xcodeproj"

	// DefaultXcconfigPattern selects the xcconfig files generated by CocoaPods.
	DefaultXcconfigPattern = `Target Support Files/.+\.xcconfig$`

	// DefaultInterfacePattern selects the module interface files inside bundles,
	// public and private ones alike.
	DefaultInterfacePattern = `\.swiftinterface$`
)

// CacheOptions configures one cache run.
type CacheOptions struct {
	SDKs             []SDK
	Archs            []string
	Exclude          []string
	Include          []string
	Focus            []string
	Graph            bool
	KeepSources      bool
	RelativePaths    bool
	SkipDebugSymbols bool
	IgnoreChecksums  bool
	ChecksumMode     ChecksumMode
	Bitcode          bool
	Configuration    string
	ProjectPath      string
	XcconfigPattern  string
	InterfacePattern string
}

// DefaultCacheOptions returns the options used when no flag is given.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		SDKs:             []SDK{SDKSimulator},
		Archs:            []string{ArchAuto},
		Graph:            true,
		RelativePaths:    true,
		ChecksumMode:     ChecksumContent,
		Configuration:    DefaultConfiguration,
		ProjectPath:      DefaultProjectPath,
		XcconfigPattern:  DefaultXcconfigPattern,
		InterfacePattern: DefaultInterfacePattern,
	}
}

// Validate checks the options for unsupported values.
func (o *CacheOptions) Validate() error {
	if len(o.SDKs) == 0 {
		return zerr.Wrap(ErrInvalidSDK, "at least one sdk is required")
	}
	for _, arch := range o.Archs {
		if err := ValidateArch(arch); err != nil {
			return err
		}
	}
	if o.ChecksumMode != ChecksumContent && o.ChecksumMode != ChecksumModTime {
		return zerr.With(zerr.Wrap(ErrInvalidChecksumMode, "unsupported checksum mode"), "mode", string(o.ChecksumMode))
	}
	return nil
}

// BuildFlags returns the xcodebuild settings used for every cached build.
// They take part in checksum staleness checks.
func (o *CacheOptions) BuildFlags() []string {
	debugFormat := "dwarf-with-dsym"
	if o.SkipDebugSymbols {
		debugFormat = "dwarf"
	}
	bitcode := "NO"
	if o.Bitcode {
		bitcode = "YES"
	}
	flags := []string{
		"BUILD_LIBRARY_FOR_DISTRIBUTION=YES",
		"COMPILER_INDEX_STORE_ENABLE=NO",
		"DEBUG_INFORMATION_FORMAT=" + debugFormat,
		"ENABLE_BITCODE=" + bitcode,
		"ONLY_ACTIVE_ARCH=NO",
		"SKIP_INSTALL=NO",
		"SWIFT_COMPILATION_MODE=wholemodule",
	}
	slices.Sort(flags)
	return flags
}

// IsFocused reports whether the module was focused by the caller.
func (o *CacheOptions) IsFocused(name string) bool {
	return slices.Contains(o.Focus, name)
}
