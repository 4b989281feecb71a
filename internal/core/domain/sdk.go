package domain

import (
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// SDK is the build target platform category of a cache record.
type SDK string

const (
	// SDKSimulator builds for the iOS simulator.
	SDKSimulator SDK = "sim"
	// SDKDevice builds for physical iOS devices.
	SDKDevice SDK = "ios"
)

// ArchAuto resolves to the default architecture of the SDK.
const ArchAuto = "auto"

// AllSDKs lists the supported SDKs in build order.
var AllSDKs = []SDK{SDKSimulator, SDKDevice}

var knownArchs = []string{"arm64", "x86_64", ArchAuto}

// ParseSDK converts a user supplied SDK name.
// Both the short form (sim, ios) and the xcodebuild form are accepted.
func ParseSDK(s string) (SDK, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sim", "simulator", "iphonesimulator":
		return SDKSimulator, nil
	case "ios", "device", "iphoneos":
		return SDKDevice, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidSDK, "unknown sdk"), "sdk", s)
	}
}

// ParseSDKs converts and deduplicates a list of SDK names, keeping their order.
func ParseSDKs(names []string) ([]SDK, error) {
	sdks := make([]SDK, 0, len(names))
	for _, name := range names {
		sdk, err := ParseSDK(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(sdks, sdk) {
			sdks = append(sdks, sdk)
		}
	}
	return sdks, nil
}

// ValidateArch reports whether arch is a known architecture name.
func ValidateArch(arch string) error {
	if !slices.Contains(knownArchs, arch) {
		return zerr.With(zerr.Wrap(ErrInvalidArch, "unknown architecture"), "arch", arch)
	}
	return nil
}

// Xcodebuild returns the SDK name understood by xcodebuild.
func (s SDK) Xcodebuild() string {
	if s == SDKDevice {
		return "iphoneos"
	}
	return "iphonesimulator"
}

// DefaultArch returns the architecture used when "auto" is requested.
// Simulator builds target the host, device builds always target arm64.
func (s SDK) DefaultArch() string {
	if s == SDKDevice {
		return "arm64"
	}
	return HostArch()
}

// IsSimulator reports whether the SDK is a simulator variant.
func (s SDK) IsSimulator() bool {
	return s == SDKSimulator
}

// ResolveArchs replaces "auto" with the SDK default and returns the sorted,
// deduplicated set of architectures to build.
func (s SDK) ResolveArchs(archs []string) []string {
	if len(archs) == 0 {
		archs = []string{ArchAuto}
	}
	resolved := make([]string, 0, len(archs))
	for _, arch := range archs {
		if arch == ArchAuto {
			arch = s.DefaultArch()
		}
		// Device builds never include simulator only architectures.
		if s == SDKDevice && arch == "x86_64" {
			continue
		}
		resolved = append(resolved, arch)
	}
	if len(resolved) == 0 {
		resolved = append(resolved, s.DefaultArch())
	}
	slices.Sort(resolved)
	return slices.Compact(resolved)
}

// SliceID returns the xcframework library identifier of a slice built with archs.
func (s SDK) SliceID(archs []string) string {
	id := "ios-" + strings.Join(s.ResolveArchs(archs), "_")
	if s.IsSimulator() {
		id += "-simulator"
	}
	return id
}

// HostArch returns the native architecture of the machine in Apple naming.
func HostArch() string {
	if runtime.GOARCH == "amd64" {
		return "x86_64"
	}
	return "arm64"
}

// Platform returns the xcframework platform variant of the SDK.
// Device slices have no variant.
func (s SDK) Platform() string {
	if s.IsSimulator() {
		return "simulator"
	}
	return ""
}

// ArchLabel returns the resolved architectures in the form stored in cache records.
func (s SDK) ArchLabel(archs []string) string {
	return strings.Join(s.ResolveArchs(archs), ",")
}
