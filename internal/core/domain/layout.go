package domain

import "path/filepath"

const (
	// BakeDirName is the name of the internal working directory.
	BakeDirName = ".bake"

	// BuildDirName is the name of the toolchain output directory (SYMROOT).
	BuildDirName = "build"

	// DerivedDataDirName is the name of the per-SDK derived data directory.
	DerivedDataDirName = "derived"

	// BundleDirName is the name of the XCFramework directory.
	BundleDirName = "xcframeworks"

	// LogsDirName is the name of the toolchain log directory.
	LogsDirName = "logs"

	// CacheFileName is the name of the cache record file.
	CacheFileName = "cache.yml"

	// MergeLogFileName is the name of the bundle creation log.
	MergeLogFileName = "merge.log"

	// ArchiveDirName is the name of the compressed log directory.
	ArchiveDirName = "archive"

	// HistoryFileName is the name of the run history database.
	HistoryFileName = "history.db"

	// LockFileName is the name of the single writer lock file.
	LockFileName = "bake.lock"

	// ConfigFileName is the base name of the optional configuration file.
	ConfigFileName = ".bake"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultBakePath returns the default root directory for bake metadata.
func DefaultBakePath() string {
	return BakeDirName
}

// DefaultBuildPath returns the toolchain output directory.
// It joins .bake and build.
func DefaultBuildPath() string {
	return filepath.Join(BakeDirName, BuildDirName)
}

// DefaultDerivedDataPath returns the derived data directory of an SDK.
// It joins .bake, derived and the xcodebuild SDK name.
func DefaultDerivedDataPath(sdk SDK) string {
	return filepath.Join(BakeDirName, DerivedDataDirName, sdk.Xcodebuild())
}

// DefaultBundlePath returns the XCFramework directory.
// It joins .bake and xcframeworks.
func DefaultBundlePath() string {
	return filepath.Join(BakeDirName, BundleDirName)
}

// DefaultCacheFilePath returns the cache record file.
// It joins .bake and cache.yml.
func DefaultCacheFilePath() string {
	return filepath.Join(BakeDirName, CacheFileName)
}

// DefaultLogsPath returns the toolchain log directory.
func DefaultLogsPath() string {
	return filepath.Join(BakeDirName, LogsDirName)
}

// BuildLogPath returns the raw toolchain log of one SDK build,
// e.g. .bake/logs/build-iphoneos.log.
func BuildLogPath(sdk SDK) string {
	return filepath.Join(BakeDirName, LogsDirName, "build-"+sdk.Xcodebuild()+".log")
}

// DefaultMergeLogPath returns the log of the bundle creation step.
func DefaultMergeLogPath() string {
	return filepath.Join(BakeDirName, LogsDirName, MergeLogFileName)
}

// DefaultLogArchivePath returns the directory of compressed logs of earlier runs.
func DefaultLogArchivePath() string {
	return filepath.Join(BakeDirName, LogsDirName, ArchiveDirName)
}

// DefaultHistoryPath returns the run history database.
func DefaultHistoryPath() string {
	return filepath.Join(BakeDirName, HistoryFileName)
}

// DefaultLockPath returns the lock file guarding the project directory.
func DefaultLockPath() string {
	return filepath.Join(BakeDirName, LockFileName)
}

// ProductDir returns the directory holding a target's product for one SDK,
// relative to the build directory, e.g. Release-iphoneos/Alamofire.
func ProductDir(configuration string, sdk SDK, target string) string {
	return filepath.Join(configuration+"-"+sdk.Xcodebuild(), target)
}

// Layout resolves the working directory paths of a run below Root.
type Layout struct {
	Root string
}

// BuildDir returns the toolchain output directory (SYMROOT).
func (l Layout) BuildDir() string {
	return filepath.Join(l.Root, DefaultBuildPath())
}

// DerivedDataDir returns the derived data directory of an SDK.
func (l Layout) DerivedDataDir(sdk SDK) string {
	return filepath.Join(l.Root, DefaultDerivedDataPath(sdk))
}

// BundleDir returns the directory holding every XCFramework.
func (l Layout) BundleDir() string {
	return filepath.Join(l.Root, DefaultBundlePath())
}

// BundlePath returns the XCFramework of a module.
func (l Layout) BundlePath(m *Module) string {
	return filepath.Join(l.BundleDir(), m.BundleName())
}

// ProductPath returns the built product of a module for one SDK.
func (l Layout) ProductPath(configuration string, sdk SDK, m *Module) string {
	return filepath.Join(l.BuildDir(), ProductDir(configuration, sdk, m.Name), m.ProductFile())
}

// BuildLog returns the toolchain log of one SDK build.
func (l Layout) BuildLog(sdk SDK) string {
	return filepath.Join(l.Root, BuildLogPath(sdk))
}

// MergeLog returns the log of the bundle creation step.
func (l Layout) MergeLog() string {
	return filepath.Join(l.Root, DefaultMergeLogPath())
}

// LogArchiveDir returns the directory of compressed logs.
func (l Layout) LogArchiveDir() string {
	return filepath.Join(l.Root, DefaultLogArchivePath())
}

// CacheFile returns the cache record file.
func (l Layout) CacheFile() string {
	return filepath.Join(l.Root, DefaultCacheFilePath())
}

// LockFile returns the lock file guarding the working directory.
func (l Layout) LockFile() string {
	return filepath.Join(l.Root, DefaultLockPath())
}

// DerivedDataRoot returns the directory holding the derived data of every SDK.
func (l Layout) DerivedDataRoot() string {
	return filepath.Join(l.Root, BakeDirName, DerivedDataDirName)
}

// LogsDir returns the toolchain log directory.
func (l Layout) LogsDir() string {
	return filepath.Join(l.Root, DefaultLogsPath())
}

// HistoryFile returns the run history database.
func (l Layout) HistoryFile() string {
	return filepath.Join(l.Root, DefaultHistoryPath())
}
