package ports

import "go.trai.ch/bake/internal/core/domain"

// Project is the mutable target graph of an Xcode project.
//
// Mutating methods report whether the project changed. Nothing is written
// to disk until Save is called, except schemes which live in their own files.
//
//go:generate mockgen -source=project.go -destination=mocks/mock_project.go -package=mocks
type Project interface {
	// Path returns the path of the .xcodeproj bundle.
	Path() string

	// Targets returns every target of the project in declaration order.
	Targets() []domain.Target

	// SourceGroup returns the navigator group holding the sources of a pod.
	SourceGroup(name string) (domain.SourceGroup, bool)

	// RemoveSourceGroups removes the pods' source groups, their file references
	// and every build file that references them.
	RemoveSourceGroups(names []string) bool

	// RemoveProducts removes product references with the given file names
	// and the build files that link them.
	RemoveProducts(files []string) bool

	// RemoveTarget removes a target together with its build phases,
	// configurations and every dependency pointing at it.
	RemoveTarget(name string) bool

	// RemoveDependency removes the dependency edge from -> to.
	RemoveDependency(from, to string) bool

	// AddDependency adds a dependency edge from -> to.
	AddDependency(from, to string) error

	// AddAggregateTarget adds an aggregate target depending on the given targets.
	AddAggregateTarget(name string, dependencies []string) error

	// CreateScheme writes a shared scheme building the given target.
	CreateScheme(name, target string) error

	// RemoveSchemes deletes every scheme that only builds targets in the given set.
	RemoveSchemes(targets []string) (bool, error)

	// BuildSetting returns a build setting of the project level configurations.
	BuildSetting(key string) string

	// SetBuildSetting sets a build setting on every project level configuration.
	SetBuildSetting(key, value string)

	// Save writes the project atomically.
	Save() error

	// Revert restores the project file loaded from disk and deletes schemes created since.
	Revert() error
}

// ProjectLoader opens projects.
type ProjectLoader interface {
	// Load reads and parses the project at path.
	Load(path string) (Project, error)
}
