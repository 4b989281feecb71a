package domain

// ProductType is the kind of binary a module target produces.
type ProductType string

const (
	// ProductFramework is a dynamic or static framework bundle.
	ProductFramework ProductType = "com.apple.product-type.framework"
	// ProductStaticLibrary is a static library archive.
	ProductStaticLibrary ProductType = "com.apple.product-type.library.static"
	// ProductBundle is a resource bundle. Bundles are never cached.
	ProductBundle ProductType = "com.apple.product-type.bundle"
)

// Module is a pod with its own build target.
type Module struct {
	// Name is the target name and the module identity.
	Name string
	// ProductName is the name of the built product without extension.
	ProductName string
	// ProductType is the kind of product the target builds.
	ProductType ProductType
	// Dependencies lists the names of the modules this module depends on.
	Dependencies []string
	// SourceDir is the absolute path of the module's source tree.
	SourceDir string
	// Local is set for development pods living outside the Pods directory.
	Local bool
}

// ProductFile returns the file name of the module's build product.
func (m *Module) ProductFile() string {
	if m.ProductType == ProductStaticLibrary {
		return "lib" + m.ProductName + ".a"
	}
	return m.ProductName + ".framework"
}

// BundleName returns the file name of the module's XCFramework.
func (m *Module) BundleName() string {
	return m.Name + ".xcframework"
}

// IsCacheable reports whether the product type can be turned into a bundle.
func (p ProductType) IsCacheable() bool {
	return p == ProductFramework || p == ProductStaticLibrary
}

// TargetKind distinguishes native targets from aggregate targets.
type TargetKind string

const (
	// TargetNative compiles sources into a product.
	TargetNative TargetKind = "PBXNativeTarget"
	// TargetAggregate only groups dependencies.
	TargetAggregate TargetKind = "PBXAggregateTarget"
)

// Target is a build target of the project graph.
type Target struct {
	Name         string
	Kind         TargetKind
	ProductName  string
	ProductType  ProductType
	Dependencies []string
}

// SourceGroup is the navigator group holding a pod's source files.
type SourceGroup struct {
	Name string
	// Dir is the absolute directory the group points to.
	Dir string
	// Local is set for groups under "Development Pods".
	Local bool
}
