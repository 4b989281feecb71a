package config

// BakeFile represents the structure of the .bake.yaml configuration file.
type BakeFile struct {
	SDK              []string `mapstructure:"sdk"`
	Arch             []string `mapstructure:"arch"`
	Exclude          []string `mapstructure:"exclude"`
	Include          []string `mapstructure:"include"`
	Focus            []string `mapstructure:"focus"`
	Graph            bool     `mapstructure:"graph"`
	KeepSources      bool     `mapstructure:"keepSources"`
	RelativePaths    bool     `mapstructure:"relativePaths"`
	SkipDebugSymbols bool     `mapstructure:"skipDebugSymbols"`
	IgnoreChecksums  bool     `mapstructure:"ignoreChecksums"`
	Checksums        string   `mapstructure:"checksums"`
	Bitcode          bool     `mapstructure:"bitcode"`
	Configuration    string   `mapstructure:"configuration"`
	Project          string   `mapstructure:"project"`
	XcconfigPattern  string   `mapstructure:"xcconfigPattern"`
	InterfacePattern string   `mapstructure:"interfacePattern"`
}
