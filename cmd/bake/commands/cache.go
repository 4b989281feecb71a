package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.trai.ch/bake/internal/core/domain"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	defaults := domain.DefaultCacheOptions()
	sdks := make([]string, 0, len(defaults.SDKs))
	for _, sdk := range defaults.SDKs {
		sdks = append(sdks, string(sdk))
	}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Build changed pods and replace them by cached xcframeworks",
		Long: "Build every pod whose sources changed since the last run, merge the products " +
			"into xcframeworks and replace the pod targets of the Pods project by them.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			opts, err := c.app.LoadOptions(configPath)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd.Flags(), &opts); err != nil {
				return err
			}

			report, err := c.app.Cache(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return renderReport(cmd.OutOrStdout(), report)
		},
	}

	f := cmd.Flags()
	f.StringSlice("sdk", sdks, "SDKs to build: sim, ios")
	f.StringSlice("arch", defaults.Archs, "Architectures to build, or auto for the SDK default")
	f.StringSlice("exclude", nil, "Pods to keep as source, together with every pod depending on them")
	f.StringSlice("include", nil, "Local pods to cache as well")
	f.StringSlice("focus", nil, "Pods to keep as source while caching all other pods")
	f.Bool("graph", defaults.Graph, "Rebuild the dependents of changed pods")
	f.Bool("keep-sources", defaults.KeepSources, "Keep the source references of cached pods in the project")
	f.Bool("relative-paths", defaults.RelativePaths, "Reference xcframeworks relative to PODS_ROOT")
	f.Bool("skip-debug-symbols", defaults.SkipDebugSymbols, "Do not bundle dSYMs into the xcframeworks")
	f.Bool("ignore-checksums", defaults.IgnoreChecksums, "Rebuild every selected pod")
	f.Bool("mtime-checksums", false, "Fingerprint sources by size and modification time")
	f.Bool("bitcode", defaults.Bitcode, "Build with bitcode enabled")
	f.String("project", defaults.ProjectPath, "Path to the Pods project")
	f.String("configuration", defaults.Configuration, "Build configuration of the cached frameworks")
	f.StringP("config", "c", "", "Path to a .bake.yaml file or the directory holding it")

	return cmd
}

// applyFlags overrides opts with every flag set on the command line.
func applyFlags(f *pflag.FlagSet, opts *domain.CacheOptions) error {
	if f.Changed("sdk") {
		names, _ := f.GetStringSlice("sdk")
		sdks, err := domain.ParseSDKs(names)
		if err != nil {
			return err
		}
		opts.SDKs = sdks
	}

	lists := map[string]*[]string{
		"arch":    &opts.Archs,
		"exclude": &opts.Exclude,
		"include": &opts.Include,
		"focus":   &opts.Focus,
	}
	for name, dst := range lists {
		if f.Changed(name) {
			*dst, _ = f.GetStringSlice(name)
		}
	}

	bools := map[string]*bool{
		"graph":              &opts.Graph,
		"keep-sources":       &opts.KeepSources,
		"relative-paths":     &opts.RelativePaths,
		"skip-debug-symbols": &opts.SkipDebugSymbols,
		"ignore-checksums":   &opts.IgnoreChecksums,
		"bitcode":            &opts.Bitcode,
	}
	for name, dst := range bools {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}

	if f.Changed("mtime-checksums") {
		mtime, _ := f.GetBool("mtime-checksums")
		opts.ChecksumMode = domain.ChecksumContent
		if mtime {
			opts.ChecksumMode = domain.ChecksumModTime
		}
	}

	strs := map[string]*string{
		"project":       &opts.ProjectPath,
		"configuration": &opts.Configuration,
	}
	for name, dst := range strs {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	return nil
}
