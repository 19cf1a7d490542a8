// Package app provides the solarmap command tree.
package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/solarmap/internal/versions"
)

// EnvPrefix prefixes every environment variable solarmap reads
const EnvPrefix = "SOLARMAP"

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// NewRootCmd creates the root command with every subcommand attached.
// Each call returns an independent tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:               "solarmap",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Build solar maps from FITS files, URLs and catalog entries",
		Long: `solarmap turns files, directories, glob patterns, URLs and catalog entries
into classified solar maps, and inspects, saves or catalogs them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format)")
	if err := v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(newInspectCmd(v))
	rootCmd.AddCommand(newSaveCmd(v))
	rootCmd.AddCommand(newCatalogCmd(v))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			info := versions.GetVersionInfo()
			if format == formatText {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "solarmap %s (commit %s, built %s, %s, %s)\n",
					info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
				return err
			}
			return render(cmd, format, info)
		},
	}
	cmd.Flags().String("format", formatText, "Output format (text, json, yaml)")
	return cmd
}

// render writes v as JSON or YAML to the command's output
func render(cmd *cobra.Command, format string, v any) error {
	out := cmd.OutOrStdout()
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
