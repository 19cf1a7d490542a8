package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/solarmap/database"
	"github.com/stacklok/solarmap/internal/catalog"
)

type recordSummary struct {
	ID          int64      `json:"id" yaml:"id"`
	Path        string     `json:"path" yaml:"path"`
	HDU         int        `json:"hdu" yaml:"hdu"`
	Kind        string     `json:"kind" yaml:"kind"`
	Instrument  string     `json:"instrument,omitempty" yaml:"instrument,omitempty"`
	Observatory string     `json:"observatory,omitempty" yaml:"observatory,omitempty"`
	Wavelength  *float64   `json:"wavelength,omitempty" yaml:"wavelength,omitempty"`
	Exposure    string     `json:"exposure,omitempty" yaml:"exposure,omitempty"`
	ObservedAt  *time.Time `json:"observed_at,omitempty" yaml:"observed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
}

func summarizeRecord(rec *catalog.Record) recordSummary {
	s := recordSummary{
		ID:          rec.ID,
		Path:        rec.Path,
		HDU:         rec.HDU,
		Kind:        rec.Kind,
		Instrument:  rec.Instrument,
		Observatory: rec.Observatory,
		Wavelength:  rec.Wavelength,
		ObservedAt:  rec.ObservedAt,
		CreatedAt:   rec.CreatedAt,
	}
	if rec.Exposure.Valid {
		s.Exposure = rec.Exposure.String()
	}
	return s
}

func newCatalogCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the observation catalog",
		Long: `Manage the PostgreSQL observation catalog. Cataloged images can be passed to
inspect and save as catalog:<id>.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	cmd.AddCommand(newCatalogAddCmd(v))
	cmd.AddCommand(newCatalogGetCmd(v))
	cmd.AddCommand(newCatalogRemoveCmd(v))
	cmd.AddCommand(newCatalogMigrateCmd(v))
	return cmd
}

func newCatalogAddCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <path...>",
		Short: "Catalog FITS files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hdu, err := cmd.Flags().GetInt("hdu")
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd.Context(), v, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			for _, path := range args {
				entry, err := rt.store.AddHDU(cmd.Context(), path, hdu)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s%d\t%s\n", catalogPrefix, entry.ID, path)
			}
			return nil
		},
	}
	cmd.Flags().Int("hdu", 0, "Index of the image to catalog within each file")
	return cmd
}

func newCatalogGetCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a catalog record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd.Context(), v, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			rec, err := rt.store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(cmd, format, summarizeRecord(rec))
		},
	}
	cmd.Flags().String("format", formatYAML, "Output format (json, yaml)")
	return cmd
}

func newCatalogRemoveCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a catalog record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd.Context(), v, true)
			if err != nil {
				return err
			}
			defer rt.Close()
			return rt.store.Remove(cmd.Context(), id)
		},
	}
}

func newCatalogMigrateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or revert catalog schema migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := cmd.Flags().GetInt("num-steps")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if cfg.Catalog == nil {
				return errCatalogNotConfigured
			}
			connString, err := cfg.Catalog.GetConnectionString()
			if err != nil {
				return fmt.Errorf("failed to get catalog connection string: %w", err)
			}

			switch args[0] {
			case "up":
				version, err := database.MigrateUp(connString)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "catalog schema at version %d\n", version)
				return nil
			case "down":
				return database.MigrateDown(connString, steps)
			default:
				return fmt.Errorf("unknown direction %q: want up or down", args[0])
			}
		},
	}
	cmd.Flags().IntP("num-steps", "n", 1, "Number of migrations to revert with down")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid catalog id %q", s)
	}
	return id, nil
}
