package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/solarmap/internal/fitsfile"
)

const indexPlaceholder = "{index}"

func newSaveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <destination> <input...>",
		Short: "Construct maps and write them as FITS files",
		Long: `Construct maps from inputs and write each one to a FITS file.
When more than one map is constructed the destination must contain {index},
which is replaced with the map's position in the result.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			overwrite, err := cmd.Flags().GetBool("overwrite")
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString("file-format")
			if err != nil {
				return err
			}

			dest := args[0]
			res, err := construct(cmd, v, args[1:])
			if err != nil {
				return err
			}

			items := res.Maps()
			if len(items) > 1 && !strings.Contains(dest, indexPlaceholder) {
				return fmt.Errorf("%d maps constructed: destination must contain %s", len(items), indexPlaceholder)
			}

			writer := fitsfile.NewWriter(nil)
			for i, m := range items {
				path := strings.ReplaceAll(dest, indexPlaceholder, strconv.Itoa(i))
				if err := writer.Save(m, path, format, overwrite); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	addConstructFlags(cmd)
	cmd.Flags().Bool("overwrite", false, "Replace existing files")
	cmd.Flags().String("file-format", "", "Output file format (inferred from the extension when empty)")
	return cmd
}
