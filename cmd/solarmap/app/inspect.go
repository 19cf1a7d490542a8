package app

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/solarmap/internal/factory"
)

type mapSummary struct {
	Kind        string     `json:"kind" yaml:"kind"`
	Instrument  string     `json:"instrument,omitempty" yaml:"instrument,omitempty"`
	Observatory string     `json:"observatory,omitempty" yaml:"observatory,omitempty"`
	Detector    string     `json:"detector,omitempty" yaml:"detector,omitempty"`
	Date        *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	Wavelength  *float64   `json:"wavelength,omitempty" yaml:"wavelength,omitempty"`
	Shape       []int      `json:"shape" yaml:"shape,flow"`
}

type resultSummary struct {
	Result string       `json:"result" yaml:"result"`
	Count  int          `json:"count" yaml:"count"`
	Maps   []mapSummary `json:"maps" yaml:"maps"`
}

func summarize(res *factory.Result) resultSummary {
	items := res.Maps()
	out := resultSummary{
		Result: res.Kind().String(),
		Count:  len(items),
		Maps:   make([]mapSummary, 0, len(items)),
	}
	for _, m := range items {
		s := mapSummary{
			Kind:        m.Kind(),
			Instrument:  m.Instrument(),
			Observatory: m.Observatory(),
			Detector:    m.Detector(),
			Shape:       m.Shape(),
		}
		if d, ok := m.Date(); ok {
			s.Date = &d
		}
		if w, ok := m.Wavelength(); ok {
			s.Wavelength = &w
		}
		out.Maps = append(out.Maps, s)
	}
	return out
}

// addConstructFlags registers the flags shared by commands that construct maps
func addConstructFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("sequence", false, "Return a date-sorted sequence")
	cmd.Flags().Bool("composite", false, "Return a composite in input order")
	cmd.Flags().StringArray("set", nil, "Override a metadata key before classification (key=value, repeatable)")
	cmd.Flags().Bool("allow-empty", false, "Succeed with an empty result when nothing matches")
}

func constructFlags(cmd *cobra.Command) (factory.Options, map[string]any, error) {
	var opts factory.Options
	var err error
	if opts.Sequence, err = cmd.Flags().GetBool("sequence"); err != nil {
		return opts, nil, err
	}
	if opts.Composite, err = cmd.Flags().GetBool("composite"); err != nil {
		return opts, nil, err
	}
	if opts.AllowEmpty, err = cmd.Flags().GetBool("allow-empty"); err != nil {
		return opts, nil, err
	}
	sets, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return opts, nil, err
	}
	overrides, err := parseOverrides(sets)
	if err != nil {
		return opts, nil, err
	}
	return opts, overrides, nil
}

// construct runs one factory call over the command's arguments
func construct(cmd *cobra.Command, v *viper.Viper, args []string) (*factory.Result, error) {
	opts, overrides, err := constructFlags(cmd)
	if err != nil {
		return nil, err
	}
	inputs, usesCatalog, err := parseInputs(args)
	if err != nil {
		return nil, err
	}

	rt, err := newRuntime(cmd.Context(), v, usesCatalog)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	return rt.factory.Construct(cmd.Context(), rt.options(opts, overrides), inputs...)
}

func newInspectCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [input...]",
		Short: "Construct maps from inputs and describe them",
		Long: `Construct maps from files, directories, glob patterns, URLs or catalog:<id>
references and print one line per map.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			res, err := construct(cmd, v, args)
			if err != nil {
				return err
			}

			summary := summarize(res)
			if format == formatText {
				return writeTable(cmd, summary)
			}
			return render(cmd, format, summary)
		},
	}
	addConstructFlags(cmd)
	cmd.Flags().String("format", formatText, "Output format (text, json, yaml)")
	return cmd
}

func writeTable(cmd *cobra.Command, summary resultSummary) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "# %s, %d map(s)\n", summary.Result, summary.Count)
	_, _ = fmt.Fprintln(tw, "KIND\tINSTRUMENT\tOBSERVATORY\tDATE\tWAVELENGTH\tSHAPE")
	for _, m := range summary.Maps {
		date := "-"
		if m.Date != nil {
			date = m.Date.Format(time.RFC3339Nano)
		}
		wavelength := "-"
		if m.Wavelength != nil {
			wavelength = fmt.Sprintf("%g", *m.Wavelength)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Kind, dash(m.Instrument), dash(m.Observatory), date, wavelength, shape(m.Shape))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shape(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, "x")
}
