package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/wdm0006/catfill/pkg/report"
)

func newAssociationsCmd(a *app) *cobra.Command {
	var (
		src    Source
		step   contingencyStep
		noCorrection bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "associations <data-file>",
		Short: "Print the most associated driver column for each categorical column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.Path = args[0]
			f, err := readFrame(src)
			if err != nil {
				return err
			}
			if noCorrection {
				off := false
				step.Correction = &off
			}
			ci, err := step.imputer(a.cfg.Workers, a.log)
			if err != nil {
				return err
			}
			columns := ci.Columns
			if len(columns) == 0 {
				columns = f.CategoricalNames()
			}
			finder := ci.Finder()
			res, err := finder.Find(cmd.Context(), f, columns)
			if err != nil {
				return err
			}
			a.log.Debug("associations found", "columns", len(columns), "drivers", res.Len())
			drivers := report.Drivers(res)
			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(drivers)
			}
			return report.WriteDrivers(cmd.OutOrStdout(), drivers)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&src.Type, "type", "", "input format: csv, jsonl or parquet (default from extension)")
	fl.StringSliceVar(&src.ForceString, "force-string", nil, "columns read as categories even if numeric")
	fl.StringSliceVar(&src.NullTokens, "null-tokens", nil, "cell texts read as missing (default \"\",NA,NaN,nan,null,NULL,None)")
	fl.StringSliceVar(&step.Columns, "columns", nil, "candidate columns in tie-break order (default all string columns)")
	fl.StringSliceVar(&step.Ignore, "ignore", nil, "columns to leave out")
	fl.StringVar(&step.IgnoreScope, "ignore-scope", "both", "both: ignored columns are neither targets nor drivers; drivers: never drivers")
	fl.BoolVar(&noCorrection, "no-correction", false, "disable the Yates continuity correction on 2x2 tables")
	fl.StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}
