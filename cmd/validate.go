package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jsphweid/beatdex/dataset"
)

func newValidateCommand(opts *rootOptions) *cobra.Command {
	var indexPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Checks the dataset against its checksum index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if indexPath == "" {
				indexPath = filepath.Join(opts.cfg.DataHome, dataset.DefaultIndexFile)
			}
			idx, err := dataset.ReadIndexFile(indexPath)
			if err != nil {
				return err
			}
			report, err := dataset.Validate(idx, opts.cfg.DataHome)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.wantJSON() {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				for _, p := range report.Missing {
					fmt.Fprintf(out, "missing\t%s\t%s\n", p.TrackID, p.Path)
				}
				for _, p := range report.Mismatch {
					fmt.Fprintf(out, "checksum\t%s\t%s\n", p.TrackID, p.Path)
				}
				if report.OK() {
					fmt.Fprintf(out, "All %d files valid\n", report.Checked)
				}
			}

			if !report.OK() {
				return fmt.Errorf("%d missing, %d changed of %d files", len(report.Missing), len(report.Mismatch), report.Checked)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indexPath, "index", "", "index file (default <data-home>/"+dataset.DefaultIndexFile+")")
	return cmd
}
