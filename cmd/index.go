package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jsphweid/beatdex/dataset"
)

func newIndexCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Creates a checksum index of the dataset",
		Long: `Creates a checksum index of the dataset.

Every existing audio and annotation file is hashed with blake3 and recorded
in a YAML index that validate can later check the collection against.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}
			idx, err := dataset.BuildIndex(ds, opts.cfg.DataHome)
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(opts.cfg.DataHome, dataset.DefaultIndexFile)
			}
			if err := idx.WriteFile(output); err != nil {
				return err
			}
			opts.logger.Info("index written", "dataset", ds.Name, "tracks", len(idx.Tracks), "path", output)
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d tracks into %s\n", len(idx.Tracks), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "index file (default <data-home>/"+dataset.DefaultIndexFile+")")
	return cmd
}
