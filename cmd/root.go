package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jsphweid/beatdex/config"
	"github.com/jsphweid/beatdex/constants"
	"github.com/jsphweid/beatdex/dataset"
	"github.com/jsphweid/beatdex/logging"
)

var validFormats = []string{"text", "json"}

type rootOptions struct {
	configPath string
	dataHome   string
	dataset    string
	format     string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "beatdex",
		Short: "Music annotation dataset loader",
		Long: `beatdex loads music annotation datasets (audio, metadata, beats, sections),
recovers beat positions within the bar and exports tracks to JAMS or MIDI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "config file")
	flags.StringVar(&opts.dataHome, "data-home", "", "dataset root directory (overrides config)")
	flags.StringVar(&opts.dataset, "dataset", "", "dataset name (overrides config)")
	flags.StringVar(&opts.format, "format", "text", "output format (json|text)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newTracksCommand(opts))
	cmd.AddCommand(newInfoCommand(opts))
	cmd.AddCommand(newBeatsCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newClickCommand(opts))
	cmd.AddCommand(newIndexCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newServeCommand(opts))

	return cmd
}

func Execute() {
	cobra.CheckErr(NewRootCommand().Execute())
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.format, validFormats)
	}

	cfg, err := config.Load(o.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if o.dataHome != "" {
		cfg.DataHome = o.dataHome
	}
	if o.dataset != "" {
		cfg.Dataset = o.dataset
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	o.cfg = cfg

	o.logger = logging.Init(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	o.logger.Debug("config loaded", "data_home", cfg.DataHome, "dataset", cfg.Dataset)
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *rootOptions) openDataset() (dataset.Dataset, error) {
	return dataset.Get(o.cfg.Dataset)
}

func (o *rootOptions) openTrack(trackID string) (dataset.Track, error) {
	ds, err := o.openDataset()
	if err != nil {
		return nil, err
	}
	o.logger.Debug("opening track", "dataset", ds.Name, "track_id", trackID)
	return ds.Track(trackID, o.cfg.DataHome)
}

func (o *rootOptions) wantJSON() bool {
	return o.format == "json"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
