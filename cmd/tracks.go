package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsphweid/beatdex/beat"
	"github.com/jsphweid/beatdex/midi"
	"github.com/jsphweid/beatdex/model"
)

func newTracksCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "Lists track ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}
			ids, err := ds.TrackIDs(opts.cfg.DataHome)
			if err != nil {
				return err
			}
			if opts.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), model.TracksResponse{Dataset: ds.Name, TrackIDs: ids})
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newInfoCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <track-id>",
		Short: "Shows a track's paths and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := opts.openTrack(args[0])
			if err != nil {
				return err
			}
			if opts.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), track.Summary())
			}
			fmt.Fprintln(cmd.OutOrStdout(), track)
			return nil
		},
	}
}

func newBeatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "beats <track-id>",
		Short: "Prints beat times and positions within the bar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := opts.openTrack(args[0])
			if err != nil {
				return err
			}
			beats, err := track.Beats()
			if err != nil {
				return err
			}
			if beats == nil {
				// absence is not a failure
				fmt.Fprintf(cmd.ErrOrStderr(), "no beat annotation for %s\n", track.ID())
				if opts.wantJSON() {
					fmt.Fprintln(cmd.OutOrStdout(), "null")
				}
				return nil
			}

			if opts.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), model.BeatsResponse{
					TrackID:   track.ID(),
					Times:     beats.Times(),
					Positions: beats.Positions(),
					Meter:     beat.Meter(beats.Positions()),
				})
			}
			for i := 0; i < beats.Len(); i++ {
				t, pos := beats.At(i)
				fmt.Fprintf(cmd.OutOrStdout(), "%.2f\t%d\n", t, pos)
			}
			return nil
		},
	}
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <track-id>",
		Short: "Exports a track to JAMS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := opts.openTrack(args[0])
			if err != nil {
				return err
			}
			j, err := track.JAMS()
			if err != nil {
				return err
			}
			if output == "" {
				return j.Encode(cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := j.Encode(f); err != nil {
				return err
			}
			opts.logger.Info("exported jams", "track_id", track.ID(), "path", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newClickCommand(opts *rootOptions) *cobra.Command {
	var (
		output string
		click  midi.ClickOptions
	)

	cmd := &cobra.Command{
		Use:   "click <track-id>",
		Short: "Renders a track's beats as a MIDI click track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := opts.openTrack(args[0])
			if err != nil {
				return err
			}
			beats, err := track.Beats()
			if err != nil {
				return err
			}
			if beats == nil {
				return fmt.Errorf("no beat annotation for %s", track.ID())
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			click.Name = track.ID()
			if err := midi.WriteClickTrack(f, beats, click); err != nil {
				return err
			}
			opts.logger.Info("wrote click track", "track_id", track.ID(), "path", output, "beats", beats.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "midi file to write")
	cmd.Flags().Float64Var(&click.Tempo, "tempo", midi.DefaultTempo, "tempo written to the file")
	cmd.Flags().Uint8Var(&click.DownbeatKey, "downbeat-key", midi.DefaultDownbeatKey, "note for position 1")
	cmd.Flags().Uint8Var(&click.BeatKey, "beat-key", midi.DefaultBeatKey, "note for other positions")
	cmd.MarkFlagRequired("output")
	return cmd
}
