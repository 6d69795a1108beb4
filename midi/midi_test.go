package midi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/beatdex/annotation"
)

type click struct {
	key    uint8
	micros int64
}

func readClicks(t *testing.T, s *smf.SMF) ([]click, uint8) {
	t.Helper()
	var clicks []click
	var num uint8
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var ch, key, vel, denom uint8
			switch {
			case event.Message.GetNoteOn(&ch, &key, &vel):
				clicks = append(clicks, click{key: key, micros: s.TimeAt(absTicks)})
			case event.Message.GetMetaMeter(&num, &denom):
			}
		}
	}
	return clicks, num
}

func TestWriteClickTrackRoundTrip(t *testing.T) {
	beats, err := annotation.NewBeatData([]float64{1.5, 2, 2.5, 3}, []int{2, 1, 2, 1})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "click.mid")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteClickTrack(f, beats, ClickOptions{Name: "RM-C003"}))
	require.NoError(t, f.Close())

	s, err := ReadMidiFile(path)
	require.NoError(t, err)

	clicks, meter := readClicks(t, s)
	assert := assert.New(t)
	assert.Equal(uint8(2), meter)
	assert.Equal([]click{
		{DefaultBeatKey, 1500000},
		{DefaultDownbeatKey, 2000000},
		{DefaultBeatKey, 2500000},
		{DefaultDownbeatKey, 3000000},
	}, clicks)
}

func TestClickTrackCustomKeys(t *testing.T) {
	beats, err := annotation.NewBeatData([]float64{0, 0.5, 1, 1.5}, []int{1, 2, 3, 1})
	require.NoError(t, err)

	s, err := ClickTrack(beats, ClickOptions{DownbeatKey: 60, BeatKey: 62})
	require.NoError(t, err)

	clicks, meter := readClicks(t, s)
	assert.Equal(t, uint8(3), meter)
	var keys []uint8
	for _, c := range clicks {
		keys = append(keys, c.key)
	}
	assert.Equal(t, []uint8{60, 62, 62, 60}, keys)
}

func TestClickTrackNoBeats(t *testing.T) {
	_, err := ClickTrack(nil, ClickOptions{})
	assert.Error(t, err)
}

func TestReadMidiFileMissing(t *testing.T) {
	_, err := ReadMidiFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.ErrorContains(t, err, "could not read midi file")
}

func TestReadMidiFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mid")
	require.NoError(t, os.WriteFile(path, []byte("not a midi file"), 0o644))
	_, err := ReadMidiFile(path)
	assert.Error(t, err)
}
