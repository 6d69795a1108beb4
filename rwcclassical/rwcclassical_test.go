package rwcclassical

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/beatdex/jams"
	"github.com/jsphweid/beatdex/model"
	"github.com/jsphweid/beatdex/reader"
)

var dataHome = filepath.Join("..", "testdata", "RWC-Classical")

func TestTrack(t *testing.T) {
	track, err := NewTrack("RM-C003", dataHome)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("RM-C003", track.TrackID)
	assert.Equal(filepath.Join(dataHome, "audio", "rwc-c-m01", "3.wav"), track.AudioPath)
	assert.Equal(filepath.Join(dataHome, "annotations", "AIST.RWC-MDB-C-2001.CHORUS", "RM-C003.CHORUS.TXT"), track.SectionsPath)
	assert.Equal(filepath.Join(dataHome, "annotations", "AIST.RWC-MDB-C-2001.BEAT", "RM-C003.BEAT.TXT"), track.BeatsPath)
	assert.Equal(model.TrackMetadata{
		PieceNumber: "No. 3",
		Suffix:      "M01",
		TrackNumber: "Tr. 03",
		Title:       "Symphony no.5 in C minor, op.67. 1st mvmt.",
		Composer:    "Beethoven, Ludwig van",
		Artist:      "Tokyo City Philharmonic Orchestra",
		Duration:    435,
		Category:    "Symphony",
	}, track.TrackMetadata)

	beats, err := track.Beats()
	require.NoError(t, err)
	assert.NotNil(beats)
	sections, err := track.Sections()
	require.NoError(t, err)
	assert.NotNil(sections)

	assert.Equal(
		"RWC-Classical Track(track_id=RM-C003, audio_path="+track.AudioPath+", "+
			"piece_number=No. 3, suffix=M01, track_number=Tr. 03, "+
			"title=Symphony no.5 in C minor, op.67. 1st mvmt., composer=Beethoven, Ludwig van, "+
			"artist=Tokyo City Philharmonic Orchestra, duration=435.0, category=Symphony, "+
			"sections=SectionData(intervals, labels), beats=BeatData(times, positions))",
		track.String(),
	)
}

func TestUnknownTrack(t *testing.T) {
	_, err := NewTrack("asdfasdf", dataHome)
	assert.True(t, errors.Is(err, ErrUnknownTrack))
}

func TestTrackIDs(t *testing.T) {
	ids, err := TrackIDs(dataHome)
	require.NoError(t, err)
	assert.Equal(t, []string{"RM-C003", "RM-C010", "RM-C025"}, ids)

	ids, err = TrackIDs(filepath.Join(t.TempDir(), "nothing"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestTrackWithoutAnnotations(t *testing.T) {
	track, err := NewTrack("RM-C025", dataHome)
	require.NoError(t, err)

	beats, err := track.Beats()
	require.NoError(t, err)
	assert.Nil(t, beats)

	sections, err := track.Sections()
	require.NoError(t, err)
	assert.Nil(t, sections)

	j, err := track.JAMS()
	require.NoError(t, err)
	assert.Empty(t, j.Annotations)
	assert.Equal(t, 1125.0, *j.FileMetadata.Duration)
}

func TestTrackWithoutMetadata(t *testing.T) {
	track, err := NewTrack("RM-C010", dataHome)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("", track.AudioPath)
	assert.Nil(track.Summary().Metadata)

	beats, err := track.Beats()
	require.NoError(t, err)
	assert.Equal([]float64{1.5, 2, 2.5, 3, 3.5, 4, 4.5}, beats.Times())
	assert.Equal([]int{3, 4, 1, 2, 3, 4, 1}, beats.Positions())

	_, err = track.Audio()
	assert.True(errors.Is(err, reader.ErrAbsent))

	files := track.Files()
	assert.Equal(track.BeatsPath+".xz", files["beats"])
	assert.NotContains(files, "audio")

	j, err := track.JAMS()
	require.NoError(t, err)
	assert.Nil(j.FileMetadata.Duration)
	assert.Len(j.Search(jams.NamespaceBeat), 1)
}

func TestToJAMS(t *testing.T) {
	track, err := NewTrack("RM-C003", dataHome)
	require.NoError(t, err)
	j, err := track.JAMS()
	require.NoError(t, err)

	assert := assert.New(t)
	beatAnns := j.Search(jams.NamespaceBeat)
	require.Len(t, beatAnns, 1)
	var times, durations []float64
	var values []any
	for _, obs := range beatAnns[0].Data {
		times = append(times, obs.Time)
		durations = append(durations, obs.Duration)
		values = append(values, obs.Value)
		assert.Nil(obs.Confidence)
	}
	assert.Equal([]float64{1.65, 2.58, 2.95, 3.33, 3.71, 4.09, 5.18, 6.28}, times)
	assert.Equal(make([]float64, 8), durations)
	assert.Equal([]any{2, 1, 2, 1, 2, 1, 2, 1}, values)

	segments := j.Search(jams.NamespaceSegment)
	require.Len(t, segments, 1)
	require.Len(t, segments[0].Data, 2)
	assert.Equal(0.29, segments[0].Data[0].Time)
	assert.InDelta(45.85, segments[0].Data[0].Duration, 1e-9)
	assert.Equal("chorus A", segments[0].Data[0].Value)
	assert.Equal(419.96, segments[0].Data[1].Time)
	assert.InDelta(13.75, segments[0].Data[1].Duration, 1e-9)
	assert.Equal("ending", segments[0].Data[1].Value)

	assert.Equal("Symphony no.5 in C minor, op.67. 1st mvmt.", j.FileMetadata.Title)
	assert.Equal("Tokyo City Philharmonic Orchestra", j.FileMetadata.Artist)
}

func TestLoadBeats(t *testing.T) {
	beats, err := LoadBeats(filepath.Join(dataHome, "annotations", "AIST.RWC-MDB-C-2001.BEAT", "RM-C003.BEAT.TXT"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.65, 2.58, 2.95, 3.33, 3.71, 4.09, 5.18, 6.28}, beats.Times())
	assert.Equal(t, []int{2, 1, 2, 1, 2, 1, 2, 1}, beats.Positions())

	none, err := LoadBeats("fake/path")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestLoadBeatsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.BEAT.TXT")
	require.NoError(t, os.WriteFile(path, []byte("165\t258\t48\n258\t295\n"), 0o644))
	_, err := LoadBeats(path)
	assert.ErrorContains(t, err, "row 2: missing column 2")
}

func TestLoadSections(t *testing.T) {
	sections, err := LoadSections(filepath.Join(dataHome, "annotations", "AIST.RWC-MDB-C-2001.CHORUS", "RM-C003.CHORUS.TXT"))
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{0.29, 46.14}, {419.96, 433.71}}, sections.Intervals())
	assert.Equal(t, []string{"chorus A", "ending"}, sections.Labels())

	none, err := LoadSections("fake/file/path")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDropRepetitionMarker(t *testing.T) {
	cases := map[string]string{
		"chorus A 1": "chorus A",
		"ending 2":   "ending",
		"サビ 1":       "サビ",
		"サビ":         "",
		"A":          "",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, dropRepetitionMarker(in), in)
	}
}

func TestLoadMetadata(t *testing.T) {
	metadata, err := LoadMetadata(dataHome)
	require.NoError(t, err)
	require.Len(t, metadata, 2)
	assert.Equal(t, "Concerto", metadata["RM-C025"].Category)
	assert.Equal(t, "Tr. 01", metadata["RM-C025"].TrackNumber)

	none, err := LoadMetadata("asdf/asdf")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTrackIDFromPieceNumber(t *testing.T) {
	cases := map[string]string{
		"No. 3":  "RM-C003",
		"No. 25": "RM-C025",
		"No.50":  "RM-C050",
	}
	for in, want := range cases {
		got, err := TrackIDFromPieceNumber(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := TrackIDFromPieceNumber("Three")
	assert.Error(t, err)
}

func TestDurationToSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"7:15", 435},
		{"18:45", 1125},
		{"5:36:00", 336},
	}
	for _, tc := range cases {
		got, err := DurationToSeconds(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	for _, bad := range []string{"435", "a:b", "1:2:3:4"} {
		_, err := DurationToSeconds(bad)
		assert.Error(t, err, bad)
	}
}

func TestTrackAudio(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "metadata-master"), 0o755))
	csv, err := os.ReadFile(filepath.Join(dataHome, "metadata-master", "rwc-c.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(home, "metadata-master", "rwc-c.csv"), csv, 0o644))

	track, err := NewTrack("RM-C003", home)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(track.AudioPath), 0o755))

	f, err := os.Create(track.AudioPath)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           make([]int, 44100*2),
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	sig, err := track.Audio()
	require.NoError(t, err)
	assert.Equal(t, 44100, sig.SampleRate)
	assert.Len(t, sig.Samples, 44100*2)
}
