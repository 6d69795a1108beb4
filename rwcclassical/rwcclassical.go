// Package rwcclassical loads the RWC Music Database classical collection:
// audio, metadata table, beat annotations and chorus-section annotations.
package rwcclassical

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jsphweid/beatdex/annotation"
	"github.com/jsphweid/beatdex/audio"
	"github.com/jsphweid/beatdex/beat"
	"github.com/jsphweid/beatdex/jams"
	"github.com/jsphweid/beatdex/model"
	"github.com/jsphweid/beatdex/reader"
	"github.com/jsphweid/beatdex/util"
)

const (
	Name = "RWC-Classical"

	metadataFile   = "metadata-master/rwc-c.csv"
	beatsDir       = "annotations/AIST.RWC-MDB-C-2001.BEAT"
	sectionsDir    = "annotations/AIST.RWC-MDB-C-2001.CHORUS"
	beatsSuffix    = ".BEAT.TXT"
	sectionsSuffix = ".CHORUS.TXT"
	trackPrefix    = "RM-C"
)

var ErrUnknownTrack = errors.New("unknown track id")

// Track is one recording of the collection. Paths are absolute or relative
// to the working directory, following the data home they were built from.
type Track struct {
	TrackID      string
	AudioPath    string
	BeatsPath    string
	SectionsPath string
	model.TrackMetadata

	hasMetadata bool
}

// NewTrack looks trackID up in the collection found under dataHome.
func NewTrack(trackID string, dataHome string) (*Track, error) {
	ids, err := TrackIDs(dataHome)
	if err != nil {
		return nil, err
	}
	if !contains(ids, trackID) {
		return nil, errors.Wrapf(ErrUnknownTrack, "%s in %s", trackID, dataHome)
	}

	metadata, err := LoadMetadata(dataHome)
	if err != nil {
		return nil, err
	}

	t := &Track{
		TrackID:      trackID,
		BeatsPath:    filepath.Join(dataHome, beatsDir, trackID+beatsSuffix),
		SectionsPath: filepath.Join(dataHome, sectionsDir, trackID+sectionsSuffix),
	}
	if m, ok := metadata[trackID]; ok {
		t.TrackMetadata = m
		t.hasMetadata = true
		t.AudioPath = audioPath(dataHome, m)
	}
	return t, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// audioPath follows the CD layout: audio/rwc-c-m01/3.wav for suffix M01, Tr. 03.
func audioPath(dataHome string, m model.TrackMetadata) string {
	digits := strings.TrimSpace(strings.TrimPrefix(m.TrackNumber, "Tr."))
	n, err := strconv.Atoi(digits)
	if err != nil || m.Suffix == "" {
		return ""
	}
	dir := "rwc-c-" + strings.ToLower(m.Suffix)
	return filepath.Join(dataHome, "audio", dir, fmt.Sprintf("%d.wav", n))
}

// Beats loads the beat annotation; nil without error means the track has none.
func (t *Track) Beats() (*annotation.BeatData, error) {
	return LoadBeats(t.BeatsPath)
}

// Sections loads the chorus sections; nil without error means the track has none.
func (t *Track) Sections() (*annotation.SectionData, error) {
	return LoadSections(t.SectionsPath)
}

func (t *Track) Audio() (*audio.Signal, error) {
	if t.AudioPath == "" {
		return nil, errors.Wrapf(reader.ErrAbsent, "no audio listed for %s", t.TrackID)
	}
	return audio.Load(t.AudioPath)
}

func (t *Track) ID() string {
	return t.TrackID
}

func (t *Track) Summary() model.TrackSummary {
	s := model.TrackSummary{
		Dataset:      Name,
		TrackID:      t.TrackID,
		AudioPath:    t.AudioPath,
		BeatsPath:    t.BeatsPath,
		SectionsPath: t.SectionsPath,
	}
	if t.hasMetadata {
		m := t.TrackMetadata
		s.Metadata = &m
	}
	return s
}

// Files lists every file the track is expected to have, keyed by role.
// Annotations stored compressed are listed under their .xz name.
func (t *Track) Files() map[string]string {
	files := map[string]string{
		"beats":    reader.Resolve(t.BeatsPath),
		"sections": reader.Resolve(t.SectionsPath),
	}
	if t.AudioPath != "" {
		files["audio"] = t.AudioPath
	}
	return files
}

// JAMS exports the track's annotations and metadata. Missing annotations are
// left out of the document.
func (t *Track) JAMS() (*jams.JAMS, error) {
	beats, err := t.Beats()
	if err != nil {
		return nil, err
	}
	sections, err := t.Sections()
	if err != nil {
		return nil, err
	}

	meta := jams.FileMetadata{
		Title:       t.Title,
		Artist:      t.Artist,
		Identifiers: map[string]string{"track_id": t.TrackID},
	}
	if t.hasMetadata {
		duration := t.Duration
		meta.Duration = &duration
	}
	return jams.New(meta, jams.FromBeats(beats, Name), jams.FromSections(sections, Name)), nil
}

func (t *Track) String() string {
	return fmt.Sprintf(
		"%s Track(track_id=%s, audio_path=%s, piece_number=%s, suffix=%s, track_number=%s, "+
			"title=%s, composer=%s, artist=%s, duration=%.1f, category=%s, "+
			"sections=SectionData(intervals, labels), beats=BeatData(times, positions))",
		Name, t.TrackID, t.AudioPath, t.PieceNumber, t.Suffix, t.TrackNumber,
		t.Title, t.Composer, t.Artist, t.Duration, t.Category,
	)
}

// TrackIDs returns the sorted ids named by the metadata table or by any
// annotation file under dataHome.
func TrackIDs(dataHome string) ([]string, error) {
	metadata, err := LoadMetadata(dataHome)
	if err != nil {
		return nil, err
	}
	ids := util.GetKeys(metadata)

	for _, d := range []struct{ dir, suffix string }{
		{beatsDir, beatsSuffix},
		{sectionsDir, sectionsSuffix},
	} {
		dir := filepath.Join(dataHome, d.dir)
		for _, suffix := range []string{d.suffix, d.suffix + ".xz"} {
			paths, err := util.GatherPaths(dir, suffix)
			if err != nil && !util.IsNotExist(err) {
				return nil, errors.Wrapf(err, "could not list %s", dir)
			}
			for _, p := range paths {
				ids = append(ids, strings.TrimSuffix(filepath.Base(p), suffix))
			}
		}
	}
	return util.Unique(ids), nil
}

// LoadBeats reads a BEAT.TXT file: beat time in centiseconds in column 0
// and the raw tick code in column 2. A missing file returns (nil, nil).
func LoadBeats(path string) (*annotation.BeatData, error) {
	rows, err := reader.ReadRows(path)
	if errors.Is(err, reader.ErrAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	times := make([]float64, 0, len(rows))
	codes := make([]int, 0, len(rows))
	for i, row := range rows {
		cs, err := reader.Float(row, i+1, 0)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		code, err := reader.Int(row, i+1, 2)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		times = append(times, cs/100)
		codes = append(codes, code)
	}

	positions, times, err := beat.NormalizePositions(codes, times)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return annotation.NewBeatData(times, positions)
}

// LoadSections reads a CHORUS.TXT file: start and end in centiseconds in
// columns 0 and 1, label in column 3 ending in a two-character repetition
// marker that is dropped. A missing file returns (nil, nil).
func LoadSections(path string) (*annotation.SectionData, error) {
	rows, err := reader.ReadRows(path)
	if errors.Is(err, reader.ErrAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	intervals := make([][2]float64, 0, len(rows))
	labels := make([]string, 0, len(rows))
	for i, row := range rows {
		start, err := reader.Float(row, i+1, 0)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		end, err := reader.Float(row, i+1, 1)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		label, err := reader.Field(row, i+1, 3)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		intervals = append(intervals, [2]float64{start / 100, end / 100})
		labels = append(labels, dropRepetitionMarker(label))
	}
	sections, err := annotation.NewSectionData(intervals, labels)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return sections, nil
}

// dropRepetitionMarker removes the last two characters of label.
func dropRepetitionMarker(label string) string {
	runes := []rune(label)
	if len(runes) < 2 {
		return ""
	}
	return strings.TrimSpace(string(runes[:len(runes)-2]))
}
