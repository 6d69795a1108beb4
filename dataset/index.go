package dataset

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/jsphweid/beatdex/model"
	"github.com/jsphweid/beatdex/util"
)

const DefaultIndexFile = "beatdex-index.yaml"

// FileEntry is one indexed file. Path is relative to the data home.
type FileEntry struct {
	Path     string `yaml:"path"`
	Checksum string `yaml:"blake3"`
}

// Index records the checksum of every file a dataset's tracks reference.
type Index struct {
	Dataset string                          `yaml:"dataset"`
	Tracks  map[string]map[string]FileEntry `yaml:"tracks"`
}

// Checksum returns the hex blake3 digest of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "could not hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// BuildIndex checksums every existing file of every track. Files that do not
// exist are left out; they are optional for the track.
func BuildIndex(ds Dataset, dataHome string) (*Index, error) {
	ids, err := ds.TrackIDs(dataHome)
	if err != nil {
		return nil, err
	}

	idx := &Index{Dataset: ds.Name, Tracks: map[string]map[string]FileEntry{}}
	for _, id := range ids {
		track, err := ds.Track(id, dataHome)
		if err != nil {
			return nil, err
		}
		entries := map[string]FileEntry{}
		files := track.Files()
		for _, role := range util.GetKeys(files) {
			path := files[role]
			if !util.FileExists(path) {
				continue
			}
			sum, err := Checksum(path)
			if err != nil {
				return nil, err
			}
			rel, err := filepath.Rel(dataHome, path)
			if err != nil {
				return nil, errors.Wrapf(err, "%s is outside %s", path, dataHome)
			}
			entries[role] = FileEntry{Path: filepath.ToSlash(rel), Checksum: sum}
		}
		idx.Tracks[id] = entries
	}
	return idx, nil
}

func (idx *Index) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(idx); err != nil {
		return errors.Wrap(err, "could not encode index")
	}
	return enc.Close()
}

func (idx *Index) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	defer f.Close()
	return idx.Write(f)
}

func ReadIndex(r io.Reader) (*Index, error) {
	var idx Index
	if err := yaml.NewDecoder(r).Decode(&idx); err != nil {
		return nil, errors.Wrap(err, "could not decode index")
	}
	if idx.Tracks == nil {
		idx.Tracks = map[string]map[string]FileEntry{}
	}
	return &idx, nil
}

func ReadIndexFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open index %s", path)
	}
	defer f.Close()
	return ReadIndex(f)
}

// Validate re-hashes every indexed file under dataHome and reports files
// that are gone or whose content changed.
func Validate(idx *Index, dataHome string) (model.ValidationReport, error) {
	report := model.ValidationReport{Dataset: idx.Dataset}
	for _, id := range util.GetKeys(idx.Tracks) {
		entries := idx.Tracks[id]
		for _, role := range util.GetKeys(entries) {
			entry := entries[role]
			path := filepath.Join(dataHome, filepath.FromSlash(entry.Path))
			report.Checked++

			sum, err := Checksum(path)
			if util.IsNotExist(err) {
				report.Missing = append(report.Missing, model.FileProblem{TrackID: id, Path: entry.Path, Reason: "missing"})
				continue
			}
			if err != nil {
				return report, err
			}
			if sum != entry.Checksum {
				report.Mismatch = append(report.Mismatch, model.FileProblem{TrackID: id, Path: entry.Path, Reason: "checksum"})
			}
		}
	}
	return report, nil
}
