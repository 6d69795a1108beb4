// Package dataset gives every supported collection the same shape: list
// track ids, open a track, enumerate its files.
package dataset

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/jsphweid/beatdex/annotation"
	"github.com/jsphweid/beatdex/jams"
	"github.com/jsphweid/beatdex/model"
)

var (
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrUnknownTrack   = errors.New("unknown track")
)

// Track is the uniform per-track view. Beats and Sections return nil
// without error when the track has no such annotation.
type Track interface {
	ID() string
	Beats() (*annotation.BeatData, error)
	Sections() (*annotation.SectionData, error)
	JAMS() (*jams.JAMS, error)
	Summary() model.TrackSummary
	Files() map[string]string
}

type Dataset struct {
	Name     string
	TrackIDs func(dataHome string) ([]string, error)
	Track    func(trackID string, dataHome string) (Track, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Dataset{}
)

// Register makes a dataset available by name. Registering a name twice panics.
func Register(ds Dataset) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[ds.Name]; ok {
		panic("dataset registered twice: " + ds.Name)
	}
	registry[ds.Name] = ds
}

func Get(name string) (Dataset, error) {
	mu.RLock()
	defer mu.RUnlock()
	ds, ok := registry[name]
	if !ok {
		return Dataset{}, errors.Wrap(ErrUnknownDataset, name)
	}
	return ds, nil
}

func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
