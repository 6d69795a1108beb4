package dataset

import (
	"github.com/pkg/errors"

	"github.com/jsphweid/beatdex/rwcclassical"
)

func init() {
	Register(Dataset{
		Name:     rwcclassical.Name,
		TrackIDs: rwcclassical.TrackIDs,
		Track: func(trackID string, dataHome string) (Track, error) {
			t, err := rwcclassical.NewTrack(trackID, dataHome)
			if errors.Is(err, rwcclassical.ErrUnknownTrack) {
				return nil, errors.Wrap(ErrUnknownTrack, err.Error())
			}
			if err != nil {
				return nil, err
			}
			return t, nil
		},
	})
}
