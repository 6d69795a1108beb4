package midi

import (
	"bytes"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/beatdex/annotation"
	"github.com/jsphweid/beatdex/beat"
)

const (
	DefaultDownbeatKey = 76 // high wood block
	DefaultBeatKey     = 77 // low wood block
	DefaultResolution  = 960
	DefaultTempo       = 120.0
	percussionChannel  = 9
)

// ClickOptions controls how beats become notes. Zero values use the defaults.
type ClickOptions struct {
	DownbeatKey uint8
	BeatKey     uint8
	Velocity    uint8
	Resolution  uint16 // ticks per quarter note
	Tempo       float64
	Name        string
}

func (o ClickOptions) withDefaults() ClickOptions {
	if o.DownbeatKey == 0 {
		o.DownbeatKey = DefaultDownbeatKey
	}
	if o.BeatKey == 0 {
		o.BeatKey = DefaultBeatKey
	}
	if o.Velocity == 0 {
		o.Velocity = 100
	}
	if o.Resolution == 0 {
		o.Resolution = DefaultResolution
	}
	if o.Tempo == 0 {
		o.Tempo = DefaultTempo
	}
	return o
}

// ticksAt converts seconds to ticks at a constant tempo.
func ticksAt(seconds float64, o ClickOptions) uint32 {
	ticksPerSecond := float64(o.Resolution) * o.Tempo / 60
	return uint32(math.Round(seconds * ticksPerSecond))
}

// ClickTrack renders beats as a single-track SMF. Downbeats use
// DownbeatKey, all other positions use BeatKey. Each click lasts a 32nd note.
func ClickTrack(b *annotation.BeatData, opts ClickOptions) (*smf.SMF, error) {
	if b == nil {
		return nil, errors.New("no beat annotation to render")
	}
	o := opts.withDefaults()
	clock := smf.MetricTicks(o.Resolution)
	clickLen := clock.Ticks32th()

	var tr smf.Track
	if o.Name != "" {
		tr.Add(0, smf.MetaTrackSequenceName(o.Name))
	}
	if meter := beat.Meter(b.Positions()); meter > 0 && meter <= math.MaxUint8 {
		tr.Add(0, smf.MetaMeter(uint8(meter), 4))
	}
	tr.Add(0, smf.MetaTempo(o.Tempo))

	var now uint32
	for i := 0; i < b.Len(); i++ {
		t, pos := b.At(i)
		key := o.BeatKey
		if pos == 1 {
			key = o.DownbeatKey
		}
		start := ticksAt(t, o)
		if start < now {
			// beats closer than a click overlap; start right after the previous one
			start = now
		}
		tr.Add(start-now, midi.NoteOn(percussionChannel, key, o.Velocity))
		tr.Add(clickLen, midi.NoteOff(percussionChannel, key))
		now = start + clickLen
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = clock
	if err := s.Add(tr); err != nil {
		return nil, errors.Wrap(err, "could not add click track")
	}
	return s, nil
}

// WriteClickTrack renders beats and writes the SMF to w.
func WriteClickTrack(w io.Writer, b *annotation.BeatData, opts ClickOptions) error {
	s, err := ClickTrack(b, opts)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF
	var err error

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "could not read midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, errors.Wrap(err, "could not parse midi file")
	}

	return res, nil
}
