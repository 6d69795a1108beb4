// Package audio decodes track audio into mono float samples.
package audio

import (
	"os"

	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/jsphweid/beatdex/reader"
	"github.com/jsphweid/beatdex/util"
)

// Signal is a mono signal with samples in [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the length of the signal in seconds.
func (s *Signal) Duration() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Load decodes a PCM WAV file at its native sample rate, averaging channels.
func Load(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		if util.IsNotExist(err) {
			return nil, errors.Wrap(reader.ErrAbsent, path)
		}
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, errors.Errorf("%s is not a valid wav file", path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	// full scale for signed PCM of this bit depth
	scale := float64(int64(1) << (uint(d.BitDepth) - 1))
	// 8-bit WAV is unsigned, centered on 128
	var offset float64
	if d.BitDepth == 8 {
		offset = 128
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) - offset
		}
		samples[i] = sum / float64(channels) / scale
	}

	return &Signal{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}
