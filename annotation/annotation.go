// Package annotation holds the immutable per-track annotation containers.
package annotation

import (
	"fmt"
)

// ValidationError is returned when a container is built from inconsistent parts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BeatData is a sequence of beats, each with a time in seconds and an
// ordinal position within its bar (1 is the downbeat).
type BeatData struct {
	times     []float64
	positions []int
}

// NewBeatData copies times and positions into a new BeatData.
func NewBeatData(times []float64, positions []int) (*BeatData, error) {
	if len(times) != len(positions) {
		return nil, &ValidationError{
			Field:   "positions",
			Message: fmt.Sprintf("have %d positions for %d beat times", len(positions), len(times)),
		}
	}
	return &BeatData{
		times:     append([]float64{}, times...),
		positions: append([]int{}, positions...),
	}, nil
}

func (b *BeatData) Len() int {
	return len(b.times)
}

// Times returns a copy of the beat times.
func (b *BeatData) Times() []float64 {
	return append([]float64{}, b.times...)
}

// Positions returns a copy of the ordinal beat positions.
func (b *BeatData) Positions() []int {
	return append([]int{}, b.positions...)
}

// At returns the time and position of the i-th beat.
func (b *BeatData) At(i int) (float64, int) {
	return b.times[i], b.positions[i]
}

func (b *BeatData) Equal(other *BeatData) bool {
	if b == nil || other == nil {
		return b == other
	}
	if len(b.times) != len(other.times) {
		return false
	}
	for i := range b.times {
		if b.times[i] != other.times[i] || b.positions[i] != other.positions[i] {
			return false
		}
	}
	return true
}

func (b *BeatData) String() string {
	return fmt.Sprintf("BeatData(times, positions; %d beats)", b.Len())
}

// SectionData is a list of labeled time intervals, in seconds.
type SectionData struct {
	intervals [][2]float64
	labels    []string
}

// NewSectionData copies intervals and labels into a new SectionData.
func NewSectionData(intervals [][2]float64, labels []string) (*SectionData, error) {
	if len(intervals) != len(labels) {
		return nil, &ValidationError{
			Field:   "labels",
			Message: fmt.Sprintf("have %d labels for %d intervals", len(labels), len(intervals)),
		}
	}
	for i, iv := range intervals {
		if iv[0] > iv[1] {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("intervals[%d]", i),
				Message: fmt.Sprintf("start %v is after end %v", iv[0], iv[1]),
			}
		}
	}
	return &SectionData{
		intervals: append([][2]float64{}, intervals...),
		labels:    append([]string{}, labels...),
	}, nil
}

func (s *SectionData) Len() int {
	return len(s.intervals)
}

// Intervals returns a copy of the [start, end] pairs.
func (s *SectionData) Intervals() [][2]float64 {
	return append([][2]float64{}, s.intervals...)
}

// Labels returns a copy of the section labels.
func (s *SectionData) Labels() []string {
	return append([]string{}, s.labels...)
}

// At returns the interval and label of the i-th section.
func (s *SectionData) At(i int) ([2]float64, string) {
	return s.intervals[i], s.labels[i]
}

func (s *SectionData) Equal(other *SectionData) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.intervals) != len(other.intervals) {
		return false
	}
	for i := range s.intervals {
		if s.intervals[i] != other.intervals[i] || s.labels[i] != other.labels[i] {
			return false
		}
	}
	return true
}

func (s *SectionData) String() string {
	return fmt.Sprintf("SectionData(intervals, labels; %d sections)", s.Len())
}
