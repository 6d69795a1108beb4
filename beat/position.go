// Package beat reconstructs metrical beat positions from raw annotation codes.
package beat

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrInvalidInput is returned when the code and timestamp arrays disagree in length.
var ErrInvalidInput = errors.New("invalid input")

// IsUndetermined reports whether a raw code marks a beat whose position is unknown.
func IsUndetermined(code int) bool {
	return code <= 0
}

// NormalizePositions drops undetermined beats and relabels the remaining raw
// tick codes as ordinal positions 1..N within the bar.
//
// The largest code observed is the downbeat (position 1). The other codes
// are ranked in ascending order and take positions 2..N. N is the number of
// distinct codes that survive filtering. Filtering keeps times and positions
// aligned; the inputs are never modified.
func NormalizePositions(rawCodes []int, timestamps []float64) ([]int, []float64, error) {
	if len(rawCodes) != len(timestamps) {
		return nil, nil, errors.Wrapf(ErrInvalidInput,
			"%d codes but %d timestamps", len(rawCodes), len(timestamps))
	}

	codes := make([]int, 0, len(rawCodes))
	times := make([]float64, 0, len(timestamps))
	for i, code := range rawCodes {
		if IsUndetermined(code) {
			continue
		}
		codes = append(codes, code)
		times = append(times, timestamps[i])
	}

	ordinals := ordinalTable(codes)
	positions := make([]int, len(codes))
	for i, code := range codes {
		positions[i] = ordinals[code]
	}
	return positions, times, nil
}

// Meter returns the number of beats per bar implied by the determined codes.
func Meter(rawCodes []int) int {
	return len(distinctCodes(rawCodes))
}

func ordinalTable(codes []int) map[int]int {
	distinct := distinctCodes(codes)
	table := make(map[int]int, len(distinct))
	if len(distinct) == 0 {
		return table
	}

	// downbeat
	table[distinct[len(distinct)-1]] = 1
	for i, code := range distinct[:len(distinct)-1] {
		table[code] = i + 2
	}
	return table
}

// distinctCodes returns the determined codes, deduplicated and sorted ascending.
func distinctCodes(codes []int) []int {
	seen := make(map[int]bool)
	var res []int
	for _, code := range codes {
		if IsUndetermined(code) || seen[code] {
			continue
		}
		seen[code] = true
		res = append(res, code)
	}
	sort.Ints(res)
	return res
}
