package rwcclassical

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jsphweid/beatdex/model"
	"github.com/jsphweid/beatdex/reader"
)

const headerPieceNumber = "Piece No."

// LoadMetadata reads the collection's metadata table keyed by track id.
// A missing table returns (nil, nil).
func LoadMetadata(dataHome string) (map[string]model.TrackMetadata, error) {
	path := filepath.Join(dataHome, metadataFile)
	rows, err := reader.ReadRows(path)
	if errors.Is(err, reader.ErrAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res := make(map[string]model.TrackMetadata)
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == headerPieceNumber {
			continue
		}
		if len(row) < 8 {
			return nil, errors.Errorf("%s: row %d: want 8 columns, have %d", path, i+1, len(row))
		}

		id, err := TrackIDFromPieceNumber(row[0])
		if err != nil {
			return nil, errors.Wrapf(err, "%s: row %d", path, i+1)
		}
		duration, err := DurationToSeconds(row[6])
		if err != nil {
			return nil, errors.Wrapf(err, "%s: row %d", path, i+1)
		}
		res[id] = model.TrackMetadata{
			PieceNumber: strings.TrimSpace(row[0]),
			Suffix:      strings.TrimSpace(row[1]),
			TrackNumber: strings.TrimSpace(row[2]),
			Title:       strings.TrimSpace(row[3]),
			Composer:    strings.TrimSpace(row[4]),
			Artist:      strings.TrimSpace(row[5]),
			Duration:    duration,
			Category:    strings.TrimSpace(row[7]),
		}
	}
	return res, nil
}

// TrackIDFromPieceNumber maps "No. 3" to "RM-C003".
func TrackIDFromPieceNumber(piece string) (string, error) {
	_, num, ok := strings.Cut(piece, ".")
	if !ok {
		return "", errors.Errorf("malformed piece number %q", piece)
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n < 0 {
		return "", errors.Errorf("malformed piece number %q", piece)
	}
	return fmt.Sprintf("%s%03d", trackPrefix, n), nil
}

// DurationToSeconds parses "m:ss". A third ":"-separated field, present in a
// few rows of the RWC tables by mistake, is ignored.
func DurationToSeconds(duration string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(duration), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.Errorf("malformed duration %q", duration)
	}
	minutes, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, errors.Errorf("malformed duration %q", duration)
	}
	secs, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, errors.Errorf("malformed duration %q", duration)
	}
	return minutes*60 + secs, nil
}
