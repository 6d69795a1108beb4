// Package reader reads single-file-per-track delimited annotation files.
package reader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"

	"github.com/jsphweid/beatdex/util"
)

// ErrAbsent means the requested annotation file does not exist. It is not a
// parse failure: callers treat it as "no annotation for this track".
var ErrAbsent = errors.New("annotation file absent")

const xzSuffix = ".xz"

// Resolve returns path+".xz" when only the compressed variant of path exists.
func Resolve(path string) string {
	if !util.FileExists(path) && !strings.HasSuffix(path, xzSuffix) && util.FileExists(path+xzSuffix) {
		return path + xzSuffix
	}
	return path
}

// Open opens path for reading, decompressing .xz files. When path is
// missing but path+".xz" exists, the compressed file is used instead.
func Open(path string) (io.ReadCloser, error) {
	path = Resolve(path)
	f, err := os.Open(path)
	if err != nil {
		if util.IsNotExist(err) {
			return nil, errors.Wrap(ErrAbsent, path)
		}
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	if !strings.HasSuffix(path, xzSuffix) {
		return f, nil
	}

	zr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "could not decompress %s", path)
	}
	return struct {
		io.Reader
		io.Closer
	}{zr, f}, nil
}

// ReadRows reads every non-blank row of a delimited text file.
func ReadRows(path string) ([][]string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	rows, err := ParseRows(data)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", path)
	}
	return rows, nil
}

// ParseRows splits delimited text into rows, sniffing the delimiter.
func ParseRows(data []byte) ([][]string, error) {
	delim := SniffDelimiter(data)
	if delim == ' ' {
		return splitFields(data), nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = delim != '\t'

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SniffDelimiter picks the delimiter of the first non-empty line. Tabs win
// over commas, commas over semicolons; otherwise fields are split on spaces.
func SniffDelimiter(data []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		for _, d := range []rune{'\t', ',', ';'} {
			if strings.ContainsRune(line, d) {
				return d
			}
		}
		break
	}
	return ' '
}

func splitFields(data []byte) [][]string {
	var rows [][]string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 {
			rows = append(rows, fields)
		}
	}
	return rows
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Field returns column col of row, or an error naming the missing column.
func Field(row []string, line int, col int) (string, error) {
	if col >= len(row) {
		return "", errors.Errorf("row %d: missing column %d (have %d)", line, col, len(row))
	}
	return strings.TrimSpace(row[col]), nil
}

func Float(row []string, line int, col int) (float64, error) {
	s, err := Field(row, line, col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "row %d column %d", line, col)
	}
	return v, nil
}

func Int(row []string, line int, col int) (int, error) {
	s, err := Field(row, line, col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "row %d column %d", line, col)
	}
	return v, nil
}
