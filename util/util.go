package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// GetKeys returns the keys of m in ascending order.
func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Unique returns the sorted distinct values of nums.
func Unique[A constraints.Ordered](nums []A) []A {
	res := slices.Clone(nums)
	slices.Sort(res)
	return slices.Compact(res)
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// GatherPaths walks dir and returns files whose name ends in suffix, relative to dir.
func GatherPaths(dir string, suffix string) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(s, suffix) {
			rel, err := filepath.Rel(dir, s)
			if err != nil {
				return err
			}
			res = append(res, rel)
		}
		return nil
	}
	if err := filepath.WalkDir(dir, walk); err != nil {
		return nil, err
	}
	return res, nil
}
