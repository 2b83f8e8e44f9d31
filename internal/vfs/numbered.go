package vfs

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/lsmcore/coredb/internal/status"
)

// NumberedFile is one entry in a directory of number-suffixed files (WAL
// generations, numbered revision files), adapted from the teacher's
// segment-file naming scheme.
type NumberedFile struct {
	Number int64
	Name   string
	Path   string
}

// ListNumbered scans dir for regular files matching pattern, which must have
// exactly one capture group containing the file's number, and returns them
// sorted ascending by that number. Non-matching entries are skipped.
func ListNumbered(dir string, pattern *regexp.Regexp) ([]NumberedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, status.Wrap(status.IOError, err, "read directory")
	}

	var out []NumberedFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if len(m) != 2 {
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, NumberedFile{Number: n, Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}
