package lang

// This file composes the directory list that Load searches for source
// documents. The caller supplies the raw path-list value (typically the
// XFUNC_PATH environment variable); this package never reads the process
// environment itself.

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"
)

// SearchPath merges dirs ahead of the entries of the path list pathList
// and returns the combined list with duplicates and empty entries removed.
// Entries of pathList are separated by [os.PathListSeparator].
func SearchPath(pathList string, dirs ...string) []string {
	joined := mung.Make(
		mung.WithSubjectItems(pathList),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
	).String()

	var (
		seen = make(map[string]bool)
		list []string
	)

	for _, dir := range filepath.SplitList(joined) {
		if dir == "" || seen[dir] {
			continue
		}

		seen[dir] = true
		list = append(list, dir)
	}

	return list
}

// isRegular reports whether path names a regular file.
func isRegular(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// findSource returns the first regular file named by src, trying src
// itself and then src relative to each directory in search.
func findSource(src string, search []string) (string, bool) {
	if isRegular(src) {
		return src, true
	}

	if filepath.IsAbs(src) {
		return "", false
	}

	for _, dir := range search {
		if path := filepath.Join(dir, src); isRegular(path) {
			return path, true
		}
	}

	return "", false
}
