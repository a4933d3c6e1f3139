package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/laytext/internal/render"
)

// discoverDocuments expands files and directories into the supported
// documents they contain. Each directory's files are sorted; duplicates are
// dropped keeping the first occurrence.
func discoverDocuments(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var docs []string
	seen := map[string]bool{}
	add := func(p string) {
		key := filepath.Clean(p)
		if !seen[key] {
			seen[key] = true
			docs = append(docs, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			if render.IsSupported(arg) && shouldIncludeFile(arg, includePatterns, excludePatterns) {
				add(arg)
			}
			continue
		}
		files, err := discoverInDirectory(arg, recursive, includePatterns, excludePatterns)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return docs, nil
}

// discoverInDirectory walks dir, descending into subdirectories only when
// recursive is set.
func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if render.IsSupported(path) && shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}

// shouldIncludeFile applies exclude patterns first, then include patterns.
// No include patterns means everything not excluded.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAnyPattern(path, includePatterns)
}

// matchesAnyPattern matches the base name of path against glob patterns.
func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// uniqueStems returns the file stem of each input, suffixing repeats with
// _2, _3 and so on so every document gets its own output file.
func uniqueStems(files []string) []string {
	stems := make([]string, len(files))
	used := map[string]bool{}
	for i, f := range files {
		base := filepath.Base(f)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		candidate := stem
		for n := 2; used[candidate]; n++ {
			candidate = stem + "_" + strconv.Itoa(n)
		}
		used[candidate] = true
		stems[i] = candidate
	}
	return stems
}

// OutputPath returns <dir>/<stem>.txt.
func OutputPath(dir, stem string) string {
	return filepath.Join(dir, stem+".txt")
}

// Discover returns the supported documents named by paths together with
// their unique output stems. It returns ErrNoDocuments when nothing matches.
func Discover(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, []string, error) {
	files, err := discoverDocuments(paths, recursive, includePatterns, excludePatterns)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, ErrNoDocuments
	}
	return files, uniqueStems(files), nil
}
