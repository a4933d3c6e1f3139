package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// ParsePageRange parses a page selection like "1-5" or "1,3,5-7". The result
// is sorted and deduplicated; an empty string selects all pages and yields nil.
func ParsePageRange(pageRange string) ([]int, error) {
	if strings.TrimSpace(pageRange) == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	slices.Sort(pages)
	return slices.Compact(pages), nil
}

// parseRangeToken parses either a single page token (e.g., "3") or a range token (e.g., "1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start < 1 {
			return nil, fmt.Errorf("page numbers start at 1: %s", part)
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	if page < 1 {
		return nil, fmt.Errorf("page numbers start at 1: %s", part)
	}
	return []int{page}, nil
}

// pageNumberFromFilename extracts the page number from names written by
// pdftoppm: <prefix>-<n>.png, where n is zero padded to the page count width.
func pageNumberFromFilename(filename string) (int, error) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0, errors.New("not a page file")
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil || n < 1 {
		return 0, errors.New("invalid page number")
	}
	return n, nil
}
