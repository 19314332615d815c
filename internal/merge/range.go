// Package merge holds the merge-range model, its validation, and the Merger
// that accumulates documents and writes the combined output.
package merge

import "fmt"

// MergeRange selects the pages of one input file to include in the output.
// Start is an inclusive 0-based page index, End is exclusive. A nil bound
// means the whole document.
type MergeRange struct {
	Path  string
	Start *int
	End   *int
}

// Whole returns a range covering every page of path
func Whole(path string) MergeRange {
	return MergeRange{Path: path}
}

// Ranged returns a range covering pages [start, end) of path
func Ranged(path string, start, end int) MergeRange {
	return MergeRange{Path: path, Start: &start, End: &end}
}

// IsRanged reports whether both bounds are present
func (r MergeRange) IsRanged() bool {
	return r.Start != nil && r.End != nil
}

// Pages returns the 1-based page numbers selected by a ranged descriptor
func (r MergeRange) Pages() []int {
	if !r.IsRanged() || *r.Start >= *r.End {
		return nil
	}
	pages := make([]int, 0, *r.End-*r.Start)
	for i := *r.Start; i < *r.End; i++ {
		pages = append(pages, i+1)
	}
	return pages
}

func (r MergeRange) String() string {
	if !r.IsRanged() {
		return r.Path
	}
	return fmt.Sprintf("%s[%d:%d]", r.Path, *r.Start, *r.End)
}

// BuildRanges pairs each path with its bounds. With no bounds every path is
// merged whole; otherwise bounds must hold exactly one (start, end) pair per
// path, in order.
func BuildRanges(paths []string, bounds []int) ([]MergeRange, error) {
	ranges := make([]MergeRange, 0, len(paths))

	if bounds == nil {
		for _, p := range paths {
			ranges = append(ranges, Whole(p))
		}
		return ranges, nil
	}

	if len(bounds) != 2*len(paths) {
		return nil, fmt.Errorf("%w: got %d values for %d files", ErrRangeCount, len(bounds), len(paths))
	}

	for i, p := range paths {
		ranges = append(ranges, Ranged(p, bounds[2*i], bounds[2*i+1]))
	}
	return ranges, nil
}
