package merge

import "os"

// ValidatePath checks that the input file exists
func ValidatePath(r MergeRange) error {
	if _, err := os.Stat(r.Path); err != nil {
		return &FileNotFoundError{Path: r.Path}
	}
	return nil
}

// ValidateBounds checks that a ranged descriptor has 0 <= start < end
func ValidateBounds(r MergeRange) error {
	if !r.IsRanged() {
		return nil
	}
	if *r.Start < 0 || *r.Start >= *r.End {
		return &RangeError{Range: r}
	}
	return nil
}

// Validate checks every descriptor in order and returns the first error
func Validate(ranges []MergeRange) error {
	if len(ranges) == 0 {
		return ErrNoInputs
	}
	for _, r := range ranges {
		if err := ValidatePath(r); err != nil {
			return err
		}
		if err := ValidateBounds(r); err != nil {
			return err
		}
	}
	return nil
}
