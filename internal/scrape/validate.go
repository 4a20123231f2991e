package scrape

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when the end chapter precedes the start chapter.
var ErrInvalidRange = errors.New("end chapter must be >= start chapter")

// ErrRangeExceedsTotal is returned when the end chapter is past the known
// chapter count of the novel.
var ErrRangeExceedsTotal = errors.New("end chapter exceeds total chapters")

// ValidateRange checks a requested chapter range against an optional known
// total. It has no side effects and must be called before a job is spawned;
// the job runner does not re-validate.
func ValidateRange(start, end int, total *int) error {
	if end < start {
		return fmt.Errorf("%w: got %d..%d", ErrInvalidRange, start, end)
	}
	if total != nil && end > *total {
		return fmt.Errorf("%w: got %d, novel has %d", ErrRangeExceedsTotal, end, *total)
	}
	return nil
}
