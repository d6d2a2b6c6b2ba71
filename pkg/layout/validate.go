package layout

import (
	"github.com/pkg/errors"
)

// ErrInvalidTemplate is wrapped by every error returned from Validate.
var ErrInvalidTemplate = errors.New("invalid page template")

// Validate checks the experience slices of a template sequence. Slices must
// have a non-negative start, an end not before the start, and must appear in
// ascending, non-overlapping order across pages. An open-ended slice must be
// the last one. Paginate does not call Validate; misconfigured templates
// render duplicated entries there.
func Validate(templates []PageTemplate) (err error) {
	next := 0
	open := false
	seen := 0

	for pageIdx, tpl := range templates {
		for _, m := range tpl.Main {
			if !m.IsExperience() {
				continue
			}

			if open {
				err = errors.Wrapf(ErrInvalidTemplate, "page %d: experience section follows an open-ended slice", pageIdx+1)
				return err
			}

			start := 0
			if m.Slice != nil {
				start = m.Slice.Start
			}

			if start < 0 {
				err = errors.Wrapf(ErrInvalidTemplate, "page %d: negative slice start %d", pageIdx+1, start)
				return err
			}

			if seen > 0 && start < next {
				err = errors.Wrapf(ErrInvalidTemplate, "page %d: slice start %d overlaps or precedes previous end %d", pageIdx+1, start, next)
				return err
			}

			if m.Slice == nil || m.Slice.End == nil {
				open = true
				seen++
				continue
			}

			end := *m.Slice.End
			if end < start {
				err = errors.Wrapf(ErrInvalidTemplate, "page %d: slice end %d before start %d", pageIdx+1, end, start)
				return err
			}

			next = end
			seen++
		}
	}

	return err
}
