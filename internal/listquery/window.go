package listquery

import "event-portal/internal/model"

const windowSize = 5

// Window computes the sliding window of page numbers rendered as pager
// buttons: all pages when there are at most five, the first five near the
// left edge, the last five near the right edge, and the two neighbors on
// each side of the current page in between.
func Window(totalPages int, current int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start, end := 1, totalPages
	switch {
	case totalPages <= windowSize:
	case current <= 3:
		end = windowSize
	case current >= totalPages-2:
		start = totalPages - windowSize + 1
	default:
		start = current - 2
		end = current + 2
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Meta assembles the pager metadata attached to every list response.
func Meta(page int, pageSize int, totalPages int) *model.Meta {
	if totalPages < 1 {
		totalPages = 1
	}

	return &model.Meta{
		Page:       page,
		Limit:      pageSize,
		TotalPages: totalPages,
		Pages:      Window(totalPages, page),
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}
