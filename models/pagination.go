// ABOUTME: Pagination state and page arithmetic
// ABOUTME: Page size changes always reset to the first page
package models

// Pagination selects a zero-based page of a fixed size.
type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// DefaultPageSize matches the dashboard's initial page size.
const DefaultPageSize = 5

// PageSizes are the sizes offered by the page size selector.
var PageSizes = []int{5, 10, 20, 50}

// DefaultPagination is the first page at the default size.
var DefaultPagination = Pagination{Page: 0, Size: DefaultPageSize}

// WithPage moves to page p; negative pages clamp to 0.
func (p Pagination) WithPage(page int) Pagination {
	if page < 0 {
		page = 0
	}
	p.Page = page
	return p
}

// WithSize changes the page size and resets to the first page.
// Non-positive sizes fall back to DefaultPageSize.
func (p Pagination) WithSize(size int) Pagination {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pagination{Page: 0, Size: size}
}

// Offset is the index of the first item on the page.
func (p Pagination) Offset() int {
	return p.Page * p.Size
}

// NextSize cycles to the next entry of PageSizes.
func (p Pagination) NextSize() int {
	for i, s := range PageSizes {
		if s == p.Size {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return PageSizes[0]
}

// TotalPages returns ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// PageWindow returns up to max consecutive page indexes centred on current.
func PageWindow(current, totalPages, max int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if max < 1 {
		max = 1
	}
	start := current - max/2
	if start < 0 {
		start = 0
	}
	end := start + max - 1
	if end > totalPages-1 {
		end = totalPages - 1
	}
	if end-start+1 < max {
		start = end - max + 1
		if start < 0 {
			start = 0
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
