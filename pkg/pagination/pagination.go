// Package pagination computes page windows for the catalog, review and
// statistics views. Everything here is pure.
package pagination

// Window is the block of page links shown around the current page.
type Window struct {
	Pages       []int `json:"pages"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int   `json:"total_items"`
	PageSize    int   `json:"page_size"`
	HasPrev     bool  `json:"has_prev"`
	HasNext     bool  `json:"has_next"`
	PrevTarget  int   `json:"prev_target,omitempty"`
	NextTarget  int   `json:"next_target,omitempty"`
}

// TotalPages returns ceil(totalItems/pageSize), and 1 when there are no items.
func TotalPages(totalItems, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems <= 0 {
		return 1
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Clamp forces page into [1, totalPages].
func Clamp(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// NewWindow builds the page window for currentPage. Pages are grouped in
// fixed blocks of blockSize; prev jumps to the last page of the previous
// block and next to the first page of the following one.
func NewWindow(currentPage, totalItems, pageSize, blockSize int) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	if blockSize < 1 {
		blockSize = 1
	}

	totalPages := TotalPages(totalItems, pageSize)
	current := Clamp(currentPage, totalPages)

	block := (current - 1) / blockSize
	start := block*blockSize + 1
	end := min(start+blockSize-1, totalPages)

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}

	w := Window{
		Pages:       pages,
		CurrentPage: current,
		TotalPages:  totalPages,
		TotalItems:  max(totalItems, 0),
		PageSize:    pageSize,
		HasPrev:     start > 1,
		HasNext:     end < totalPages,
	}
	if w.HasPrev {
		w.PrevTarget = start - 1
	}
	if w.HasNext {
		w.NextTarget = end + 1
	}
	return w
}

// Offset returns the row offset of the first item on page.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// Slice returns the items that fall on page. Used where rows are paged in
// memory after deduplication.
func Slice[T any](items []T, page, pageSize int) []T {
	from := Offset(page, pageSize)
	if from >= len(items) {
		return []T{}
	}
	to := min(from+pageSize, len(items))
	return items[from:to]
}
