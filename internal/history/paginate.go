package history

import "tipjar/internal/core"

// DefaultPageSize keeps history pages small enough for an embed widget.
const DefaultPageSize = 10

// Page is one slice of an already-filtered record collection.
type Page struct {
	Records     []core.Record `json:"records"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
	TotalItems  int           `json:"total_items"`
	HasNext     bool          `json:"has_next"`
	HasPrev     bool          `json:"has_prev"`
}

// Paginate slices the collection for a 1-indexed page. A page beyond
// range yields an empty slice, not an error.
func Paginate(records []core.Record, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	out := make([]core.Record, end-start)
	copy(out, records[start:end])

	return Page{
		Records:     out,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     end < total,
		HasPrev:     page > 1,
	}
}
