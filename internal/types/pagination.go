package types

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageQuery is the page/page_size pair accepted by list endpoints.
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1"`
}

// Normalize fills defaults and caps the page size.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// Offset is the number of rows to skip for this page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Pagination is the metadata returned alongside every list.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes total_pages for a normalized query.
func NewPagination(q PageQuery, total int64) Pagination {
	pages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return Pagination{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: pages,
	}
}
