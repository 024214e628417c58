package catalog

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest is a zero-based page selector.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request to sane bounds. Size defaults to 20 and is
// capped at 100.
func (p PageRequest) Normalize() PageRequest {
	out := p
	if out.Page < 0 {
		out.Page = 0
	}
	if out.Size <= 0 {
		out.Size = defaultPageSize
	}
	if out.Size > maxPageSize {
		out.Size = maxPageSize
	}
	return out
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one page of results plus the paging envelope the clients expect.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	HasNext       bool  `json:"hasNext"`
	HasPrevious   bool  `json:"hasPrevious"`
}

// NewPage assembles the envelope for an already-sliced result set.
// req must be normalized.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int((total + int64(req.Size) - 1) / int64(req.Size))
	return Page[T]{
		Content:       items,
		TotalElements: total,
		TotalPages:    totalPages,
		PageNumber:    req.Page,
		PageSize:      req.Size,
		HasNext:       req.Page+1 < totalPages,
		HasPrevious:   req.Page > 0 && total > 0,
	}
}
