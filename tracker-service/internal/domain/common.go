package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListRequest holds pagination query parameters.
type ListRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize clamps page and page size to sane values.
func (r *ListRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 || r.PageSize > MaxPageSize {
		r.PageSize = DefaultPageSize
	}
}

// Offset returns the number of rows to skip.
func (r ListRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// ListResponse represents a paginated list response.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewListResponse builds a page of items.
func NewListResponse[T any](items []T, total int, req ListRequest) *ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = (total + req.PageSize - 1) / req.PageSize
	}
	return &ListResponse[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}
}

// ReviewResult is the outcome of a task or feature review.
type ReviewResult string

const (
	ReviewQueued    ReviewResult = "Queued"
	ReviewReviewing ReviewResult = "Reviewing"
	ReviewPassed    ReviewResult = "Passed"
	ReviewFailed    ReviewResult = "Failed"
	ReviewSkipped   ReviewResult = "Skipped"
)

// Audit columns shared by every tracker entity.
type Audit struct {
	CreatedBy      string `gorm:"type:varchar(64);not null"`
	LastModifiedBy string `gorm:"type:varchar(64);not null"`
}
