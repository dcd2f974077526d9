package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any listing query can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps the page and limit to usable values.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Page describes one page of results for the response envelope.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalRows  int64 `json:"totalRows"`
	TotalPages int   `json:"totalPages"`
}

// NewPage computes the page descriptor for a total row count.
func NewPage(params Params, totalRows int64) Page {
	n := params.Normalize()
	pages := int((totalRows + int64(n.Limit) - 1) / int64(n.Limit))
	if pages < 1 {
		pages = 1
	}
	return Page{
		Page:       n.Page,
		Limit:      n.Limit,
		TotalRows:  totalRows,
		TotalPages: pages,
	}
}
