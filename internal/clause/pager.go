package clause

// DefaultPageSize is used when a pager carries no usable page size.
const DefaultPageSize = 20

// Pager describes one page of a result set.
type Pager struct {
	Page       int   `json:"page" koanf:"page"`
	PageSize   int   `json:"page_size" koanf:"page_size"`
	TotalCount int64 `json:"total_count" koanf:"total_count"`
}

// NewPager creates a normalized pager.
func NewPager(page, pageSize int) *Pager {
	p := &Pager{Page: page, PageSize: pageSize}
	p.Normalize()
	return p
}

// Normalize clamps Page to at least 1 and PageSize to DefaultPageSize when
// not positive.
func (p *Pager) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
}

// Offset returns the number of rows skipped before the page.
func (p *Pager) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.Limit()
}

// Limit returns the page size.
func (p *Pager) Limit() int {
	if p.PageSize < 1 {
		return DefaultPageSize
	}
	return p.PageSize
}

// PageCount returns the number of pages for TotalCount.
func (p *Pager) PageCount() int {
	if p.TotalCount <= 0 {
		return 0
	}
	limit := int64(p.Limit())
	return int((p.TotalCount + limit - 1) / limit)
}
