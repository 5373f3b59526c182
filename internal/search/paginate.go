package search

// DefaultPageSize is the number of rows revealed per page.
const DefaultPageSize = 100

// Paginator exposes a growing prefix of a result list. It advances one page
// each time the sentinel below the visible rows scrolls into view.
type Paginator struct {
	size         int
	page         int
	total        int
	intersecting bool
}

// NewPaginator returns a Paginator on page 1. A non-positive size falls back
// to DefaultPageSize.
func NewPaginator(size int) *Paginator {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Paginator{size: size, page: 1}
}

// Reset returns to page 1 for a result list of total items.
func (p *Paginator) Reset(total int) {
	p.total = total
	p.page = 1
	p.intersecting = false
}

// Page returns the current page, starting at 1.
func (p *Paginator) Page() int { return p.page }

// Size returns the page size.
func (p *Paginator) Size() int { return p.size }

// LastPage returns ceil(total / size); zero when there are no results.
func (p *Paginator) LastPage() int {
	return (p.total + p.size - 1) / p.size
}

// Advance moves to the next page. At the last page it is a no-op and returns
// false.
func (p *Paginator) Advance() bool {
	next := p.page + 1
	if last := p.LastPage(); next > last {
		return false
	}
	p.page = next
	return true
}

// Observe feeds the sentinel visibility signal. Only a transition into the
// intersecting state advances the page.
func (p *Paginator) Observe(intersecting bool) bool {
	entering := intersecting && !p.intersecting
	p.intersecting = intersecting
	if !entering {
		return false
	}
	return p.Advance()
}

// VisibleCount returns min(page*size, total).
func (p *Paginator) VisibleCount() int {
	return visibleCount(p.page, p.size, p.total)
}

// Visible returns the first min(page*size, len(items)) items.
func Visible[T any](items []T, page, size int) []T {
	return items[:visibleCount(page, size, len(items))]
}

func visibleCount(page, size, total int) int {
	if page < 0 || size <= 0 {
		return 0
	}
	n := page * size
	if n > total {
		n = total
	}
	return n
}
