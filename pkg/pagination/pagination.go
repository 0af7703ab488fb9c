package pagination

const (
	// DefaultPage is used when the caller omits or sends a non-positive page.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies defaults and caps.
func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), Limit: NormalizeLimit(p.Limit)}
}

// Offset returns the number of rows to skip for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

func NormalizePage(page int) int {
	if page <= 0 {
		return DefaultPage
	}
	return page
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

// Page describes one slice of a filtered result set.
type Page struct {
	Number    int
	Size      int
	TotalSize int64
}

// TotalPages rounds up; an empty set has zero pages.
func (p Page) TotalPages() int {
	if p.Size <= 0 || p.TotalSize <= 0 {
		return 0
	}
	return int((p.TotalSize + int64(p.Size) - 1) / int64(p.Size))
}
