package pagination

// DefaultLimit is the standard page size when a limit is not provided.
const DefaultLimit = 25

// MaxLimit caps how many rows any paginated query can request.
const MaxLimit = 100

// Params holds page/limit pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Meta describes the slice returned alongside paginated data.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	HasMore    bool `json:"hasMore"`
	TotalPages int  `json:"totalPages"`
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

// NormalizePage clamps the page number to a 1-based value.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Normalize returns the params with page and limit clamped.
func Normalize(p Params) Params {
	return Params{
		Page:  NormalizePage(p.Page),
		Limit: NormalizeLimit(p.Limit),
	}
}

// Bounds returns the half-open slice interval [start, end) for a collection of
// the given total size. Both values are clamped to the collection bounds.
func Bounds(p Params, total int) (int, int) {
	p = Normalize(p)
	start := (p.Page - 1) * p.Limit
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

// MetaFor computes the pagination metadata for a collection of the given size.
func MetaFor(p Params, total int) Meta {
	p = Normalize(p)
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		HasMore:    p.Page*p.Limit < total,
		TotalPages: totalPages,
	}
}
