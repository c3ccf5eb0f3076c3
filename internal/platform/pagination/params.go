package pagination

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPage is the page returned when the client omits or mangles the page parameter.
	DefaultPage = 1
	// DefaultPageSize defines the fallback number of items returned when the client omits pageSize.
	DefaultPageSize = 20
	// MaxPageSize caps the supported pageSize to prevent unbounded queries.
	MaxPageSize = 100
)

// Params bundles the offset paging values extracted from a request. Values
// are always usable: out-of-range input is coerced, never rejected.
type Params struct {
	Page     int
	PageSize int
}

// Options tunes parsing per endpoint.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

func (o Options) withDefaults() Options {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = DefaultPageSize
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = MaxPageSize
	}
	return o
}

// Parse extracts paging parameters from raw query values. Non-numeric or
// missing values fall back to defaults; page is floored at 1 and pageSize is
// clamped to [1, MaxPageSize].
func Parse(values url.Values, opts Options) Params {
	opts = opts.withDefaults()
	params := Params{Page: DefaultPage, PageSize: opts.DefaultPageSize}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			params.Page = page
		}
	}
	if raw := strings.TrimSpace(values.Get("pageSize")); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			params.PageSize = size
		}
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 1
	}
	if params.PageSize > opts.MaxPageSize {
		params.PageSize = opts.MaxPageSize
	}
	return params
}

// FromRequest extracts paging parameters from the request query string.
func FromRequest(r *http.Request, opts Options) Params {
	if r == nil {
		return Parse(nil, opts)
	}
	return Parse(r.URL.Query(), opts)
}

// Window returns the [start, end) bounds of the requested page within a
// filtered set of the given size. Pages past the end yield an empty window.
func (p Params) Window(total int) (int, int) {
	if total <= 0 || p.PageSize <= 0 {
		return 0, 0
	}
	start := (p.Page - 1) * p.PageSize
	if start >= total {
		return total, total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// Meta summarizes a paginated result for response envelopes.
type Meta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
}

// NewMeta computes response metadata for a filtered set of the given size.
func NewMeta(total int, params Params) Meta {
	if total < 0 {
		total = 0
	}
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (total + params.PageSize - 1) / params.PageSize
	}
	return Meta{
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
	}
}
