package repository

// QueryOptions is the pagination/sort/selection vocabulary every repository
// method accepts. Zero values mean "no constraint".
type QueryOptions struct {
	Page    int
	Limit   int
	SortBy  string
	SortDir string // "asc" or "desc"; anything else falls back to asc
	Select  []string
	Preload []string
}

// Op is an operator object usable as a criteria value in place of a plain
// equality match. Only the set fields apply.
type Op struct {
	Gt         any
	Gte        any
	Lt         any
	Lte        any
	In         []any
	NotIn      []any
	Contains   string
	StartsWith string
	EndsWith   string
}

// Criteria maps column names to either a plain value (equality) or an Op.
// An empty criteria set means unrestricted.
type Criteria map[string]any

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type PageResult[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 200
)

func normalizePage(opts *QueryOptions) (page, limit int) {
	page, limit = defaultPage, defaultLimit
	if opts != nil {
		if opts.Page > 0 {
			page = opts.Page
		}
		if opts.Limit > 0 {
			limit = opts.Limit
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
