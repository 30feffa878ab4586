package nestsearch

// DefaultHitsPerPage is the page size used when none is requested.
const DefaultHitsPerPage = 25

// SearchOption represents a search configuration option.
type SearchOption interface {
	Apply(*SearchConfig)
}

// SearchConfig holds all search configuration parameters.
type SearchConfig struct {
	// Page is the 1-based page to fetch. Zero means the first page.
	Page int

	// HitsPerPage is the page size. Zero means DefaultHitsPerPage.
	HitsPerPage int

	// Filters contains filter expressions to apply; they are combined with AND.
	Filters []Expression
}

// NewSearchConfig applies opts over the defaults and validates the result.
func NewSearchConfig(opts ...SearchOption) (*SearchConfig, error) {
	cfg := &SearchConfig{}
	for _, opt := range opts {
		opt.Apply(cfg)
	}

	if cfg.Page < 0 || cfg.HitsPerPage < 0 {
		return nil, ErrInvalidOption
	}
	if cfg.Page == 0 {
		cfg.Page = 1
	}
	if cfg.HitsPerPage == 0 {
		cfg.HitsPerPage = DefaultHitsPerPage
	}

	return cfg, nil
}

// optionFunc is a function that implements SearchOption.
type optionFunc func(*SearchConfig)

// Apply implements the SearchOption interface for optionFunc.
func (f optionFunc) Apply(cfg *SearchConfig) {
	f(cfg)
}

// WithPage selects the 1-based page to return.
func WithPage(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Page = n
	})
}

// WithHitsPerPage sets the number of hits per page.
func WithHitsPerPage(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.HitsPerPage = n
	})
}
