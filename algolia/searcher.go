package algolia

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/cockroachdb/errors"
	"github.com/owasp/nestsearch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Searcher implements nestsearch.Searcher for one Algolia index.
type Searcher struct {
	client    *Client
	indexName string
	// open resolves the index; swapped in tests.
	open func() (index, error)
}

// NewSearcher creates a new Algolia searcher for the specified index.
func NewSearcher(client *Client, indexName string) *Searcher {
	s := &Searcher{client: client, indexName: indexName}
	s.open = func() (index, error) {
		idx, err := client.initIndex(indexName)
		if err != nil {
			return nil, err
		}
		return idx, nil
	}
	return s
}

// Search runs query against the index. Algolia accepts the empty query and
// returns every record, which is what listing pages rely on.
func (s *Searcher) Search(ctx context.Context, query string, opts ...nestsearch.SearchOption) (*nestsearch.Page, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	default:
	}

	if s.indexName == "" {
		return nil, nestsearch.ErrInvalidIndex
	}

	cfg, err := nestsearch.NewSearchConfig(opts...)
	if err != nil {
		return nil, err
	}

	_, span := s.client.tracer.Start(ctx, "algolia.search",
		trace.WithAttributes(
			attribute.String("algolia.index_name", s.indexName),
			attribute.String("algolia.query", query),
			attribute.Int("algolia.page", cfg.Page),
			attribute.Int("algolia.hits_per_page", cfg.HitsPerPage),
		),
	)
	defer span.End()

	idx, err := s.open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return nil, errors.WithSecondaryError(
			nestsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "failed to get Algolia client"),
		)
	}

	res, err := idx.Search(query, buildSearchParams(cfg)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, contextError(err)
		}
		return nil, errors.WithSecondaryError(
			nestsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "Algolia search on %s failed", s.indexName),
		)
	}

	page := &nestsearch.Page{
		Hits:        make([]nestsearch.Hit, 0, len(res.Hits)),
		CurrentPage: res.Page + 1,
		TotalPages:  res.NbPages,
		Total:       int64(res.NbHits),
		HitsPerPage: res.HitsPerPage,
		Query:       query,
		Took:        time.Since(startTime).Milliseconds(),
	}
	if res.NbHits == 0 {
		page.TotalPages = 0
	}
	if page.HitsPerPage == 0 {
		page.HitsPerPage = cfg.HitsPerPage
	}

	for _, hit := range res.Hits {
		objectID, _ := hit["objectID"].(string)
		page.Hits = append(page.Hits, nestsearch.Hit{ID: objectID, Fields: hit})
	}

	span.SetAttributes(attribute.Int64("algolia.nb_hits", page.Total))
	span.SetStatus(codes.Ok, "")
	return page, nil
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return nestsearch.ErrTimeout
	}
	return nestsearch.ErrCanceled
}

// buildSearchParams converts a SearchConfig into Algolia query parameters.
// Algolia pages are 0-based.
func buildSearchParams(cfg *nestsearch.SearchConfig) []interface{} {
	params := []interface{}{
		opt.HitsPerPage(cfg.HitsPerPage),
		opt.Page(cfg.Page - 1),
	}

	if len(cfg.Filters) > 0 {
		filters := make([]string, 0, len(cfg.Filters))
		for _, expr := range cfg.Filters {
			if f := convertExpressionToFilter(expr); f != "" {
				filters = append(filters, f)
			}
		}
		if len(filters) == 1 {
			params = append(params, opt.Filters(filters[0]))
		} else if len(filters) > 1 {
			params = append(params, opt.Filters("("+strings.Join(filters, ") AND (")+")"))
		}
	}

	return params
}

// convertExpressionToFilter renders expr in Algolia filter syntax.
func convertExpressionToFilter(expr nestsearch.Expression) string {
	switch e := expr.(type) {
	case nestsearch.AndExpr:
		return joinExpressions(e.Exprs, " AND ")
	case nestsearch.OrExpr:
		return joinExpressions(e.Exprs, " OR ")
	case nestsearch.NotExpr:
		inner := convertExpressionToFilter(e.Inner)
		if inner == "" {
			return ""
		}
		return "NOT (" + inner + ")"
	case nestsearch.Comparison:
		return convertComparison(e)
	case nestsearch.RangeExpr:
		var bounds []string
		if e.Min != nil {
			bounds = append(bounds, fmt.Sprintf("%s >= %s", escapeField(e.Field), escapeNumericValue(e.Min)))
		}
		if e.Max != nil {
			bounds = append(bounds, fmt.Sprintf("%s <= %s", escapeField(e.Field), escapeNumericValue(e.Max)))
		}
		return strings.Join(bounds, " AND ")
	default:
		return ""
	}
}

func joinExpressions(exprs []nestsearch.Expression, sep string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if f := convertExpressionToFilter(e); f != "" {
			parts = append(parts, "("+f+")")
		}
	}
	return strings.Join(parts, sep)
}

func convertComparison(c nestsearch.Comparison) string {
	field := escapeField(c.Field)
	switch c.Op {
	case nestsearch.OpEq:
		return fmt.Sprintf("%s:%s", field, escapeValue(c.Value))
	case nestsearch.OpNe:
		return fmt.Sprintf("NOT %s:%s", field, escapeValue(c.Value))
	case nestsearch.OpGt:
		return fmt.Sprintf("%s > %s", field, escapeNumericValue(c.Value))
	case nestsearch.OpGte:
		return fmt.Sprintf("%s >= %s", field, escapeNumericValue(c.Value))
	case nestsearch.OpLt:
		return fmt.Sprintf("%s < %s", field, escapeNumericValue(c.Value))
	case nestsearch.OpLte:
		return fmt.Sprintf("%s <= %s", field, escapeNumericValue(c.Value))
	case nestsearch.OpExists:
		return fmt.Sprintf("%s:*", field)
	default:
		return ""
	}
}

// escapeField quotes field names containing filter syntax characters.
func escapeField(field string) string {
	if strings.ContainsAny(field, " :-()") {
		return fmt.Sprintf(`"%s"`, field)
	}
	return field
}

// escapeValue quotes a facet value.
func escapeValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	case bool:
		return `"` + strconv.FormatBool(v) + `"`
	default:
		return fmt.Sprintf(`"%v"`, v)
	}
}

// escapeNumericValue renders a numeric bound; non-numeric values fall back to quoting.
func escapeNumericValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "0"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", v)
	default:
		str := fmt.Sprintf("%v", value)
		if _, err := strconv.ParseFloat(str, 64); err == nil {
			return str
		}
		return escapeValue(value)
	}
}
