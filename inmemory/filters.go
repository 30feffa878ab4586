package inmemory

import (
	"fmt"
	"strings"

	"github.com/owasp/nestsearch"
)

// matchesFilters reports whether doc satisfies every filter.
func matchesFilters(doc Document, filters []nestsearch.Expression) bool {
	for _, f := range filters {
		if !evaluate(doc, f) {
			return false
		}
	}
	return true
}

func evaluate(doc Document, expr nestsearch.Expression) bool {
	switch e := expr.(type) {
	case nestsearch.AndExpr:
		for _, child := range e.Exprs {
			if !evaluate(doc, child) {
				return false
			}
		}
		return true
	case nestsearch.OrExpr:
		for _, child := range e.Exprs {
			if evaluate(doc, child) {
				return true
			}
		}
		return false
	case nestsearch.NotExpr:
		return !evaluate(doc, e.Inner)
	case nestsearch.Comparison:
		return evaluateComparison(doc, e)
	case nestsearch.RangeExpr:
		value, exists := doc.Fields[e.Field]
		if !exists {
			return false
		}
		if e.Min != nil && compareValues(value, e.Min) < 0 {
			return false
		}
		return e.Max == nil || compareValues(value, e.Max) <= 0
	default:
		// Unknown expressions do not filter anything out.
		return true
	}
}

func evaluateComparison(doc Document, c nestsearch.Comparison) bool {
	value, exists := doc.Fields[c.Field]

	switch c.Op {
	case nestsearch.OpExists:
		return exists
	case nestsearch.OpEq:
		if !exists {
			return c.Value == nil
		}
		return facetEqual(value, c.Value)
	case nestsearch.OpNe:
		if !exists {
			return c.Value != nil
		}
		return !facetEqual(value, c.Value)
	}

	if !exists {
		return false
	}
	cmp := compareValues(value, c.Value)
	switch c.Op {
	case nestsearch.OpGt:
		return cmp > 0
	case nestsearch.OpGte:
		return cmp >= 0
	case nestsearch.OpLt:
		return cmp < 0
	case nestsearch.OpLte:
		return cmp <= 0
	default:
		return true
	}
}

// facetEqual mirrors facet matching: an array field matches when any element does.
func facetEqual(docValue, want any) bool {
	if list, ok := docValue.([]any); ok {
		for _, item := range list {
			if compareEqual(item, want) {
				return true
			}
		}
		return false
	}
	return compareEqual(docValue, want)
}

func compareEqual(v1, v2 any) bool {
	if v1 == nil || v2 == nil {
		return v1 == v2
	}
	if f1, ok1 := toFloat64(v1); ok1 {
		if f2, ok2 := toFloat64(v2); ok2 {
			return f1 == f2
		}
	}
	return fmt.Sprintf("%v", v1) == fmt.Sprintf("%v", v2)
}

// compareValues orders numbers numerically and everything else as strings.
func compareValues(v1, v2 any) int {
	switch {
	case v1 == nil && v2 == nil:
		return 0
	case v1 == nil:
		return -1
	case v2 == nil:
		return 1
	}

	if f1, ok1 := toFloat64(v1); ok1 {
		if f2, ok2 := toFloat64(v2); ok2 {
			switch {
			case f1 < f2:
				return -1
			case f1 > f2:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprintf("%v", v1), fmt.Sprintf("%v", v2))
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
