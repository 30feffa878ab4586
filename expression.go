package nestsearch

// Operator is the comparison performed by a Comparison expression.
type Operator string

const (
	OpEq     Operator = "eq"
	OpNe     Operator = "ne"
	OpGt     Operator = "gt"
	OpGte    Operator = "gte"
	OpLt     Operator = "lt"
	OpLte    Operator = "lte"
	OpExists Operator = "exists"
)

// Expression is a composable filter. Every Expression is also a SearchOption:
// passing one to Search adds it to the AND-ed filter list.
type Expression interface {
	SearchOption
	expr()
}

// filter provides the marker method and the Apply behaviour shared by all expressions.
type filter struct{}

func (filter) expr() {}

func addFilter(cfg *SearchConfig, e Expression) {
	cfg.Filters = append(cfg.Filters, e)
}

// Comparison compares a record field with a value.
type Comparison struct {
	filter
	Field string
	Op    Operator
	// Value is ignored for OpExists.
	Value any
}

// Apply implements SearchOption.
func (c Comparison) Apply(cfg *SearchConfig) { addFilter(cfg, c) }

// RangeExpr matches numeric fields within [Min, Max]; a nil bound is open.
type RangeExpr struct {
	filter
	Field string
	Min   any
	Max   any
}

// Apply implements SearchOption.
func (r RangeExpr) Apply(cfg *SearchConfig) { addFilter(cfg, r) }

// AndExpr matches when every child matches.
type AndExpr struct {
	filter
	Exprs []Expression
}

// Apply implements SearchOption.
func (a AndExpr) Apply(cfg *SearchConfig) { addFilter(cfg, a) }

// OrExpr matches when any child matches.
type OrExpr struct {
	filter
	Exprs []Expression
}

// Apply implements SearchOption.
func (o OrExpr) Apply(cfg *SearchConfig) { addFilter(cfg, o) }

// NotExpr negates Inner.
type NotExpr struct {
	filter
	Inner Expression
}

// Apply implements SearchOption.
func (n NotExpr) Apply(cfg *SearchConfig) { addFilter(cfg, n) }

// Eq matches records whose field equals value.
func Eq(field string, value any) Expression {
	return Comparison{Field: field, Op: OpEq, Value: value}
}

// Ne matches records whose field differs from value.
func Ne(field string, value any) Expression {
	return Comparison{Field: field, Op: OpNe, Value: value}
}

// Gt matches records whose numeric field is greater than value.
func Gt(field string, value any) Expression {
	return Comparison{Field: field, Op: OpGt, Value: value}
}

// Gte matches records whose numeric field is at least value.
func Gte(field string, value any) Expression {
	return Comparison{Field: field, Op: OpGte, Value: value}
}

// Lt matches records whose numeric field is less than value.
func Lt(field string, value any) Expression {
	return Comparison{Field: field, Op: OpLt, Value: value}
}

// Lte matches records whose numeric field is at most value.
func Lte(field string, value any) Expression {
	return Comparison{Field: field, Op: OpLte, Value: value}
}

// Exists matches records that carry field.
func Exists(field string) Expression {
	return Comparison{Field: field, Op: OpExists}
}

// Range matches records whose numeric field lies within [min, max].
func Range(field string, min, max any) Expression {
	return RangeExpr{Field: field, Min: min, Max: max}
}

// And combines expressions with AND.
func And(exprs ...Expression) Expression {
	return AndExpr{Exprs: exprs}
}

// Or combines expressions with OR.
func Or(exprs ...Expression) Expression {
	return OrExpr{Exprs: exprs}
}

// Not negates expr.
func Not(expr Expression) Expression {
	return NotExpr{Inner: expr}
}
