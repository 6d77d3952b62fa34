package core

import (
	"fmt"
	"strings"
)

// Operator is a filter predicate operator.
type Operator string

// Filter operators.
const (
	OpContains   Operator = "contains"
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpRegex      Operator = "regex"
)

// operatorAliases maps request-layer spellings to operators.
var operatorAliases = map[string]Operator{
	"contains":    OpContains,
	"like":        OpContains,
	"equals":      OpEquals,
	"=":           OpEquals,
	"eq":          OpEquals,
	"not_equals":  OpNotEquals,
	"!=":          OpNotEquals,
	"<>":          OpNotEquals,
	"ne":          OpNotEquals,
	"starts_with": OpStartsWith,
	"like_start":  OpStartsWith,
	"ends_with":   OpEndsWith,
	"like_end":    OpEndsWith,
	"regex":       OpRegex,
	"regexp":      OpRegex,
}

// ParseOperator resolves an operator name. Unknown names fall back to
// OpContains, matching the default search behavior.
func ParseOperator(s string) Operator {
	if op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op
	}
	return OpContains
}

// Filter is a single predicate of a query request.
type Filter struct {
	Column   string   `mapstructure:"column"`
	Operator Operator `mapstructure:"operator"`
	Value    string   `mapstructure:"value"`
}

// SortDirection is ASC or DESC.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection returns SortDesc for "desc" (any case) and SortAsc otherwise.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return SortDesc
	}
	return SortAsc
}

// Sort orders a query by a single column.
type Sort struct {
	Column    string        `mapstructure:"column"`
	Direction SortDirection `mapstructure:"direction"`
}

// QueryRequest describes a paginated read of one table.
type QueryRequest struct {
	Table          string            `mapstructure:"table"`
	Filters        []Filter          `mapstructure:"filters"`
	ColumnSearches map[string]string `mapstructure:"column_searches"`
	Sort           *Sort             `mapstructure:"sort"`
	Limit          int               `mapstructure:"limit"`
	Offset         int               `mapstructure:"offset"`
}

// Validate checks the pagination invariants.
func (r QueryRequest) Validate() error {
	if r.Table == "" {
		return &ValidationError{Field: "table", Reason: "is required"}
	}
	if r.Limit <= 0 {
		return &ValidationError{Field: "limit", Reason: fmt.Sprintf("must be greater than 0, got %d", r.Limit)}
	}
	if r.Offset < 0 {
		return &ValidationError{Field: "offset", Reason: fmt.Sprintf("must not be negative, got %d", r.Offset)}
	}
	return nil
}

// Page is one page of a table read along with pagination info.
type Page struct {
	Records     ResultSet
	Total       int64
	Limit       int
	Offset      int
	CurrentPage int
	TotalPages  int
}

// NewPage computes pagination for the given total row count. An empty
// result still has one page, so CurrentPage never exceeds TotalPages on
// the first page.
func NewPage(records ResultSet, total int64, limit, offset int) Page {
	p := Page{
		Records: records,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
	if limit > 0 {
		p.CurrentPage = offset/limit + 1
		p.TotalPages = max(int((total+int64(limit)-1)/int64(limit)), 1)
	}
	return p
}

// OffsetForPage converts a 1-based page number into an offset.
func OffsetForPage(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
