package query

import (
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Builder is the statement builder used for PostgreSQL placeholders.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SearchSpec names the expressions matched by a free-text search.
type SearchSpec struct {
	Columns []string
}

// Admin, student and child search columns.
var (
	AdminSearch   = SearchSpec{Columns: []string{"username", "full_name"}}
	StudentSearch = SearchSpec{Columns: []string{"CONCAT(first_name, ' ', last_name)", "department", "address"}}
	ChildSearch   = SearchSpec{Columns: []string{"child_name", "child_school"}}
)

// Search returns a case-insensitive substring predicate OR-ed over the
// columns, or nil when term is blank. LIKE metacharacters in term match literally.
func Search(spec SearchSpec, term string) sq.Sqlizer {
	term = strings.TrimSpace(term)
	if term == "" || len(spec.Columns) == 0 {
		return nil
	}
	pattern := "%" + EscapeLike(term) + "%"
	or := make(sq.Or, 0, len(spec.Columns))
	for _, column := range spec.Columns {
		or = append(or, sq.Expr(column+" ILIKE ?", pattern))
	}
	return or
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so term is matched literally.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// AgeRange is a parsed age filter.
type AgeRange struct {
	Min       int
	Max       int
	Unbounded bool
}

// ParseAgeRange parses "min-max" (inclusive) or "N+" (strictly greater than N).
// Any other input yields ok=false and no filter is applied.
func ParseAgeRange(raw string) (AgeRange, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AgeRange{}, false
	}
	if strings.HasSuffix(raw, "+") {
		n, err := strconv.Atoi(strings.TrimSuffix(raw, "+"))
		if err != nil || n < 0 {
			return AgeRange{}, false
		}
		return AgeRange{Min: n, Unbounded: true}, true
	}
	lo, hi, found := strings.Cut(raw, "-")
	if !found {
		return AgeRange{}, false
	}
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || from < 0 {
		return AgeRange{}, false
	}
	to, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil || to < 0 {
		return AgeRange{}, false
	}
	return AgeRange{Min: from, Max: to}, true
}

// Predicate renders the range against column.
func (r AgeRange) Predicate(column string) sq.Sqlizer {
	if r.Unbounded {
		return sq.Gt{column: r.Min}
	}
	return sq.Expr(fmt.Sprintf("%s BETWEEN ? AND ?", column), r.Min, r.Max)
}

// List composes the COUNT and page queries of a listing over one table.
type List struct {
	Table   string
	Columns []string
	Search  SearchSpec
	AgeCol  string
}

// Build returns the count and page builders for params. Both share the same
// predicates; only the page query is ordered and limited.
func (l List) Build(params Params) (sq.SelectBuilder, sq.SelectBuilder) {
	params = params.Normalize()

	count := Builder.Select("COUNT(*)").From(l.Table)
	page := Builder.Select(l.Columns...).From(l.Table)

	if pred := Search(l.Search, params.Search); pred != nil {
		count = count.Where(pred)
		page = page.Where(pred)
	}
	if l.AgeCol != "" {
		if r, ok := ParseAgeRange(params.AgeRange); ok {
			pred := r.Predicate(l.AgeCol)
			count = count.Where(pred)
			page = page.Where(pred)
		}
	}

	page = page.OrderBy("id DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))

	return count, page
}
