package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gigboard/gigadmin/internal/models"
)

// sqlArgs accumulates positional arguments together with WHERE conditions or
// SET clauses that reference them.
type sqlArgs struct {
	conds []string
	args  []any
}

// arg appends v and returns its placeholder ("$n").
func (s *sqlArgs) arg(v any) string {
	s.args = append(s.args, v)

	return "$" + strconv.Itoa(len(s.args))
}

// where adds a condition. Each "?" in cond is replaced by the next value's placeholder.
func (s *sqlArgs) where(cond string, vals ...any) {
	var b strings.Builder

	i := 0
	for _, r := range cond {
		if r == '?' && i < len(vals) {
			b.WriteString(s.arg(vals[i]))
			i++

			continue
		}

		b.WriteRune(r)
	}

	s.conds = append(s.conds, b.String())
}

// set adds "col = $n" to the clause list.
func (s *sqlArgs) set(col string, v any) {
	s.conds = append(s.conds, col+" = "+s.arg(v))
}

// whereClause renders " WHERE a AND b", or "" when there are no conditions.
func (s *sqlArgs) whereClause() string {
	if len(s.conds) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(s.conds, " AND ")
}

// setClause renders "a = $1, b = $2".
func (s *sqlArgs) setClause() string {
	return strings.Join(s.conds, ", ")
}

func (s *sqlArgs) clone() *sqlArgs {
	return &sqlArgs{
		conds: append([]string(nil), s.conds...),
		args:  append([]any(nil), s.args...),
	}
}

// likePattern escapes LIKE metacharacters and wraps term for a contains match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	return "%" + r.Replace(term) + "%"
}

// sortColumns maps API sort field names to SQL column expressions.
type sortColumns map[string]string

// orderBy renders an ORDER BY clause from the zipped sort fields. Unknown
// fields are rejected. The primary key is always appended as a tiebreaker so
// equal sort keys page deterministically.
func orderBy(fields []models.SortField, allowed sortColumns, idColumn string) (string, error) {
	parts := make([]string, 0, len(fields)+1)
	hasID := false

	for _, f := range fields {
		col, ok := allowed[f.Field]
		if !ok {
			return "", models.NewValidationError("sortBy", fmt.Sprintf("unknown field %q", f.Field))
		}

		if col == idColumn {
			hasID = true
		}

		dir := "ASC"
		if f.Direction == models.SortDesc {
			dir = "DESC"
		}

		parts = append(parts, col+" "+dir)
	}

	if !hasID {
		parts = append(parts, idColumn+" ASC")
	}

	return "ORDER BY " + strings.Join(parts, ", "), nil
}
