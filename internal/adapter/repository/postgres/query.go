package postgres

import (
	"strconv"
	"strings"
)

// whereBuilder collects equality conditions and their positional args.
type whereBuilder struct {
	conds []string
	args  []any
}

// eq adds column = value unless value is empty.
func (w *whereBuilder) eq(column, value string) {
	if value == "" {
		return
	}
	w.args = append(w.args, value)
	w.conds = append(w.conds, column+" = $"+strconv.Itoa(len(w.args)))
}

// build appends the WHERE, ORDER BY and LIMIT clauses to base.
func (w *whereBuilder) build(base, orderBy string, limit int) (string, []any) {
	var b strings.Builder
	b.WriteString(base)

	if len(w.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(w.conds, " AND "))
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy)

	args := w.args
	if limit > 0 {
		args = append(args, limit)
		b.WriteString(" LIMIT $")
		b.WriteString(strconv.Itoa(len(args)))
	}

	return b.String(), args
}
