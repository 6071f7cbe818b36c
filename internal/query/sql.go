package query

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect holds the few spots where Postgres and MySQL disagree. Statements are
// written with '?' placeholders and rebound per dialect.
type Dialect struct {
	Name string
	bind int
	// exact makes a string comparison case- and accent-sensitive.
	exact func(col string) string
	// order makes string ordering byte-wise, matching Apply.
	order func(col string) string
	// when reads a time column whose zero value is stored as NULL.
	when   func(col string) string
	escape string
}

var (
	Postgres = Dialect{
		Name:   "postgres",
		bind:   sqlx.DOLLAR,
		exact:  func(col string) string { return col },
		order:  func(col string) string { return col + ` COLLATE "C"` },
		when:   func(col string) string { return col },
		escape: `ESCAPE '\'`,
	}
	MySQL = Dialect{
		Name:   "mysql",
		bind:   sqlx.QUESTION,
		exact:  func(col string) string { return col + " COLLATE utf8mb4_bin" },
		order:  func(col string) string { return col + " COLLATE utf8mb4_bin" },
		when:   func(col string) string { return TimeColumn(col) },
		escape: `ESCAPE '\\'`,
	}
)

// TimeColumn maps a NULL MySQL datetime to the zero time.Time.
func TimeColumn(col string) string {
	return fmt.Sprintf("COALESCE(%s, TIMESTAMP('0001-01-01'))", col)
}

// Rebind converts '?' placeholders to the dialect's bind style.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.bind, query)
}

func (d Dialect) column(col string, k Kind) string {
	switch k {
	case KindString:
		return d.exact(col)
	case KindTime:
		return d.when(col)
	}
	return col
}

// Clause is a Plan rendered as SQL fragments. Args line up with the '?'
// placeholders of Where followed by LIMIT and OFFSET.
type Clause struct {
	Where   string
	OrderBy string
	Args    []any
	Limit   int
	Offset  int
	dialect Dialect
}

// SQL renders the plan. prefix qualifies column names, e.g. "b.".
func (p *Plan[E]) SQL(d Dialect, prefix string) Clause {
	var (
		conds []string
		args  []any
	)
	for _, pred := range p.predicates {
		col := d.column(prefix+pred.field.column, pred.field.kind)
		switch pred.op {
		case Equal:
			conds = append(conds, col+" = ?")
			args = append(args, pred.value)
		case NotEqual:
			conds = append(conds, col+" <> ?")
			args = append(args, pred.value)
		case Contains:
			conds = append(conds, col+" LIKE ? "+d.escape)
			args = append(args, "%"+escapeLike(pred.value.(string))+"%")
		case StartsWith:
			conds = append(conds, col+" LIKE ? "+d.escape)
			args = append(args, escapeLike(pred.value.(string))+"%")
		case EndsWith:
			conds = append(conds, col+" LIKE ? "+d.escape)
			args = append(args, "%"+escapeLike(pred.value.(string)))
		case GreaterThan:
			conds = append(conds, col+" > ?")
			args = append(args, pred.value)
		case GreaterThanOrEqual:
			conds = append(conds, col+" >= ?")
			args = append(args, pred.value)
		case LessThan:
			conds = append(conds, col+" < ?")
			args = append(args, pred.value)
		case LessThanOrEqual:
			conds = append(conds, col+" <= ?")
			args = append(args, pred.value)
		}
	}

	if p.search != "" {
		var ors []string
		pattern := "%" + escapeLike(strings.ToLower(p.search)) + "%"
		for _, f := range p.schema.Searchable() {
			ors = append(ors, fmt.Sprintf("%s LIKE ? %s", d.exact("LOWER("+prefix+f.column+")"), d.escape))
			args = append(args, pattern)
		}
		if len(ors) == 0 {
			conds = append(conds, "1=0")
		} else {
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		}
	}

	c := Clause{Args: args, Limit: p.limit, Offset: p.offset, dialect: d}
	if len(conds) > 0 {
		c.Where = "WHERE " + strings.Join(conds, " AND ")
	}

	idCol := prefix + p.schema.Identity().column
	if p.sort != nil && !p.sort.identity {
		col := prefix + p.sort.column
		switch p.sort.kind {
		case KindString:
			col = d.order(col)
		case KindTime:
			col = d.when(col)
		}
		dir := "ASC"
		if p.desc {
			dir = "DESC"
		}
		c.OrderBy = fmt.Sprintf("ORDER BY %s %s, %s ASC", col, dir, idCol)
	} else if p.sort != nil && p.desc {
		c.OrderBy = fmt.Sprintf("ORDER BY %s DESC", idCol)
	} else {
		c.OrderBy = fmt.Sprintf("ORDER BY %s ASC", idCol)
	}
	return c
}

// Select assembles a full paged statement, rebound for the dialect.
func (c Clause) Select(columns, from string) (string, []any) {
	q := fmt.Sprintf("SELECT %s FROM %s %s %s LIMIT ? OFFSET ?", columns, from, c.Where, c.OrderBy)
	args := append(append([]any{}, c.Args...), c.Limit, c.Offset)
	return c.dialect.Rebind(q), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
