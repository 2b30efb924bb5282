package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/query"
)

// table describes how the client-visible fields of a collection map to
// columns.
type table struct {
	name    string
	columns map[string]string
	// selectList is the column list scanned by the store.
	selectList string
}

var usersTable = table{
	name: "users",
	columns: map[string]string{
		query.IDField:  "id",
		"name":         "name",
		"email":        "email",
		"pendingTasks": "pending_tasks",
		"dateCreated":  "date_created",
	},
	selectList: "id, name, email, pending_tasks, date_created",
}

var tasksTable = table{
	name: "tasks",
	columns: map[string]string{
		query.IDField:      "id",
		"name":             "name",
		"description":      "description",
		"deadline":         "deadline",
		"completed":        "completed",
		"assignedUser":     "assigned_user",
		"assignedUserName": "assigned_user_name",
		"dateCreated":      "date_created",
	},
	selectList: "id, name, description, deadline, completed, assigned_user, assigned_user_name, date_created",
}

// sqlBuilder accumulates positional arguments while rendering clauses.
type sqlBuilder struct {
	table table
	args  []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// where renders f as a boolean SQL expression. The empty filter renders as
// TRUE.
func (b *sqlBuilder) where(f query.Filter) (string, error) {
	var parts []string

	for _, c := range f.Conds {
		part, err := b.cond(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	for _, sub := range f.And {
		part, err := b.where(sub)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+part+")")
	}
	if len(f.Or) > 0 {
		ors := make([]string, 0, len(f.Or))
		for _, sub := range f.Or {
			part, err := b.where(sub)
			if err != nil {
				return "", err
			}
			ors = append(ors, "("+part+")")
		}
		parts = append(parts, "("+strings.Join(ors, " OR ")+")")
	}

	if len(parts) == 0 {
		return "TRUE", nil
	}
	return strings.Join(parts, " AND "), nil
}

var comparisons = map[query.Op]string{
	query.OpEq:  "=",
	query.OpNe:  "<>",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

func (b *sqlBuilder) cond(c query.Cond) (string, error) {
	col, ok := b.table.columns[c.Field]
	if !ok {
		return "", fmt.Errorf("%w: unknown field %q", query.ErrInvalid, c.Field)
	}

	values := c.Values
	if c.Op != query.OpIn && c.Op != query.OpNin {
		values = []any{c.Value}
	}
	if c.Kind == query.KindID {
		converted := make([]any, 0, len(values))
		for _, v := range values {
			s, _ := v.(string)
			id, err := uuid.Parse(s)
			if err != nil {
				return "", fmt.Errorf("%w: %q is not a valid id for %q", query.ErrInvalid, s, c.Field)
			}
			converted = append(converted, id)
		}
		values = converted
	}

	if c.Kind == query.KindStringList {
		return b.listCond(col, c.Op, values), nil
	}

	switch c.Op {
	case query.OpIn, query.OpNin:
		if len(values) == 0 {
			if c.Op == query.OpIn {
				return "FALSE", nil
			}
			return "TRUE", nil
		}
		placeholders := make([]string, 0, len(values))
		for _, v := range values {
			placeholders = append(placeholders, b.arg(v))
		}
		op := "IN"
		if c.Op == query.OpNin {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", col, op, strings.Join(placeholders, ", ")), nil
	default:
		cmp, ok := comparisons[c.Op]
		if !ok {
			return "", fmt.Errorf("%w: unsupported operator %q", query.ErrInvalid, c.Op)
		}
		return fmt.Sprintf("%s %s %s", col, cmp, b.arg(values[0])), nil
	}
}

// listCond applies array semantics: equality is membership and $in is
// overlap.
func (b *sqlBuilder) listCond(col string, op query.Op, values []any) string {
	members := make([]string, 0, len(values))
	for _, v := range values {
		members = append(members, fmt.Sprintf("%s = ANY(%s)", b.arg(v), col))
	}

	matched := "FALSE"
	if len(members) > 0 {
		matched = strings.Join(members, " OR ")
	}

	switch op {
	case query.OpNe, query.OpNin:
		return "NOT (" + matched + ")"
	default:
		return "(" + matched + ")"
	}
}

// orderBy renders the ORDER BY clause. Rows are ordered by creation when no
// sort is given, and id breaks ties.
func (b *sqlBuilder) orderBy(fields []query.SortField) string {
	if len(fields) == 0 {
		return "ORDER BY date_created ASC, id ASC"
	}
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s", b.table.columns[f.Field], dir))
	}
	parts = append(parts, "id ASC")
	return "ORDER BY " + strings.Join(parts, ", ")
}

// selectQuery renders a full SELECT for q.
func selectQuery(t table, q *query.Query) (string, []any, error) {
	b := &sqlBuilder{table: t}
	where, err := b.where(q.Filter)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s WHERE %s %s", t.selectList, t.name, where, b.orderBy(q.Sort))
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %s", b.arg(q.Limit))
	}
	if q.Skip > 0 {
		fmt.Fprintf(&sb, " OFFSET %s", b.arg(q.Skip))
	}
	return sb.String(), b.args, nil
}

// countQuery renders a SELECT COUNT(*) for f.
func countQuery(t table, f query.Filter) (string, []any, error) {
	b := &sqlBuilder{table: t}
	where, err := b.where(f)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", t.name, where), b.args, nil
}
