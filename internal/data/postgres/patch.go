package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// setBuilder assembles the SET clause of a partial UPDATE.
type setBuilder struct {
	sets []string
	args []interface{}
}

func (b *setBuilder) add(column string, value interface{}) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *setBuilder) empty() bool {
	return len(b.sets) == 0
}

// build appends updated_at and the id predicate and returns the statement.
func (b *setBuilder) build(table string, id uuid.UUID, now time.Time) (string, []interface{}) {
	b.add("updated_at", now)
	b.args = append(b.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(b.sets, ", "), len(b.args))
	return query, b.args
}

func addString(b *setBuilder, column string, v *string) {
	if v != nil {
		b.add(column, *v)
	}
}
