package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/lib/pq"

	"github.com/noah-isme/spi-admin-api/internal/query"
)

// Write failures reported by PostgreSQL constraints.
var (
	ErrDuplicate  = errors.New("duplicate key")
	ErrForeignKey = errors.New("foreign key violation")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translateWriteError maps constraint violations onto repository sentinels and
// annotates everything else with op.
func translateWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrForeignKey, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var columnMapper = reflectx.NewMapperFunc("db", strings.ToLower)

// suppliedColumns returns the top-level db columns of v that carry a value.
// NULL-valued nullable fields and the id column are skipped so the database
// default (NULL) applies.
func suppliedColumns(v interface{}) map[string]interface{} {
	fields := columnMapper.FieldMap(reflect.Indirect(reflect.ValueOf(v)))
	out := make(map[string]interface{}, len(fields))
	for name, field := range fields {
		if strings.Contains(name, ".") || name == "id" {
			continue
		}
		val := field.Interface()
		if valuer, ok := val.(driver.Valuer); ok {
			dv, err := valuer.Value()
			if err != nil || dv == nil {
				continue
			}
		}
		out[name] = val
	}
	return out
}

// listPage runs the count and page queries produced by list.
func listPage[T any](ctx context.Context, db sqlx.QueryerContext, list query.List, params query.Params) (query.Result[T], error) {
	countQ, pageQ := list.Build(params)

	total, err := countRows(ctx, db, countQ)
	if err != nil {
		return query.Result[T]{}, fmt.Errorf("count %s: %w", list.Table, err)
	}

	sqlStr, args, err := pageQ.ToSql()
	if err != nil {
		return query.Result[T]{}, fmt.Errorf("build %s list: %w", list.Table, err)
	}
	items := make([]T, 0)
	if err := sqlx.SelectContext(ctx, db, &items, sqlStr, args...); err != nil {
		return query.Result[T]{}, fmt.Errorf("list %s: %w", list.Table, err)
	}

	return query.Result[T]{Items: items, Total: total}, nil
}

func countRows(ctx context.Context, db sqlx.QueryerContext, builder sq.SelectBuilder) (int, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	if err := sqlx.GetContext(ctx, db, &total, sqlStr, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func getOne(ctx context.Context, db sqlx.QueryerContext, dest interface{}, builder sq.Sqlizer) error {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, db, dest, sqlStr, args...)
}

func selectAll(ctx context.Context, db sqlx.QueryerContext, dest interface{}, builder sq.Sqlizer) error {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, db, dest, sqlStr, args...)
}

func returning(columns []string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}
