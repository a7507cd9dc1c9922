// Package repositories provides the PostgreSQL implementations of the
// patent, product and report repositories.
package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of *pgxpool.Pool used by the repositories.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// jsonArray encodes v for a NOT NULL jsonb column.  A nil slice becomes [].
func jsonArray(v any, isNil bool) ([]byte, error) {
	if isNil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

// nullableJSON encodes v for a nullable jsonb column.  A nil slice becomes
// SQL NULL.
func nullableJSON(v any, isNil bool) (any, error) {
	if isNil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// decodeJSON unmarshals a jsonb column, leaving dst untouched for NULL.
func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
