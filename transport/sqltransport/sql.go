// Package sqltransport implements the transport contract over a SQL
// database: resources live in plural snake_case tables addressed by id,
// collections in the field's table addressed by an owner foreign key.
package sqltransport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	ustrings "github.com/restbound/restbound/internal/util/strings"
	"github.com/restbound/restbound/relation"
)

// ErrNotFound is returned when no row exists for the requested id
var ErrNotFound = errors.New("record not found")

// ErrMissingID is returned when a fetch is attempted for an identity with
// no id to address
var ErrMissingID = errors.New("identity has no id")

// Querier is the subset of *sql.DB the store needs, allowing transactions
// and test doubles
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Dialect selects the placeholder style
type Dialect int

const (
	// DialectPostgres uses $1-style placeholders
	DialectPostgres Dialect = iota
	// DialectSQLite uses ?-style placeholders
	DialectSQLite
)

// Store is a SQL transport
type Store struct {
	db      Querier
	dialect Dialect
	logger  *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithDialect sets the placeholder dialect (default Postgres)
func WithDialect(d Dialect) Option {
	return func(s *Store) { s.dialect = d }
}

// WithLogger sets the query logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store over db
func New(db Querier, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchResource implements relation.Transport
func (s *Store) FetchResource(ctx context.Context, resource string, identity relation.Identity) (map[string]any, error) {
	id := identity.ID()
	if id == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingID, resource)
	}

	table := tableName(resource)
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = %s", table, s.placeholder(1))
	s.logger.Debug("query", zap.String("sql", query), zap.Any("id", id))

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s/%v", ErrNotFound, resource, id)
	}
	return records[0], nil
}

// FetchCollection implements relation.Transport
func (s *Store) FetchCollection(ctx context.Context, ownerResource string, owner relation.Identity, field string) ([]map[string]any, error) {
	id := owner.ID()
	if id == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingID, ownerResource, field)
	}

	table := ustrings.ToSnakeCase(field)
	foreignKey := ustrings.ToSnakeCase(ownerResource) + "_id"
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s", table, foreignKey, s.placeholder(1))
	s.logger.Debug("query", zap.String("sql", query), zap.Any("owner_id", id))

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

func (s *Store) placeholder(n int) string {
	if s.dialect == DialectSQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

func tableName(resource string) string {
	return ustrings.Pluralize(ustrings.ToSnakeCase(resource))
}

// scanRows scans result rows into record maps, converting []byte text
// columns to strings
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(map[string]any)
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

var _ relation.Transport = (*Store)(nil)
