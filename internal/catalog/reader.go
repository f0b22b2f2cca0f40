// Package catalog reads the observed state of dynamic tables from a
// Snowflake connection into relation results.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/snowdrift/pkg/relation"
	"github.com/leapstack-labs/snowdrift/pkg/relation/dynamictable"
)

// Reader runs catalog queries over database/sql. The driver is chosen by
// whoever opens DB.
type Reader struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// NewReader creates a Reader. A nil logger discards output.
func NewReader(db *sql.DB, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{DB: db, Logger: logger}
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if r.DB != nil {
		r.Logger.Debug("closing catalog connection")
		return r.DB.Close()
	}
	return nil
}

// quoteAll renders every path part as a quoted identifier. Parts are
// expected in their case-sensitive form.
var quoteAll = relation.Policies{
	Include: relation.DefaultPolicies.Include,
	Quote:   relation.Policy{Database: true, Schema: true, Identifier: true},
}

const describeDynamicTableSQL = `select
	"name",
	"schema_name",
	"database_name",
	"text",
	"target_lag",
	"warehouse",
	"refresh_mode",
	"cluster_by"
from table(result_scan(last_query_id()))`

// Retention and transience are not part of SHOW DYNAMIC TABLES output.
const tableAttributesSQL = `select is_transient, retention_time
from %s.information_schema.tables
where table_schema = ? and table_name = ?`

// DescribeDynamicTable returns the "dynamic_table" result set for p. The
// path must be fully qualified and in its case-sensitive form. When the
// table does not exist the result set is present but empty.
//
// transient is always reported for an existing table, so models that do not
// declare transient (false for a permanent table) compare as changed.
func (r *Reader) DescribeDynamicTable(ctx context.Context, p relation.Path) (relation.Results, error) {
	if r.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if p.Database == "" || p.Schema == "" || p.Identifier == "" {
		return nil, fmt.Errorf("dynamic table path %q must include database, schema and name", p.String())
	}

	// SHOW and RESULT_SCAN must run on the same session.
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	schema := relation.Path{Database: p.Database, Schema: p.Schema}.Render(quoteAll)
	show := fmt.Sprintf("show dynamic tables like %s in schema %s", quoteLiteral(p.Identifier), schema)

	r.Logger.Debug("describing dynamic table", slog.String("relation", p.String()))

	if _, err := conn.ExecContext(ctx, show); err != nil {
		return nil, fmt.Errorf("failed to show dynamic tables: %w", err)
	}

	rows, err := conn.QueryContext(ctx, describeDynamicTableSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to read dynamic table description: %w", err)
	}
	rs, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan dynamic table description: %w", err)
	}

	// LIKE treats _ and % as wildcards.
	matched := rs.Rows[:0]
	for _, row := range rs.Rows {
		if name, _ := row.String("name"); name == p.Identifier {
			matched = append(matched, row)
		}
	}
	rs.Rows = matched

	results := relation.Results{dynamictable.Kind: rs}
	if len(rs.Rows) == 0 {
		r.Logger.Debug("dynamic table not found", slog.String("relation", p.String()))
		return results, nil
	}

	if err := r.addTableAttributes(ctx, conn, p, rs.Rows[0]); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Reader) addTableAttributes(ctx context.Context, conn *sql.Conn, p relation.Path, row relation.Row) error {
	database := relation.Path{Database: p.Database}.Render(quoteAll)
	//nolint:gosec // The database name is rendered as a quoted identifier
	query := fmt.Sprintf(tableAttributesSQL, database)

	var isTransient sql.NullString
	var retention sql.NullInt64
	err := conn.QueryRowContext(ctx, query, p.Schema, p.Identifier).Scan(&isTransient, &retention)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("failed to read table attributes of %s: %w", p.String(), err)
	}

	if isTransient.Valid {
		row["transient"] = strings.EqualFold(isTransient.String, "YES")
	}
	if retention.Valid {
		row["time_travel"] = retention.Int64
	}
	return nil
}

// scanRows reads every row into a column-keyed map and closes rows.
func scanRows(rows *sql.Rows) (*relation.ResultSet, error) {
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &relation.ResultSet{Columns: columns, Rows: []relation.Row{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(relation.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
