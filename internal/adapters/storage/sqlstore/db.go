// Package sqlstore implementa los repos del ledger sobre database/sql.
// Soporta Postgres (pgx) y SQLite (modernc, sin cgo); las queries se escriben
// con '?' y se reescriben según el driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registra driver pgx
	_ "modernc.org/sqlite"             // registra driver sqlite puro Go
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "pgx"
)

type DB struct {
	sql    *sql.DB
	driver Driver
}

// ParseDSN interpreta DATABASE_URL: postgres://..., sqlite://path o un path de archivo.
func ParseDSN(databaseURL string) (Driver, string) {
	databaseURL = strings.TrimSpace(databaseURL)

	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return DriverPostgres, databaseURL
	}

	path := databaseURL
	if u, err := url.Parse(databaseURL); err == nil && u.Scheme == "sqlite" {
		path = strings.TrimPrefix(databaseURL, "sqlite://")
		if strings.HasPrefix(path, "//") {
			// sqlite:///abs/path.db
			path = path[1:]
		}
	}
	return DriverSQLite, sqliteDSN(path)
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite", path)
}

// Open abre el pool, hace ping y aplica el esquema.
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	driver, dsn := ParseDSN(databaseURL)

	sqlDB, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	switch driver {
	case DriverPostgres:
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	default:
		// SQLite admite un solo escritor; una conexión serializa las transacciones.
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	db := &DB{sql: sqlDB, driver: driver}
	if err := db.migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error { return db.sql.Close() }

func (db *DB) Driver() Driver { return db.driver }

// rebind pasa '?' a $1, $2... para Postgres. Las queries del paquete no usan '?' literales.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// liveClause es el único predicado de soft-delete del adapter.
func liveClause(alias string) string {
	if alias == "" {
		return "deleted_at IS NULL"
	}
	return alias + ".deleted_at IS NULL"
}

// where arma un filtro inmutable de igualdades "col = ?" a partir de pares no vacíos.
type where struct {
	clauses []string
	args    []any
}

func (w where) eq(col string, v string) where {
	if v == "" {
		return w
	}
	return where{
		clauses: append(append([]string{}, w.clauses...), col+" = ?"),
		args:    append(append([]any{}, w.args...), v),
	}
}

func (w where) raw(clause string, args ...any) where {
	return where{
		clauses: append(append([]string{}, w.clauses...), clause),
		args:    append(append([]any{}, w.args...), args...),
	}
}

func (w where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
