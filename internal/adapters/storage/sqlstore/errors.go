package sqlstore

import (
	"context"
	"errors"

	"livestock-ledger/internal/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLSTATE que se devuelven como conflicto reintentable.
var pgConflictCodes = map[string]string{
	"23505": "unique constraint violated",
	"40001": "serialization failure",
	"40P01": "deadlock detected",
	"55P03": "lock not available",
	"57014": "statement timeout",
}

// translate convierte errores del driver en errores de dominio.
// Lo que no reconoce vuelve tal cual.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if apperr.IsConflict(err) || apperr.IsNotFound(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if reason, ok := pgConflictCodes[pgErr.Code]; ok {
			if pgErr.ConstraintName != "" {
				reason += " (" + pgErr.ConstraintName + ")"
			}
			return apperr.Transient(reason, err)
		}
		return err
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperr.Transient("unique constraint violated", err)
		case code&0xff == sqlite3.SQLITE_BUSY:
			return apperr.Transient("database busy", err)
		case code&0xff == sqlite3.SQLITE_LOCKED:
			return apperr.Transient("database locked", err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Transient("transaction timed out", err)
	}
	return err
}
