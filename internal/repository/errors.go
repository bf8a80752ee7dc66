package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
)

var ErrDBNotReady = errors.New("database not initialized")

// MySQL server error numbers worth a retry.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// translate maps gorm and driver errors onto the domain taxonomy.
// Domain errors pass through unchanged.
func translate(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "record not found"
		}
		return domainerrors.NotFound(notFoundMsg)
	case isDuplicate(err):
		return domainerrors.Conflict("record already exists").WithCause(err)
	case isTransient(err):
		return domainerrors.Transient("store temporarily unavailable", err)
	default:
		return domainerrors.Internal("store error", err)
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

func isTransient(err error) bool {
	if errors.Is(err, ErrDBNotReady) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlLockWaitTimeout || myErr.Number == mysqlDeadlock
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}
