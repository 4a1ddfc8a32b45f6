package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("database: record not found")
	ErrDuplicateKey = errors.New("database: duplicate key")
	ErrForeignKey   = errors.New("database: foreign key violation")
)

// DBError 保留驱动原始错误，errors.Is 命中哨兵
type DBError struct {
	Sentinel error
	Cause    error
}

func (e *DBError) Error() string        { return fmt.Sprintf("%v (cause: %v)", e.Sentinel, e.Cause) }
func (e *DBError) Is(target error) bool { return e.Sentinel == target }
func (e *DBError) Unwrap() error        { return e.Cause }

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKey(err error) bool   { return errors.Is(err, ErrForeignKey) }

// MapError 把 mysql / postgres / sqlite 的约束错误统一成哨兵错误
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}
	wrap := func(s error) error { return &DBError{Sentinel: s, Cause: err} }

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return wrap(ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return wrap(ErrDuplicateKey)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return wrap(ErrForeignKey)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return wrap(ErrDuplicateKey)
		case "23503": // foreign_key_violation
			return wrap(ErrForeignKey)
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062: // ER_DUP_ENTRY
			return wrap(ErrDuplicateKey)
		case 1452, 1216: // ER_NO_REFERENCED_ROW
			return wrap(ErrForeignKey)
		}
		return err
	}

	// sqlite 驱动没有导出带码的错误类型
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return wrap(ErrDuplicateKey)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return wrap(ErrForeignKey)
	}
	return err
}
