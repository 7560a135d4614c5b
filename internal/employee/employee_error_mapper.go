package employee

import (
	"errors"
	"strings"

	employeeerrors "go-workforce/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_employee_email" {
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_employee_email") {
		return employeeerrors.ErrEmployeeAlreadyExists
	}
	// sqlite
	if strings.Contains(errMsg, "unique constraint failed") && strings.Contains(errMsg, "employees.email") {
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	return err
}
