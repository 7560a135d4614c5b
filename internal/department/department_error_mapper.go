package department

import (
	"errors"
	"strings"

	departmenterrors "go-workforce/internal/department/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return departmenterrors.ErrDepartmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_department_name" {
		return departmenterrors.ErrDepartmentAlreadyExists
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_department_name") {
		return departmenterrors.ErrDepartmentAlreadyExists
	}
	// sqlite
	if strings.Contains(errMsg, "unique constraint failed") && strings.Contains(errMsg, "departments.name") {
		return departmenterrors.ErrDepartmentAlreadyExists
	}

	return err
}
