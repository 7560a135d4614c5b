package department

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=department_repo.go -destination=mock/department_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dept *Department) error
	FindAll(ctx context.Context) ([]Department, error)
	FindByID(ctx context.Context, id uint) (*Department, error)
	Update(ctx context.Context, dept *Department) error
	FindEmployeeIDs(ctx context.Context, id uint) ([]uint, error)
	DeleteEmployees(ctx context.Context, employeeIDs []uint) error
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, dept *Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Department, error) {
	var depts []Department
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&depts).Error
	return depts, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Department, error) {
	var dept Department
	err := r.db.WithContext(ctx).
		First(&dept, "id = ?", id).Error
	return &dept, err
}

func (r *repository) Update(ctx context.Context, dept *Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

func (r *repository) FindEmployeeIDs(ctx context.Context, id uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("department_id = ?", id).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteEmployees removes the employees and their project memberships.
func (r *repository) DeleteEmployees(ctx context.Context, employeeIDs []uint) error {
	if len(employeeIDs) == 0 {
		return nil
	}

	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM employee_projects WHERE employee_id IN ?", employeeIDs).Error; err != nil {
		return err
	}

	return db.Exec("DELETE FROM employees WHERE id IN ?", employeeIDs).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Department{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
