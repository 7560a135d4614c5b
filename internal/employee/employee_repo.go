package employee

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id uint) (*Employee, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
	DepartmentExists(ctx context.Context, departmentID uint) (bool, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, id uint) error
	FindByDepartmentName(ctx context.Context, name string) ([]Employee, error)
	FindBySalaryRange(ctx context.Context, min, max decimal.Decimal) ([]Employee, error)
	SalaryStatsByDepartment(ctx context.Context, departmentID uint) (SalaryStats, error)
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

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("id ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Order("projects.id ASC")
		}).
		First(&empl, "id = ?", id).Error
	return &empl, err
}

// ExistsByEmail ignores the row with excludeID so an employee can keep its own email.
func (r *repository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) DepartmentExists(ctx context.Context, departmentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("departments").
		Where("id = ?", departmentID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(empl).Error
}

// Delete removes the project memberships of the employee before the row itself.
func (r *repository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM employee_projects WHERE employee_id = ?", id).Error; err != nil {
		return err
	}

	res := db.Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByDepartmentName(ctx context.Context, name string) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Joins("JOIN departments ON departments.id = employees.department_id").
		Where("departments.name = ?", name).
		Preload("Department").
		Order("employees.id ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindBySalaryRange(ctx context.Context, min, max decimal.Decimal) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("salary BETWEEN ? AND ?", min, max).
		Order("salary ASC, id ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) SalaryStatsByDepartment(ctx context.Context, departmentID uint) (SalaryStats, error) {
	var stats SalaryStats
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Select("COUNT(*) AS employee_count, AVG(salary) AS average_salary").
		Where("department_id = ?", departmentID).
		Scan(&stats).Error
	return stats, err
}
