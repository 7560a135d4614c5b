package project

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=project_repo.go -destination=mock/project_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, p *Project) error
	FindAll(ctx context.Context) ([]Project, error)
	FindByID(ctx context.Context, id uint) (*Project, error)
	FindByIDWithEmployees(ctx context.Context, id uint) (*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id uint) error
	FindByEndDateAfter(ctx context.Context, date time.Time) ([]Project, error)

	FindMemberIDs(ctx context.Context, projectID uint) ([]uint, error)
	FindExistingEmployeeIDs(ctx context.Context, employeeIDs []uint) ([]uint, error)
	AddMembers(ctx context.Context, projectID uint, employeeIDs []uint) error
	RemoveMembers(ctx context.Context, projectID uint, employeeIDs []uint) error
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

func (r *repository) Create(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&projects).Error
	return projects, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Project, error) {
	var p Project
	err := r.db.WithContext(ctx).
		First(&p, "id = ?", id).Error
	return &p, err
}

// FindByIDWithEmployees loads the project and its members in one call.
func (r *repository) FindByIDWithEmployees(ctx context.Context, id uint) (*Project, error) {
	var p Project
	err := r.db.WithContext(ctx).
		Preload("Employees", func(db *gorm.DB) *gorm.DB {
			return db.Order("employees.id ASC")
		}).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) Update(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", id).Delete(&Membership{}).Error; err != nil {
		return err
	}

	res := db.Delete(&Project{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByEndDateAfter returns projects ending strictly after the calendar day
// of date, read in date's own location. Projects without an end date are excluded.
func (r *repository) FindByEndDateAfter(ctx context.Context, date time.Time) ([]Project, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		// bound as text so end_date is not widened to timestamptz in the session zone
		q = q.Where("end_date > CAST(? AS DATE)", day.Format(dateLayout))
	} else {
		q = q.Where("end_date > ?", day)
	}

	var projects []Project
	err := q.Order("end_date ASC, id ASC").Find(&projects).Error
	return projects, err
}

func (r *repository) FindMemberIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&Membership{}).
		Where("project_id = ?", projectID).
		Order("employee_id ASC").
		Pluck("employee_id", &ids).Error
	return ids, err
}

func (r *repository) FindExistingEmployeeIDs(ctx context.Context, employeeIDs []uint) ([]uint, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id IN ?", employeeIDs).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) AddMembers(ctx context.Context, projectID uint, employeeIDs []uint) error {
	if len(employeeIDs) == 0 {
		return nil
	}

	rows := make([]Membership, len(employeeIDs))
	for i, id := range employeeIDs {
		rows[i] = Membership{ProjectID: projectID, EmployeeID: id}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *repository) RemoveMembers(ctx context.Context, projectID uint, employeeIDs []uint) error {
	if len(employeeIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Where("project_id = ? AND employee_id IN ?", projectID, employeeIDs).
		Delete(&Membership{}).Error
}
