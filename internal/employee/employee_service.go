package employee

import (
	"context"
	"strconv"
	"time"

	employeeerrors "go-workforce/internal/employee/errors"
	"go-workforce/internal/events"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/shared/contextutil"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

var maxSalary = decimal.New(1, 8)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id uint) (EmployeeResponse, error)
	Update(ctx context.Context, id uint, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id uint) error
	GetByDepartmentName(ctx context.Context, name string) ([]EmployeeResponse, error)
	GetBySalaryRange(ctx context.Context, min, max decimal.Decimal) ([]EmployeeResponse, error)
	GetAverageSalaryByDepartment(ctx context.Context, departmentID uint) (SalaryAverageResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		logger: l,
	}
}

type employeeFields struct {
	firstName    string
	lastName     string
	email        string
	hireDate     string
	salary       *decimal.Decimal
	departmentID *uint
}

func (f employeeFields) apply(empl *Employee) error {
	hireDate, err := time.Parse(dateLayout, f.hireDate)
	if err != nil {
		return employeeerrors.ErrInvalidHireDate
	}
	if f.salary == nil {
		return employeeerrors.ErrInvalidSalary
	}
	salary := f.salary.Round(2)
	if salary.IsNegative() || salary.GreaterThanOrEqual(maxSalary) {
		return employeeerrors.ErrInvalidSalary
	}

	empl.FirstName = f.firstName
	empl.LastName = f.lastName
	empl.Email = f.email
	empl.HireDate = hireDate
	empl.Salary = salary
	empl.DepartmentID = f.departmentID
	return nil
}

// checkReferences runs the uniqueness and department checks shared by create and update.
func (s *service) checkReferences(ctx context.Context, qtx Repository, empl *Employee) error {
	taken, err := qtx.ExistsByEmail(ctx, empl.Email, empl.ID)
	if err != nil {
		return err
	}
	if taken {
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	if empl.DepartmentID == nil {
		return nil
	}
	ok, err := qtx.DepartmentExists(ctx, *empl.DepartmentID)
	if err != nil {
		return err
	}
	if !ok {
		return employeeerrors.ErrDepartmentNotFound
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	rid := contextutil.GetRequestID(ctx)
	log.Debug("create employee requested", zap.String("email", req.Email))

	empl := &Employee{}
	fields := employeeFields{req.FirstName, req.LastName, req.Email, req.HireDate, req.Salary, req.DepartmentID}
	if err := fields.apply(empl); err != nil {
		log.Warn("create employee invalid input", zap.Error(err))
		return EmployeeResponse{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		if err := s.checkReferences(ctx, qtx, empl); err != nil {
			return err
		}
		if err := qtx.Create(ctx, empl); err != nil {
			return err
		}

		if s.outbox == nil {
			return nil
		}
		event, err := kafka.NewOutboxEvent(rid, "employee", strconv.FormatUint(uint64(empl.ID), 10),
			events.EmployeeCreated, events.EmployeeLifecycleTopic,
			events.EmployeeCreatedEvent{
				EventType:    events.EmployeeCreated,
				RequestID:    rid,
				EmployeeID:   empl.ID,
				DepartmentID: empl.DepartmentID,
				Email:        empl.Email,
				OccurredAt:   time.Now().UTC(),
			})
		if err != nil {
			return err
		}
		return s.outbox.WithTx(tx).Create(ctx, event)
	})
	if err != nil {
		log.Warn("create employee failed", zap.String("email", req.Email), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	log.Info("create employee success", zap.Uint("employee_id", empl.ID))
	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (EmployeeResponse, error) {
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id uint, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update employee requested", zap.Uint("employee_id", id))

	var empl *Employee
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		existing, err := qtx.FindByID(ctx, id)
		if err != nil {
			return err
		}

		fields := employeeFields{req.FirstName, req.LastName, req.Email, req.HireDate, req.Salary, req.DepartmentID}
		if err := fields.apply(existing); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, qtx, existing); err != nil {
			return err
		}
		if err := qtx.Update(ctx, existing); err != nil {
			return err
		}

		empl = existing
		return nil
	})
	if err != nil {
		log.Warn("update employee failed", zap.Uint("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	log.Info("update employee success", zap.Uint("employee_id", id))
	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	log := contextutil.GetLogger(ctx, s.logger)
	rid := contextutil.GetRequestID(ctx)
	log.Debug("delete employee requested", zap.Uint("employee_id", id))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}

		if s.outbox == nil {
			return nil
		}
		event, err := kafka.NewOutboxEvent(rid, "employee", strconv.FormatUint(uint64(id), 10),
			events.EmployeeDeleted, events.EmployeeLifecycleTopic,
			events.EmployeeDeletedEvent{
				EventType:  events.EmployeeDeleted,
				RequestID:  rid,
				EmployeeID: id,
				OccurredAt: time.Now().UTC(),
			})
		if err != nil {
			return err
		}
		return s.outbox.WithTx(tx).Create(ctx, event)
	})
	if err != nil {
		log.Warn("delete employee failed", zap.Uint("employee_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	log.Info("delete employee success", zap.Uint("employee_id", id))
	return nil
}

func (s *service) GetByDepartmentName(ctx context.Context, name string) ([]EmployeeResponse, error) {
	empls, err := s.repo.FindByDepartmentName(ctx, name)
	if err != nil {
		s.logger.Error("get employees by department failed", zap.String("department", name), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

// GetBySalaryRange returns employees whose salary lies in [min, max].
func (s *service) GetBySalaryRange(ctx context.Context, min, max decimal.Decimal) ([]EmployeeResponse, error) {
	if min.GreaterThan(max) {
		return nil, employeeerrors.ErrInvalidSalaryRange
	}

	empls, err := s.repo.FindBySalaryRange(ctx, min, max)
	if err != nil {
		s.logger.Error("get employees by salary range failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetAverageSalaryByDepartment(ctx context.Context, departmentID uint) (SalaryAverageResponse, error) {
	ok, err := s.repo.DepartmentExists(ctx, departmentID)
	if err != nil {
		return SalaryAverageResponse{}, mapRepositoryError(err)
	}
	if !ok {
		return SalaryAverageResponse{}, employeeerrors.ErrAverageDepartmentNotFound
	}

	stats, err := s.repo.SalaryStatsByDepartment(ctx, departmentID)
	if err != nil {
		s.logger.Error("salary stats failed", zap.Uint("department_id", departmentID), zap.Error(err))
		return SalaryAverageResponse{}, mapRepositoryError(err)
	}

	resp := SalaryAverageResponse{
		DepartmentID:  departmentID,
		EmployeeCount: stats.EmployeeCount,
	}
	if stats.EmployeeCount > 0 && stats.AverageSalary.Valid {
		avg := stats.AverageSalary.Decimal.StringFixed(2)
		resp.AverageSalary = &avg
	}
	return resp, nil
}

func mapToResponse(empl Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:           empl.ID,
		FirstName:    empl.FirstName,
		LastName:     empl.LastName,
		Email:        empl.Email,
		HireDate:     empl.HireDate.Format(dateLayout),
		Salary:       empl.Salary.StringFixed(2),
		DepartmentID: empl.DepartmentID,
	}
	if empl.Department != nil {
		resp.Department = &EmployeeDepartmentResponse{
			ID:   empl.Department.ID,
			Name: empl.Department.Name,
		}
	}
	for _, p := range empl.Projects {
		resp.Projects = append(resp.Projects, EmployeeProjectResponse{ID: p.ID, Name: p.Name})
	}
	return resp
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
