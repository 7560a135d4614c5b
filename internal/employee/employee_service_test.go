package employee_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-workforce/internal/employee"
	employeeerrors "go-workforce/internal/employee/errors"
	"go-workforce/internal/events"
	"go-workforce/internal/messaging/kafka"

	employeeMock "go-workforce/internal/employee/mock"
	kafkaMock "go-workforce/internal/messaging/kafka/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type serviceDeps struct {
	sqlMock sqlmock.Sqlmock
	service employee.Service
	repo    *employeeMock.MockRepository
	outbox  *kafkaMock.MockOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	sqlDB, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	assert.NoError(t, err)

	repo := employeeMock.NewMockRepository(ctrl)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)

	return &serviceDeps{
		sqlMock: sqlMock,
		service: employee.NewServiceWithOutbox(gormDB, repo, outbox),
		repo:    repo,
		outbox:  outbox,
	}
}

func salary(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func uintPtr(v uint) *uint {
	return &v
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		FirstName:    "Ana",
		LastName:     "Gomez",
		Email:        "ana@example.com",
		HireDate:     "2024-03-01",
		Salary:       salary("75000.505"),
		DepartmentID: uintPtr(2),
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success queues event", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().ExistsByEmail(ctx, "ana@example.com", uint(0)).Return(false, nil)
		deps.repo.EXPECT().DepartmentExists(ctx, uint(2)).Return(true, nil)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.Equal(t, "75000.51", e.Salary.StringFixed(2))
				assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), e.HireDate)
				e.ID = 11
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, events.EmployeeCreated, ev.EventType)
				assert.Equal(t, events.EmployeeLifecycleTopic, ev.Topic)

				var payload events.EmployeeCreatedEvent
				assert.NoError(t, json.Unmarshal(ev.Payload, &payload))
				assert.Equal(t, uint(11), payload.EmployeeID)
				return nil
			})
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, uint(11), resp.ID)
		assert.Equal(t, "75000.51", resp.Salary)
		assert.Equal(t, "2024-03-01", resp.HireDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate email -> conflict, nothing created", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().ExistsByEmail(ctx, "ana@example.com", uint(0)).Return(true, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown department", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().ExistsByEmail(ctx, gomock.Any(), uint(0)).Return(false, nil)
		deps.repo.EXPECT().DepartmentExists(ctx, uint(2)).Return(false, nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrDepartmentNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative salary is rejected before the transaction", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()
		req.Salary = salary("-1")

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidSalary)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("salary above column precision", func(t *testing.T) {
		for _, v := range []string{"100000000", "99999999.996"} {
			deps := setupServiceTest(t)
			req := validCreateRequest()
			req.Salary = salary(v)

			_, err := deps.service.Create(ctx, req)

			assert.ErrorIs(t, err, employeeerrors.ErrInvalidSalary, v)
		}
	})

	t.Run("invalid hire date", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()
		req.HireDate = "01/03/2024"

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidHireDate)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("not found -> no mutation", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, uint(99)).Return(&employee.Employee{}, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Update(ctx, 99, employee.UpdateEmployeeRequest(validCreateRequest()))

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("email owned by another employee", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, uint(3)).Return(&employee.Employee{ID: 3, Email: "old@example.com"}, nil)
		deps.repo.EXPECT().ExistsByEmail(ctx, "ana@example.com", uint(3)).Return(true, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Update(ctx, 3, employee.UpdateEmployeeRequest(validCreateRequest()))

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
	})

	t.Run("success keeps id", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.UpdateEmployeeRequest(validCreateRequest())
		req.DepartmentID = nil

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, uint(3)).Return(&employee.Employee{ID: 3}, nil)
		deps.repo.EXPECT().ExistsByEmail(ctx, "ana@example.com", uint(3)).Return(false, nil)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.Equal(t, uint(3), e.ID)
				assert.Nil(t, e.DepartmentID)
				return nil
			})
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Update(ctx, 3, req)

		assert.NoError(t, err)
		assert.Equal(t, uint(3), resp.ID)
		assert.Equal(t, "Ana", resp.FirstName)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Delete(ctx, uint(4)).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, events.EmployeeDeleted, ev.EventType)
				assert.Equal(t, "4", ev.AggregateID)
				return nil
			})
		deps.sqlMock.ExpectCommit()

		assert.NoError(t, deps.service.Delete(ctx, 4))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Delete(ctx, uint(99)).Return(gorm.ErrRecordNotFound)
		deps.sqlMock.ExpectRollback()

		err := deps.service.Delete(ctx, 99)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_GetBySalaryRange(t *testing.T) {
	ctx := context.Background()

	t.Run("min greater than max", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindBySalaryRange(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.GetBySalaryRange(ctx, decimal.NewFromInt(70000), decimal.NewFromInt(50000))

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidSalaryRange)
	})

	t.Run("equal bounds are allowed", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().
			FindBySalaryRange(ctx, gomock.Any(), gomock.Any()).
			Return([]employee.Employee{{ID: 1, Salary: decimal.NewFromInt(50000)}}, nil)

		resp, err := deps.service.GetBySalaryRange(ctx, decimal.NewFromInt(50000), decimal.NewFromInt(50000))

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "50000.00", resp[0].Salary)
	})

	t.Run("repo error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().
			FindBySalaryRange(ctx, gomock.Any(), gomock.Any()).
			Return(nil, errors.New("db error"))

		_, err := deps.service.GetBySalaryRange(ctx, decimal.Zero, decimal.NewFromInt(1))

		assert.Error(t, err)
	})
}

func TestEmployeeService_GetAverageSalaryByDepartment(t *testing.T) {
	ctx := context.Background()

	t.Run("department missing", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().DepartmentExists(ctx, uint(8)).Return(false, nil)

		_, err := deps.service.GetAverageSalaryByDepartment(ctx, 8)

		assert.ErrorIs(t, err, employeeerrors.ErrAverageDepartmentNotFound)
	})

	t.Run("no employees -> null average", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().DepartmentExists(ctx, uint(8)).Return(true, nil)
		deps.repo.EXPECT().SalaryStatsByDepartment(ctx, uint(8)).Return(employee.SalaryStats{}, nil)

		resp, err := deps.service.GetAverageSalaryByDepartment(ctx, 8)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), resp.EmployeeCount)
		assert.Nil(t, resp.AverageSalary)
	})

	t.Run("average rounded to cents", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().DepartmentExists(ctx, uint(8)).Return(true, nil)
		deps.repo.EXPECT().SalaryStatsByDepartment(ctx, uint(8)).Return(employee.SalaryStats{
			EmployeeCount: 3,
			AverageSalary: decimal.NullDecimal{Decimal: decimal.RequireFromString("1000.3333333"), Valid: true},
		}, nil)

		resp, err := deps.service.GetAverageSalaryByDepartment(ctx, 8)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), resp.EmployeeCount)
		assert.Equal(t, "1000.33", *resp.AverageSalary)
	})
}
