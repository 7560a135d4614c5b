package employee_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-workforce/internal/employee"
	employeeerrors "go-workforce/internal/employee/errors"
	"go-workforce/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeEmployeeService struct {
	CreateFn              func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	GetAllFn              func(ctx context.Context) ([]employee.EmployeeResponse, error)
	GetByIDFn             func(ctx context.Context, id uint) (employee.EmployeeResponse, error)
	UpdateFn              func(ctx context.Context, id uint, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error)
	DeleteFn              func(ctx context.Context, id uint) error
	GetByDepartmentNameFn func(ctx context.Context, name string) ([]employee.EmployeeResponse, error)
	GetBySalaryRangeFn    func(ctx context.Context, min, max decimal.Decimal) ([]employee.EmployeeResponse, error)
	GetAverageFn          func(ctx context.Context, departmentID uint) (employee.SalaryAverageResponse, error)
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeEmployeeService) GetAll(ctx context.Context) ([]employee.EmployeeResponse, error) {
	return f.GetAllFn(ctx)
}
func (f *fakeEmployeeService) GetByID(ctx context.Context, id uint) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeEmployeeService) Update(ctx context.Context, id uint, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.UpdateFn(ctx, id, req)
}
func (f *fakeEmployeeService) Delete(ctx context.Context, id uint) error {
	return f.DeleteFn(ctx, id)
}
func (f *fakeEmployeeService) GetByDepartmentName(ctx context.Context, name string) ([]employee.EmployeeResponse, error) {
	return f.GetByDepartmentNameFn(ctx, name)
}
func (f *fakeEmployeeService) GetBySalaryRange(ctx context.Context, min, max decimal.Decimal) ([]employee.EmployeeResponse, error) {
	return f.GetBySalaryRangeFn(ctx, min, max)
}
func (f *fakeEmployeeService) GetAverageSalaryByDepartment(ctx context.Context, departmentID uint) (employee.SalaryAverageResponse, error) {
	return f.GetAverageFn(ctx, departmentID)
}

func setupRouter(svc employee.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	employee.RegisterRoutes(r.Group("/api"), employee.NewHandler(svc), nil)
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

type listEnvelope struct {
	Ok   bool                        `json:"ok"`
	Data []employee.EmployeeResponse `json:"data"`
	Meta *response.PaginationMeta    `json:"meta"`
}

const validBody = `{"first_name":"Ana","last_name":"Gomez","email":"ana@example.com","hire_date":"2024-03-01","salary":75000.5}`

func TestEmployeeHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				assert.Equal(t, "75000.5", req.Salary.String())
				return employee.EmployeeResponse{ID: 1, Email: req.Email}, nil
			},
		}

		w := doRequest(setupRouter(svc), http.MethodPost, "/api/empleados", validBody)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("missing salary", func(t *testing.T) {
		body := `{"first_name":"Ana","last_name":"Gomez","email":"ana@example.com","hire_date":"2024-03-01"}`

		w := doRequest(setupRouter(&fakeEmployeeService{}), http.MethodPost, "/api/empleados", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"INVALID_INPUT"`)
	})

	t.Run("invalid email", func(t *testing.T) {
		body := strings.Replace(validBody, "ana@example.com", "nope", 1)

		w := doRequest(setupRouter(&fakeEmployeeService{}), http.MethodPost, "/api/empleados", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeAlreadyExists
			},
		}

		w := doRequest(setupRouter(svc), http.MethodPost, "/api/empleados", validBody)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestEmployeeHandler_GetAll(t *testing.T) {
	svc := &fakeEmployeeService{
		GetAllFn: func(ctx context.Context) ([]employee.EmployeeResponse, error) {
			return []employee.EmployeeResponse{
				{ID: 1, FirstName: "Ana", LastName: "Gomez", Email: "ana@example.com", Salary: "900.00"},
				{ID: 2, FirstName: "Luis", LastName: "Perez", Email: "luis@example.com", Salary: "1200.00"},
				{ID: 3, FirstName: "Bea", LastName: "Alonso", Email: "bea@example.com", Salary: "1000.00"},
			}, nil
		},
	}
	r := setupRouter(svc)

	t.Run("no pagination by default", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/empleados", "")

		var env listEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, env.Data, 3)
		assert.Nil(t, env.Meta)
	})

	t.Run("search and sort", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/empleados?q=example&sort_by=salary&sort_dir=desc", "")

		var env listEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, []uint{2, 3, 1}, []uint{env.Data[0].ID, env.Data[1].ID, env.Data[2].ID})
	})

	t.Run("paginated", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/empleados?page=2&page_size=2", "")

		var env listEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Len(t, env.Data, 1)
		assert.Equal(t, uint(3), env.Data[0].ID)
		assert.Equal(t, int64(3), env.Meta.Total)
		assert.Equal(t, 2, env.Meta.TotalPages)
	})
}

func TestEmployeeHandler_GetBySalaryRange(t *testing.T) {
	t.Run("passes bounds", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetBySalaryRangeFn: func(ctx context.Context, min, max decimal.Decimal) ([]employee.EmployeeResponse, error) {
				assert.True(t, min.Equal(decimal.NewFromInt(50000)))
				assert.True(t, max.Equal(decimal.NewFromInt(70000)))
				return []employee.EmployeeResponse{}, nil
			},
		}

		w := doRequest(setupRouter(svc), http.MethodGet, "/api/empleados/salario?min=50000&max=70000", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing max", func(t *testing.T) {
		w := doRequest(setupRouter(&fakeEmployeeService{}), http.MethodGet, "/api/empleados/salario?min=50000", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("inverted range", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetBySalaryRangeFn: func(ctx context.Context, min, max decimal.Decimal) ([]employee.EmployeeResponse, error) {
				return nil, employeeerrors.ErrInvalidSalaryRange
			},
		}

		w := doRequest(setupRouter(svc), http.MethodGet, "/api/empleados/salario?min=9&max=1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEmployeeHandler_GetByDepartmentName(t *testing.T) {
	svc := &fakeEmployeeService{
		GetByDepartmentNameFn: func(ctx context.Context, name string) ([]employee.EmployeeResponse, error) {
			assert.Equal(t, "Tecnología", name)
			return []employee.EmployeeResponse{{ID: 1}}, nil
		},
	}

	w := doRequest(setupRouter(svc), http.MethodGet, "/api/empleados/departamento/Tecnolog%C3%ADa", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEmployeeHandler_GetByID(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetByIDFn: func(ctx context.Context, id uint) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
			},
		}

		w := doRequest(setupRouter(svc), http.MethodGet, "/api/empleados/42", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doRequest(setupRouter(&fakeEmployeeService{}), http.MethodGet, "/api/empleados/0", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEmployeeHandler_UpdateAndDelete(t *testing.T) {
	svc := &fakeEmployeeService{
		UpdateFn: func(ctx context.Context, id uint, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
			return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		},
		DeleteFn: func(ctx context.Context, id uint) error {
			assert.Equal(t, uint(6), id)
			return nil
		},
	}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPut, "/api/empleados/6", validBody)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/empleados/6", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEmployeeHandler_GetAverageSalary(t *testing.T) {
	avg := "1500.00"
	svc := &fakeEmployeeService{
		GetAverageFn: func(ctx context.Context, departmentID uint) (employee.SalaryAverageResponse, error) {
			assert.Equal(t, uint(2), departmentID)
			return employee.SalaryAverageResponse{DepartmentID: 2, EmployeeCount: 2, AverageSalary: &avg}, nil
		},
	}

	w := doRequest(setupRouter(svc), http.MethodGet, "/api/departamentos/2/salario-promedio", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"average_salary":"1500.00"`)
}
