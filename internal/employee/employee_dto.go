package employee

import "github.com/shopspring/decimal"

type CreateEmployeeRequest struct {
	FirstName    string           `json:"first_name" binding:"required,max=100"`
	LastName     string           `json:"last_name" binding:"required,max=100"`
	Email        string           `json:"email" binding:"required,email,max=255"`
	HireDate     string           `json:"hire_date" binding:"required,datetime=2006-01-02"`
	Salary       *decimal.Decimal `json:"salary" binding:"required"`
	DepartmentID *uint            `json:"department_id"`
}

type UpdateEmployeeRequest struct {
	FirstName    string           `json:"first_name" binding:"required,max=100"`
	LastName     string           `json:"last_name" binding:"required,max=100"`
	Email        string           `json:"email" binding:"required,email,max=255"`
	HireDate     string           `json:"hire_date" binding:"required,datetime=2006-01-02"`
	Salary       *decimal.Decimal `json:"salary" binding:"required"`
	DepartmentID *uint            `json:"department_id"`
}

type EmployeeDepartmentResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type EmployeeProjectResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type EmployeeResponse struct {
	ID           uint                        `json:"id"`
	FirstName    string                      `json:"first_name"`
	LastName     string                      `json:"last_name"`
	Email        string                      `json:"email"`
	HireDate     string                      `json:"hire_date"`
	Salary       string                      `json:"salary"`
	DepartmentID *uint                       `json:"department_id,omitempty"`
	Department   *EmployeeDepartmentResponse `json:"department,omitempty"`
	Projects     []EmployeeProjectResponse   `json:"projects,omitempty"`
}

type SalaryAverageResponse struct {
	DepartmentID  uint    `json:"department_id"`
	EmployeeCount int64   `json:"employee_count"`
	AverageSalary *string `json:"average_salary"`
}
