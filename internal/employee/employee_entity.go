package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           uint            `gorm:"primaryKey"`
	FirstName    string          `gorm:"size:100;not null"`
	LastName     string          `gorm:"size:100;not null"`
	Email        string          `gorm:"size:255;not null;uniqueIndex:uq_employee_email"`
	HireDate     time.Time       `gorm:"type:date;not null"`
	Salary       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DepartmentID *uint           `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Read-only views. Memberships are written through the project package.
	Department *EmployeeDepartment `gorm:"foreignKey:DepartmentID;-:migration"`
	Projects   []EmployeeProject   `gorm:"many2many:employee_projects;joinForeignKey:EmployeeID;joinReferences:ProjectID;-:migration"`
}

type EmployeeDepartment struct {
	ID   uint
	Name string
}

func (EmployeeDepartment) TableName() string {
	return "departments"
}

type EmployeeProject struct {
	ID      uint
	Name    string
	EndDate *time.Time
}

func (EmployeeProject) TableName() string {
	return "projects"
}

// SalaryStats is the aggregate row of one department.
type SalaryStats struct {
	EmployeeCount int64
	AverageSalary decimal.NullDecimal
}
