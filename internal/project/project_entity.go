package project

import "time"

type Project struct {
	ID          uint       `gorm:"primaryKey"`
	Name        string     `gorm:"size:100;not null"`
	Description string     `gorm:"size:1000"`
	StartDate   *time.Time `gorm:"type:date"`
	EndDate     *time.Time `gorm:"type:date;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Read-only view over employee_projects. Use the membership operations to change it.
	Employees []ProjectEmployee `gorm:"many2many:employee_projects;joinForeignKey:ProjectID;joinReferences:EmployeeID;-:migration"`
}

type ProjectEmployee struct {
	ID        uint
	FirstName string
	LastName  string
	Email     string
}

func (ProjectEmployee) TableName() string {
	return "employees"
}

// Membership is one row of the employee/project relation and the only way it is stored.
type Membership struct {
	ProjectID  uint `gorm:"primaryKey;autoIncrement:false"`
	EmployeeID uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time
}

func (Membership) TableName() string {
	return "employee_projects"
}
