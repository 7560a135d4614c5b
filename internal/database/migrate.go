package database

import (
	"fmt"

	"go-workforce/internal/department"
	"go-workforce/internal/employee"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/project"

	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&department.Department{},
		&employee.Employee{},
		&project.Project{},
		&project.Membership{},
		&kafka.OutboxEvent{},
	}
}

// Migrate creates or extends the tables. Foreign keys are not created;
// cascades are done by the services.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
