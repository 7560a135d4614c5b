package app

import (
	"go-workforce/internal/config"
	"go-workforce/internal/department"
	"go-workforce/internal/employee"
	"go-workforce/internal/middleware"
	"go-workforce/internal/project"
	"go-workforce/internal/rbac"
	"go-workforce/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func registerModules(
	api *gin.RouterGroup,
	auth config.AuthConfig,
	logger *zap.Logger,
	deps Deps,
) error {
	// --- RBAC Core ---
	access := &middleware.Access{
		Enabled: auth.Enabled,
		Secret:  auth.JWTSecret,
		Replay:  middleware.Idempotency(deps.Redis, idempotencyTTL, logger),
	}
	if auth.Enabled {
		enforcer, err := infra.NewEnforcer()
		if err != nil {
			return err
		}
		rbacService, err := rbac.NewService(enforcer, rbac.DefaultPolicies)
		if err != nil {
			return err
		}
		access.RBAC = rbacService
	}

	// --- Repositories ---
	departmentRepo := department.NewRepository(deps.DB)
	employeeRepo := employee.NewRepository(deps.DB)
	projectRepo := project.NewRepository(deps.DB)

	// --- Services ---
	departmentService := department.NewServiceWithOutbox(deps.DB, departmentRepo, deps.Outbox, deps.Redis, logger)
	employeeService := employee.NewServiceWithOutbox(deps.DB, employeeRepo, deps.Outbox, logger)
	projectService := project.NewServiceWithOutbox(deps.DB, projectRepo, deps.Outbox, deps.Redis, logger)

	// --- Handlers ---
	departmentHandler := department.NewHandler(departmentService, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	projectHandler := project.NewHandler(projectService, logger)

	// --- Routes Registration ---
	department.RegisterRoutes(api, departmentHandler, access)
	employee.RegisterRoutes(api, employeeHandler, access)
	project.RegisterRoutes(api, projectHandler, access)

	return nil
}
