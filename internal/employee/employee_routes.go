package employee

import (
	"go-workforce/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	access *middleware.Access,
) {
	employees := r.Group("/empleados")
	employees.Use(access.Authenticate(), access.Idempotent())
	{
		employees.GET("", access.Authorize("employee", "read"), h.GetAll)
		employees.GET("/salario", access.Authorize("employee", "read"), h.GetBySalaryRange)
		employees.GET("/departamento/:nombre", access.Authorize("employee", "read"), h.GetByDepartmentName)
		employees.GET("/:id", access.Authorize("employee", "read"), h.GetByID)

		employees.POST("",
			middleware.RateLimitByUser(1, 5),
			access.Authorize("employee", "create"),
			h.Create,
		)
		employees.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			access.Authorize("employee", "update"),
			h.Update,
		)
		employees.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			access.Authorize("employee", "delete"),
			h.Delete,
		)
	}

	r.GET("/departamentos/:id/salario-promedio",
		access.Authenticate(),
		access.Authorize("employee", "read"),
		h.GetAverageSalary,
	)
}
