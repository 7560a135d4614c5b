package project

import (
	"go-workforce/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	access *middleware.Access,
) {
	projects := r.Group("/proyectos")
	projects.Use(access.Authenticate(), access.Idempotent())
	{
		projects.GET("", access.Authorize("project", "read"), h.GetAll)
		projects.GET("/activos", access.Authorize("project", "read"), h.GetActive)
		projects.GET("/:id", access.Authorize("project", "read"), h.GetByID)

		projects.POST("",
			middleware.RateLimitByUser(1, 5),
			access.Authorize("project", "create"),
			h.Create,
		)
		projects.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			access.Authorize("project", "update"),
			h.Update,
		)
		projects.PUT("/:id/asignar-empleados",
			middleware.RateLimitByUser(1, 5),
			access.Authorize("project", "assign"),
			h.AssignEmployees,
		)
		projects.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			access.Authorize("project", "delete"),
			h.Delete,
		)
	}
}
