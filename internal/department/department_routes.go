package department

import (
	"go-workforce/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	access *middleware.Access,
) {
	departments := r.Group("/departamentos")
	departments.Use(access.Authenticate(), access.Idempotent())
	{
		departments.GET("", access.Authorize("department", "read"), h.GetAll)
		departments.GET("/:id", access.Authorize("department", "read"), h.GetByID)

		departments.POST("",
			middleware.RateLimitByUser(1, 5),
			access.Authorize("department", "create"),
			h.Create,
		)
		departments.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			access.Authorize("department", "update"),
			h.Update,
		)
		departments.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 2),
			access.Authorize("department", "delete"),
			h.Delete,
		)
	}
}
