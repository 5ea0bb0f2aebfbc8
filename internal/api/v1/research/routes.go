package research

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the research endpoints under the given group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	research := r.Group("/research")
	{
		research.POST("", h.StartResearch)
		research.GET("/:id", h.GetResearchStatus)
		research.GET("/:id/document", h.DownloadDocument)
	}
}
