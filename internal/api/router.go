package api

import "github.com/gin-gonic/gin"

// SetupRouter configures and returns a Gin engine instance.
func SetupRouter(h *Handler, maxFileSize int64) *gin.Engine {
	// Default middleware: logger and recovery.
	r := gin.Default()
	r.MaxMultipartMemory = maxFileSize

	r.GET("/", h.Index)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", h.Health)
		apiGroup.POST("/upload", h.Upload)
		apiGroup.POST("/chat", h.Chat)
		apiGroup.GET("/documents", h.ListDocuments)
		apiGroup.DELETE("/documents/:doc_id", h.DeleteDocument)
	}

	return r
}
