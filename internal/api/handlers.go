package api

import (
	"errors"
	"net/http"

	"docchat/internal/service"
	"docchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler holds the processing functions for every API endpoint.
type Handler struct {
	service *service.DocumentService
	log     *logger.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(s *service.DocumentService, log *logger.Logger) *Handler {
	return &Handler{service: s, log: log}
}

// Index describes the service and its endpoints.
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "AI Chatbot API Server",
		"status":  "running",
		"endpoints": gin.H{
			"health":    "/api/health",
			"upload":    "/api/upload (POST)",
			"chat":      "/api/chat (POST)",
			"documents": "/api/documents (GET)",
		},
	})
}

// Health reports whether the model and the vector store are configured.
func (h *Handler) Health(c *gin.Context) {
	status := h.service.Health()
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"gemini_configured":   status.GeminiConfigured,
		"chromadb_configured": status.VectorStoreConfigured,
	})
}

// Upload accepts a PDF as the multipart field "file" and indexes it.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if fileHeader.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := h.service.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.uploadError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Document uploaded and processed successfully",
		"filename":    result.Filename,
		"doc_id":      result.DocID,
		"chunks":      result.Chunks,
		"text_length": result.TextLength,
	})
}

// uploadError maps service errors to the upload endpoint's responses.
func (h *Handler) uploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
	case errors.Is(err, service.ErrInvalidFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
	case errors.Is(err, service.ErrDuplicateFilename):
		c.JSON(http.StatusBadRequest, gin.H{"error": "File already uploaded. Please delete the existing file first or upload a different file."})
	case errors.Is(err, service.ErrEmptyExtraction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text could be extracted from PDF"})
	default:
		h.log.Error("Error uploading document: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ChatRequest is the JSON body of the chat endpoint.
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// Chat answers a question from the indexed documents.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No question provided"})
		return
	}

	result, err := h.service.Chat(c.Request.Context(), req.Question)
	if err != nil {
		h.log.Error("Error in chat: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":  result.Answer,
		"sources": result.Sources,
	})
}

// ListDocuments returns each indexed document once.
func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.service.ListDocuments(c.Request.Context())
	if err != nil {
		h.log.Error("Error listing documents: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	documents := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		documents = append(documents, gin.H{"id": doc.ID, "filename": doc.Filename})
	}
	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// DeleteDocument removes a document and all of its chunks.
func (h *Handler) DeleteDocument(c *gin.Context) {
	docID := c.Param("doc_id")

	result, err := h.service.DeleteDocument(c.Request.Context(), docID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		h.log.Error("Error deleting document: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Document deleted successfully",
		"filename":       result.Filename,
		"chunks_deleted": result.ChunksDeleted,
	})
}
