package handler

import (
	"net/http"
	"strconv"

	"docquery-go/internal/model"
	"docquery-go/internal/service"
	"docquery-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DocumentHandler handles document ingestion and removal requests.
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler instance.
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Ingest accepts a multipart upload with its metadata fields and queues the
// document for asynchronous processing.
// POST /api/v1/documents
func (h *DocumentHandler) Ingest(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	defer file.Close()

	sourcePath := c.PostForm("source_path")
	if sourcePath == "" {
		sourcePath = header.Filename
	}

	meta := model.DocumentMeta{
		Industries:   splitParam(c.PostForm("industries")),
		CountryCodes: splitParam(c.PostForm("countries")),
	}
	if raw := c.PostForm("date_ts"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_ts parameter"})
			return
		}
		meta.DateTS = ts
	}

	docID, err := h.documentService.Ingest(c.Request.Context(), file, header.Filename, sourcePath, meta)
	if err != nil {
		log.Errorf("[DocumentHandler] ingest failed, file: %s, error: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "document queued for ingestion",
		"data":    gin.H{"doc_id": docID},
	})
}

// List returns all registered documents.
// GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documentService.List(c.Request.Context())
	if err != nil {
		log.Errorf("[DocumentHandler] list failed, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": docs, "message": "success"})
}

// Delete removes a document and all of its derived data.
// DELETE /api/v1/documents/:docId
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID := c.Param("docId")
	if docID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing docId parameter"})
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), docID); err != nil {
		log.Errorf("[DocumentHandler] delete failed, docID: %s, error: %v", docID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "document deleted"})
}
