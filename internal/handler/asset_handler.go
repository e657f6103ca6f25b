package handler

import (
	"errors"
	"net/http"
	"time"

	"docquery-go/internal/model"
	"docquery-go/internal/service"
	"docquery-go/pkg/log"
	"docquery-go/pkg/storage"

	"github.com/gin-gonic/gin"
)

// AssetHandler serves asset metadata together with a short-lived download
// URL for the stored payload.
type AssetHandler struct {
	assetService *service.AssetService
	objects      storage.ObjectStore
}

// NewAssetHandler creates a new AssetHandler instance.
func NewAssetHandler(assetService *service.AssetService, objects storage.ObjectStore) *AssetHandler {
	return &AssetHandler{assetService: assetService, objects: objects}
}

// Get returns asset metadata and a presigned download URL.
// GET /api/v1/assets/:assetId
func (h *AssetHandler) Get(c *gin.Context) {
	assetID := c.Param("assetId")
	if assetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing assetId parameter"})
		return
	}

	asset, err := h.assetService.Get(c.Request.Context(), assetID)
	if err != nil {
		if errors.Is(err, model.ErrAssetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
			return
		}
		log.Errorf("[AssetHandler] lookup failed, assetID: %s, error: %v", assetID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up asset"})
		return
	}

	url, err := h.objects.PresignedURL(c.Request.Context(), asset.ObjectKey, 15*time.Minute)
	if err != nil {
		log.Errorf("[AssetHandler] presigned URL failed, assetID: %s, error: %v", assetID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate download URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"asset_id":   asset.ID,
			"doc_id":     asset.DocumentID,
			"kind":       asset.Kind,
			"page":       asset.Page,
			"object_key": asset.ObjectKey,
			"url":        url,
		},
		"message": "success",
	})
}
