// Package handler contains the HTTP controllers.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"docquery-go/internal/model"
	"docquery-go/internal/search"
	"docquery-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SearchHandler exposes hybrid retrieval over HTTP.
type SearchHandler struct {
	searchService *search.Service
}

// NewSearchHandler creates a new SearchHandler instance.
func NewSearchHandler(searchService *search.Service) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// splitParam parses a comma separated query parameter into a slice, dropping
// empty entries.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HybridSearch handles hybrid search requests.
// GET /api/v1/search/hybrid?query=...&topK=6&industries=a,b&countries=US&date_from=...&date_to=...
func (h *SearchHandler) HybridSearch(c *gin.Context) {
	query := c.Query("query")
	log.Infof("[SearchHandler] received hybrid search request, query: %s", query)

	if strings.TrimSpace(query) == "" {
		log.Warnf("[SearchHandler] search request rejected: empty query parameter")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameter"})
		return
	}

	topK := 0
	if topKStr := c.Query("topK"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topK parameter"})
			return
		}
		topK = parsed
	}

	filter := model.QueryFilter{
		Industries:   splitParam(c.Query("industries")),
		CountryCodes: splitParam(c.Query("countries")),
	}
	if raw := c.Query("date_from"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from parameter"})
			return
		}
		filter.DateFrom = ts
	}
	if raw := c.Query("date_to"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_to parameter"})
			return
		}
		filter.DateTo = ts
	}

	results, err := h.searchService.Retrieve(c.Request.Context(), query, filter, topK)
	if err != nil {
		log.Errorf("[SearchHandler] hybrid search failed, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	log.Infof("[SearchHandler] hybrid search succeeded, query: '%s', returned %d results", query, len(results))
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": results, "message": "success"})
}
