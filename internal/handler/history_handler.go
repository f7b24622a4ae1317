package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neomnia/content-mania-sub004/internal/model"
	"github.com/neomnia/content-mania-sub004/internal/repository"
)

type HistoryHandler struct {
	historyRepo *repository.EmailHistoryRepository
}

func NewHistoryHandler(historyRepo *repository.EmailHistoryRepository) *HistoryHandler {
	return &HistoryHandler{historyRepo: historyRepo}
}

func parseFilter(c *gin.Context) (model.HistoryFilter, bool) {
	f := model.HistoryFilter{
		Provider: c.Query("provider"),
		Status:   c.Query("status"),
	}

	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return f, false
		}
		f.From = &t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return f, false
		}
		f.To = &t
	}

	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return f, true
}

// Search handles GET /email/history
func (h *HistoryHandler) Search(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	records, err := h.historyRepo.Search(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// Stats handles GET /email/history/stats
func (h *HistoryHandler) Stats(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	stats, err := h.historyRepo.Stats(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
