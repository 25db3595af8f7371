package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mediagrab-go/api/middleware"
	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
	"go.uber.org/zap"
)

// DownloadHandler handles fetch and history requests
type DownloadHandler struct {
	downloadMgr *app.DownloadManager
	logger      *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(downloadMgr *app.DownloadManager, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		downloadMgr: downloadMgr,
		logger:      logger,
	}
}

// DownloadRequest is the body of POST /download/{kind}
type DownloadRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id,omitempty"`
}

// Download returns the handler for POST /download/{kind}
func (h *DownloadHandler) Download(kind domain.DownloadKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DownloadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, "invalid JSON body")
			return
		}

		result, err := h.downloadMgr.Fetch(c.Request.Context(), domain.FetchRequest{
			URL:      req.URL,
			FormatID: req.FormatID,
			Kind:     kind,
			UserID:   middleware.CurrentUser(c).ID,
		})
		if err != nil {
			respondError(c, err, http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"id":        result.ID,
			"title":     result.Title,
			"thumbnail": result.Thumbnail,
			"files":     result.Files,
		})
	}
}

// ListDownloads handles GET /downloads
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	records, err := h.downloadMgr.ListDownloads(middleware.CurrentUser(c).ID)
	if err != nil {
		h.logger.Error("Failed to list downloads", zap.Error(err))
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"downloads": records,
		"count":     len(records),
	})
}

// GetStats handles GET /downloads/stats
func (h *DownloadHandler) GetStats(c *gin.Context) {
	stats, err := h.downloadMgr.GetStats(middleware.CurrentUser(c).ID)
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetDownload handles GET /downloads/:id
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	record, err := h.downloadMgr.GetDownload(middleware.CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetDownloadFile handles GET /downloads/:id/file
func (h *DownloadHandler) GetDownloadFile(c *gin.Context) {
	record, err := h.downloadMgr.GetDownload(middleware.CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	if record.Status != domain.StatusCompleted || record.FilePath == "" {
		respondValidation(c, "download not completed")
		return
	}

	info, err := os.Stat(record.FilePath)
	if err != nil || !info.Mode().IsRegular() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("Failed to stat download file", zap.String("path", record.FilePath), zap.Error(err))
		}
		respondError(c, domain.NewError(domain.ErrKindNotFound, "serve file", errors.New("file not found")), 0)
		return
	}

	c.FileAttachment(record.FilePath, record.FileName)
}

// DeleteDownload handles DELETE /downloads/:id
func (h *DownloadHandler) DeleteDownload(c *gin.Context) {
	if err := h.downloadMgr.DeleteDownload(middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Download deleted successfully",
	})
}
