package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mediagrab-go/internal/app"
	"go.uber.org/zap"
)

// FormatHandler handles format listing requests
type FormatHandler struct {
	formatSvc *app.FormatService
	logger    *zap.Logger
}

// NewFormatHandler creates a new format handler
func NewFormatHandler(formatSvc *app.FormatService, logger *zap.Logger) *FormatHandler {
	return &FormatHandler{formatSvc: formatSvc, logger: logger}
}

// FormatsRequest is the body of POST /formats
type FormatsRequest struct {
	URL string `json:"url"`
}

// ListFormats handles POST /formats
func (h *FormatHandler) ListFormats(c *gin.Context) {
	var req FormatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid JSON body")
		return
	}

	listing, err := h.formatSvc.ListFormats(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"video_info": listing.VideoInfo,
		"formats":    listing.Formats,
	})
}
