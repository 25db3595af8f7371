package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mediagrab-go/api/middleware"
	"github.com/yourusername/mediagrab-go/pkg/logger"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

var logCategories = []logger.LogCategory{logger.CategoryFetch, logger.CategoryError}

// LogHandler serves the categorised event logs. Admins read every entry;
// other callers only see entries tagged with their own user id.
type LogHandler struct {
	logReader *logger.LogReader
	admins    map[string]bool
}

// NewLogHandler creates a new log handler
func NewLogHandler(logsDir string, admins []string) *LogHandler {
	h := &LogHandler{
		logReader: logger.NewLogReader(logsDir),
		admins:    make(map[string]bool, len(admins)),
	}
	for _, id := range admins {
		h.admins[id] = true
	}
	return h
}

// GetCategories handles GET /logs
func (h *LogHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": logCategories})
}

// GetLogs handles GET /logs/:category?date=YYYY-MM-DD&q=&limit=
func (h *LogHandler) GetLogs(c *gin.Context) {
	category := logger.LogCategory(c.Param("category"))
	if !validCategory(category) {
		respondValidation(c, "invalid category")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLogLimit)))
	if err != nil || limit < 1 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	date := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		date, err = time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			respondValidation(c, "invalid date format, use YYYY-MM-DD")
			return
		}
	}

	query := c.Query("q")
	scope := "user"
	var entries []logger.LogEntry
	user := middleware.CurrentUser(c)
	switch {
	case user != nil && h.admins[user.ID]:
		scope = "all"
		entries, err = h.logReader.ReadLogs(category, date, query, limit)
	case user != nil:
		entries, err = h.logReader.ReadUserLogs(category, date, query, user.ID, limit)
	default:
		entries = []logger.LogEntry{}
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to read logs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"date":     date.Format("2006-01-02"),
		"query":    query,
		"scope":    scope,
		"count":    len(entries),
		"entries":  entries,
	})
}

func validCategory(category logger.LogCategory) bool {
	for _, c := range logCategories {
		if c == category {
			return true
		}
	}
	return false
}
